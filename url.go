// Copyright 2025 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package slogloggly

import (
	"net/http"
	"net/url"
	"strings"
)

// Header names kept by the header strip.
const (
	headerAccept          = "Accept"
	headerContentType     = "Content-Type"
	headerContentEncoding = "Content-Encoding"
	headerUserAgent       = "User-Agent"

	contentTypeText = "text/plain"
	beaconParam     = "PLAINTEXT"
)

// inputURL returns scheme://host/inputs/<token>/tag/<tag>/ for s. Token and
// tag are escaped as single path segments.
func inputURL(s Settings) string {
	scheme := "https"
	if !s.UseHTTPS {
		scheme = "http"
	}

	var sb strings.Builder
	sb.Grow(len(scheme) + len(s.Host) + len(s.Token) + 32)
	sb.WriteString(scheme)
	sb.WriteString("://")
	sb.WriteString(s.Host)
	sb.WriteString("/inputs/")
	sb.WriteString(url.PathEscape(s.Token))
	sb.WriteString("/tag/")
	sb.WriteString(escapeTags(s.tag()))
	sb.WriteByte('/')
	return sb.String()
}

// escapeTags escapes tag as a path segment but keeps the commas that
// separate multiple tags.
func escapeTags(tag string) string {
	return strings.ReplaceAll(url.PathEscape(tag), "%2C", ",")
}

// BuildURL returns the collector URL for body under the configured
// transport. For TransportQueryBeacon body is percent-encoded into the
// PLAINTEXT parameter of a .gif request; for TransportBodyPost body is not
// part of the URL.
func BuildURL(s Settings, body []byte) string {
	base := inputURL(s)
	if s.Transport != TransportQueryBeacon {
		return base
	}
	return base + ".gif?" + beaconParam + "=" + encodeURIComponent(string(body))
}

// encodeURIComponent percent-encodes s byte by byte, leaving only the
// characters JavaScript's encodeURIComponent leaves: ASCII letters, digits
// and -_.!~*'().
func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var sb strings.Builder
	sb.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if uriComponentSafe(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0f])
	}
	return sb.String()
}

func uriComponentSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// newRequest builds the request that ships rec under s. defaults are the
// shipper's default headers; they are cloned so per-request stripping never
// mutates them.
func newRequest(s Settings, rec Record, defaults http.Header) (*Request, error) {
	body, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}

	if s.Transport == TransportQueryBeacon {
		return &Request{
			Mode:   TransportQueryBeacon,
			Method: http.MethodGet,
			URL:    BuildURL(s, body),
			Header: http.Header{},
		}, nil
	}

	header := defaults.Clone()
	if header == nil {
		header = http.Header{}
	}
	if s.DeleteHeaders {
		for name := range header {
			if name != headerAccept && name != headerContentType {
				delete(header, name)
			}
		}
		// An empty User-Agent stops net/http from adding its own.
		header[headerUserAgent] = []string{""}
	}
	header.Set(headerContentType, contentTypeText)

	if s.Compress {
		if body, err = gzipBytes(body); err != nil {
			return nil, err
		}
		header.Set(headerContentEncoding, "gzip")
	}

	return &Request{
		Mode:   TransportBodyPost,
		Method: http.MethodPost,
		URL:    BuildURL(s, body),
		Header: header,
		Body:   body,
	}, nil
}
