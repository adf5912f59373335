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

// Package slogglyhttp records the page each HTTP request represents so
// records shipped while serving it carry its URL and user agent, and
// optionally reports handler panics through a slogloggly.ErrorHookChain.
package slogglyhttp

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pjscruggs/slogloggly"
)

const instrumentationName = "github.com/pjscruggs/slogloggly/slogglyhttp"

const (
	schemeHTTP  = "http"
	schemeHTTPS = "https"
)

// Middleware returns an http.Handler middleware that stores a
// slogloggly.Page for each request in its context.
//
// Example:
//
//	chain := &slogloggly.ErrorHookChain{}
//	shipper.InstallErrorHook(chain)
//	mux := http.NewServeMux()
//	handler := slogglyhttp.Middleware(slogglyhttp.WithErrorHooks(chain))(mux)
func Middleware(opts ...Option) func(http.Handler) http.Handler {
	cfg := applyOptions(opts)

	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.NotFoundHandler()
		}
		return wrapWithOTel(cfg, pageHandler(cfg, next))
	}
}

// pageHandler stores the request page and logger in the context and fires
// the error hooks for panics.
func pageHandler(cfg *config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := slogloggly.ContextWithPage(r.Context(), PageFromRequest(r, cfg.trustXForwardedProto))
		if cfg.logger != nil {
			ctx = slogloggly.ContextWithLogger(ctx, cfg.logger)
		}
		r = r.WithContext(ctx)

		if cfg.hooks != nil {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v != http.ErrAbortHandler {
					cfg.hooks.Fire(ctx, slogloggly.NewPanicEvent(v, 1))
				}
				panic(v)
			}()
		}
		next.ServeHTTP(w, r)
	})
}

// wrapWithOTel applies otelhttp instrumentation when enabled.
func wrapWithOTel(cfg *config, handler http.Handler) http.Handler {
	if !cfg.enableOTel {
		return handler
	}
	return otelhttp.NewHandler(handler, instrumentationName,
		otelhttp.WithTracerProvider(cfg.tracerProvider),
		otelhttp.WithPropagators(cfg.propagators),
	)
}

// PageFromRequest returns the absolute URL and user agent of r.
func PageFromRequest(r *http.Request, trustForwardedProto bool) slogloggly.Page {
	if r == nil {
		return slogloggly.Page{}
	}
	host := r.Host
	if host == "" && r.URL != nil {
		host = r.URL.Host
	}
	target := "/"
	if r.URL != nil {
		target = r.URL.RequestURI()
	}
	return slogloggly.Page{
		URL:       inferScheme(r, trustForwardedProto) + "://" + host + target,
		UserAgent: r.UserAgent(),
	}
}

// inferScheme prefers a trusted X-Forwarded-Proto header and otherwise
// falls back to TLS presence.
func inferScheme(r *http.Request, trustForwardedProto bool) string {
	if trustForwardedProto {
		proto, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
		switch strings.ToLower(strings.TrimSpace(proto)) {
		case schemeHTTPS:
			return schemeHTTPS
		case schemeHTTP:
			return schemeHTTP
		}
	}
	if r.TLS != nil {
		return schemeHTTPS
	}
	return schemeHTTP
}
