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

package slogloggly_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/pjscruggs/slogloggly"
)

var errBoom = errors.New("boom")

var testNow = time.Date(2025, time.January, 2, 3, 4, 5, 600_000_000, time.UTC)

// recordingTransport captures requests instead of sending them.
type recordingTransport struct {
	mu   sync.Mutex
	reqs []*slogloggly.Request
}

func (r *recordingTransport) Send(_ context.Context, req *slogloggly.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

func (r *recordingTransport) requests() []*slogloggly.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*slogloggly.Request, len(r.reqs))
	copy(out, r.reqs)
	return out
}

// newTestShipper builds a shipper over a recording transport and a fixed
// clock.
func newTestShipper(t *testing.T, opts ...slogloggly.Option) (*slogloggly.Shipper, *recordingTransport) {
	t.Helper()

	cfg, err := slogloggly.NewConfig(opts...)
	if err != nil {
		t.Fatalf("NewConfig() returned %v", err)
	}
	rec := &recordingTransport{}
	shipper := slogloggly.NewShipper(cfg,
		slogloggly.WithTransport(rec),
		slogloggly.WithClock(func() time.Time { return testNow }),
		slogloggly.WithUserAgent("slogloggly-test"),
	)
	return shipper, rec
}

// decodeBody parses a POST body into a map.
func decodeBody(t *testing.T, req *slogloggly.Request) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(req.Body, &out); err != nil {
		t.Fatalf("decode body %q: %v", req.Body, err)
	}
	return out
}

// singleRecord asserts exactly one request was sent and returns its body.
func singleRecord(t *testing.T, rec *recordingTransport) map[string]any {
	t.Helper()

	reqs := rec.requests()
	if len(reqs) != 1 {
		t.Fatalf("sent %d requests, want 1", len(reqs))
	}
	return decodeBody(t, reqs[0])
}

// detailError dereferences its receiver, so a nil *detailError panics in
// Error.
type detailError struct {
	detail string
}

func (e *detailError) Error() string { return "detail: " + e.detail }
