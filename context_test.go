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
	"testing"

	"github.com/pjscruggs/slogloggly"
)

func TestPageRoundTrip(t *testing.T) {
	t.Parallel()

	if _, ok := slogloggly.PageFromContext(context.Background()); ok {
		t.Fatalf("PageFromContext(background) reported a page")
	}

	page := slogloggly.Page{URL: "https://example.com/cart", UserAgent: "Mozilla/5.0"}
	ctx := slogloggly.ContextWithPage(context.Background(), page)
	got, ok := slogloggly.PageFromContext(ctx)
	if !ok || got != page {
		t.Fatalf("PageFromContext() = %+v, %v, want %+v", got, ok, page)
	}

	if _, ok := slogloggly.PageFromContext(nil); ok {
		t.Fatalf("PageFromContext(nil) reported a page")
	}
}

// TestContextWithLoggerHandlesNilInputs ensures helper behavior remains stable when
// callers supply nil contexts or loggers.
func TestContextWithLoggerHandlesNilInputs(t *testing.T) {
	t.Parallel()

	logger := slogloggly.NewLogger(slogloggly.NewShipper(nil), nil)
	if got := slogloggly.ContextWithLogger(nil, logger); got != nil {
		t.Fatalf("ContextWithLogger(nil, logger) = %v, want nil", got)
	}

	ctx := context.Background()
	if got := slogloggly.ContextWithLogger(ctx, nil); got != ctx {
		t.Fatalf("ContextWithLogger(ctx, nil) = %v, want original context", got)
	}

	if got := slogloggly.LoggerFromContext(nil); got != nil {
		t.Fatalf("LoggerFromContext(nil) = %v, want nil", got)
	}

	ctx = slogloggly.ContextWithLogger(ctx, logger)
	if got := slogloggly.LoggerFromContext(ctx); got != logger {
		t.Fatalf("LoggerFromContext(ctx) = %p, want %p", got, logger)
	}
}
