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

import "context"

type contextKey int

const (
	pageContextKey contextKey = iota
	loggerContextKey
)

// Page describes the request or page a log call was made on behalf of. It
// feeds the "url" and "userAgent" enrichment fields.
type Page struct {
	URL       string
	UserAgent string
}

// ContextWithPage returns a child context carrying page.
func ContextWithPage(ctx context.Context, page Page) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, pageContextKey, page)
}

// PageFromContext returns the page stored by ContextWithPage.
func PageFromContext(ctx context.Context) (Page, bool) {
	if ctx == nil {
		return Page{}, false
	}
	page, ok := ctx.Value(pageContextKey).(Page)
	return page, ok
}

// ContextWithLogger returns a child context that stores logger so request
// handlers can retrieve a request-scoped logger later in the call chain.
func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey, logger)
}

// LoggerFromContext retrieves a logger stored via ContextWithLogger, or nil.
func LoggerFromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerContextKey).(*Logger)
	return logger
}
