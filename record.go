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
	"context"
	"maps"
	"slices"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// timestampLayout is ISO-8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Keys written by the enricher.
const (
	keyLevel      = "level"
	keyMessage    = "message"
	keyStack      = "stack"
	keyLogger     = "logger"
	keyURL        = "url"
	keyTimestamp  = "timestamp"
	keyUserAgent  = "userAgent"
	keyTraceID    = "traceId"
	keySpanID     = "spanId"
	keyInstanceID = "instanceId"
)

// Record is one flat JSON object sent to the collector.
type Record map[string]any

// buildRecord produces the outgoing record for msg. It reports false when the
// record must be suppressed: error-shaped messages are only shipped while
// console error capture is on.
func buildRecord(ctx context.Context, s Settings, level Level, loggerName string, msg message, now time.Time, fallbackUA string) (Record, bool) {
	call, ok := callRecord(s, level, loggerName, msg)
	if !ok {
		return nil, false
	}
	return enrichRecord(ctx, s, call, now, fallbackUA), true
}

// callRecord builds the per-call part of a record. The level is written
// last so it wins over a same-named message field.
func callRecord(s Settings, level Level, loggerName string, msg message) (Record, bool) {
	call := make(Record, len(msg.fields)+4)
	switch msg.kind {
	case messageErrorShaped:
		if !s.SendConsoleErrors {
			return nil, false
		}
		maps.Copy(call, msg.fields)
		call[keyMessage] = msg.errText
		call[keyStack] = msg.stack
	case messageStructured:
		maps.Copy(call, msg.fields)
	default:
		call[keyMessage] = msg.text
	}
	call[keyLevel] = level.String()
	if loggerName != "" {
		call[keyLogger] = loggerName
	}
	return call, true
}

// enrichRecord merges the static fields beneath call, adds the enabled
// enrichment fields, and applies the label remap.
func enrichRecord(ctx context.Context, s Settings, call Record, now time.Time, fallbackUA string) Record {
	rec := make(Record, len(s.Fields)+len(call)+6)
	maps.Copy(rec, s.Fields)
	maps.Copy(rec, call)

	page, hasPage := PageFromContext(ctx)
	if s.IncludeURL && hasPage && page.URL != "" {
		rec[keyURL] = page.URL
	}
	if s.IncludeTimestamp {
		rec[keyTimestamp] = now.UTC().Format(timestampLayout)
	}
	if s.IncludeUserAgent {
		ua := fallbackUA
		if hasPage && page.UserAgent != "" {
			ua = page.UserAgent
		}
		if ua != "" {
			rec[keyUserAgent] = ua
		}
	}
	if s.IncludeTraceContext {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			rec[keyTraceID] = sc.TraceID().String()
			rec[keySpanID] = sc.SpanID().String()
		}
	}
	if s.InstanceID != "" {
		rec[keyInstanceID] = s.InstanceID
	}

	applyLabels(rec, s.Labels)
	return rec
}

// applyLabels renames record keys per labels. Renames run in sorted order of
// the original key so repeated builds produce identical records.
func applyLabels(rec Record, labels map[string]string) {
	if len(labels) == 0 {
		return
	}
	for _, from := range slices.Sorted(maps.Keys(labels)) {
		to := labels[from]
		if to == "" || to == from {
			continue
		}
		if v, ok := rec[from]; ok {
			delete(rec, from)
			rec[to] = v
		}
	}
}
