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
	"log/slog"
	"slices"
)

// Handler is a [slog.Handler] that forwards every record to a local handler
// and ships it to the collector. It is the slog front end of a Shipper, in
// the same way Logger is the variadic one.
//
// Records are forwarded locally while console echo is on, independent of the
// shipping level. Shipped records are classified from their attributes: an
// error valued attribute makes an error record (subject to console error
// capture), other attributes are shipped as fields next to "message", and a
// bare message is shipped as text. slog levels between the named ones are
// shipped at the nearest named level below.
type Handler struct {
	shipper *Shipper
	next    slog.Handler
	name    string
	attrs   []scopedAttr
	groups  []string
}

// scopedAttr is an attribute added by WithAttrs along with the groups that
// were open when it was added.
type scopedAttr struct {
	groups []string
	attr   slog.Attr
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler returns a Handler shipping through shipper and echoing to next.
// A nil next discards local output.
//
// Example:
//
//	shipper := slogloggly.NewShipper(cfg)
//	logger := slog.New(slogloggly.NewHandler(shipper, slog.NewTextHandler(os.Stderr, nil)))
func NewHandler(shipper *Shipper, next slog.Handler) *Handler {
	if shipper == nil {
		shipper = NewShipper(nil)
	}
	if next == nil {
		next = slog.DiscardHandler
	}
	return &Handler{shipper: shipper, next: next}
}

// Enabled reports whether either the local handler or the shipper wants
// records at level.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	if h.shipper.cfg.LogToConsole() && h.next.Enabled(ctx, level) {
		return true
	}
	return h.shipper.Enabled(levelFromSlog(level))
}

// Handle echoes r to the local handler and ships it. The local handler's
// error, if any, is returned; shipping never fails.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.shipper.cfg.LogToConsole() && h.next.Enabled(ctx, r.Level) {
		err = h.next.Handle(ctx, r)
	}

	c := newFieldCollector()
	for _, sa := range h.attrs {
		c.add(sa.groups, sa.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		c.add(h.groups, a)
		return true
	})
	h.shipper.ship(ctx, levelFromSlog(r.Level), h.name, classifyRecord(r, c.fields, c.err))
	return err
}

// WithAttrs returns a handler that includes attrs in every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := h.clone()
	clone.next = h.next.WithAttrs(attrs)
	groups := slices.Clip(h.groups)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, scopedAttr{groups: groups, attr: a})
	}
	return clone
}

// WithGroup returns a handler that nests subsequent attributes under name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.next = h.next.WithGroup(name)
	clone.groups = append(slices.Clip(h.groups), name)
	return clone
}

// WithLoggerName returns a handler that adds a "logger" field carrying name
// to every shipped record.
func (h *Handler) WithLoggerName(name string) *Handler {
	clone := h.clone()
	clone.name = name
	return clone
}

// Shipper returns the shipper behind h.
func (h *Handler) Shipper() *Shipper { return h.shipper }

func (h *Handler) clone() *Handler {
	return &Handler{
		shipper: h.shipper,
		next:    h.next,
		name:    h.name,
		attrs:   slices.Clip(h.attrs),
		groups:  h.groups,
	}
}
