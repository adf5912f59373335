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
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Shipper runs the gate, enrich, and transport steps for log calls. It is
// safe for concurrent use. Logger and Handler are the usual front ends.
type Shipper struct {
	cfg       *Config
	transport Transport
	headers   http.Header
	now       func() time.Time
	logger    *slog.Logger
	metrics   *Metrics
	userAgent string

	lastSend atomic.Int64
}

// ShipperOption configures a Shipper.
type ShipperOption func(*shipperOptions)

type shipperOptions struct {
	transport Transport
	client    *http.Client
	headers   http.Header
	now       func() time.Time
	logger    *slog.Logger
	metrics   *Metrics
	breaker   *BreakerConfig
	userAgent string
}

// WithTransport replaces the HTTP transport. WithHTTPClient and
// WithCircuitBreaker have no effect when it is set.
func WithTransport(t Transport) ShipperOption {
	return func(o *shipperOptions) {
		o.transport = t
	}
}

// WithHTTPClient sets the client used by the default HTTP transport.
func WithHTTPClient(client *http.Client) ShipperOption {
	return func(o *shipperOptions) {
		o.client = client
	}
}

// WithDefaultHeaders adds headers to every POST request. Header stripping
// removes all of them except Accept and Content-Type.
func WithDefaultHeaders(header http.Header) ShipperOption {
	dup := header.Clone()
	return func(o *shipperOptions) {
		for name, values := range dup {
			o.headers[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
		}
	}
}

// WithClock overrides the time source used for timestamps and LastSend.
func WithClock(now func() time.Time) ShipperOption {
	return func(o *shipperOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithInternalLogger routes the shipper's own diagnostics, such as dropped
// sends, to logger. Diagnostics are never shipped. Defaults to discarding.
func WithInternalLogger(logger *slog.Logger) ShipperOption {
	return func(o *shipperOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records shipping outcomes in m.
func WithMetrics(m *Metrics) ShipperOption {
	return func(o *shipperOptions) {
		o.metrics = m
	}
}

// WithCircuitBreaker guards the default HTTP transport with a circuit
// breaker. While open, records are dropped without a request.
func WithCircuitBreaker(cfg BreakerConfig) ShipperOption {
	return func(o *shipperOptions) {
		o.breaker = &cfg
	}
}

// WithUserAgent sets the User-Agent header and the fallback "userAgent"
// field. Defaults to UserAgent.
func WithUserAgent(ua string) ShipperOption {
	return func(o *shipperOptions) {
		o.userAgent = ua
	}
}

// NewShipper creates a Shipper reading cfg on every call. A nil cfg uses the
// defaults, which ship nothing until a token is set.
func NewShipper(cfg *Config, opts ...ShipperOption) *Shipper {
	if cfg == nil {
		cfg, _ = NewConfig()
	}
	o := &shipperOptions{
		headers:   http.Header{headerAccept: {"application/json, text/plain, */*"}},
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
		userAgent: UserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.userAgent != "" {
		o.headers.Set(headerUserAgent, o.userAgent)
	}

	transport := o.transport
	if transport == nil {
		var cb *gobreaker.CircuitBreaker[struct{}]
		if o.breaker != nil {
			cb = newCircuitBreaker(*o.breaker, o.logger)
		}
		transport = newHTTPTransport(o.client, cb, o.logger, o.metrics)
	}

	return &Shipper{
		cfg:       cfg,
		transport: transport,
		headers:   o.headers,
		now:       o.now,
		logger:    o.logger,
		metrics:   o.metrics,
		userAgent: o.userAgent,
	}
}

// Config returns the configuration the shipper reads.
func (s *Shipper) Config() *Config { return s.cfg }

// LastSend returns when a record was last handed to the transport, or the
// zero time if none has been.
func (s *Shipper) LastSend() time.Time {
	ns := s.lastSend.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Wait blocks until in-flight requests of the default transport finish. It
// is a shutdown aid, not a flush: nothing is queued.
func (s *Shipper) Wait() {
	if w, ok := s.transport.(interface{ Wait() }); ok {
		w.Wait()
	}
}

// SendMessage ships fields as-is, without level gating or a level field of
// its own. The token and enable flag still apply and the record is merged
// with the static fields, enriched, and relabeled as usual.
func (s *Shipper) SendMessage(ctx context.Context, fields map[string]any) {
	settings := s.cfg.Snapshot()
	if !s.admit(settings) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	rec := enrichRecord(ctx, settings, Record(cloneFields(fields)), s.now(), s.userAgent)
	s.dispatch(ctx, settings, rec)
}

// Enabled reports whether a call at level would pass the gate.
func (s *Shipper) Enabled(level Level) bool {
	if s == nil {
		return false
	}
	settings := s.cfg.Snapshot()
	return settings.Token != "" && settings.LoggingEnabled && settings.levelEnabled(level)
}

// ship runs a classified call through the gate and, if admitted, enrichment
// and transport. Error-shaped messages without a stack of their own get the
// stack of the log call site.
func (s *Shipper) ship(ctx context.Context, level Level, loggerName string, msg message) {
	if ctx == nil {
		ctx = context.Background()
	}
	settings := s.cfg.Snapshot()
	if !s.admit(settings) {
		return
	}
	if !settings.levelEnabled(level) {
		s.metrics.recordSuppressed(suppressLevel)
		return
	}
	if msg.kind == messageErrorShaped {
		if !settings.SendConsoleErrors {
			s.metrics.recordSuppressed(suppressErrorCapture)
			return
		}
		if msg.stack == nil {
			msg.stack, _ = captureStack(1)
		}
	}

	rec, ok := buildRecord(ctx, settings, level, loggerName, msg, s.now(), s.userAgent)
	if !ok {
		s.metrics.recordSuppressed(suppressErrorCapture)
		return
	}
	s.dispatch(ctx, settings, rec)
}

// admit applies the token and enable checks shared by every send.
func (s *Shipper) admit(settings Settings) bool {
	if settings.Token == "" {
		s.metrics.recordSuppressed(suppressNoToken)
		return false
	}
	if !settings.LoggingEnabled {
		s.metrics.recordSuppressed(suppressDisabled)
		return false
	}
	return true
}

func (s *Shipper) dispatch(ctx context.Context, settings Settings, rec Record) {
	req, err := newRequest(settings, rec, s.headers)
	if err != nil {
		s.metrics.recordFailure(failureEncode)
		s.logger.LogAttrs(ctx, slog.LevelWarn, "dropping record that could not be encoded", slog.Any("error", err))
		return
	}
	s.lastSend.Store(s.now().UnixNano())
	s.metrics.recordDispatched(req.Mode)
	s.transport.Send(ctx, req)
}
