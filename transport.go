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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultSendTimeout = 10 * time.Second
	maxDrainBytes      = 64 << 10
)

// Request is a fully built collector request.
type Request struct {
	Mode   TransportMode
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Transport delivers requests to the collector. Send must return promptly
// and must not report failures to the caller: delivery is at most once and
// failures are dropped.
type Transport interface {
	Send(ctx context.Context, req *Request)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request)

// Send calls f(ctx, req).
func (f TransportFunc) Send(ctx context.Context, req *Request) { f(ctx, req) }

// HTTPTransport sends each request on its own goroutine. It never retries and
// never reads the response beyond draining it for connection reuse.
type HTTPTransport struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
	metrics *Metrics

	wg sync.WaitGroup
}

// defaultHTTPClient returns a client whose transport records OpenTelemetry
// client spans.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   defaultSendTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func newHTTPTransport(client *http.Client, breaker *gobreaker.CircuitBreaker[struct{}], logger *slog.Logger, metrics *Metrics) *HTTPTransport {
	if client == nil {
		client = defaultHTTPClient()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HTTPTransport{
		client:  client,
		breaker: breaker,
		logger:  logger,
		metrics: metrics,
	}
}

// Send dispatches req in the background. Cancellation of ctx does not abort
// the request; its values are kept for tracing.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) {
	if req == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.dispatch(ctx, req)
	}()
}

// Wait blocks until every request started by Send has finished.
func (t *HTTPTransport) Wait() {
	t.wg.Wait()
}

func (t *HTTPTransport) dispatch(ctx context.Context, req *Request) {
	var (
		status int
		err    error
	)
	if t.breaker == nil {
		status, err = t.do(ctx, req)
	} else {
		_, err = t.breaker.Execute(func() (struct{}, error) {
			var doErr error
			status, doErr = t.do(ctx, req)
			return struct{}{}, doErr
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			t.metrics.recordBreakerRejected()
			t.logger.LogAttrs(ctx, slog.LevelDebug, "collector circuit open, dropping record",
				slog.String("breaker", t.breaker.Name()))
			return
		}
	}

	switch {
	case err != nil && status == 0:
		t.metrics.recordFailure(failureNetwork)
		t.logger.LogAttrs(ctx, slog.LevelWarn, "collector request failed",
			slog.String("method", req.Method), slog.Any("error", err))
	case err != nil || status >= http.StatusBadRequest:
		t.metrics.recordFailure(failureStatus)
		t.logger.LogAttrs(ctx, slog.LevelWarn, "collector rejected record",
			slog.String("method", req.Method), slog.Int("status", status))
	}
}

// do performs one round trip. Network errors and 5xx responses are returned
// as errors so the breaker counts them; 4xx responses are not.
func (t *HTTPTransport) do(ctx context.Context, req *Request) (int, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return 0, err
	}
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if resp.StatusCode >= http.StatusInternalServerError {
		return resp.StatusCode, fmt.Errorf("slogloggly: collector returned %s", resp.Status)
	}
	return resp.StatusCode, nil
}

// newCircuitBreaker builds the breaker used by WithCircuitBreaker. A zero
// failure threshold trips after five consecutive failures.
func newCircuitBreaker(cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[struct{}] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	name := cfg.Name
	if name == "" {
		name = "slogloggly"
	}
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logDiagnostic(logger, slog.LevelInfo, "collector circuit state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
}

// BreakerConfig tunes the optional circuit breaker around collector sends.
// Zero values fall back to gobreaker defaults.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
}

func logDiagnostic(logger *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}
