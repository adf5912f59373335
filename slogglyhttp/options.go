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

package slogglyhttp

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pjscruggs/slogloggly"
)

// Option configures Middleware.
type Option func(*config)

type config struct {
	logger               *slogloggly.Logger
	hooks                *slogloggly.ErrorHookChain
	enableOTel           bool
	tracerProvider       trace.TracerProvider
	propagators          propagation.TextMapPropagator
	trustXForwardedProto bool
}

// defaultConfig returns the baseline middleware configuration.
func defaultConfig() *config {
	return &config{
		enableOTel: true,
	}
}

// applyOptions applies opts on top of defaultConfig.
func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	if cfg.propagators == nil {
		cfg.propagators = otel.GetTextMapPropagator()
	}
	return cfg
}

// WithLogger stores logger in each request context, retrievable with
// slogloggly.LoggerFromContext.
func WithLogger(logger *slogloggly.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithErrorHooks fires chain for panics raised by the wrapped handler. The
// panic continues after the chain has run, so net/http still recovers and
// logs it. http.ErrAbortHandler is not reported.
func WithErrorHooks(chain *slogloggly.ErrorHookChain) Option {
	return func(cfg *config) {
		cfg.hooks = chain
	}
}

// WithOTel toggles the otelhttp server handler. Enabled by default so shipped
// records can carry the request's trace and span IDs.
func WithOTel(enabled bool) Option {
	return func(cfg *config) {
		cfg.enableOTel = enabled
	}
}

// WithTracerProvider sets the tracer provider for the otelhttp handler.
// Defaults to otel.GetTracerProvider().
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *config) {
		cfg.tracerProvider = tp
	}
}

// WithPropagators sets the propagator used to extract incoming trace
// context. Defaults to otel.GetTextMapPropagator().
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(cfg *config) {
		cfg.propagators = p
	}
}

// WithTrustXForwardedProto uses the X-Forwarded-Proto header when building
// the page URL. Enable it only behind a proxy that sets the header.
func WithTrustXForwardedProto(enabled bool) Option {
	return func(cfg *config) {
		cfg.trustXForwardedProto = enabled
	}
}
