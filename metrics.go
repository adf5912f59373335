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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons recorded by the suppressed and failed counters.
const (
	suppressNoToken      = "no_token"
	suppressDisabled     = "disabled"
	suppressLevel        = "level"
	suppressErrorCapture = "error_capture"

	failureEncode  = "encode"
	failureNetwork = "network"
	failureStatus  = "status"
)

// Metrics counts shipping outcomes. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	dispatched      *prometheus.CounterVec
	suppressed      *prometheus.CounterVec
	failed          *prometheus.CounterVec
	breakerRejected prometheus.Counter
}

// NewMetrics registers the shipping counters with reg. A nil reg creates
// unregistered collectors.
//
// Exported series:
//   - slogloggly_records_dispatched_total{transport}
//   - slogloggly_records_suppressed_total{reason}
//   - slogloggly_send_failures_total{reason}
//   - slogloggly_breaker_rejected_total
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		dispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slogloggly_records_dispatched_total",
				Help: "Records handed to the transport, by transport mode",
			},
			[]string{"transport"},
		),
		suppressed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slogloggly_records_suppressed_total",
				Help: "Log calls skipped before transport, by reason",
			},
			[]string{"reason"},
		),
		failed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slogloggly_send_failures_total",
				Help: "Sends dropped after a failure, by reason",
			},
			[]string{"reason"},
		),
		breakerRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "slogloggly_breaker_rejected_total",
				Help: "Sends dropped because the circuit breaker was open",
			},
		),
	}
}

func (m *Metrics) recordDispatched(mode TransportMode) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(mode.String()).Inc()
}

func (m *Metrics) recordSuppressed(reason string) {
	if m == nil {
		return
	}
	m.suppressed.WithLabelValues(reason).Inc()
}

func (m *Metrics) recordFailure(reason string) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(reason).Inc()
}

func (m *Metrics) recordBreakerRejected() {
	if m == nil {
		return
	}
	m.breakerRejected.Inc()
}
