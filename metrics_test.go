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
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsSuppressionReasons counts each skip reason once.
func TestMetricsSuppressionReasons(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	cfg, err := NewConfig(WithLevelName("WARN"))
	if err != nil {
		t.Fatalf("NewConfig() returned %v", err)
	}
	var sent int
	shipper := NewShipper(cfg, WithMetrics(m), WithTransport(TransportFunc(func(context.Context, *Request) { sent++ })))
	log := NewLogger(shipper, nil)

	log.Error("no token")
	cfg.SetToken("T")
	log.Info("below threshold")
	log.Error(errorString("captured off"))
	cfg.SetLoggingEnabled(false)
	log.Error("disabled")
	cfg.SetLoggingEnabled(true)
	log.Error("sent")

	for reason, want := range map[string]float64{
		suppressNoToken:      1,
		suppressLevel:        1,
		suppressErrorCapture: 1,
		suppressDisabled:     1,
	} {
		if got := testutil.ToFloat64(m.suppressed.WithLabelValues(reason)); got != want {
			t.Errorf("suppressed{%s} = %v, want %v", reason, got, want)
		}
	}
	if got := testutil.ToFloat64(m.dispatched.WithLabelValues("post")); got != 1 || sent != 1 {
		t.Errorf("dispatched = %v (sent %d), want 1", got, sent)
	}

	expected := `
# HELP slogloggly_records_dispatched_total Records handed to the transport, by transport mode
# TYPE slogloggly_records_dispatched_total counter
slogloggly_records_dispatched_total{transport="post"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "slogloggly_records_dispatched_total"); err != nil {
		t.Errorf("GatherAndCompare: %v", err)
	}
}

// TestMetricsEncodeFailure drops records the encoder rejects.
func TestMetricsEncodeFailure(t *testing.T) {
	t.Parallel()

	m := NewMetrics(prometheus.NewRegistry())
	cfg, err := NewConfig(WithToken("T"))
	if err != nil {
		t.Fatalf("NewConfig() returned %v", err)
	}
	var sent int
	shipper := NewShipper(cfg, WithMetrics(m), WithTransport(TransportFunc(func(context.Context, *Request) { sent++ })))

	NewLogger(shipper, nil).Info(Fields{"ratio": math.Inf(1)})

	if sent != 0 {
		t.Fatalf("transport received %d requests for an unencodable record", sent)
	}
	if got := testutil.ToFloat64(m.failed.WithLabelValues(failureEncode)); got != 1 {
		t.Fatalf("encode failures = %v, want 1", got)
	}
	if !shipper.LastSend().IsZero() {
		t.Fatalf("LastSend() updated for a dropped record")
	}
}

// TestNilMetricsIsSafe allows shippers without metrics.
func TestNilMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.recordDispatched(TransportBodyPost)
	m.recordSuppressed(suppressLevel)
	m.recordFailure(failureNetwork)
	m.recordBreakerRejected()
}

type errorString string

func (e errorString) Error() string { return string(e) }
