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

// Package slogloggly ships application log calls to a Loggly-style HTTP
// collector. Each call is optionally echoed to a local console, gated by
// level and an enable switch, classified, enriched, and sent as a single
// flat JSON object. Sends are fire-and-forget: at most once, never retried,
// and silently dropped on failure.
//
// There are two front ends sharing one [Shipper]:
//   - [Logger], a variadic facade (Debug, Info, Warn, Error, Log) that echoes
//     to a [Console] and derives named loggers with [Logger.GetLogger].
//   - [Handler], a [log/slog] handler that decorates a local slog.Handler.
//
// # Records
//
// A call with a single text argument ships {"level":"INFO","message":...}.
// A map argument ships its keys plus the level, which always wins. An error,
// or a map carrying a "stack" key, ships {level, message, stack} when
// console error capture is enabled and is dropped otherwise. Static fields
// from the [Config] are merged beneath every record, enrichment adds url,
// timestamp, userAgent, traceId, spanId, and instanceId when enabled, and
// the label table renames keys last.
//
// # Transport
//
// [TransportBodyPost] POSTs the JSON as text/plain to
// scheme://host/inputs/<token>/tag/<tag>/. [TransportQueryBeacon] issues a
// GET for .../tag/<tag>/.gif?PLAINTEXT=<percent-encoded JSON>. Nothing is
// sent while the token is empty or logging is disabled.
//
// # Quick Start
//
//	cfg, err := slogloggly.NewConfig(
//		slogloggly.WithToken("your-customer-token"),
//		slogloggly.WithTag("checkout"),
//		slogloggly.WithLevelName("info"),
//		slogloggly.WithEnv(),
//	)
//	if err != nil {
//		log.Fatalf("configure slogloggly: %v", err)
//	}
//	shipper := slogloggly.NewShipper(cfg)
//	defer shipper.Wait()
//
//	log := slogloggly.NewLogger(shipper, slogloggly.SlogConsole(slog.Default()))
//	log.Info("application started")
//	log.GetLogger("billing").Warn(slogloggly.Fields{"message": "card declined", "attempt": 2})
//
// # Configuration
//
// Settings are functional options on [NewConfig] and chaining setters on
// [Config]. [WithEnv] overlays SLOGLOGGLY_* variables such as
// SLOGLOGGLY_TOKEN, SLOGLOGGLY_LEVEL, and SLOGLOGGLY_TRANSPORT. The
// slogglyconfig subpackage loads the same settings from YAML.
//
// # Subpackages
//
//   - [github.com/pjscruggs/slogloggly/slogglyhttp] records the page URL and
//     user agent of each request and reports handler panics.
//   - [github.com/pjscruggs/slogloggly/slogglyconfig] reads YAML and
//     environment configuration with koanf.
//   - [github.com/pjscruggs/slogloggly/slogglyzerolog] echoes calls to a
//     zerolog logger.
package slogloggly
