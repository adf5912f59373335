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

package slogglyconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/pjscruggs/slogloggly"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "slogloggly.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func newConfig(t *testing.T, path string) *slogloggly.Config {
	t.Helper()

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) returned %v", path, err)
	}
	cfg, err := slogloggly.NewConfig(opts...)
	if err != nil {
		t.Fatalf("NewConfig() returned %v", err)
	}
	return cfg
}

// TestReadWithoutFileReturnsDefaults verifies an empty path yields the
// library defaults.
func TestReadWithoutFileReturnsDefaults(t *testing.T) {
	got, err := Read("")
	if err != nil {
		t.Fatalf("Read(\"\") returned %v", err)
	}
	if diff := cmp.Diff(Defaults(), got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("Read(\"\") mismatch (-want +got):\n%s", diff)
	}

	defaults, err := slogloggly.NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() returned %v", err)
	}
	loaded := newConfig(t, "")
	if diff := cmp.Diff(defaults.Snapshot(), loaded.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("loaded defaults differ from NewConfig() (-want +got):\n%s", diff)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeFile(t, `
token: abc-123
transport: beacon
https: false
host: collector.internal:8080
tag: checkout
level: warn
console: false
capture_errors: true
fields:
  app: checkout
labels:
  message: msg
include_timestamp: true
instance_id: pod-7
compress: true
`)

	cfg := newConfig(t, path)

	if got := cfg.Token(); got != "abc-123" {
		t.Errorf("Token() = %q", got)
	}
	if got := cfg.Transport(); got != slogloggly.TransportQueryBeacon {
		t.Errorf("Transport() = %v", got)
	}
	if cfg.UseHTTPS() {
		t.Errorf("UseHTTPS() = true, want false")
	}
	if got := cfg.Host(); got != "collector.internal:8080" {
		t.Errorf("Host() = %q", got)
	}
	if got := cfg.Tag(); got != "checkout" {
		t.Errorf("Tag() = %q", got)
	}
	if got := cfg.Level(); got != slogloggly.LevelWarn {
		t.Errorf("Level() = %v", got)
	}
	if cfg.LogToConsole() || !cfg.SendConsoleErrors() || !cfg.LoggingEnabled() {
		t.Errorf("flags: console=%v capture=%v enabled=%v", cfg.LogToConsole(), cfg.SendConsoleErrors(), cfg.LoggingEnabled())
	}
	if diff := cmp.Diff(map[string]any{"app": "checkout"}, cfg.Fields()); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"message": "msg"}, cfg.Labels()); diff != "" {
		t.Errorf("Labels() mismatch (-want +got):\n%s", diff)
	}
	if !cfg.IncludeTimestamp() || cfg.IncludeURL() {
		t.Errorf("IncludeTimestamp() = %v, IncludeURL() = %v", cfg.IncludeTimestamp(), cfg.IncludeURL())
	}
	if got := cfg.InstanceID(); got != "pod-7" {
		t.Errorf("InstanceID() = %q", got)
	}
	if !cfg.Compress() {
		t.Errorf("Compress() = false")
	}
}

// TestLoadEnvironmentOverridesFile verifies SLOGLOGGLY_* wins over the file.
func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "token: from-file\ntag: file-tag\n")
	t.Setenv("SLOGLOGGLY_TAG", "env-tag")
	t.Setenv("SLOGLOGGLY_INCLUDE_URL", "true")
	t.Setenv("SLOGLOGGLY_LEVEL", "ERROR")

	cfg := newConfig(t, path)

	if got := cfg.Token(); got != "from-file" {
		t.Errorf("Token() = %q, want file value", got)
	}
	if got := cfg.Tag(); got != "env-tag" {
		t.Errorf("Tag() = %q, want env-tag", got)
	}
	if !cfg.IncludeURL() {
		t.Errorf("IncludeURL() = false, want true from environment")
	}
	if got := cfg.Level(); got != slogloggly.LevelError {
		t.Errorf("Level() = %v, want ERROR", got)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "level", body: "level: verbose\n", want: slogloggly.ErrInvalidLevel},
		{name: "transport", body: "transport: carrier-pigeon\n", want: slogloggly.ErrInvalidTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("Load() succeeded for a missing file")
	}
}

func TestEnvKey(t *testing.T) {
	t.Parallel()

	if got := envKey("SLOGLOGGLY_CAPTURE_ERRORS"); got != "capture_errors" {
		t.Fatalf("envKey() = %q, want capture_errors", got)
	}
}

// TestReadMergesMapSections reads fields and labels sections over the
// defaults, twice, without sharing state between reads.
func TestReadMergesMapSections(t *testing.T) {
	path := writeFile(t, "token: T\nfields:\n  app: checkout\nlabels:\n  level: severity\n")

	for i := range 2 {
		got, err := Read(path)
		if err != nil {
			t.Fatalf("Read() #%d returned %v", i, err)
		}
		if diff := cmp.Diff(map[string]any{"app": "checkout"}, got.Fields); diff != "" {
			t.Fatalf("Read() #%d Fields mismatch (-want +got):\n%s", i, diff)
		}
		if diff := cmp.Diff(map[string]string{"level": "severity"}, got.Labels); diff != "" {
			t.Fatalf("Read() #%d Labels mismatch (-want +got):\n%s", i, diff)
		}
	}
	if len(Defaults().Fields) != 0 {
		t.Fatalf("Defaults().Fields = %v after Read, want empty", Defaults().Fields)
	}
}
