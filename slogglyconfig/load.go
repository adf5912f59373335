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

// Package slogglyconfig loads slogloggly settings from a YAML file layered
// over the library defaults, with SLOGLOGGLY_* environment variables taking
// precedence over both.
//
// Example file:
//
//	token: 0c4a8e1f-5a4b-4f55-9f3e-2a1b6f0d9c21
//	tag: checkout
//	level: warn
//	include_timestamp: true
//	fields:
//	  app: checkout
//	labels:
//	  message: msg
package slogglyconfig

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/pjscruggs/slogloggly"
)

// EnvPrefix is stripped from environment variable names; the remainder,
// lower-cased, is the file key. SLOGLOGGLY_INCLUDE_URL sets include_url.
const EnvPrefix = "SLOGLOGGLY_"

// File mirrors the configuration file layout.
type File struct {
	Token            string            `koanf:"token"`
	Transport        string            `koanf:"transport"`
	HTTPS            bool              `koanf:"https"`
	Host             string            `koanf:"host"`
	Tag              string            `koanf:"tag"`
	Level            string            `koanf:"level"`
	Enabled          bool              `koanf:"enabled"`
	Console          bool              `koanf:"console"`
	CaptureErrors    bool              `koanf:"capture_errors"`
	Fields           map[string]any    `koanf:"fields"`
	Labels           map[string]string `koanf:"labels"`
	IncludeURL       bool              `koanf:"include_url"`
	IncludeTimestamp bool              `koanf:"include_timestamp"`
	IncludeUserAgent bool              `koanf:"include_user_agent"`
	DeleteHeaders    bool              `koanf:"delete_headers"`
	TraceContext     bool              `koanf:"trace_context"`
	InstanceID       string            `koanf:"instance_id"`
	Compress         bool              `koanf:"compress"`
}

// Defaults returns the library defaults in file form. The maps are non-nil
// so file sections can be merged into them.
func Defaults() File {
	return File{
		Transport: slogloggly.TransportBodyPost.String(),
		HTTPS:     true,
		Host:      slogloggly.DefaultHost,
		Level:     slogloggly.LevelDebug.String(),
		Enabled:   true,
		Console:   true,
		Fields:    map[string]any{},
		Labels:    map[string]string{},
	}
}

// Load reads path (skipped when empty) over Defaults, then the environment,
// and returns the equivalent slogloggly options.
func Load(path string) ([]slogloggly.Option, error) {
	f, err := Read(path)
	if err != nil {
		return nil, err
	}
	return f.Options()
}

// Read returns the layered configuration without converting it.
func Read(path string) (File, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return File{}, fmt.Errorf("slogglyconfig: load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return File{}, fmt.Errorf("slogglyconfig: load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return File{}, fmt.Errorf("slogglyconfig: load environment: %w", err)
	}

	var f File
	if err := k.Unmarshal("", &f); err != nil {
		return File{}, fmt.Errorf("slogglyconfig: decode: %w", err)
	}
	return f, nil
}

// envKey maps SLOGLOGGLY_CAPTURE_ERRORS to capture_errors.
func envKey(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
}

// Options converts f to slogloggly options. It fails on an unknown level or
// transport name.
func (f File) Options() ([]slogloggly.Option, error) {
	level, err := slogloggly.ParseLevel(f.Level)
	if err != nil {
		return nil, fmt.Errorf("slogglyconfig: level: %w", err)
	}
	mode, err := slogloggly.ParseTransportMode(f.Transport)
	if err != nil {
		return nil, fmt.Errorf("slogglyconfig: transport: %w", err)
	}

	return []slogloggly.Option{
		slogloggly.WithToken(f.Token),
		slogloggly.WithTransportMode(mode),
		slogloggly.WithUseHTTPS(f.HTTPS),
		slogloggly.WithHost(f.Host),
		slogloggly.WithTag(f.Tag),
		slogloggly.WithLevel(level),
		slogloggly.WithLoggingEnabled(f.Enabled),
		slogloggly.WithLogToConsole(f.Console),
		slogloggly.WithSendConsoleErrors(f.CaptureErrors),
		slogloggly.WithFields(f.Fields),
		slogloggly.WithLabels(f.Labels),
		slogloggly.WithIncludeURL(f.IncludeURL),
		slogloggly.WithIncludeTimestamp(f.IncludeTimestamp),
		slogloggly.WithIncludeUserAgent(f.IncludeUserAgent),
		slogloggly.WithDeleteHeaders(f.DeleteHeaders),
		slogloggly.WithIncludeTraceContext(f.TraceContext),
		slogloggly.WithInstanceID(f.InstanceID),
		slogloggly.WithCompress(f.Compress),
	}, nil
}
