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
	"errors"
	"log/slog"
	"testing"
)

// TestLevelString verifies level names, including values between the named
// levels, which report the nearest lower name.
func TestLevelString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		level Level
		want  string
	}{
		{"Debug", LevelDebug, "DEBUG"},
		{"Info", LevelInfo, "INFO"},
		{"Warn", LevelWarn, "WARN"},
		{"Error", LevelError, "ERROR"},
		{"BelowDebug", LevelDebug - 4, "DEBUG"},
		{"InfoPlus1", LevelInfo + 1, "INFO"},
		{"BelowError", LevelError - 1, "WARN"},
		{"AboveError", LevelError + 8, "ERROR"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.level.String(); got != tc.want {
				t.Errorf("Level(%d).String() = %q, want %q", int(tc.level), got, tc.want)
			}
		})
	}
}

// TestParseLevel covers accepted spellings and the InvalidLevel failure.
func TestParseLevel(t *testing.T) {
	t.Parallel()

	valid := map[string]Level{
		"DEBUG":    LevelDebug,
		"info":     LevelInfo,
		" Warn ":   LevelWarn,
		"error":    LevelError,
		"\tINFO\n": LevelInfo,
	}
	for in, want := range valid {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) returned %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"", "trace", "warning", "FATAL", "5"} {
		if _, err := ParseLevel(in); !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("ParseLevel(%q) error = %v, want ErrInvalidLevel", in, err)
		}
	}
}

// TestLevelOrdinal checks the DEBUG < INFO < WARN < ERROR ordering and that
// unnamed values are rejected.
func TestLevelOrdinal(t *testing.T) {
	t.Parallel()

	for i, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		if got := level.Ordinal(); got != i {
			t.Errorf("%v.Ordinal() = %d, want %d", level, got, i)
		}
		if !level.Valid() {
			t.Errorf("%v.Valid() = false, want true", level)
		}
	}
	for _, level := range []Level{LevelDebug - 1, LevelInfo + 2, LevelError + 4} {
		if got := level.Ordinal(); got != -1 {
			t.Errorf("Level(%d).Ordinal() = %d, want -1", int(level), got)
		}
		if level.Valid() {
			t.Errorf("Level(%d).Valid() = true, want false", int(level))
		}
	}
}

// TestLevelFromSlog maps arbitrary slog levels onto named levels.
func TestLevelFromSlog(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   slog.Level
		want Level
	}{
		{slog.LevelDebug - 8, LevelDebug},
		{slog.LevelDebug, LevelDebug},
		{slog.LevelInfo - 1, LevelDebug},
		{slog.LevelInfo, LevelInfo},
		{slog.LevelWarn - 1, LevelInfo},
		{slog.LevelWarn, LevelWarn},
		{slog.LevelError, LevelError},
		{slog.LevelError + 4, LevelError},
	}
	for _, tc := range testCases {
		if got := levelFromSlog(tc.in); got != tc.want {
			t.Errorf("levelFromSlog(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if got := LevelWarn.Level(); got != slog.LevelWarn {
		t.Errorf("LevelWarn.Level() = %v, want %v", got, slog.LevelWarn)
	}
}
