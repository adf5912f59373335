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
	"fmt"
	"log/slog"
	"strings"
)

// ErrInvalidLevel reports a level name outside DEBUG, INFO, WARN and ERROR.
var ErrInvalidLevel = errors.New("slogloggly: invalid logging level")

// Level is the severity of a shipped record. Only the four named levels are
// valid thresholds. Values sit on the slog.Level scale so a Level can be used
// anywhere a slog.Leveler is accepted.
type Level slog.Level

const (
	// LevelDebug is the lowest level and the default threshold.
	LevelDebug Level = Level(slog.LevelDebug)

	// LevelInfo is used for Info and Log calls.
	LevelInfo Level = Level(slog.LevelInfo)

	// LevelWarn is used for Warn calls.
	LevelWarn Level = Level(slog.LevelWarn)

	// LevelError is used for Error calls and captured panics.
	LevelError Level = Level(slog.LevelError)
)

// levels lists the valid levels in ordinal order.
var levels = [...]Level{LevelDebug, LevelInfo, LevelWarn, LevelError}

// String returns the upper-case level name sent in the "level" field. Values
// between the named levels are reported by the nearest lower name.
func (l Level) String() string {
	switch levelFromSlog(slog.Level(l)) {
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "DEBUG"
	}
}

// Level returns the underlying slog.Level, satisfying slog.Leveler.
func (l Level) Level() slog.Level {
	return slog.Level(l)
}

// Valid reports whether l is exactly one of the four named levels.
func (l Level) Valid() bool {
	for _, v := range levels {
		if v == l {
			return true
		}
	}
	return false
}

// Ordinal returns the position of l in DEBUG < INFO < WARN < ERROR, or -1
// when l is not a named level.
func (l Level) Ordinal() int {
	for i, v := range levels {
		if v == l {
			return i
		}
	}
	return -1
}

// ParseLevel resolves a level name case-insensitively. Surrounding whitespace
// is ignored. Unknown names return an error wrapping ErrInvalidLevel.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelDebug, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
}

// levelFromSlog maps an arbitrary slog level onto the nearest named level at
// or below it. Anything under DEBUG is treated as DEBUG.
func levelFromSlog(level slog.Level) Level {
	switch {
	case level >= slog.LevelError:
		return LevelError
	case level >= slog.LevelWarn:
		return LevelWarn
	case level >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}
