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

// Package slogglyzerolog echoes slogloggly log calls to a zerolog.Logger.
package slogglyzerolog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pjscruggs/slogloggly"
)

// Console returns a slogloggly.Console writing each call to logger at the
// matching zerolog level. Arguments are joined with spaces to form the
// message; a single error argument is also attached with Err.
func Console(logger zerolog.Logger) slogloggly.Console {
	return slogloggly.ConsoleFunc(func(ctx context.Context, level slogloggly.Level, args ...any) {
		event := logger.WithLevel(Level(level))
		if ctx != nil {
			event = event.Ctx(ctx)
		}
		if len(args) == 1 {
			if err, ok := args[0].(error); ok {
				event = event.Err(err)
			}
		}
		event.Msg(slogloggly.JoinArgs(args...))
	})
}

// Level maps a slogloggly level to zerolog.
func Level(level slogloggly.Level) zerolog.Level {
	switch {
	case level >= slogloggly.LevelError:
		return zerolog.ErrorLevel
	case level >= slogloggly.LevelWarn:
		return zerolog.WarnLevel
	case level >= slogloggly.LevelInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
