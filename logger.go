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
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Console is the local logging facility a Logger echoes calls to before
// shipping them. Echoed arguments are passed through unmodified.
type Console interface {
	Print(ctx context.Context, level Level, args ...any)
}

// ConsoleFunc adapts a function to Console.
type ConsoleFunc func(ctx context.Context, level Level, args ...any)

// Print calls f(ctx, level, args...).
func (f ConsoleFunc) Print(ctx context.Context, level Level, args ...any) {
	f(ctx, level, args...)
}

// SlogConsole echoes calls to logger. The arguments are joined with spaces
// to form the slog message.
func SlogConsole(logger *slog.Logger) Console {
	if logger == nil {
		logger = slog.Default()
	}
	return ConsoleFunc(func(ctx context.Context, level Level, args ...any) {
		if ctx == nil {
			ctx = context.Background()
		}
		logger.Log(ctx, level.Level(), JoinArgs(args...))
	})
}

// WriterConsole echoes calls to w as "LEVEL args..." lines.
func WriterConsole(w io.Writer) Console {
	var mu sync.Mutex
	return ConsoleFunc(func(_ context.Context, level Level, args ...any) {
		line := level.String() + " " + JoinArgs(args...) + "\n"
		mu.Lock()
		defer mu.Unlock()
		_, _ = io.WriteString(w, line)
	})
}

// JoinArgs formats args the way fmt.Println does, without the newline.
func JoinArgs(args ...any) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}

// Logger is a variadic logging facade that echoes each call to a Console and
// ships it to the collector through a Shipper. Each call takes any number of
// arguments: a single argument is the message, several are shipped as an
// ordered list, a map ships its keys, and an error ships as an error record
// when console error capture is on.
//
// Loggers are cheap values; GetLogger derives named loggers that share the
// same Shipper and Console.
type Logger struct {
	shipper *Shipper
	console Console
	name    string
}

// NewLogger returns a Logger echoing to console and shipping via shipper. A
// nil console disables the echo.
func NewLogger(shipper *Shipper, console Console) *Logger {
	if shipper == nil {
		shipper = NewShipper(nil)
	}
	return &Logger{shipper: shipper, console: console}
}

// GetLogger returns a logger that behaves like l and adds a "logger" field
// carrying name to every shipped record.
func (l *Logger) GetLogger(name string) *Logger {
	child := *l
	child.name = name
	return &child
}

// Name returns the logger name, or "" for the root logger.
func (l *Logger) Name() string { return l.name }

// Shipper returns the shipper behind l.
func (l *Logger) Shipper() *Shipper { return l.shipper }

// Debug logs args at DEBUG.
func (l *Logger) Debug(args ...any) { l.log(context.Background(), LevelDebug, args) }

// Info logs args at INFO.
func (l *Logger) Info(args ...any) { l.log(context.Background(), LevelInfo, args) }

// Warn logs args at WARN.
func (l *Logger) Warn(args ...any) { l.log(context.Background(), LevelWarn, args) }

// Error logs args at ERROR.
func (l *Logger) Error(args ...any) { l.log(context.Background(), LevelError, args) }

// Log is the default log call. It ships at INFO.
func (l *Logger) Log(args ...any) { l.log(context.Background(), LevelInfo, args) }

// DebugContext logs args at DEBUG with ctx.
func (l *Logger) DebugContext(ctx context.Context, args ...any) { l.log(ctx, LevelDebug, args) }

// InfoContext logs args at INFO with ctx.
func (l *Logger) InfoContext(ctx context.Context, args ...any) { l.log(ctx, LevelInfo, args) }

// WarnContext logs args at WARN with ctx.
func (l *Logger) WarnContext(ctx context.Context, args ...any) { l.log(ctx, LevelWarn, args) }

// ErrorContext logs args at ERROR with ctx.
func (l *Logger) ErrorContext(ctx context.Context, args ...any) { l.log(ctx, LevelError, args) }

// LogContext logs args at INFO with ctx.
func (l *Logger) LogContext(ctx context.Context, args ...any) { l.log(ctx, LevelInfo, args) }

// log echoes then ships. The echo happens before gating so local output
// does not depend on the shipping configuration.
func (l *Logger) log(ctx context.Context, level Level, args []any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if l.console != nil && l.shipper.cfg.LogToConsole() {
		l.console.Print(ctx, level, args...)
	}
	l.shipper.ship(ctx, level, l.name, classifyArgs(args))
}
