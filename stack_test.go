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
	"fmt"
	"runtime"
	"strings"
	"testing"
)

// TestCaptureStackProducesGoFormat ensures captured stacks follow the Go
// runtime layout and report the calling frame.
func TestCaptureStackProducesGoFormat(t *testing.T) {
	t.Parallel()

	stack, frame := captureStack(0)
	if stack == "" {
		t.Fatal("captureStack returned an empty stack trace")
	}
	if !strings.Contains(frame.Function, "TestCaptureStackProducesGoFormat") {
		t.Fatalf("top frame = %q, want the test function", frame.Function)
	}

	lines := strings.Split(stack, "\n")
	if len(lines) < 3 {
		t.Fatalf("stack trace has insufficient lines: %q", stack)
	}
	header := lines[0]
	if !strings.HasPrefix(header, "goroutine ") || !strings.HasSuffix(header, "]:") {
		t.Fatalf("stack trace header %q is not in Go runtime format", header)
	}
	if !strings.HasPrefix(lines[2], "\t") || !strings.Contains(lines[2], "stack_test.go:") {
		t.Fatalf("expected location line for stack_test.go, got %q", lines[2])
	}
}

// fakeStackError exposes a canned stack trace for exercising stackTracer logic.
type fakeStackError struct {
	pcs []uintptr
}

func (f fakeStackError) Error() string { return "fake-stack" }

func (f fakeStackError) StackTrace() []uintptr { return f.pcs }

func TestErrorStackUsesWrappedTracer(t *testing.T) {
	t.Parallel()

	pcs := make([]uintptr, 8)
	pcs = pcs[:runtime.Callers(1, pcs)]
	err := fmt.Errorf("wrapped: %w", fakeStackError{pcs: pcs})

	stack := errorStack(err)
	if !strings.Contains(stack, "TestErrorStackUsesWrappedTracer") {
		t.Fatalf("errorStack() = %q, want the frame that built the error", stack)
	}
	if got := errorStack(fmt.Errorf("plain")); got != "" {
		t.Fatalf("errorStack(plain) = %q, want empty", got)
	}
}

func TestFormatStackHandlesEmptySlice(t *testing.T) {
	t.Parallel()

	if got := formatStack(nil); got != "" {
		t.Fatalf("formatStack(nil) = %q, want empty", got)
	}
}

func TestSkipInternalFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fn   string
		want bool
	}{
		{fn: "", want: false},
		{fn: "runtime.gopanic", want: true},
		{fn: "log/slog.(*Logger).log", want: true},
		{fn: modulePath + ".(*Shipper).ship", want: true},
		{fn: modulePath + "/slogglyhttp.pageHandler.func1.1", want: true},
		{fn: modulePath + "/slogglyzerolog.Console.func1", want: true},
		{fn: modulePath + "_test.TestLoggerShips", want: false},
		{fn: modulePath + ".TestCaptureStack", want: false},
		{fn: "main.main", want: false},
		{fn: "net/http.HandlerFunc.ServeHTTP", want: false},
	}

	for _, tt := range tests {
		if got := skipInternalFrame(tt.fn); got != tt.want {
			t.Errorf("skipInternalFrame(%q) = %v, want %v", tt.fn, got, tt.want)
		}
	}
}

func TestGoroutineHeaderIsClean(t *testing.T) {
	t.Parallel()

	header := goroutineHeader()
	if !strings.HasPrefix(header, "goroutine ") || strings.ContainsAny(header, "\n\t") {
		t.Fatalf("goroutineHeader() = %q", header)
	}
}
