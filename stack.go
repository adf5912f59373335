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
	"runtime"
	"strconv"
	"strings"
)

const maxStackFrames = 64

// stackTracer is implemented by errors that carry their own program counters.
// Compatible with github.com/pkg/errors style stack capture.
type stackTracer interface {
	StackTrace() []uintptr
}

// errorStack returns the formatted stack carried by err or any error it
// wraps, or "" when none is available.
func errorStack(err error) (stack string) {
	if err == nil || isNilPointer(err) {
		return ""
	}
	defer func() {
		if recover() != nil {
			stack = ""
		}
	}()
	var st stackTracer
	if !errors.As(err, &st) {
		return ""
	}
	pcs := st.StackTrace()
	if len(pcs) > maxStackFrames {
		pcs = pcs[:maxStackFrames]
	}
	return formatStack(pcs)
}

// formatStack renders pcs in the layout used by runtime/debug.Stack so the
// collector can parse it like a Go panic trace.
func formatStack(pcs []uintptr) string {
	if len(pcs) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(pcs) * 64)
	sb.WriteString(goroutineHeader())
	sb.WriteByte('\n')

	var intBuf [20]byte
	frames := runtime.CallersFrames(pcs)
	for n := 0; n < maxStackFrames; n++ {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}
		if frame.Function != "" && frame.Function != "runtime.goexit" {
			sb.WriteString(frame.Function)
			sb.WriteString("\n\t")
			sb.WriteString(frame.File)
			sb.WriteByte(':')
			sb.Write(strconv.AppendInt(intBuf[:0], int64(frame.Line), 10))
			if frame.Entry != 0 && frame.PC > frame.Entry {
				sb.WriteString(" +0x")
				sb.Write(strconv.AppendUint(intBuf[:0], uint64(frame.PC-frame.Entry), 16))
			}
			sb.WriteByte('\n')
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// skipInternalFrame reports whether funcName belongs to this module, slog,
// or the runtime and should be hidden from captured stacks.
func skipInternalFrame(funcName string) bool {
	switch {
	case funcName == "":
		return false
	case strings.HasPrefix(funcName, "runtime."):
		return true
	case strings.HasPrefix(funcName, "log/slog."):
		return true
	case strings.HasPrefix(funcName, modulePath+"."),
		strings.HasPrefix(funcName, modulePath+"/slogglyhttp."),
		strings.HasPrefix(funcName, modulePath+"/slogglyzerolog."):
		return !strings.Contains(funcName, ".Test")
	}
	return false
}

// captureStack records the calling goroutine's stack with internal frames
// trimmed from the top. It returns the formatted trace and the first
// remaining frame, which locates the log call or panic site.
func captureStack(extraSkip int) (string, runtime.Frame) {
	var buf [maxStackFrames]uintptr
	n := runtime.Callers(2+extraSkip, buf[:])
	if n == 0 {
		return "", runtime.Frame{}
	}
	pcs := buf[:n]

	skip := 0
	for skip < len(pcs) {
		frame, _ := runtime.CallersFrames(pcs[skip : skip+1]).Next()
		if !skipInternalFrame(frame.Function) {
			break
		}
		skip++
	}
	if skip == len(pcs) {
		skip = 0
	}
	pcs = pcs[skip:]

	top, _ := runtime.CallersFrames(pcs).Next()
	return formatStack(pcs), top
}

// goroutineHeader returns the "goroutine N [running]:" line for the caller.
func goroutineHeader() string {
	const fallback = "goroutine 0 [running]:"

	var buf [128]byte
	n := runtime.Stack(buf[:], false)
	if n <= 0 {
		return fallback
	}
	header, _, _ := strings.Cut(string(buf[:n]), "\n")
	header = strings.TrimSpace(header)
	if header == "" {
		return fallback
	}
	return header
}
