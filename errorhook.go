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
	"sync"
)

// ErrorEvent describes an uncaught error, typically a recovered panic.
type ErrorEvent struct {
	// Message is the error text.
	Message string
	// Value is the recovered panic value, if any.
	Value any
	// Err is Value when it is an error.
	Err error
	// File and Line locate the panic site. Column is always 0: Go does not
	// report columns for stack frames.
	File   string
	Line   int
	Column int
	// Stack is the goroutine stack at the panic site.
	Stack string
}

// ErrorHook observes uncaught errors.
type ErrorHook func(ctx context.Context, ev ErrorEvent)

// ErrorHookChain is an ordered chain of error hooks. Each installed hook
// sits in front of the ones installed before it, and firing the chain runs
// every hook exactly once, newest first, so installing never replaces prior
// behaviour. The zero value is ready to use.
type ErrorHookChain struct {
	mu   sync.RWMutex
	head *hookLink
}

type hookLink struct {
	key  string
	hook ErrorHook
	next *hookLink
}

// Install adds hook under key. It reports false, leaving the chain
// unchanged, when key is already installed.
func (c *ErrorHookChain) Install(key string, hook ErrorHook) bool {
	if hook == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for link := c.head; link != nil; link = link.next {
		if link.key == key {
			return false
		}
	}
	c.head = &hookLink{key: key, hook: hook, next: c.head}
	return true
}

// Installed reports whether key is in the chain.
func (c *ErrorHookChain) Installed(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for link := c.head; link != nil; link = link.next {
		if link.key == key {
			return true
		}
	}
	return false
}

// Fire runs every hook with ev.
func (c *ErrorHookChain) Fire(ctx context.Context, ev ErrorEvent) {
	if c == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.RLock()
	head := c.head
	c.mu.RUnlock()

	for link := head; link != nil; link = link.next {
		link.hook(ctx, ev)
	}
}

// Recover fires the chain for a panic in progress and then re-panics with
// the same value, so the program crashes exactly as it would have without
// the chain. It must be called directly by defer:
//
//	defer chain.Recover(ctx)
func (c *ErrorHookChain) Recover(ctx context.Context) {
	v := recover()
	if v == nil {
		return
	}
	c.Fire(ctx, NewPanicEvent(v, 1))
	panic(v)
}

// NewPanicEvent describes a recovered panic value. skip counts additional
// frames between the caller and the deferred function that recovered.
func NewPanicEvent(v any, skip int) ErrorEvent {
	stack, frame := captureStack(skip + 1)
	ev := ErrorEvent{
		Value: v,
		File:  frame.File,
		Line:  frame.Line,
		Stack: stack,
	}
	switch val := v.(type) {
	case error:
		ev.Err = val
		ev.Message = errorText(val)
	case string:
		ev.Message = val
	default:
		ev.Message = fmt.Sprint(val)
	}
	if own := errorStack(ev.Err); own != "" {
		ev.Stack = own
	}
	return ev
}

// InstallErrorHook adds a hook to chain that ships uncaught errors as ERROR
// records of the form {level, message, line, col, stack}. It does nothing
// and returns false while console error capture is off, and is idempotent
// per shipper.
func (s *Shipper) InstallErrorHook(chain *ErrorHookChain) bool {
	if chain == nil || !s.cfg.SendConsoleErrors() {
		return false
	}
	return chain.Install(s.hookKey(), s.shipErrorEvent)
}

func (s *Shipper) hookKey() string {
	return fmt.Sprintf("slogloggly.Shipper@%p", s)
}

func (s *Shipper) shipErrorEvent(ctx context.Context, ev ErrorEvent) {
	if !s.cfg.SendConsoleErrors() {
		s.metrics.recordSuppressed(suppressErrorCapture)
		return
	}
	fields := map[string]any{
		keyMessage: ev.Message,
		"line":     ev.Line,
		"col":      ev.Column,
		keyStack:   ev.Stack,
	}
	s.ship(ctx, LevelError, "", message{kind: messageStructured, fields: fields})
}
