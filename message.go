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
	"log/slog"
	"reflect"
	"slices"

	"github.com/goccy/go-json"
)

// Fields is a structured log message. Its keys are merged into the shipped
// record alongside the level.
type Fields map[string]any

type messageKind uint8

const (
	messagePlainText messageKind = iota
	messageStructured
	messageErrorShaped
)

func (k messageKind) String() string {
	switch k {
	case messageStructured:
		return "structured"
	case messageErrorShaped:
		return "error"
	default:
		return "text"
	}
}

// message is the classified form of a log call's arguments. Exactly one of
// the variant groups is meaningful, selected by kind.
type message struct {
	kind messageKind

	// messagePlainText
	text any

	// messageStructured, and extra context for messageErrorShaped
	fields map[string]any

	// messageErrorShaped; errText is nil when no message is known and stack
	// is nil until resolved from the call site.
	errText any
	stack   any
}

// classifyArgs turns variadic log call arguments into a message. A single
// argument is the message value; several are kept as an ordered list; none
// is an empty structured message.
func classifyArgs(args []any) message {
	var value any
	switch len(args) {
	case 0:
		return message{kind: messageStructured, fields: map[string]any{}}
	case 1:
		value = args[0]
	default:
		value = slices.Clone(args)
	}

	if msg, ok := classifyErrorShaped(value); ok {
		return msg
	}
	if fields, ok := structuredFields(value); ok {
		return message{kind: messageStructured, fields: fields}
	}
	return message{kind: messagePlainText, text: value}
}

// classifyErrorShaped recognizes errors, maps carrying a "stack" key, and
// lists whose first element is either of those.
func classifyErrorShaped(value any) (message, bool) {
	switch v := value.(type) {
	case error:
		msg := message{kind: messageErrorShaped, errText: errorText(v)}
		if stack := errorStack(v); stack != "" {
			msg.stack = stack
		}
		return msg, true
	case []any:
		if len(v) == 0 {
			return message{}, false
		}
		first, ok := classifyErrorShaped(v[0])
		if !ok {
			return message{}, false
		}
		return first, true
	}

	fields, ok := structuredFields(value)
	if !ok || value == nil {
		return message{}, false
	}
	stack, ok := fields["stack"]
	if !ok {
		return message{}, false
	}
	return message{kind: messageErrorShaped, errText: fields["message"], stack: stack}, true
}

// structuredFields returns a copy of value's keys when value is a map
// message. A nil value counts as an empty map.
func structuredFields(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case nil:
		return map[string]any{}, true
	case Fields:
		return cloneFields(v), true
	case map[string]any:
		return cloneFields(v), true
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

// classifyRecord classifies a slog record whose attributes have already been
// collected into fields. An error valued attribute makes the record
// error-shaped; other attributes make it structured with the record message
// under "message" (an attribute of that name is kept when the record message
// is empty); a bare message is plain text.
func classifyRecord(r slog.Record, fields map[string]any, err error) message {
	if err != nil {
		var text any = r.Message
		if r.Message == "" {
			text = errorText(err)
		}
		msg := message{kind: messageErrorShaped, errText: text, fields: fields}
		if stack := errorStack(err); stack != "" {
			msg.stack = stack
		}
		return msg
	}
	if len(fields) == 0 {
		return message{kind: messagePlainText, text: r.Message}
	}
	if _, taken := fields[keyMessage]; !taken || r.Message != "" {
		fields[keyMessage] = r.Message
	}
	return message{kind: messageStructured, fields: fields}
}

// fieldCollector accumulates slog attributes into nested maps.
type fieldCollector struct {
	fields map[string]any
	err    error
}

func newFieldCollector() *fieldCollector {
	return &fieldCollector{fields: make(map[string]any)}
}

// add stores attr beneath the group path. Groups are created on demand so
// empty groups never appear in the output.
func (c *fieldCollector) add(groups []string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}

	if attr.Value.Kind() == slog.KindGroup {
		members := attr.Value.Group()
		if len(members) == 0 {
			return
		}
		path := groups
		if attr.Key != "" {
			path = append(slices.Clip(groups), attr.Key)
		}
		for _, member := range members {
			c.add(path, member)
		}
		return
	}
	if attr.Key == "" {
		return
	}

	target := c.fields
	for _, g := range groups {
		next, ok := target[g].(map[string]any)
		if !ok {
			next = make(map[string]any)
			target[g] = next
		}
		target = next
	}
	target[attr.Key] = c.value(attr.Value)
}

// value converts a resolved slog value into a JSON friendly value. Errors are
// rendered as their text and the first one seen is remembered.
func (c *fieldCollector) value(v slog.Value) any {
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(timestampLayout)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			if c.err == nil {
				c.err = err
			}
			return errorText(err)
		}
		if s, ok := v.Any().(fmt.Stringer); ok && !isJSONNative(v.Any()) {
			return stringerText(s)
		}
		return v.Any()
	default:
		return v.Any()
	}
}

// isJSONNative reports whether v controls its own JSON form, in which case
// a String method must not replace it.
func isJSONNative(v any) bool {
	_, ok := v.(json.Marshaler)
	return ok
}

// errorText returns err.Error() without letting a nil receiver or a
// panicking Error method escape into the log call.
func errorText(err error) (text string) {
	if err == nil || isNilPointer(err) {
		return "<nil>"
	}
	defer func() {
		if r := recover(); r != nil {
			text = fmt.Sprintf("%%!v(PANIC=Error method: %v)", r)
		}
	}()
	return err.Error()
}

// stringerText is errorText for fmt.Stringer.
func stringerText(s fmt.Stringer) (text string) {
	if s == nil || isNilPointer(s) {
		return "<nil>"
	}
	defer func() {
		if r := recover(); r != nil {
			text = fmt.Sprintf("%%!v(PANIC=String method: %v)", r)
		}
	}()
	return s.String()
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
