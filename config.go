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
	"maps"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	// DefaultHost is the Loggly HTTP/S event endpoint.
	DefaultHost = "logs-01.loggly.com"

	// DefaultTag is used for the tag path segment when no tag is configured.
	DefaultTag = "golang"

	envToken          = "SLOGLOGGLY_TOKEN"
	envTag            = "SLOGLOGGLY_TAG"
	envHost           = "SLOGLOGGLY_HOST"
	envHTTPS          = "SLOGLOGGLY_HTTPS"
	envLevel          = "SLOGLOGGLY_LEVEL"
	envEnabled        = "SLOGLOGGLY_ENABLED"
	envConsole        = "SLOGLOGGLY_CONSOLE"
	envCaptureErrors  = "SLOGLOGGLY_CAPTURE_ERRORS"
	envTransport      = "SLOGLOGGLY_TRANSPORT"
	envIncludeURL     = "SLOGLOGGLY_INCLUDE_URL"
	envIncludeTime    = "SLOGLOGGLY_INCLUDE_TIMESTAMP"
	envIncludeUA      = "SLOGLOGGLY_INCLUDE_USER_AGENT"
	envDeleteHeaders  = "SLOGLOGGLY_DELETE_HEADERS"
	envTraceContext   = "SLOGLOGGLY_TRACE_CONTEXT"
	envCompress       = "SLOGLOGGLY_COMPRESS"
	transportPostName = "post"
	transportGIFName  = "beacon"
)

// ErrInvalidTransport reports an unknown transport mode name.
var ErrInvalidTransport = errors.New("slogloggly: invalid transport mode")

// TransportMode selects how records are delivered to the collector.
type TransportMode int

const (
	// TransportBodyPost sends the JSON record as the body of a POST request.
	TransportBodyPost TransportMode = iota
	// TransportQueryBeacon sends the JSON record percent-encoded in the
	// PLAINTEXT query parameter of a GET request for a 1x1 GIF.
	TransportQueryBeacon
)

// String returns the name accepted by ParseTransportMode.
func (m TransportMode) String() string {
	if m == TransportQueryBeacon {
		return transportGIFName
	}
	return transportPostName
}

// ParseTransportMode resolves "post" or "beacon" (also "gif" and "get").
func ParseTransportMode(name string) (TransportMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", transportPostName, "body":
		return TransportBodyPost, nil
	case transportGIFName, "gif", "get", "query":
		return TransportQueryBeacon, nil
	}
	return TransportBodyPost, fmt.Errorf("%w: %q", ErrInvalidTransport, name)
}

// Settings is a point-in-time copy of a Config. Pipeline steps only ever see
// Settings, so a record is built from one consistent snapshot.
type Settings struct {
	Token               string
	Transport           TransportMode
	UseHTTPS            bool
	Host                string
	Tag                 string
	Level               Level
	LoggingEnabled      bool
	LogToConsole        bool
	SendConsoleErrors   bool
	Fields              map[string]any
	Labels              map[string]string
	IncludeURL          bool
	IncludeTimestamp    bool
	IncludeUserAgent    bool
	DeleteHeaders       bool
	IncludeTraceContext bool
	InstanceID          string
	Compress            bool
}

// defaultSettings returns the settings used before any option is applied.
func defaultSettings() Settings {
	return Settings{
		Transport:      TransportBodyPost,
		UseHTTPS:       true,
		Host:           DefaultHost,
		Level:          LevelDebug,
		LoggingEnabled: true,
		LogToConsole:   true,
		Fields:         map[string]any{},
		Labels:         map[string]string{},
	}
}

// clone returns a deep copy of s with independent maps.
func (s Settings) clone() Settings {
	out := s
	out.Fields = cloneFields(s.Fields)
	out.Labels = cloneLabels(s.Labels)
	return out
}

// levelEnabled reports whether records at level pass the threshold.
func (s Settings) levelEnabled(level Level) bool {
	return level.Ordinal() >= s.Level.Ordinal()
}

// tag returns the configured tag or DefaultTag.
func (s Settings) tag() string {
	if t := strings.TrimSpace(s.Tag); t != "" {
		return t
	}
	return DefaultTag
}

// Config is the shared, mutable configuration for a Shipper. It is meant to
// be set up once during application start and read on every log call. All
// methods are safe for concurrent use, but there is no atomicity across
// fields: a record built while a setter runs may observe a mix of values.
type Config struct {
	mu sync.RWMutex
	s  Settings
}

// Option configures a Config during NewConfig. Options are applied in the
// order they are supplied, so later options override earlier ones.
type Option func(*options)

type options struct {
	settings       Settings
	errs           []error
	internalLogger *slog.Logger
}

// NewConfig builds a Config from defaults and opts. It fails when an option
// names an unknown level or transport mode.
//
// Example:
//
//	cfg, err := slogloggly.NewConfig(
//		slogloggly.WithToken(os.Getenv("LOGGLY_TOKEN")),
//		slogloggly.WithTag("checkout"),
//		slogloggly.WithLevelName("warn"),
//	)
func NewConfig(opts ...Option) (*Config, error) {
	builder := &options{settings: defaultSettings()}
	for _, opt := range opts {
		if opt != nil {
			opt(builder)
		}
	}
	if err := errors.Join(builder.errs...); err != nil {
		return nil, err
	}
	return &Config{s: builder.settings}, nil
}

// Snapshot returns a deep copy of the current settings.
func (c *Config) Snapshot() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.clone()
}

// update runs fn with the write lock held and returns c for chaining.
func (c *Config) update(fn func(*Settings)) *Config {
	c.mu.Lock()
	fn(&c.s)
	c.mu.Unlock()
	return c
}

// read runs fn with the read lock held.
func (c *Config) read(fn func(*Settings)) {
	c.mu.RLock()
	fn(&c.s)
	c.mu.RUnlock()
}

// Token returns the input token. An empty token disables all transport.
func (c *Config) Token() (token string) {
	c.read(func(s *Settings) { token = s.Token })
	return token
}

// SetToken sets the input token.
func (c *Config) SetToken(token string) *Config {
	return c.update(func(s *Settings) { s.Token = strings.TrimSpace(token) })
}

// Transport returns the transport mode.
func (c *Config) Transport() (mode TransportMode) {
	c.read(func(s *Settings) { mode = s.Transport })
	return mode
}

// SetTransport selects the transport mode.
func (c *Config) SetTransport(mode TransportMode) *Config {
	return c.update(func(s *Settings) { s.Transport = mode })
}

// UseHTTPS reports whether the collector URL uses https.
func (c *Config) UseHTTPS() (enabled bool) {
	c.read(func(s *Settings) { enabled = s.UseHTTPS })
	return enabled
}

// SetUseHTTPS toggles https for the collector URL.
func (c *Config) SetUseHTTPS(enabled bool) *Config {
	return c.update(func(s *Settings) { s.UseHTTPS = enabled })
}

// Host returns the collector host.
func (c *Config) Host() (host string) {
	c.read(func(s *Settings) { host = s.Host })
	return host
}

// SetHost sets the collector host, optionally with a port. An empty host
// restores DefaultHost.
func (c *Config) SetHost(host string) *Config {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	return c.update(func(s *Settings) { s.Host = host })
}

// Tag returns the configured tag, which is empty when DefaultTag is in use.
func (c *Config) Tag() (tag string) {
	c.read(func(s *Settings) { tag = s.Tag })
	return tag
}

// SetTag sets the tag path segment.
func (c *Config) SetTag(tag string) *Config {
	return c.update(func(s *Settings) { s.Tag = strings.TrimSpace(tag) })
}

// Level returns the minimum level shipped to the collector.
func (c *Config) Level() (level Level) {
	c.read(func(s *Settings) { level = s.Level })
	return level
}

// LevelName returns the minimum level name.
func (c *Config) LevelName() string {
	return c.Level().String()
}

// SetLevel sets the minimum level by name. Unknown names return an error
// wrapping ErrInvalidLevel and leave the current level in place.
func (c *Config) SetLevel(name string) (*Config, error) {
	level, err := ParseLevel(name)
	if err != nil {
		return c, err
	}
	return c.update(func(s *Settings) { s.Level = level }), nil
}

// IsLevelEnabled reports whether records at the named level pass the current
// threshold. Unknown names are never enabled.
func (c *Config) IsLevelEnabled(name string) bool {
	level, err := ParseLevel(name)
	if err != nil {
		return false
	}
	enabled := false
	c.read(func(s *Settings) { enabled = s.levelEnabled(level) })
	return enabled
}

// LoggingEnabled reports the master enable switch.
func (c *Config) LoggingEnabled() (enabled bool) {
	c.read(func(s *Settings) { enabled = s.LoggingEnabled })
	return enabled
}

// SetLoggingEnabled turns shipping on or off without touching the level.
func (c *Config) SetLoggingEnabled(enabled bool) *Config {
	return c.update(func(s *Settings) { s.LoggingEnabled = enabled })
}

// LogToConsole reports whether calls are echoed to the local console.
func (c *Config) LogToConsole() (enabled bool) {
	c.read(func(s *Settings) { enabled = s.LogToConsole })
	return enabled
}

// SetLogToConsole toggles the local console echo.
func (c *Config) SetLogToConsole(enabled bool) *Config {
	return c.update(func(s *Settings) { s.LogToConsole = enabled })
}

// SendConsoleErrors reports whether error-shaped messages and uncaught
// errors are shipped.
func (c *Config) SendConsoleErrors() (enabled bool) {
	c.read(func(s *Settings) { enabled = s.SendConsoleErrors })
	return enabled
}

// SetSendConsoleErrors toggles error capture.
func (c *Config) SetSendConsoleErrors(enabled bool) *Config {
	return c.update(func(s *Settings) { s.SendConsoleErrors = enabled })
}

// Fields returns a copy of the static fields merged into every record.
func (c *Config) Fields() (fields map[string]any) {
	c.read(func(s *Settings) { fields = cloneFields(s.Fields) })
	return fields
}

// SetFields replaces the static fields with a copy of fields. Later changes
// to the caller's map are not observed.
func (c *Config) SetFields(fields map[string]any) *Config {
	dup := cloneFields(fields)
	return c.update(func(s *Settings) { s.Fields = dup })
}

// Labels returns a copy of the key remap table.
func (c *Config) Labels() (labels map[string]string) {
	c.read(func(s *Settings) { labels = cloneLabels(s.Labels) })
	return labels
}

// SetLabels replaces the key remap table with a copy of labels.
func (c *Config) SetLabels(labels map[string]string) *Config {
	dup := cloneLabels(labels)
	return c.update(func(s *Settings) { s.Labels = dup })
}

// IncludeURL reports whether the current page URL is added as "url".
func (c *Config) IncludeURL() (enabled bool) {
	c.read(func(s *Settings) { enabled = s.IncludeURL })
	return enabled
}

// SetIncludeURL toggles the "url" field.
func (c *Config) SetIncludeURL(enabled bool) *Config {
	return c.update(func(s *Settings) { s.IncludeURL = enabled })
}

// IncludeTimestamp reports whether "timestamp" is added.
func (c *Config) IncludeTimestamp() (enabled bool) {
	c.read(func(s *Settings) { enabled = s.IncludeTimestamp })
	return enabled
}

// SetIncludeTimestamp toggles the "timestamp" field.
func (c *Config) SetIncludeTimestamp(enabled bool) *Config {
	return c.update(func(s *Settings) { s.IncludeTimestamp = enabled })
}

// IncludeUserAgent reports whether "userAgent" is added.
func (c *Config) IncludeUserAgent() (enabled bool) {
	c.read(func(s *Settings) { enabled = s.IncludeUserAgent })
	return enabled
}

// SetIncludeUserAgent toggles the "userAgent" field.
func (c *Config) SetIncludeUserAgent(enabled bool) *Config {
	return c.update(func(s *Settings) { s.IncludeUserAgent = enabled })
}

// DeleteHeaders reports whether default headers other than Accept and
// Content-Type are stripped from POST requests.
func (c *Config) DeleteHeaders() (enabled bool) {
	c.read(func(s *Settings) { enabled = s.DeleteHeaders })
	return enabled
}

// SetDeleteHeaders toggles header stripping.
func (c *Config) SetDeleteHeaders(enabled bool) *Config {
	return c.update(func(s *Settings) { s.DeleteHeaders = enabled })
}

// IncludeTraceContext reports whether "traceId" and "spanId" are added from
// the OpenTelemetry span in the call context.
func (c *Config) IncludeTraceContext() (enabled bool) {
	c.read(func(s *Settings) { enabled = s.IncludeTraceContext })
	return enabled
}

// SetIncludeTraceContext toggles trace correlation fields.
func (c *Config) SetIncludeTraceContext(enabled bool) *Config {
	return c.update(func(s *Settings) { s.IncludeTraceContext = enabled })
}

// InstanceID returns the identifier added as "instanceId", if any.
func (c *Config) InstanceID() (id string) {
	c.read(func(s *Settings) { id = s.InstanceID })
	return id
}

// SetInstanceID sets the "instanceId" field. Empty disables it.
func (c *Config) SetInstanceID(id string) *Config {
	return c.update(func(s *Settings) { s.InstanceID = strings.TrimSpace(id) })
}

// Compress reports whether POST bodies are gzip encoded.
func (c *Config) Compress() (enabled bool) {
	c.read(func(s *Settings) { enabled = s.Compress })
	return enabled
}

// SetCompress toggles gzip encoding of POST bodies.
func (c *Config) SetCompress(enabled bool) *Config {
	return c.update(func(s *Settings) { s.Compress = enabled })
}

// WithToken sets the input token.
func WithToken(token string) Option {
	trimmed := strings.TrimSpace(token)
	return func(o *options) {
		o.settings.Token = trimmed
	}
}

// WithTransportMode selects the transport mode.
func WithTransportMode(mode TransportMode) Option {
	return func(o *options) {
		o.settings.Transport = mode
	}
}

// WithUseHTTPS toggles https for the collector URL. Defaults to true.
func WithUseHTTPS(enabled bool) Option {
	return func(o *options) {
		o.settings.UseHTTPS = enabled
	}
}

// WithHost overrides the collector host, for example "logs-01.loggly.com" or
// "127.0.0.1:8080".
func WithHost(host string) Option {
	trimmed := strings.TrimSpace(host)
	return func(o *options) {
		if trimmed == "" {
			trimmed = DefaultHost
		}
		o.settings.Host = trimmed
	}
}

// WithTag sets the tag path segment. When omitted DefaultTag is used.
func WithTag(tag string) Option {
	trimmed := strings.TrimSpace(tag)
	return func(o *options) {
		o.settings.Tag = trimmed
	}
}

// WithLevel sets the minimum shipped level. Levels other than the four named
// ones make NewConfig fail.
func WithLevel(level Level) Option {
	return func(o *options) {
		if !level.Valid() {
			o.errs = append(o.errs, fmt.Errorf("%w: %d", ErrInvalidLevel, int(level)))
			return
		}
		o.settings.Level = level
	}
}

// WithLevelName sets the minimum shipped level by name.
func WithLevelName(name string) Option {
	return func(o *options) {
		level, err := ParseLevel(name)
		if err != nil {
			o.errs = append(o.errs, err)
			return
		}
		o.settings.Level = level
	}
}

// WithLoggingEnabled sets the master enable switch. Defaults to true.
func WithLoggingEnabled(enabled bool) Option {
	return func(o *options) {
		o.settings.LoggingEnabled = enabled
	}
}

// WithLogToConsole toggles the local console echo. Defaults to true.
func WithLogToConsole(enabled bool) Option {
	return func(o *options) {
		o.settings.LogToConsole = enabled
	}
}

// WithSendConsoleErrors enables shipping of error-shaped messages and
// installation of the uncaught-error hook. Defaults to false.
func WithSendConsoleErrors(enabled bool) Option {
	return func(o *options) {
		o.settings.SendConsoleErrors = enabled
	}
}

// WithFields replaces the static fields with a copy of fields.
func WithFields(fields map[string]any) Option {
	dup := cloneFields(fields)
	return func(o *options) {
		o.settings.Fields = cloneFields(dup)
	}
}

// WithLabels replaces the key remap table with a copy of labels.
func WithLabels(labels map[string]string) Option {
	dup := cloneLabels(labels)
	return func(o *options) {
		o.settings.Labels = cloneLabels(dup)
	}
}

// WithIncludeURL toggles the "url" field.
func WithIncludeURL(enabled bool) Option {
	return func(o *options) {
		o.settings.IncludeURL = enabled
	}
}

// WithIncludeTimestamp toggles the "timestamp" field.
func WithIncludeTimestamp(enabled bool) Option {
	return func(o *options) {
		o.settings.IncludeTimestamp = enabled
	}
}

// WithIncludeUserAgent toggles the "userAgent" field.
func WithIncludeUserAgent(enabled bool) Option {
	return func(o *options) {
		o.settings.IncludeUserAgent = enabled
	}
}

// WithDeleteHeaders strips default headers other than Accept and
// Content-Type from POST requests.
func WithDeleteHeaders(enabled bool) Option {
	return func(o *options) {
		o.settings.DeleteHeaders = enabled
	}
}

// WithIncludeTraceContext adds "traceId" and "spanId" from the active
// OpenTelemetry span.
func WithIncludeTraceContext(enabled bool) Option {
	return func(o *options) {
		o.settings.IncludeTraceContext = enabled
	}
}

// WithInstanceID adds id as "instanceId" on every record.
func WithInstanceID(id string) Option {
	trimmed := strings.TrimSpace(id)
	return func(o *options) {
		o.settings.InstanceID = trimmed
	}
}

// WithGeneratedInstanceID adds a random UUID as "instanceId", identifying
// records from this process.
func WithGeneratedInstanceID() Option {
	return func(o *options) {
		o.settings.InstanceID = uuid.NewString()
	}
}

// WithCompress gzip encodes POST bodies and sets Content-Encoding.
func WithCompress(enabled bool) Option {
	return func(o *options) {
		o.settings.Compress = enabled
	}
}

// WithConfigDiagnostics routes warnings about ignored environment values to
// logger. It must precede WithEnv to take effect.
func WithConfigDiagnostics(logger *slog.Logger) Option {
	return func(o *options) {
		o.internalLogger = logger
	}
}

// WithEnv overlays SLOGLOGGLY_* environment variables at its position in the
// option list. Invalid booleans are ignored with a diagnostic; an invalid
// level or transport makes NewConfig fail.
func WithEnv() Option {
	return func(o *options) {
		if err := applyEnv(&o.settings, o.internalLogger); err != nil {
			o.errs = append(o.errs, err)
		}
	}
}

// applyEnv reads environment overrides into s.
func applyEnv(s *Settings, logger *slog.Logger) error {
	if v, ok := os.LookupEnv(envToken); ok {
		s.Token = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(envTag); ok {
		s.Tag = strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(os.Getenv(envHost)); v != "" {
		s.Host = v
	}
	if v := os.Getenv(envLevel); strings.TrimSpace(v) != "" {
		level, err := ParseLevel(v)
		if err != nil {
			return fmt.Errorf("slogloggly: %s: %w", envLevel, err)
		}
		s.Level = level
	}
	if v := os.Getenv(envTransport); strings.TrimSpace(v) != "" {
		mode, err := ParseTransportMode(v)
		if err != nil {
			return fmt.Errorf("slogloggly: %s: %w", envTransport, err)
		}
		s.Transport = mode
	}

	s.UseHTTPS = parseBoolEnv(envHTTPS, s.UseHTTPS, logger)
	s.LoggingEnabled = parseBoolEnv(envEnabled, s.LoggingEnabled, logger)
	s.LogToConsole = parseBoolEnv(envConsole, s.LogToConsole, logger)
	s.SendConsoleErrors = parseBoolEnv(envCaptureErrors, s.SendConsoleErrors, logger)
	s.IncludeURL = parseBoolEnv(envIncludeURL, s.IncludeURL, logger)
	s.IncludeTimestamp = parseBoolEnv(envIncludeTime, s.IncludeTimestamp, logger)
	s.IncludeUserAgent = parseBoolEnv(envIncludeUA, s.IncludeUserAgent, logger)
	s.DeleteHeaders = parseBoolEnv(envDeleteHeaders, s.DeleteHeaders, logger)
	s.IncludeTraceContext = parseBoolEnv(envTraceContext, s.IncludeTraceContext, logger)
	s.Compress = parseBoolEnv(envCompress, s.Compress, logger)
	return nil
}

// parseBoolEnv interprets a boolean environment variable, keeping current
// when the variable is unset or malformed.
func parseBoolEnv(name string, current bool, logger *slog.Logger) bool {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return current
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		logDiagnostic(logger, slog.LevelWarn, "invalid boolean environment variable",
			slog.String("variable", name), slog.String("value", value), slog.Any("error", err))
		return current
	}
	return b
}

// cloneFields copies src into a new non-nil map.
func cloneFields(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	maps.Copy(dst, src)
	return dst
}

// cloneLabels copies src into a new non-nil map.
func cloneLabels(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	maps.Copy(dst, src)
	return dst
}
