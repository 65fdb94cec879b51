package database

import (
	"log/slog"
	"time"
)

const (
	// DefaultConnectTimeout bounds ConnectWithRetry when no timeout is given.
	DefaultConnectTimeout = 30 * time.Second
	// DefaultConnectBackoff is the fixed pause between connection attempts.
	DefaultConnectBackoff = time.Second
)

type options struct {
	timeout time.Duration
	backoff time.Duration
	logger  *slog.Logger
	opener  Opener
	metrics *Metrics
}

// Option configures ConnectWithRetry, the Migrator and the reset functions.
// Options that do not apply to an operation are ignored.
type Option func(*options)

// WithTimeout sets the wall-clock deadline for ConnectWithRetry.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithBackoff sets the fixed pause between connection attempts.
func WithBackoff(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.backoff = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOpener replaces the function used to open each connection attempt.
func WithOpener(opener Opener) Option {
	return func(o *options) {
		o.opener = opener
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func newOptions(opts []Option) options {
	o := options{
		timeout: DefaultConnectTimeout,
		backoff: DefaultConnectBackoff,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.opener == nil {
		o.opener = defaultOpener(o.logger)
	}
	return o
}
