// Package handler defines the contract shared by function handlers: one argument in,
// one deferred result out.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultDelay is how long a placeholder handler waits before resolving.
	DefaultDelay = 100 * time.Millisecond

	// TimestampLayout is ISO-8601 in UTC with millisecond precision, e.g. 2024-07-10T08:00:06.000Z.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var ErrNilInvoker = errors.New("handler: invoker is nil")

// Func is the signature of a typed handler.
type Func[In, Out any] func(ctx context.Context, arg In) (Out, error)

// Invoker is the untyped boundary the runtime calls. The handler is agnostic to the
// shape of arg.
type Invoker interface {
	Invoke(ctx context.Context, arg any) (any, error)
}

// InvokerFunc adapts a plain function to Invoker.
type InvokerFunc func(ctx context.Context, arg any) (any, error)

func (f InvokerFunc) Invoke(ctx context.Context, arg any) (any, error) {
	return f(ctx, arg)
}

// Erase turns a typed handler taking any argument into an Invoker.
func Erase[Out any](fn Func[any, Out]) Invoker {
	return InvokerFunc(func(ctx context.Context, arg any) (any, error) {
		out, err := fn(ctx, arg)
		if err != nil {
			return nil, err
		}
		return out, nil
	})
}

// Config holds the knobs common to all placeholder handlers.
type Config struct {
	Clock  clock.Clock
	Delay  time.Duration
	Logger *slog.Logger
}

type Option func(*Config)

// WithClock replaces the wall clock, mostly for tests driving a clock.Mock.
func WithClock(c clock.Clock) Option {
	return func(cfg *Config) {
		cfg.Clock = c
	}
}

// WithDelay overrides DefaultDelay. Negative values are treated as zero.
func WithDelay(d time.Duration) Option {
	return func(cfg *Config) {
		if d < 0 {
			d = 0
		}
		cfg.Delay = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

// NewConfig applies opts on top of the defaults.
func NewConfig(opts ...Option) Config {
	cfg := Config{
		Clock: clock.New(),
		Delay: DefaultDelay,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return cfg
}

// Defer blocks until the configured delay has elapsed on the configured clock, or ctx ends.
func (c Config) Defer(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := c.Clock.Timer(c.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Timestamp formats t the way handler results carry time.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
