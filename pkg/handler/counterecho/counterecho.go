// Package counterecho is a placeholder handler that stamps every call with a counter
// snapshot and the time it resolved. Replace Invoke with your own logic.
package counterecho

import (
	"context"
	"sync/atomic"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler"
)

const Name = "counter-echo"

// Counter is the per-handler call counter. The zero value starts at 0.
type Counter struct {
	n atomic.Int64
}

// Next returns the current value and increments it.
func (c *Counter) Next() int64 {
	return c.n.Add(1) - 1
}

// Value returns the number of completed increments.
func (c *Counter) Value() int64 {
	return c.n.Load()
}

// InvocationRecord is the single element of every CounterEcho result.
type InvocationRecord[T any] struct {
	N   int64  `json:"n"`
	T   string `json:"t"`
	Arg T      `json:"arg"`
}

type Handler[T any] struct {
	counter *Counter
	cfg     handler.Config
}

// New creates a handler with its own Counter.
func New[T any](opts ...handler.Option) *Handler[T] {
	return NewWithCounter[T](&Counter{}, opts...)
}

// NewWithCounter creates a handler that increments counter. Handlers sharing a counter
// share one sequence.
func NewWithCounter[T any](counter *Counter, opts ...handler.Option) *Handler[T] {
	if counter == nil {
		counter = &Counter{}
	}
	return &Handler[T]{
		counter: counter,
		cfg:     handler.NewConfig(opts...),
	}
}

// Invoke waits for the configured delay and resolves with one record. The counter is
// only incremented once the delay has elapsed, so a cancelled call leaves it untouched.
func (h *Handler[T]) Invoke(ctx context.Context, arg T) ([]InvocationRecord[T], error) {
	if err := h.cfg.Defer(ctx); err != nil {
		h.cfg.Logger.Debug("Invocation abandoned before completion", "error", err)
		return nil, err
	}

	rec := InvocationRecord[T]{
		N:   h.counter.Next(),
		T:   handler.Timestamp(h.cfg.Clock.Now()),
		Arg: arg,
	}
	h.cfg.Logger.Debug("Invocation completed", "n", rec.N, "t", rec.T)

	return []InvocationRecord[T]{rec}, nil
}

// Counter exposes the counter the handler increments.
func (h *Handler[T]) Counter() *Counter {
	return h.counter
}

// Invoker returns the untyped form of a handler over arbitrary arguments.
func Invoker(opts ...handler.Option) handler.Invoker {
	return handler.Erase[[]InvocationRecord[any]](New[any](opts...).Invoke)
}
