// Package argecho is a stateless placeholder handler that hands its argument back.
package argecho

import (
	"context"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler"
)

const Name = "arg-echo"

type EchoResult[T any] struct {
	DummyHandlerGotArg T `json:"dummyHandlerGotArg"`
}

type Handler[T any] struct {
	cfg handler.Config
}

func New[T any](opts ...handler.Option) *Handler[T] {
	return &Handler[T]{cfg: handler.NewConfig(opts...)}
}

// Invoke waits for the configured delay and wraps arg unmodified.
func (h *Handler[T]) Invoke(ctx context.Context, arg T) (EchoResult[T], error) {
	if err := h.cfg.Defer(ctx); err != nil {
		return EchoResult[T]{}, err
	}
	h.cfg.Logger.Debug("Echoing argument")
	return EchoResult[T]{DummyHandlerGotArg: arg}, nil
}

func Invoker(opts ...handler.Option) handler.Invoker {
	return handler.Erase[EchoResult[any]](New[any](opts...).Invoke)
}
