// Package builtin maps handler names to the placeholder handlers shipped with the template.
package builtin

import (
	"errors"
	"fmt"
	"sort"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler/argecho"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler/counterecho"
)

var ErrUnknownHandler = errors.New("handler: unknown handler")

type factory func(opts ...handler.Option) handler.Invoker

var factories = map[string]factory{
	counterecho.Name: counterecho.Invoker,
	argecho.Name:     argecho.Invoker,
}

// New builds a fresh instance of the named handler. Every call gets its own state.
func New(name string, opts ...handler.Option) (handler.Invoker, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandler, name)
	}
	return f(opts...), nil
}

// Names lists the known handlers in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
