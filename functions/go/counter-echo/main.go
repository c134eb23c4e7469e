// This is just a placeholder handler to be overwritten with your own.
package main

import (
	"context"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/functionRuntimeInterface"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler/counterecho"
)

var counterEcho = counterecho.New[any]()

func main() {
	functionRuntimeInterface.Ready(counterecho.Name, handler.Erase[[]counterecho.InvocationRecord[any]](handle))
}

func handle(ctx context.Context, arg any) ([]counterecho.InvocationRecord[any], error) {
	// Do your own work here, or simply return []any{arg}.
	return counterEcho.Invoke(ctx, arg)
}
