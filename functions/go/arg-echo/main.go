// This is just a placeholder handler to be overwritten with your own.
package main

import (
	"context"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/functionRuntimeInterface"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler/argecho"
)

var argEcho = argecho.New[any]()

func main() {
	functionRuntimeInterface.Ready(argecho.Name, handler.Erase[argecho.EchoResult[any]](handle))
}

func handle(ctx context.Context, arg any) (argecho.EchoResult[any], error) {
	return argEcho.Invoke(ctx, arg)
}
