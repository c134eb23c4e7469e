package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goforj/godump"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/functionRuntimeInterface"
)

// parseData reads data as JSON, falling back to the raw string.
func parseData(data string) any {
	if data == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return data
	}
	return v
}

func invoke(ctx context.Context, cmd *cli.Command) error {
	logger, err := setupLogger(cmd)
	if err != nil {
		return err
	}

	client, conn, err := functionRuntimeInterface.Dial(cmd.String("address"), logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	results, err := invokeConcurrently(ctx, client, parseData(cmd.String("data")), cmd.Int("concurrency"))
	if err != nil {
		return err
	}
	return printResults(cmd.Root().Writer, results, cmd.Bool("dump"))
}

type invoker interface {
	Invoke(ctx context.Context, arg any) (any, error)
}

// invokeConcurrently fires n invocations at once and returns their results in call order.
func invokeConcurrently(ctx context.Context, client invoker, arg any, n int) ([]any, error) {
	if n < 1 {
		n = 1
	}
	results := make([]any, n)
	g, ctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			out, err := client.Invoke(ctx, arg)
			if err != nil {
				return fmt.Errorf("invocation %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printResults(w io.Writer, results []any, dump bool) error {
	for _, res := range results {
		if dump {
			godump.Dump(res)
			continue
		}
		b, err := json.Marshal(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	}
	return nil
}
