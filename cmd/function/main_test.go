package main

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseData(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{in: "", want: nil},
		{in: "42", want: float64(42)},
		{in: `{"a":[1,"b"]}`, want: map[string]any{"a": []any{float64(1), "b"}}},
		{in: "hello world", want: "hello world"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseData(tt.in), tt.in)
	}
}

type countingInvoker struct {
	calls atomic.Int64
	err   error
}

func (c *countingInvoker) Invoke(_ context.Context, arg any) (any, error) {
	n := c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return map[string]any{"call": n, "arg": arg}, nil
}

func TestInvokeConcurrently(t *testing.T) {
	inv := &countingInvoker{}

	results, err := invokeConcurrently(context.Background(), inv, "x", 8)
	require.NoError(t, err)
	assert.Len(t, results, 8)
	assert.Equal(t, int64(8), inv.calls.Load())
	for _, res := range results {
		assert.Equal(t, "x", res.(map[string]any)["arg"])
	}

	results, err = invokeConcurrently(context.Background(), inv, "y", 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestInvokeConcurrently_Error(t *testing.T) {
	boom := errors.New("boom")
	_, err := invokeConcurrently(context.Background(), &countingInvoker{err: boom}, nil, 3)
	assert.ErrorIs(t, err, boom)
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	err := printResults(&buf, []any{map[string]any{"dummyHandlerGotArg": 1.0}, "two"}, false)
	require.NoError(t, err)
	assert.Equal(t, "{\"dummyHandlerGotArg\":1}\n\"two\"\n", buf.String())
}

func TestListCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &buf

	require.NoError(t, cmd.Run(context.Background(), []string{"function", "list"}))
	assert.Equal(t, "arg-echo\ncounter-echo\n", buf.String())
}

func TestServeCommand_RequiresHandler(t *testing.T) {
	t.Setenv("FUNCTION_HANDLER", "")
	cmd := newCommand()
	cmd.Writer = &bytes.Buffer{}
	cmd.ErrWriter = &bytes.Buffer{}

	err := cmd.Run(context.Background(), []string{"function", "serve", "--address", "127.0.0.1:0"})
	assert.ErrorContains(t, err, "no handler specified")
}
