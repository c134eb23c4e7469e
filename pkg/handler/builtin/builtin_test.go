package builtin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler/argecho"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler/counterecho"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"arg-echo", "counter-echo"}, Names())
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		handler string
		check   func(t *testing.T, out any)
		wantErr error
	}{
		{
			name:    "counter echo",
			handler: counterecho.Name,
			check: func(t *testing.T, out any) {
				records, ok := out.([]counterecho.InvocationRecord[any])
				require.True(t, ok)
				assert.Equal(t, int64(0), records[0].N)
				assert.Equal(t, "hi", records[0].Arg)
			},
		},
		{
			name:    "arg echo",
			handler: argecho.Name,
			check: func(t *testing.T, out any) {
				assert.Equal(t, argecho.EchoResult[any]{DummyHandlerGotArg: "hi"}, out)
			},
		},
		{
			name:    "unknown",
			handler: "nope",
			wantErr: ErrUnknownHandler,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := New(tt.handler, handler.WithDelay(0))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, inv)
				return
			}
			require.NoError(t, err)

			out, err := inv.Invoke(context.Background(), "hi")
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestNew_FreshStatePerInstance(t *testing.T) {
	for range 2 {
		inv, err := New(counterecho.Name, handler.WithDelay(0))
		require.NoError(t, err)

		out, err := inv.Invoke(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), out.([]counterecho.InvocationRecord[any])[0].N)
	}
}
