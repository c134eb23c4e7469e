package functionRuntimeInterface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler/argecho"
	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/handler/counterecho"
)

func TestToValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "number", in: 42, want: float64(42)},
		{name: "string", in: "hi", want: "hi"},
		{name: "map", in: map[string]any{"k": []any{1, "v"}}, want: map[string]any{"k": []any{float64(1), "v"}}},
		{
			name: "echo result",
			in:   argecho.EchoResult[any]{DummyHandlerGotArg: "hi"},
			want: map[string]any{"dummyHandlerGotArg": "hi"},
		},
		{
			name: "invocation records",
			in:   []counterecho.InvocationRecord[any]{{N: 3, T: "2024-07-10T08:00:06.000Z", Arg: true}},
			want: []any{map[string]any{"n": float64(3), "t": "2024-07-10T08:00:06.000Z", "arg": true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ToValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.AsInterface())
		})
	}
}

func TestToValue_PassesValuesThrough(t *testing.T) {
	v := structpb.NewStringValue("x")
	got, err := ToValue(v)
	require.NoError(t, err)
	assert.Same(t, v, got)
}

func TestToValue_Unencodable(t *testing.T) {
	_, err := ToValue(func() {})
	assert.Error(t, err)
}
