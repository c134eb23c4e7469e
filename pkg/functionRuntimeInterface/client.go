package functionRuntimeInterface

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/3s-rg-codes/hyperfaas-function-template/pkg/utils"
)

// Client invokes a function instance's handler.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Dial creates a client for the instance at address. The caller closes the returned
// connection.
func Dial(address string, logger *slog.Logger, opts ...grpc.DialOption) (*Client, *grpc.ClientConn, error) {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(utils.ClientInterceptorLogger(logger)),
	}, opts...)

	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, nil, err
	}
	return NewClient(conn), conn, nil
}

// Invoke sends arg to the handler and returns its result decoded into plain Go values
// (map[string]any, []any, float64, string, bool or nil). A request id is attached unless
// ctx already carries one.
func (c *Client) Invoke(ctx context.Context, arg any) (any, error) {
	out, err := c.InvokeValue(ctx, arg)
	if err != nil {
		return nil, err
	}
	return out.AsInterface(), nil
}

// InvokeValue is Invoke without decoding the result.
func (c *Client) InvokeValue(ctx context.Context, arg any) (*structpb.Value, error) {
	in, err := ToValue(arg)
	if err != nil {
		return nil, err
	}

	if md, ok := metadata.FromOutgoingContext(ctx); !ok || len(md.Get(RequestIDKey)) == 0 {
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDKey, uuid.NewString())
	}

	out := new(structpb.Value)
	if err := c.conn.Invoke(ctx, InvokeMethod, in, out); err != nil {
		return nil, err
	}
	return out, nil
}
