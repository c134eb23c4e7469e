package functionRuntimeInterface

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName  = "hyperfaas.function.Handler"
	InvokeMethod = "/" + ServiceName + "/Invoke"

	// RequestIDKey is the metadata key carrying the caller's request id.
	RequestIDKey = "x-request-id"
)

// HandlerServer is the server side of the Handler service. Arguments and results travel as
// google.protobuf.Value so the handler stays agnostic to their shape.
type HandlerServer interface {
	Invoke(context.Context, *structpb.Value) (*structpb.Value, error)
}

// HandlerServiceDesc describes the Handler service for grpc.ServiceRegistrar.
var HandlerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HandlerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Invoke",
			Handler:    invokeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hyperfaas/function/handler",
}

// RegisterHandlerServer registers srv on reg.
func RegisterHandlerServer(reg grpc.ServiceRegistrar, srv HandlerServer) {
	reg.RegisterService(&HandlerServiceDesc, srv)
}

func invokeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HandlerServer).Invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: InvokeMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HandlerServer).Invoke(ctx, req.(*structpb.Value))
	}
	return interceptor(ctx, in, info, handler)
}

// ToValue converts a Go value into a google.protobuf.Value. Plain JSON-like values are
// converted directly; anything else goes through its JSON encoding.
func ToValue(v any) (*structpb.Value, error) {
	if pv, ok := v.(*structpb.Value); ok {
		return pv, nil
	}
	if pv, err := structpb.NewValue(v); err == nil {
		return pv, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	pv := new(structpb.Value)
	if err := protojson.Unmarshal(raw, pv); err != nil {
		return nil, fmt.Errorf("failed to convert %T: %w", v, err)
	}
	return pv, nil
}
