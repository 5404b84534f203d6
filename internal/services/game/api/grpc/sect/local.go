package sect

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// LocalConn dispatches SectService calls to a server in the same process.
// Call options and interceptors are ignored.
type LocalConn struct {
	srv      SectServiceServer
	handlers map[string]grpc.MethodHandler
}

var _ grpc.ClientConnInterface = (*LocalConn)(nil)

// NewLocalConn returns a connection serving calls with srv.
func NewLocalConn(srv SectServiceServer) *LocalConn {
	handlers := make(map[string]grpc.MethodHandler, len(SectService_ServiceDesc.Methods))
	for _, m := range SectService_ServiceDesc.Methods {
		handlers[FullMethod(m.MethodName)] = m.Handler
	}
	return &LocalConn{srv: srv, handlers: handlers}
}

// Invoke runs the unary handler for method.
func (c *LocalConn) Invoke(ctx context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	handler, ok := c.handlers[method]
	if !ok {
		return status.Errorf(codes.Unimplemented, "method %s not implemented", strings.TrimPrefix(method, "/"))
	}
	in, ok := args.(proto.Message)
	if !ok {
		return status.Errorf(codes.Internal, "request %T is not a proto message", args)
	}
	out, err := handler(c.srv, ctx, func(v any) error {
		proto.Merge(v.(proto.Message), in)
		return nil
	}, nil)
	if err != nil {
		return err
	}
	dst, ok := reply.(proto.Message)
	if !ok {
		return status.Errorf(codes.Internal, "reply %T is not a proto message", reply)
	}
	proto.Reset(dst)
	proto.Merge(dst, out.(proto.Message))
	return nil
}

// NewStream is unsupported; SectService is unary only.
func (c *LocalConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, status.Error(codes.Unimplemented, "streams are not supported")
}
