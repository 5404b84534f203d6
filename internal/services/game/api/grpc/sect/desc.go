package sect

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "sect.v1.SectService"

// Method names.
const (
	MethodCreateSession      = "CreateSession"
	MethodDeleteSession      = "DeleteSession"
	MethodGetSession         = "GetSession"
	MethodGetStatistics      = "GetStatistics"
	MethodStartTurn          = "StartTurn"
	MethodResolveTurn        = "ResolveTurn"
	MethodAssign             = "Assign"
	MethodUnassign           = "Unassign"
	MethodAutoAssign         = "AutoAssign"
	MethodBuild              = "Build"
	MethodUsePill            = "UsePill"
	MethodCraftPill          = "CraftPill"
	MethodInherit            = "Inherit"
	MethodAttemptTribulation = "AttemptTribulation"
	MethodListDisciples      = "ListDisciples"
	MethodListOutcomes       = "ListOutcomes"
)

// FullMethod returns the wire path of method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// ReadMethods are the methods that never mutate a session.
var ReadMethods = map[string]bool{
	FullMethod(MethodGetSession):    true,
	FullMethod(MethodGetStatistics): true,
	FullMethod(MethodListDisciples): true,
	FullMethod(MethodListOutcomes):  true,
}

// SectServiceServer is the server API. Requests and responses are
// google.protobuf.Struct documents.
type SectServiceServer interface {
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStatistics(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartTurn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResolveTurn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Assign(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Unassign(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AutoAssign(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Build(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UsePill(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CraftPill(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Inherit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AttemptTribulation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListDisciples(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListOutcomes(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type handlerFunc func(SectServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call handlerFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(SectServiceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(server, ctx, req.(*structpb.Struct))
			})
		},
	}
}

// SectService_ServiceDesc describes the service for grpc.Server.
var SectService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SectServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodCreateSession, SectServiceServer.CreateSession),
		unary(MethodDeleteSession, SectServiceServer.DeleteSession),
		unary(MethodGetSession, SectServiceServer.GetSession),
		unary(MethodGetStatistics, SectServiceServer.GetStatistics),
		unary(MethodStartTurn, SectServiceServer.StartTurn),
		unary(MethodResolveTurn, SectServiceServer.ResolveTurn),
		unary(MethodAssign, SectServiceServer.Assign),
		unary(MethodUnassign, SectServiceServer.Unassign),
		unary(MethodAutoAssign, SectServiceServer.AutoAssign),
		unary(MethodBuild, SectServiceServer.Build),
		unary(MethodUsePill, SectServiceServer.UsePill),
		unary(MethodCraftPill, SectServiceServer.CraftPill),
		unary(MethodInherit, SectServiceServer.Inherit),
		unary(MethodAttemptTribulation, SectServiceServer.AttemptTribulation),
		unary(MethodListDisciples, SectServiceServer.ListDisciples),
		unary(MethodListOutcomes, SectServiceServer.ListOutcomes),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sect/v1/sect.proto",
}

// RegisterSectServiceServer registers srv on s.
func RegisterSectServiceServer(s grpc.ServiceRegistrar, srv SectServiceServer) {
	s.RegisterService(&SectService_ServiceDesc, srv)
}

// Client calls SectService over a connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a client over cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req.
func (c *Client) Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
