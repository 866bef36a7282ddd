package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gophauth.v1.AuthService"

// Method names, as they appear after the service name in a full method.
const (
	MethodPublicKey      = "PublicKey"
	MethodEncrypt        = "Encrypt"
	MethodSignIn         = "SignIn"
	MethodSignOut        = "SignOut"
	MethodInfo           = "Info"
	MethodUpdateInfo     = "UpdateInfo"
	MethodChangePassword = "ChangePassword"
	MethodWithdraw       = "Withdraw"
	MethodRefresh        = "Refresh"
)

// FullMethod returns "/gophauth.v1.AuthService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AuthServiceServer is the server API. Requests and responses are
// google.protobuf.Struct values carrying the same fields as the REST bodies.
type AuthServiceServer interface {
	PublicKey(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Encrypt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignOut(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Info(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateInfo(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChangePassword(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Withdraw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Refresh(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(AuthServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuthServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuthServiceServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc describes AuthService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler(MethodPublicKey, AuthServiceServer.PublicKey),
		unaryHandler(MethodEncrypt, AuthServiceServer.Encrypt),
		unaryHandler(MethodSignIn, AuthServiceServer.SignIn),
		unaryHandler(MethodSignOut, AuthServiceServer.SignOut),
		unaryHandler(MethodInfo, AuthServiceServer.Info),
		unaryHandler(MethodUpdateInfo, AuthServiceServer.UpdateInfo),
		unaryHandler(MethodChangePassword, AuthServiceServer.ChangePassword),
		unaryHandler(MethodWithdraw, AuthServiceServer.Withdraw),
		unaryHandler(MethodRefresh, AuthServiceServer.Refresh),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/v1/auth.proto",
}

// Client calls AuthService over any connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with fields as the request struct.
func (c *Client) Call(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
