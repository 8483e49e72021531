// Package rpc declares the shoplist.Backend gRPC service shared by the server
// and the client. Every request and response is a google.protobuf.Struct, so
// the service is described by hand instead of generated from a .proto file.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "shoplist.Backend"

// Method names of the service.
const (
	MethodPing         = "Ping"
	MethodSignUp       = "SignUp"
	MethodSignIn       = "SignIn"
	MethodRefreshToken = "RefreshToken"
	MethodSignOut      = "SignOut"
	MethodGetUser      = "GetUser"
	MethodSelect       = "Select"
	MethodInsert       = "Insert"
	MethodUpdate       = "Update"
	MethodDelete       = "Delete"
	MethodExportList   = "ExportList"
)

// FullMethod returns the gRPC path of a method, e.g. "/shoplist.Backend/Select".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// BackendServer is the server-side contract of the service.
type BackendServer interface {
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignUp(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RefreshToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignOut(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Select(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Insert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Update(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExportList(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(BackendServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BackendServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BackendServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes shoplist.Backend for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BackendServer)(nil),
	Methods: []grpc.MethodDesc{
		method(MethodPing, BackendServer.Ping),
		method(MethodSignUp, BackendServer.SignUp),
		method(MethodSignIn, BackendServer.SignIn),
		method(MethodRefreshToken, BackendServer.RefreshToken),
		method(MethodSignOut, BackendServer.SignOut),
		method(MethodGetUser, BackendServer.GetUser),
		method(MethodSelect, BackendServer.Select),
		method(MethodInsert, BackendServer.Insert),
		method(MethodUpdate, BackendServer.Update),
		method(MethodDelete, BackendServer.Delete),
		method(MethodExportList, BackendServer.ExportList),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shoplist/backend",
}

// RegisterBackendServer registers srv on s.
func RegisterBackendServer(s grpc.ServiceRegistrar, srv BackendServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// BackendClient invokes shoplist.Backend methods over a client connection.
type BackendClient struct {
	cc grpc.ClientConnInterface
}

func NewBackendClient(cc grpc.ClientConnInterface) *BackendClient {
	return &BackendClient{cc: cc}
}

// Call invokes method with in and returns the decoded response.
func (c *BackendClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
