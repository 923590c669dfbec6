// Package rpc serves the MediConnect use cases over gRPC. Messages are
// google.protobuf.Struct values carrying the same JSON shapes as HTTP.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "mediconnect.v1.MediConnect"

// MediConnectServer is the server API for the MediConnect service.
type MediConnectServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListOnlineDoctors(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetAvailability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAppointments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteAppointment(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type call func(MediConnectServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, fn call) grpc.MethodDesc {
	full := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(MediConnectServer)
			if ic == nil {
				return fn(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			return ic(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return fn(s, ctx, req.(*structpb.Struct))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MediConnectServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", MediConnectServer.Register),
		unary("Login", MediConnectServer.Login),
		unary("GetProfile", MediConnectServer.GetProfile),
		unary("ListOnlineDoctors", MediConnectServer.ListOnlineDoctors),
		unary("SetAvailability", MediConnectServer.SetAvailability),
		unary("CreateAppointment", MediConnectServer.CreateAppointment),
		unary("GetAppointment", MediConnectServer.GetAppointment),
		unary("ListAppointments", MediConnectServer.ListAppointments),
		unary("UpdateAppointment", MediConnectServer.UpdateAppointment),
		unary("DeleteAppointment", MediConnectServer.DeleteAppointment),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mediconnect/v1/mediconnect.proto",
}

func RegisterMediConnectServer(s grpc.ServiceRegistrar, srv MediConnectServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Client calls MediConnect methods by name.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
