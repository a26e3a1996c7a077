package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "timeboard.v1.Timeline"

// Method names.
const (
	MethodOpenSession    = "OpenSession"
	MethodListEvents     = "ListEvents"
	MethodCreateEvent    = "CreateEvent"
	MethodUpdateEvent    = "UpdateEvent"
	MethodDeleteEvent    = "DeleteEvent"
	MethodListCategories = "ListCategories"
)

// TimelineServer is the server API of timeboard.v1.Timeline. Requests and
// responses are google.protobuf.Struct documents.
type TimelineServer interface {
	OpenSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEvents(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCategories(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// FullMethod returns "/timeboard.v1.Timeline/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type unaryCall func(TimelineServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(method string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TimelineServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TimelineServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes timeboard.v1.Timeline for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TimelineServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodOpenSession, TimelineServer.OpenSession),
		unary(MethodListEvents, TimelineServer.ListEvents),
		unary(MethodCreateEvent, TimelineServer.CreateEvent),
		unary(MethodUpdateEvent, TimelineServer.UpdateEvent),
		unary(MethodDeleteEvent, TimelineServer.DeleteEvent),
		unary(MethodListCategories, TimelineServer.ListCategories),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "timeboard/v1/timeline.proto",
}
