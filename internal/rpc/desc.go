package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "profile.v1.ProfileEngine"

// Method names.
const (
	MethodSubmitAnswer  = "SubmitAnswer"
	MethodSubmitEvent   = "SubmitEvent"
	MethodGetTraits     = "GetTraits"
	MethodGetLayers     = "GetLayers"
	MethodSetValidation = "SetValidation"
	MethodTeamClimate   = "TeamClimate"
)

// #region server-interface
// ProfileEngineServer is the server API. Every message is a google.protobuf.Struct
// carrying the JSON shape of the matching request or response type.
type ProfileEngineServer interface {
	SubmitAnswer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTraits(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetLayers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetValidation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TeamClimate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// #endregion server-interface

// #region service-desc
type unaryCall func(ProfileEngineServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ServiceDesc describes ProfileEngine for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProfileEngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodSubmitAnswer, Handler: unary(MethodSubmitAnswer, ProfileEngineServer.SubmitAnswer)},
		{MethodName: MethodSubmitEvent, Handler: unary(MethodSubmitEvent, ProfileEngineServer.SubmitEvent)},
		{MethodName: MethodGetTraits, Handler: unary(MethodGetTraits, ProfileEngineServer.GetTraits)},
		{MethodName: MethodGetLayers, Handler: unary(MethodGetLayers, ProfileEngineServer.GetLayers)},
		{MethodName: MethodSetValidation, Handler: unary(MethodSetValidation, ProfileEngineServer.SetValidation)},
		{MethodName: MethodTeamClimate, Handler: unary(MethodTeamClimate, ProfileEngineServer.TeamClimate)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "profile/v1/profile_engine",
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv ProfileEngineServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary(method string, call unaryCall) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ProfileEngineServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ProfileEngineServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// #endregion service-desc
