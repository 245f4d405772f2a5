package ctrlplane

import (
	"context"

	"google.golang.org/grpc"
)

// ControlPlaneServer is the interface a concrete implementation (Server,
// below) satisfies; split out the way protoc-gen-go-grpc would generate
// it, so a collaborator could substitute a different backend in tests.
type ControlPlaneServer interface {
	InitiateCall(context.Context, *InitiateCallRequest) (*InitiateCallReply, error)
	AcceptCall(context.Context, *AcceptCallRequest) (*OkReply, error)
	RejectCall(context.Context, *RejectCallRequest) (*OkReply, error)
	EndCall(context.Context, *EndCallRequest) (*OkReply, error)
	GetCallStatus(context.Context, *StatusRequest) (*StatusReply, error)
	ListActiveCalls(context.Context, *ListActiveCallsRequest) (*ListActiveCallsReply, error)
}

func unaryHandler[Req, Resp any](method string, call func(ControlPlaneServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ControlPlaneServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/ctrlplane.ControlPlane/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ControlPlaneServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ControlPlane_ServiceDesc is the grpc.ServiceDesc a protoc-gen-go-grpc
// run would normally emit; hand-built here since no .proto toolchain is
// available in this environment (see codec.go).
var ControlPlane_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "ctrlplane.ControlPlane",
	HandlerType: (*ControlPlaneServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "InitiateCall", Handler: unaryHandler("InitiateCall", ControlPlaneServer.InitiateCall)},
		{MethodName: "AcceptCall", Handler: unaryHandler("AcceptCall", ControlPlaneServer.AcceptCall)},
		{MethodName: "RejectCall", Handler: unaryHandler("RejectCall", ControlPlaneServer.RejectCall)},
		{MethodName: "EndCall", Handler: unaryHandler("EndCall", ControlPlaneServer.EndCall)},
		{MethodName: "GetCallStatus", Handler: unaryHandler("GetCallStatus", ControlPlaneServer.GetCallStatus)},
		{MethodName: "ListActiveCalls", Handler: unaryHandler("ListActiveCalls", ControlPlaneServer.ListActiveCalls)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ctrlplane.proto",
}

// RegisterControlPlaneServer wires srv into s the same way generated code
// would call grpc.ServiceRegistrar.RegisterService.
func RegisterControlPlaneServer(s grpc.ServiceRegistrar, srv ControlPlaneServer) {
	s.RegisterService(&ControlPlane_ServiceDesc, srv)
}
