package ctrlplane

import (
	"context"

	"google.golang.org/grpc"
)

// ControlPlaneClient is the client-side stub protoc-gen-go-grpc would
// normally emit alongside ControlPlaneServer.
type ControlPlaneClient interface {
	InitiateCall(ctx context.Context, in *InitiateCallRequest, opts ...grpc.CallOption) (*InitiateCallReply, error)
	AcceptCall(ctx context.Context, in *AcceptCallRequest, opts ...grpc.CallOption) (*OkReply, error)
	RejectCall(ctx context.Context, in *RejectCallRequest, opts ...grpc.CallOption) (*OkReply, error)
	EndCall(ctx context.Context, in *EndCallRequest, opts ...grpc.CallOption) (*OkReply, error)
	GetCallStatus(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusReply, error)
	ListActiveCalls(ctx context.Context, in *ListActiveCallsRequest, opts ...grpc.CallOption) (*ListActiveCallsReply, error)
}

type controlPlaneClient struct {
	cc grpc.ClientConnInterface
}

// NewControlPlaneClient wraps a dialed connection for calling a remote
// ctrlplane sidecar.
func NewControlPlaneClient(cc grpc.ClientConnInterface) ControlPlaneClient {
	return &controlPlaneClient{cc: cc}
}

func (c *controlPlaneClient) InitiateCall(ctx context.Context, in *InitiateCallRequest, opts ...grpc.CallOption) (*InitiateCallReply, error) {
	out := new(InitiateCallReply)
	if err := c.cc.Invoke(ctx, "/ctrlplane.ControlPlane/InitiateCall", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlPlaneClient) AcceptCall(ctx context.Context, in *AcceptCallRequest, opts ...grpc.CallOption) (*OkReply, error) {
	out := new(OkReply)
	if err := c.cc.Invoke(ctx, "/ctrlplane.ControlPlane/AcceptCall", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlPlaneClient) RejectCall(ctx context.Context, in *RejectCallRequest, opts ...grpc.CallOption) (*OkReply, error) {
	out := new(OkReply)
	if err := c.cc.Invoke(ctx, "/ctrlplane.ControlPlane/RejectCall", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlPlaneClient) EndCall(ctx context.Context, in *EndCallRequest, opts ...grpc.CallOption) (*OkReply, error) {
	out := new(OkReply)
	if err := c.cc.Invoke(ctx, "/ctrlplane.ControlPlane/EndCall", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlPlaneClient) GetCallStatus(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusReply, error) {
	out := new(StatusReply)
	if err := c.cc.Invoke(ctx, "/ctrlplane.ControlPlane/GetCallStatus", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *controlPlaneClient) ListActiveCalls(ctx context.Context, in *ListActiveCallsRequest, opts ...grpc.CallOption) (*ListActiveCallsReply, error) {
	out := new(ListActiveCallsReply)
	if err := c.cc.Invoke(ctx, "/ctrlplane.ControlPlane/ListActiveCalls", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
