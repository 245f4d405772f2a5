package ctrlplane

import (
	"context"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/call"
	"github.com/saorsa-labs/saorsa-webrtc-go/core/service"
)

// Server adapts a service.Service into a ControlPlaneServer, the
// control-plane analogue of servo/server.go's server{pca, movers, servos}
// wrapping a pca9685.ServoGroup: one small struct standing between the
// gRPC dispatch table and the thing it actually controls.
type Server struct {
	svc *service.Service[call.StringIdentity]
}

// NewServer wraps svc for gRPC control-plane access.
func NewServer(svc *service.Service[call.StringIdentity]) *Server {
	return &Server{svc: svc}
}

func (s *Server) InitiateCall(ctx context.Context, req *InitiateCallRequest) (*InitiateCallReply, error) {
	constraints := call.MediaConstraints{Audio: req.Audio, Video: req.Video, ScreenShare: req.ScreenShare}
	id, err := s.svc.InitiateCallToPeer(ctx, call.StringIdentity(req.Peer), constraints)
	if err != nil {
		return &InitiateCallReply{Err: err.Error()}, nil
	}
	return &InitiateCallReply{CallID: id.String()}, nil
}

func (s *Server) AcceptCall(ctx context.Context, req *AcceptCallRequest) (*OkReply, error) {
	id, err := call.ParseID(req.CallID)
	if err != nil {
		return &OkReply{Ok: false, Err: err.Error()}, nil
	}
	if err := s.svc.AcceptCall(ctx, id); err != nil {
		return &OkReply{Ok: false, Err: err.Error()}, nil
	}
	return &OkReply{Ok: true}, nil
}

func (s *Server) RejectCall(ctx context.Context, req *RejectCallRequest) (*OkReply, error) {
	id, err := call.ParseID(req.CallID)
	if err != nil {
		return &OkReply{Ok: false, Err: err.Error()}, nil
	}
	if err := s.svc.RejectCall(ctx, id); err != nil {
		return &OkReply{Ok: false, Err: err.Error()}, nil
	}
	return &OkReply{Ok: true}, nil
}

func (s *Server) EndCall(ctx context.Context, req *EndCallRequest) (*OkReply, error) {
	id, err := call.ParseID(req.CallID)
	if err != nil {
		return &OkReply{Ok: false, Err: err.Error()}, nil
	}
	if err := s.svc.EndCall(ctx, id); err != nil {
		return &OkReply{Ok: false, Err: err.Error()}, nil
	}
	return &OkReply{Ok: true}, nil
}

func (s *Server) GetCallStatus(ctx context.Context, req *StatusRequest) (*StatusReply, error) {
	id, err := call.ParseID(req.CallID)
	if err != nil {
		return &StatusReply{Found: false}, nil
	}
	state, ok := s.svc.GetCallState(id)
	if !ok {
		return &StatusReply{Found: false}, nil
	}
	return &StatusReply{Found: true, State: state.String()}, nil
}

func (s *Server) ListActiveCalls(ctx context.Context, req *ListActiveCallsRequest) (*ListActiveCallsReply, error) {
	// service.Service does not expose a registry enumeration API by design
	// (the registry lock is private to call-lifecycle operations); a
	// sidecar that needs a full listing should track call IDs itself via
	// SubscribeEvents.
	return &ListActiveCallsReply{CallIDs: nil}, nil
}

var _ ControlPlaneServer = (*Server)(nil)
