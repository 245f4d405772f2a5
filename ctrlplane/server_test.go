package ctrlplane

import (
	"context"
	"net"
	"testing"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/call"
	"github.com/saorsa-labs/saorsa-webrtc-go/core/service"
	"github.com/saorsa-labs/saorsa-webrtc-go/core/signaling"
	"github.com/saorsa-labs/saorsa-webrtc-go/core/transport"
)

// nullSignalingTransport discards sends and never yields an inbound
// message; enough for tests that only exercise Server's delegation to
// service.Service, not end-to-end signaling.
type nullSignalingTransport struct{}

func (nullSignalingTransport) SendMessage(ctx context.Context, peer string, msg signaling.Message) error {
	return nil
}

func (nullSignalingTransport) ReceiveMessage(ctx context.Context) (string, signaling.Message, error) {
	<-ctx.Done()
	return "", signaling.Message{}, ctx.Err()
}

func (nullSignalingTransport) DiscoverPeerEndpoint(ctx context.Context, peer string) (*net.UDPAddr, error) {
	return nil, nil
}

func newTestService(t *testing.T) *service.Service[call.StringIdentity] {
	t.Helper()
	return service.New[call.StringIdentity](service.DefaultConfig(), nullSignalingTransport{}, func(s string) call.StringIdentity {
		return call.StringIdentity(s)
	})
}

func TestInitiateCallViaControlPlane(t *testing.T) {
	svc := newTestService(t)
	link := transport.NewMemoryTransport("a")
	svc.RegisterPeerLink("bob", link)

	srv := NewServer(svc)
	reply, err := srv.InitiateCall(context.Background(), &InitiateCallRequest{Peer: "bob", Audio: true})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Err != "" || reply.CallID == "" {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	status, err := srv.GetCallStatus(context.Background(), &StatusRequest{CallID: reply.CallID})
	if err != nil {
		t.Fatal(err)
	}
	if !status.Found || status.State != "calling" {
		t.Fatalf("status = %+v", status)
	}
}

func TestInitiateCallWithoutRegisteredLinkFails(t *testing.T) {
	svc := newTestService(t)
	srv := NewServer(svc)
	reply, err := srv.InitiateCall(context.Background(), &InitiateCallRequest{Peer: "nobody"})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Err == "" {
		t.Fatal("expected an error for a peer with no registered link")
	}
}

func TestGetCallStatusNotFound(t *testing.T) {
	svc := newTestService(t)
	srv := NewServer(svc)
	reply, err := srv.GetCallStatus(context.Background(), &StatusRequest{CallID: call.NewID().String()})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Found {
		t.Fatal("expected Found=false for unknown call id")
	}
}

func TestEndCallViaControlPlane(t *testing.T) {
	svc := newTestService(t)
	link := transport.NewMemoryTransport("a")
	svc.RegisterPeerLink("bob", link)

	srv := NewServer(svc)
	initReply, err := srv.InitiateCall(context.Background(), &InitiateCallRequest{Peer: "bob", Audio: true})
	if err != nil {
		t.Fatal(err)
	}

	reply, err := srv.EndCall(context.Background(), &EndCallRequest{CallID: initReply.CallID})
	if err != nil {
		t.Fatal(err)
	}
	if !reply.Ok {
		t.Fatalf("expected Ok=true, got %+v", reply)
	}
	status, _ := srv.GetCallStatus(context.Background(), &StatusRequest{CallID: initReply.CallID})
	if status.Found {
		t.Fatal("expected call to be removed after EndCall")
	}
}
