package call

import (
	"context"
	"errors"
	"testing"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/transport"
)

func newTestLink() transport.LinkTransport {
	return transport.NewMemoryTransport("test-link")
}

func TestInitiateCallCreatesMediaTransport(t *testing.T) {
	m := NewManager[StringIdentity](DefaultManagerConfig())
	id, err := m.InitiateCall(context.Background(), StringIdentity("bob"), AudioVideo(), newTestLink())
	if err != nil {
		t.Fatal(err)
	}
	state, ok := m.GetCallState(id)
	if !ok || state != StateCalling {
		t.Fatalf("state = %v, ok = %v, want Calling", state, ok)
	}
	if !m.HasMediaTransport(id) {
		t.Fatal("expected call to own a MediaTransport")
	}
}

func TestAcceptCall(t *testing.T) {
	m := NewManager[StringIdentity](DefaultManagerConfig())
	id, err := m.InitiateCall(context.Background(), StringIdentity("bob"), AudioOnly(), newTestLink())
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AcceptCall(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	state, _ := m.GetCallState(id)
	if state != StateConnected {
		t.Fatalf("state = %v, want Connected", state)
	}
}

func TestAcceptCallWrongStateRejected(t *testing.T) {
	m := NewManager[StringIdentity](DefaultManagerConfig())
	id, _ := m.InitiateCall(context.Background(), StringIdentity("bob"), AudioOnly(), newTestLink())
	if err := m.AcceptCall(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	// Already Connected: accepting again must be rejected, state unchanged.
	err := m.AcceptCall(context.Background(), id)
	if err == nil {
		t.Fatal("expected error accepting an already-connected call")
	}
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("unexpected error type: %v", err)
	}
	state, _ := m.GetCallState(id)
	if state != StateConnected {
		t.Fatalf("state changed after rejected transition: %v", state)
	}
}

func TestRejectCall(t *testing.T) {
	m := NewManager[StringIdentity](DefaultManagerConfig())
	id, _ := m.InitiateCall(context.Background(), StringIdentity("bob"), AudioOnly(), newTestLink())
	if err := m.RejectCall(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	state, _ := m.GetCallState(id)
	if state != StateFailed {
		t.Fatalf("state = %v, want Failed", state)
	}
}

func TestEndCallMidRing(t *testing.T) {
	m := NewManager[StringIdentity](DefaultManagerConfig())
	events, cancel := m.SubscribeEvents()
	defer cancel()

	id, _ := m.InitiateCall(context.Background(), StringIdentity("bob"), AudioOnly(), newTestLink())
	// Drain the CallInitiated event.
	<-events

	if err := m.EndCall(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.GetCallState(id); ok {
		t.Fatal("expected call to be removed from the registry")
	}

	select {
	case ev := <-events:
		t.Fatalf("expected no CallEnded event for a call ended mid-ring, got %v", ev.Kind)
	default:
	}

	if err := m.EndCall(context.Background(), id); err == nil {
		t.Fatal("second end_call should return CallNotFound")
	} else {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("unexpected error type: %v", err)
		}
	}
}

func TestEndConnectedCallEmitsCallEnded(t *testing.T) {
	m := NewManager[StringIdentity](DefaultManagerConfig())
	id, _ := m.InitiateCall(context.Background(), StringIdentity("bob"), AudioOnly(), newTestLink())
	if err := m.AcceptCall(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	events, cancel := m.SubscribeEvents()
	defer cancel()

	if err := m.EndCall(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	ev := <-events
	if ev.Kind != EventCallEnded {
		t.Fatalf("event kind = %v, want CallEnded", ev.Kind)
	}
}

func TestConcurrentCallCapWithMaxOne(t *testing.T) {
	m := NewManager[StringIdentity](ManagerConfig{MaxConcurrentCalls: 1})
	if _, err := m.InitiateCall(context.Background(), StringIdentity("bob"), AudioOnly(), newTestLink()); err != nil {
		t.Fatal(err)
	}
	if _, err := m.InitiateCall(context.Background(), StringIdentity("carol"), AudioOnly(), newTestLink()); err == nil {
		t.Fatal("expected ConfigError for second concurrent call with max=1")
	} else if !errors.Is(err, ErrConfigError) {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", m.Count())
	}
}

func TestCallNotFoundForAllOperations(t *testing.T) {
	m := NewManager[StringIdentity](DefaultManagerConfig())
	fake := NewID()

	ops := map[string]func() error{
		"accept": func() error { return m.AcceptCall(context.Background(), fake) },
		"reject": func() error { return m.RejectCall(context.Background(), fake) },
		"end":    func() error { return m.EndCall(context.Background(), fake) },
		"fail":   func() error { return m.FailCall(context.Background(), fake, nil) },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrCallNotFound) {
			t.Fatalf("%s: expected ErrCallNotFound, got %v", name, err)
		}
	}
}

func TestValidTransitionTable(t *testing.T) {
	cases := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateCalling, true},
		{StateIdle, StateConnecting, true},
		{StateIdle, StateConnected, false},
		{StateCalling, StateConnected, true},
		{StateCalling, StateFailed, true},
		{StateConnecting, StateConnected, true},
		{StateConnecting, StateFailed, true},
		{StateConnected, StateEnding, true},
		{StateConnected, StateFailed, true},
		{StateConnected, StateCalling, false},
		{StateEnding, StateConnected, false},
		{StateFailed, StateCalling, false},
	}
	for _, c := range cases {
		if got := ValidTransition(c.from, c.to); got != c.want {
			t.Fatalf("ValidTransition(%v, %v) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCallIDUniqueness(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 10000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate call id generated: %s", id)
		}
		seen[id] = true
	}
}
