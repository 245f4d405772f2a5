package call

import (
	"context"
	"fmt"
	"sync"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/media"
	"github.com/saorsa-labs/saorsa-webrtc-go/core/transport"
	"github.com/saorsa-labs/saorsa-webrtc-go/internal/logging"
)

// eventBusCapacity is the per-subscriber event buffer size. The spec
// requires a bounded, lag-tolerant broadcast channel of at least 100 slots
// at the call-manager level.
const eventBusCapacity = 100

// ManagerConfig bounds Manager behavior.
type ManagerConfig struct {
	// MaxConcurrentCalls caps the number of calls the registry holds at
	// once; zero means "unset", defaulted to 10.
	MaxConcurrentCalls int
}

// DefaultManagerConfig mirrors the original CallManagerConfig default.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{MaxConcurrentCalls: 10}
}

// Manager is the sole authority over Call state: every state-changing
// operation is a method on Manager, taken under a single write lock that
// covers both the at-most-N-concurrent-calls check and the registry
// mutation, closing the check-then-insert race the original Rust
// implementation had between its read-lock count check and its later
// write-lock insert.
type Manager[I Identity] struct {
	config ManagerConfig

	mu    sync.Mutex
	calls map[ID]*Call[I]

	events *broadcaster[Event[I]]
}

// NewManager creates a Manager with the given config.
func NewManager[I Identity](config ManagerConfig) *Manager[I] {
	if config.MaxConcurrentCalls <= 0 {
		config.MaxConcurrentCalls = DefaultManagerConfig().MaxConcurrentCalls
	}
	return &Manager[I]{
		config: config,
		calls:  make(map[ID]*Call[I]),
		events: newBroadcaster[Event[I]](eventBusCapacity),
	}
}

// Start is a no-op hook kept for symmetry with the teacher's service
// lifecycle methods; a future version may use it to kick off housekeeping
// goroutines (e.g. the Connecting/Connected timeout watchdogs from spec
// §4.4's recommended timeouts).
func (m *Manager[I]) Start(ctx context.Context) error {
	return nil
}

// SubscribeEvents returns a channel of future Manager events and a cancel
// func to stop receiving them.
func (m *Manager[I]) SubscribeEvents() (<-chan Event[I], func()) {
	return m.events.subscribe()
}

// InitiateCall allocates a CallID, reserves a registry slot, builds a
// MediaTransport over link, and connects it to callee. The slot-reservation
// check and the registry insert happen under the same lock acquisition; the
// MediaTransport is connected after that lock is released, so the call is
// already visible to other operations while it connects.
func (m *Manager[I]) InitiateCall(ctx context.Context, callee I, constraints MediaConstraints, link transport.LinkTransport) (ID, error) {
	id := NewID()

	m.mu.Lock()
	if len(m.calls) >= m.config.MaxConcurrentCalls {
		m.mu.Unlock()
		return ID{}, fmt.Errorf("%w: at most %d concurrent calls allowed", ErrConfigError, m.config.MaxConcurrentCalls)
	}
	c := &Call[I]{
		ID:             id,
		RemotePeer:     callee,
		State:          StateCalling,
		Constraints:    constraints,
		MediaTransport: media.New(link),
		Consent:        make(map[string]ConsentState),
	}
	m.calls[id] = c
	m.mu.Unlock()

	if err := c.MediaTransport.Connect(ctx, callee.String()); err != nil {
		logging.L().Warnw("media transport connect failed during initiate", "call_id", id.String(), "err", err)
	}

	logging.L().Infow("call initiated", "call_id", id.String(), "peer", callee.String())
	m.events.publish(Event[I]{Kind: EventCallInitiated, ID: id, Peer: callee})
	return id, nil
}

// RegisterIncomingCall is the callee-side mirror of InitiateCall: on
// receiving a CapabilityExchange, it inserts a Call already in Connecting
// with the caller's advertised constraints.
func (m *Manager[I]) RegisterIncomingCall(ctx context.Context, id ID, caller I, constraints MediaConstraints, link transport.LinkTransport) error {
	m.mu.Lock()
	if len(m.calls) >= m.config.MaxConcurrentCalls {
		m.mu.Unlock()
		return fmt.Errorf("%w: at most %d concurrent calls allowed", ErrConfigError, m.config.MaxConcurrentCalls)
	}
	if _, exists := m.calls[id]; exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: call %s already registered", ErrConfigError, id)
	}
	c := &Call[I]{
		ID:             id,
		RemotePeer:     caller,
		State:          StateConnecting,
		Constraints:    constraints,
		MediaTransport: media.New(link),
		Consent:        make(map[string]ConsentState),
	}
	m.calls[id] = c
	m.mu.Unlock()

	m.events.publish(Event[I]{Kind: EventIncomingCall, ID: id, Peer: caller})
	return nil
}

// AcceptCall transitions Calling|Connecting -> Connected, opens every
// media stream, and emits ConnectionEstablished.
func (m *Manager[I]) AcceptCall(ctx context.Context, id ID) error {
	m.mu.Lock()
	c, ok := m.calls[id]
	if !ok {
		m.mu.Unlock()
		logging.L().Warnw("accept_call: call not found", "call_id", id.String())
		return &NotFoundError{ID: id}
	}
	if !ValidTransition(c.State, StateConnected) {
		from := c.State
		m.mu.Unlock()
		logging.L().Warnw("accept_call: rejected invalid transition", "call_id", id.String(), "from", from.String())
		return &StateError{From: from, To: StateConnected}
	}
	c.State = StateConnected
	peer := c.RemotePeer
	mt := c.MediaTransport
	m.mu.Unlock()

	if mt != nil {
		if err := mt.Connect(ctx, peer.String()); err != nil {
			logging.L().Warnw("accept_call: media transport connect failed", "call_id", id.String(), "err", err)
		}
		if err := mt.OpenAllStreams(); err != nil {
			logging.L().Warnw("accept_call: failed to open streams", "call_id", id.String(), "err", err)
		}
	}

	m.events.publish(Event[I]{Kind: EventConnectionEstablished, ID: id, Peer: peer})
	return nil
}

// RejectCall transitions Calling|Connecting -> Failed and emits
// CallRejected. It does not remove the call from the registry; EndCall
// does that (safe to call from any state, including Failed).
func (m *Manager[I]) RejectCall(ctx context.Context, id ID) error {
	m.mu.Lock()
	c, ok := m.calls[id]
	if !ok {
		m.mu.Unlock()
		logging.L().Warnw("reject_call: call not found", "call_id", id.String())
		return &NotFoundError{ID: id}
	}
	if !ValidTransition(c.State, StateFailed) {
		from := c.State
		m.mu.Unlock()
		return &StateError{From: from, To: StateFailed}
	}
	c.State = StateFailed
	peer := c.RemotePeer
	mt := c.MediaTransport
	m.mu.Unlock()

	if mt != nil {
		if err := mt.Disconnect(ctx); err != nil {
			logging.L().Warnw("reject_call: media transport disconnect error", "call_id", id.String(), "err", err)
		}
	}

	m.events.publish(Event[I]{Kind: EventCallRejected, ID: id, Peer: peer})
	return nil
}

// EndCall is safe in every state. Ending a Connected call emits CallEnded
// after teardown; ending a call in any other state (including one
// already Failed) tears down silently. A non-existent call returns
// ErrCallNotFound without logging — best-effort end is expected to race
// against concurrent teardown.
func (m *Manager[I]) EndCall(ctx context.Context, id ID) error {
	m.mu.Lock()
	c, ok := m.calls[id]
	if !ok {
		m.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	wasConnected := c.State == StateConnected
	peer := c.RemotePeer
	mt := c.MediaTransport
	delete(m.calls, id)
	m.mu.Unlock()

	if mt != nil {
		if err := mt.Disconnect(ctx); err != nil {
			logging.L().Warnw("end_call: media transport disconnect error", "call_id", id.String(), "err", err)
		}
	}

	if wasConnected {
		m.events.publish(Event[I]{Kind: EventCallEnded, ID: id, Peer: peer})
	}
	logging.L().Infow("call ended", "call_id", id.String(), "track_count", len(c.Tracks))
	return nil
}

// FailCall marks a call Failed from any non-terminal state and emits
// ConnectionFailed carrying the triggering error, matching spec §7's
// "transport loss on a Connected call -> Failed with ConnectionFailed
// event carrying the error message."
func (m *Manager[I]) FailCall(ctx context.Context, id ID, cause error) error {
	m.mu.Lock()
	c, ok := m.calls[id]
	if !ok {
		m.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	if !ValidTransition(c.State, StateFailed) {
		from := c.State
		m.mu.Unlock()
		return &StateError{From: from, To: StateFailed}
	}
	c.State = StateFailed
	peer := c.RemotePeer
	mt := c.MediaTransport
	m.mu.Unlock()

	if mt != nil {
		if err := mt.Disconnect(ctx); err != nil {
			logging.L().Warnw("fail_call: media transport disconnect error", "call_id", id.String(), "err", err)
		}
	}

	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	m.events.publish(Event[I]{Kind: EventConnectionFailed, ID: id, Peer: peer, Error: msg})
	return nil
}

// GetCallState returns the call's current state; ok is false once the call
// has been removed (EndCall) or was never created.
func (m *Manager[I]) GetCallState(id ID) (state State, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calls[id]
	if !ok {
		return 0, false
	}
	return c.State, true
}

// GetNegotiatedCodecs returns the remote peer's advertised codec MIME types
// recorded by SetNegotiatedCodecs; ok is false if the call does not exist
// or no CapabilityExchange codec list has been recorded yet.
func (m *Manager[I]) GetNegotiatedCodecs(id ID) (codecs []string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, exists := m.calls[id]
	if !exists || len(c.NegotiatedCodecs) == 0 {
		return nil, false
	}
	return c.NegotiatedCodecs, true
}

// HasMediaTransport reports whether id's call owns a MediaTransport.
func (m *Manager[I]) HasMediaTransport(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calls[id]
	return ok && c.HasMediaTransport()
}

// Count returns the number of live calls in the registry.
func (m *Manager[I]) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// RecordQuality stores the latest QualityMetrics for a call and emits the
// supplemental QualityChanged event.
func (m *Manager[I]) RecordQuality(id ID, metrics QualityMetrics) error {
	m.mu.Lock()
	c, ok := m.calls[id]
	if !ok {
		m.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	c.LastQuality = &metrics
	peer := c.RemotePeer
	m.mu.Unlock()

	m.events.publish(Event[I]{Kind: EventQualityChanged, ID: id, Peer: peer, Quality: &metrics})
	return nil
}

// SetRecordingConsent records a participant's consent decision for a call.
func (m *Manager[I]) SetRecordingConsent(id ID, participant string, state ConsentState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calls[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	c.Consent[participant] = state
	return nil
}

// SetNegotiatedCodecs records the remote peer's advertised codec MIME types
// (from CapabilityExchange.AudioCodecs/VideoCodecs) for diagnostics.
func (m *Manager[I]) SetNegotiatedCodecs(id ID, codecs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calls[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	c.NegotiatedCodecs = codecs
	return nil
}

// SetArchitecture tags a call with the multi-party topology a collaborator
// has chosen (Mesh or SFU); the manager never reads this tag to alter its
// own behavior, it is purely descriptive metadata for the collaborator.
func (m *Manager[I]) SetArchitecture(id ID, arch Architecture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calls[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	c.Architecture = arch
	return nil
}
