// Package service is the top-level orchestrator: it owns a signaling
// Handler and a call.Manager, routes inbound signaling messages to the
// right call by session ID, and republishes call lifecycle events on a
// single subscriber-facing event bus. It is the Go analogue of
// WebRtcService in the original Rust core.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/call"
	"github.com/saorsa-labs/saorsa-webrtc-go/core/media"
	"github.com/saorsa-labs/saorsa-webrtc-go/core/signaling"
	"github.com/saorsa-labs/saorsa-webrtc-go/core/transport"
	"github.com/saorsa-labs/saorsa-webrtc-go/internal/logging"
)

// Config bundles the knobs a Service needs at construction, mirroring
// WebRtcConfig's {quic_config, default_constraints, call_config} shape.
type Config struct {
	CallConfig         call.ManagerConfig
	DefaultConstraints call.MediaConstraints
	NativeQuic         signaling.NativeQuicConfig
}

// DefaultConfig mirrors WebRtcConfig::default().
func DefaultConfig() Config {
	return Config{
		CallConfig:         call.DefaultManagerConfig(),
		DefaultConstraints: call.AudioVideo(),
	}
}

// Service is the single entry point a collaborator's application code
// talks to: it never exposes Manager or Handler internals directly,
// matching the Rust original's split between service.rs (the public face)
// and call.rs/signaling.rs (implementation details).
//
// Ident is the peer-identity type, same as call.Manager's type parameter.
// Because Go generics cannot construct an arbitrary Ident from the wire's
// plain peer string, callers supply identityFromPeer once at construction.
type Service[Ident call.Identity] struct {
	cfg     Config
	manager *call.Manager[Ident]
	sig     *signaling.Handler

	identityFromPeer func(string) Ident

	// codecs advertises this node's supported codecs on outbound
	// CapabilityExchange messages. Nil if the engine could not be built
	// (e.g. no codecs registrable), in which case Audio/VideoCodecs are
	// simply omitted from the wire message.
	codecs *media.CapabilityEngine

	mu       sync.Mutex
	sessions map[string]call.ID                // signaling session_id -> call id
	links    map[string]transport.LinkTransport // peer string -> link a collaborator registered

	cancel context.CancelFunc
}

// New builds a Service around an already-constructed signaling Transport.
// identityFromPeer converts a raw peer string (as carried on the wire) into
// the caller's Ident type.
func New[Ident call.Identity](cfg Config, sigTransport signaling.Transport, identityFromPeer func(string) Ident) *Service[Ident] {
	codecs, err := media.NewCapabilityEngine()
	if err != nil {
		logging.L().Warnw("service: capability engine unavailable, codec lists omitted from capability exchange", "err", err)
		codecs = nil
	}
	return &Service[Ident]{
		cfg:              cfg,
		manager:          call.NewManager[Ident](cfg.CallConfig),
		sig:              signaling.NewHandler(sigTransport),
		identityFromPeer: identityFromPeer,
		codecs:           codecs,
		sessions:         make(map[string]call.ID),
		links:            make(map[string]transport.LinkTransport),
	}
}

// RegisterPeerLink associates a LinkTransport with a peer identity string,
// so that when a CapabilityExchange for that peer arrives the Service can
// hand InitiateCall/RegisterIncomingCall a ready-to-use media link. A real
// deployment does this once per discovered peer, typically right after
// Handler.DiscoverPeerEndpoint resolves an address and a LinkTransport is
// dialed against it.
func (s *Service[Ident]) RegisterPeerLink(peer string, link transport.LinkTransport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[peer] = link
}

// Start launches the background loop that drains inbound signaling
// messages and dispatches them by Kind, the Go equivalent of the command
// registry the teacher wires per message type in registerSignallingCommands.
func (s *Service[Ident]) Start(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.dispatchLoop(ctx)
	logging.L().Infow("service started")
	return nil
}

// Stop halts the dispatch loop. It does not tear down in-flight calls.
func (s *Service[Ident]) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Service[Ident]) dispatchLoop(ctx context.Context) {
	for {
		peer, msg, err := s.sig.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.L().Warnw("service: dropping signaling receive error", "err", err)
			continue
		}
		s.handleMessage(ctx, peer, msg)
	}
}

// handleMessage is the dispatch table, keyed by signaling.Kind exactly the
// way registerSignallingCommands keys its handlers by the "type" field of
// an inbound websocket JSON message.
func (s *Service[Ident]) handleMessage(ctx context.Context, peer string, msg signaling.Message) {
	switch msg.Kind {
	case signaling.KindCapabilityExchange:
		s.handleCapabilityExchange(ctx, peer, msg)
	case signaling.KindConnectionConfirm, signaling.KindConnectionReady:
		// Session already registered by the capability exchange; these
		// carry no additional state transition of their own in this port.
	case signaling.KindBye:
		s.handleBye(ctx, msg)
	default:
		logging.L().Warnw("service: unhandled legacy signaling kind", "kind", string(msg.Kind), "peer", peer)
	}
}

func (s *Service[Ident]) handleCapabilityExchange(ctx context.Context, peer string, msg signaling.Message) {
	s.mu.Lock()
	if _, exists := s.sessions[msg.SessionID]; exists {
		s.mu.Unlock()
		return
	}
	link, ok := s.links[peer]
	s.mu.Unlock()
	if !ok {
		logging.L().Warnw("service: capability exchange from peer with no registered link", "peer", peer)
		return
	}

	constraints := call.MediaConstraints{Audio: msg.Audio, Video: msg.Video}
	ident := s.identityFromPeer(peer)
	id := call.NewID()
	if err := s.manager.RegisterIncomingCall(ctx, id, ident, constraints, link); err != nil {
		logging.L().Warnw("service: failed to register incoming call", "peer", peer, "err", err)
		return
	}
	s.mu.Lock()
	s.sessions[msg.SessionID] = id
	s.mu.Unlock()

	if len(msg.AudioCodecs) > 0 || len(msg.VideoCodecs) > 0 {
		negotiated := make([]string, 0, len(msg.AudioCodecs)+len(msg.VideoCodecs))
		negotiated = append(negotiated, msg.AudioCodecs...)
		negotiated = append(negotiated, msg.VideoCodecs...)
		if err := s.manager.SetNegotiatedCodecs(id, negotiated); err != nil {
			logging.L().Warnw("service: failed to record negotiated codecs", "call_id", id.String(), "err", err)
		}
	}
}

func (s *Service[Ident]) handleBye(ctx context.Context, msg signaling.Message) {
	s.mu.Lock()
	id, ok := s.sessions[msg.SessionID]
	if ok {
		delete(s.sessions, msg.SessionID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := s.manager.EndCall(ctx, id); err != nil {
		logging.L().Warnw("service: end_call on bye failed", "call_id", id.String(), "err", err)
	}
}

// InitiateCall starts an outbound call to callee over link, then sends a
// CapabilityExchange to announce it over signaling.
func (s *Service[Ident]) InitiateCall(ctx context.Context, callee Ident, constraints call.MediaConstraints, link transport.LinkTransport) (call.ID, error) {
	id, err := s.manager.InitiateCall(ctx, callee, constraints, link)
	if err != nil {
		return call.ID{}, err
	}
	sessionID := id.String()
	s.mu.Lock()
	s.sessions[sessionID] = id
	s.links[callee.String()] = link
	s.mu.Unlock()

	msg := signaling.Message{
		Kind:        signaling.KindCapabilityExchange,
		SessionID:   sessionID,
		Audio:       constraints.Audio,
		Video:       constraints.Video,
		DataChannel: true,
	}
	if s.codecs != nil {
		if constraints.Audio {
			msg.AudioCodecs = s.codecs.AudioCodecs()
		}
		if constraints.Video {
			msg.VideoCodecs = s.codecs.VideoCodecs()
		}
	}
	if err := s.sig.Send(ctx, callee.String(), msg); err != nil {
		return id, fmt.Errorf("service: capability exchange send failed: %w", err)
	}
	return id, nil
}

// InitiateCallToPeer is InitiateCall for a peer already registered via
// RegisterPeerLink, for callers (e.g. ctrlplane) that never see a
// LinkTransport value directly.
func (s *Service[Ident]) InitiateCallToPeer(ctx context.Context, callee Ident, constraints call.MediaConstraints) (call.ID, error) {
	s.mu.Lock()
	link, ok := s.links[callee.String()]
	s.mu.Unlock()
	if !ok {
		return call.ID{}, fmt.Errorf("service: no link registered for peer %q", callee.String())
	}
	return s.InitiateCall(ctx, callee, constraints, link)
}

// AcceptCall, RejectCall, EndCall, GetCallState and SubscribeEvents delegate
// straight to the call.Manager; Service's value-add is the signaling
// wiring above, not a reimplementation of call lifecycle rules.

func (s *Service[Ident]) AcceptCall(ctx context.Context, id call.ID) error {
	return s.manager.AcceptCall(ctx, id)
}

func (s *Service[Ident]) RejectCall(ctx context.Context, id call.ID) error {
	return s.manager.RejectCall(ctx, id)
}

func (s *Service[Ident]) EndCall(ctx context.Context, id call.ID) error {
	s.mu.Lock()
	for sid, cid := range s.sessions {
		if cid == id {
			delete(s.sessions, sid)
			break
		}
	}
	s.mu.Unlock()
	return s.manager.EndCall(ctx, id)
}

func (s *Service[Ident]) GetCallState(id call.ID) (call.State, bool) {
	return s.manager.GetCallState(id)
}

func (s *Service[Ident]) SubscribeEvents() (<-chan call.Event[Ident], func()) {
	return s.manager.SubscribeEvents()
}

// GetNegotiatedCodecs returns the remote peer's advertised codec MIME types
// for id, as recorded from its CapabilityExchange.
func (s *Service[Ident]) GetNegotiatedCodecs(id call.ID) ([]string, bool) {
	return s.manager.GetNegotiatedCodecs(id)
}
