// Package call implements the call lifecycle FSM and CallManager: the sole
// authority over Call state, mapping CallID to Call under lock.
package call

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/media"
)

// ID is a 128-bit random call identifier, printed in UUID text form. Two
// calls never share an ID with overwhelming probability (1 - 2^-120).
type ID uuid.UUID

// NewID generates a fresh random ID.
func NewID() ID {
	return ID(uuid.New())
}

func (c ID) String() string {
	return uuid.UUID(c).String()
}

// ParseID parses a UUID text form back into an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("call: invalid call id %q: %w", s, err)
	}
	return ID(u), nil
}

// Identity is implemented by any type the engine can use to name a remote
// peer. It is intentionally minimal and pluggable — the engine never
// assumes anything about identity beyond "hashable, stringable,
// comparable" so a collaborator can swap in a DHT-derived identity, a
// four-word address, or a bare string.
type Identity interface {
	comparable
	fmt.Stringer
}

// StringIdentity is the simplest Identity implementation: a peer named by
// an opaque string, suitable for tests and simple deployments.
type StringIdentity string

func (s StringIdentity) String() string { return string(s) }

// MediaConstraints describes which media kinds a call carries.
type MediaConstraints struct {
	Audio       bool
	Video       bool
	ScreenShare bool
}

// AudioOnly is the preset for a voice-only call.
func AudioOnly() MediaConstraints { return MediaConstraints{Audio: true} }

// AudioVideo is the preset for a standard audio+video call.
func AudioVideo() MediaConstraints { return MediaConstraints{Audio: true, Video: true} }

// ScreenShareOnly is the preset for a screen-share-only call.
func ScreenShareOnly() MediaConstraints { return MediaConstraints{ScreenShare: true} }

// State is the call lifecycle FSM state.
type State int

const (
	StateIdle State = iota
	StateCalling
	StateConnecting
	StateConnected
	StateEnding
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCalling:
		return "calling"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateEnding:
		return "ending"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ValidTransition implements the exact call-state transition table:
// Idle -> Calling | Connecting; Calling -> Connected | Failed;
// Connecting -> Connected | Failed; Connected -> Ending | Failed;
// Ending and Failed are terminal (the call is removed from the registry,
// not transitioned further). Anything else is InvalidState.
func ValidTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateCalling || to == StateConnecting
	case StateCalling:
		return to == StateConnected || to == StateFailed
	case StateConnecting:
		return to == StateConnected || to == StateFailed
	case StateConnected:
		return to == StateEnding || to == StateFailed
	default:
		return false
	}
}

// ConsentState is the per-participant recording consent state (supplemental
// bookkeeping; no recording pipeline is implemented).
type ConsentState int

const (
	ConsentPending ConsentState = iota
	ConsentGranted
	ConsentDenied
)

// Architecture describes the multi-party topology a collaborator has
// chosen for a call. The engine never mixes media streams according to
// this tag — SFU/MCU mixing logic is external, matching the teacher's own
// split between its mesh (webrtc/client.go) and SFU (webrtc/sfu.go) modes.
type Architecture int

const (
	ArchitecturePointToPoint Architecture = iota
	ArchitectureMesh
	ArchitectureSFU
)

// QualityMetrics is a point-in-time snapshot of observed call quality
// (supplemental to the spec's core data model; drives the QualityChanged
// event).
type QualityMetrics struct {
	PacketLossPercent float64
	JitterMs          float64
	RoundTripMs        float64
}

// Call owns one call's state: its remote peer, lifecycle state, media
// constraints, and a MediaTransport handle created along with the call. Calls are
// created by Manager.InitiateCall or on receipt of a capability exchange,
// and are mutated only by Manager under its registry lock.
type Call[I Identity] struct {
	ID           ID
	RemotePeer   I
	State        State
	Constraints  MediaConstraints
	MediaTransport *media.Transport
	Tracks       []string
	Architecture Architecture
	Consent      map[string]ConsentState
	LastQuality  *QualityMetrics

	// NegotiatedCodecs is the remote peer's advertised codec MIME types
	// from its CapabilityExchange, recorded for diagnostics; the engine
	// never uses it to alter negotiation (codec internals are out of
	// scope).
	NegotiatedCodecs []string
}

// HasMediaTransport reports whether the call owns a MediaTransport handle.
func (c *Call[I]) HasMediaTransport() bool {
	return c.MediaTransport != nil
}

// Every open StreamHandle's owning Call is Connecting or Connected; Manager
// enforces this by disconnecting a Call's MediaTransport (and every stream
// it holds) the moment the call leaves those two states (see
// Manager.RejectCall, Manager.FailCall and Manager.EndCall).
