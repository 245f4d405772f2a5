// Package transport defines the LinkTransport boundary: the single
// abstraction core/* uses to move bytes between peers. A concrete QUIC
// implementation lives outside this module; core/* only ever depends on
// this interface.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// StreamType tags the logical channel an outbound/inbound message belongs
// to. These byte values are wire-visible (carried alongside payloads by a
// LinkTransport implementation) and must never be renumbered.
type StreamType byte

const (
	StreamAudio        StreamType = 0x20
	StreamVideo        StreamType = 0x21
	StreamScreen       StreamType = 0x22
	StreamRtcpFeedback StreamType = 0x23
	StreamData         StreamType = 0x24
)

func (t StreamType) String() string {
	switch t {
	case StreamAudio:
		return "audio"
	case StreamVideo:
		return "video"
	case StreamScreen:
		return "screen"
	case StreamRtcpFeedback:
		return "rtcp_feedback"
	case StreamData:
		return "data"
	default:
		return fmt.Sprintf("stream_type(0x%02x)", byte(t))
	}
}

// ParseStreamType converts a wire byte to a StreamType. It is exhaustive:
// any byte outside the five known tags reports ok=false, there is no
// wildcard stream type.
func ParseStreamType(b byte) (StreamType, bool) {
	switch StreamType(b) {
	case StreamAudio, StreamVideo, StreamScreen, StreamRtcpFeedback, StreamData:
		return StreamType(b), true
	default:
		return 0, false
	}
}

// StreamPriority is the scheduling class derived from a StreamType.
// StreamPriority is always computed from StreamType — it is never stored
// or set independently.
type StreamPriority int

const (
	PriorityHigh StreamPriority = iota
	PriorityMedium
	PriorityLow
)

func (p StreamPriority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// PriorityFor is the sole source of truth mapping a StreamType to its
// StreamPriority: Audio and RtcpFeedback are High, Video is Medium, Screen
// and Data are Low.
func PriorityFor(t StreamType) StreamPriority {
	switch t {
	case StreamAudio, StreamRtcpFeedback:
		return PriorityHigh
	case StreamVideo:
		return PriorityMedium
	case StreamScreen, StreamData:
		return PriorityLow
	default:
		return PriorityLow
	}
}

// Errors returned by a LinkTransport implementation. Kind-stable so
// callers can branch with errors.Is.
var (
	ErrNotConnected     = errors.New("transport: not connected")
	ErrPeerNotFound     = errors.New("transport: peer not found")
	ErrSendFailed       = errors.New("transport: send failed")
	ErrReceiveFailed    = errors.New("transport: receive failed")
	ErrInvalidStreamType = errors.New("transport: invalid stream type")
)

// IoError wraps an underlying I/O failure while preserving its cause for
// errors.Is/errors.As.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string { return fmt.Sprintf("transport: io error during %s: %v", e.Op, e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

// PeerConnection describes a connected remote peer as observed by the
// transport layer.
type PeerConnection struct {
	PeerID     string
	RemoteAddr net.Addr
}

// LinkTransport is the boundary between core/* and whatever QUIC (or other)
// implementation actually moves bytes. One message in, one message out per
// Send/Receive call; the StreamType tag is preserved end to end.
//
// Ordering: messages on the same (peer, StreamType) pair arrive in the
// order they were sent (FIFO). There is no ordering guarantee across
// different StreamType values, nor across different peers.
type LinkTransport interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
	LocalAddr() (net.Addr, error)

	Connect(ctx context.Context, addr net.Addr) (*PeerConnection, error)

	// Accept long-polls for an inbound connection. A nil PeerConnection
	// with a nil error means "no connection arrived before ctx was done
	// or the transport quiesced" — it is not itself an error condition.
	Accept(ctx context.Context) (*PeerConnection, error)

	Send(ctx context.Context, peer string, st StreamType, payload []byte) error
	Receive(ctx context.Context) (peer string, st StreamType, payload []byte, err error)
}

// DefaultPeerCapable is an optional extension a LinkTransport may
// implement to support a "default peer" slot, letting callers use
// SendDefault without naming a peer explicitly.
type DefaultPeerCapable interface {
	DefaultPeer() (string, error)
	SetDefaultPeer(peer string)
}

// SendDefault sends to the transport's configured default peer, if the
// transport supports one (via DefaultPeerCapable). Implementations that
// don't support a default peer slot return ErrNotConnected, matching the
// base behavior an un-overridden default-peer accessor would have.
func SendDefault(ctx context.Context, lt LinkTransport, st StreamType, payload []byte) error {
	dpc, ok := lt.(DefaultPeerCapable)
	if !ok {
		return ErrNotConnected
	}
	peer, err := dpc.DefaultPeer()
	if err != nil {
		return err
	}
	return lt.Send(ctx, peer, st, payload)
}
