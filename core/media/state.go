// Package media implements MediaTransport: the typed, prioritized QUIC
// stream multiplexer sitting between a LinkTransport and RTP producers.
package media

import (
	"errors"
	"fmt"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/transport"
)

// TransportState is the MediaTransport connection lifecycle.
type TransportState int

const (
	Disconnected TransportState = iota
	Connecting
	Connected
	Failed
)

func (s TransportState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrInvalidStateTransition is returned by setState when the requested
// transition is not in the allowed table.
type ErrInvalidStateTransition struct {
	From, To TransportState
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("media: invalid state transition %s -> %s", e.From, e.To)
}

// validTransition implements the exact MediaTransportState transition
// table: Disconnected -> Connecting, Connecting -> Connected | Disconnected,
// Connected -> Disconnected, any -> Failed, Failed -> Disconnected, and
// same-state is always a no-op success.
func validTransition(from, to TransportState) bool {
	if from == to {
		return true
	}
	if to == Failed {
		return true
	}
	switch from {
	case Disconnected:
		return to == Connecting
	case Connecting:
		return to == Connected || to == Disconnected
	case Connected:
		return to == Disconnected
	case Failed:
		return to == Disconnected
	default:
		return false
	}
}

var (
	ErrNotConnected  = transport.ErrNotConnected
	ErrFramingError  = errors.New("media: framing error")
	ErrStreamError   = errors.New("media: stream error")
	ErrConnectionFailed = errors.New("media: connection failed")
)

// StreamHandle tracks bookkeeping for one (CallID, StreamType) logical
// stream: whether it is open, and byte counters in each direction.
type StreamHandle struct {
	StreamType   transport.StreamType
	IsOpen       bool
	BytesSent    uint64
	BytesReceived uint64

	// Adaptation is the resolution/bitrate bounds in effect when this
	// stream was last opened (video streams only; nil otherwise or if no
	// AdaptationSettings was configured on the owning Transport).
	Adaptation *AdaptationSettings
}

func newStreamHandle(st transport.StreamType) *StreamHandle {
	return &StreamHandle{StreamType: st, IsOpen: true}
}

// TransportStats aggregates counters across all streams of one
// MediaTransport.
type TransportStats struct {
	PacketsSent     uint64
	PacketsReceived uint64
	BytesSent       uint64
	BytesReceived   uint64
	StreamErrors    uint64
}
