// Package signaling implements the QUIC-native signaling protocol: wire
// encode/decode, rate limiting, error backoff, and validation, sitting
// above a LinkTransport-agnostic SignalingTransport.
package signaling

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// Size limits enforced on every inbound message (spec §6).
const (
	MaxMessageBytes = 64 * 1024
	MaxSessionIDLen = 256
	MaxSDPLen       = 32 * 1024
)

// ErrValidation is the sentinel wrapped by every rejected-message error.
var ErrValidation = errors.New("signaling: message failed validation")

// ErrPeerNotConnected is returned by a Transport when asked to send to a
// peer with no live connection.
var ErrPeerNotConnected = errors.New("signaling: peer not connected")

// Kind discriminates SignalingMessage variants; it is also the literal
// wire value of the "type" JSON field (lower_snake_case).
type Kind string

const (
	KindCapabilityExchange Kind = "capability_exchange"
	KindConnectionConfirm  Kind = "connection_confirm"
	KindConnectionReady    Kind = "connection_ready"
	KindOffer              Kind = "offer"
	KindAnswer             Kind = "answer"
	KindIceCandidate       Kind = "ice_candidate"
	KindIceComplete        Kind = "ice_complete"
	KindBye                Kind = "bye"
)

// Message is the tagged union of every signaling wire message. Only the
// fields relevant to Kind are populated; every variant carries a non-empty
// SessionID.
type Message struct {
	Kind      Kind   `json:"type"`
	SessionID string `json:"session_id"`

	// capability_exchange / connection_confirm
	Audio            bool     `json:"audio,omitempty"`
	Video            bool     `json:"video,omitempty"`
	DataChannel      bool     `json:"data_channel,omitempty"`
	MaxBandwidthKbps uint32   `json:"max_bandwidth_kbps,omitempty"`
	QuicEndpoint     string   `json:"quic_endpoint,omitempty"`
	AudioCodecs      []string `json:"audio_codecs,omitempty"`
	VideoCodecs      []string `json:"video_codecs,omitempty"`

	// offer / answer (legacy wire-compat)
	SDP string `json:"sdp,omitempty"`

	// ice_candidate (legacy wire-compat)
	Candidate     string `json:"candidate,omitempty"`
	SDPMid        string `json:"sdp_mid,omitempty"`
	SDPMLineIndex *uint16 `json:"sdp_mline_index,omitempty"`

	// bye
	Reason string `json:"reason,omitempty"`
}

// IsQuicNative reports whether this message belongs to the QUIC-native
// capability-exchange path (as opposed to the legacy SDP/ICE path).
func (m Message) IsQuicNative() bool {
	switch m.Kind {
	case KindCapabilityExchange, KindConnectionConfirm, KindConnectionReady:
		return true
	default:
		return false
	}
}

// IsLegacyWebRTC reports whether this message belongs to the legacy
// SDP/ICE wire-compat path.
func (m Message) IsLegacyWebRTC() bool {
	switch m.Kind {
	case KindOffer, KindAnswer, KindIceCandidate, KindIceComplete:
		return true
	default:
		return false
	}
}

// Marshal serializes a Message to its JSON wire form.
func Marshal(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal parses and validates a Message, enforcing the size limits on
// the whole message, the session ID, and any SDP/candidate string.
func Unmarshal(data []byte) (Message, error) {
	if len(data) > MaxMessageBytes {
		return Message{}, fmt.Errorf("%w: message size %d exceeds %d bytes", ErrValidation, len(data), MaxMessageBytes)
	}
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("signaling: decode failed: %w", err)
	}
	if err := Validate(m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Validate enforces the non-empty-session-id and size-limit invariants
// regardless of how a Message was constructed.
func Validate(m Message) error {
	if m.SessionID == "" {
		return fmt.Errorf("%w: session_id must not be empty", ErrValidation)
	}
	if len(m.SessionID) > MaxSessionIDLen {
		return fmt.Errorf("%w: session_id length %d exceeds %d", ErrValidation, len(m.SessionID), MaxSessionIDLen)
	}
	if len(m.SDP) > MaxSDPLen {
		return fmt.Errorf("%w: sdp length %d exceeds %d", ErrValidation, len(m.SDP), MaxSDPLen)
	}
	if len(m.Candidate) > MaxSDPLen {
		return fmt.Errorf("%w: candidate length %d exceeds %d", ErrValidation, len(m.Candidate), MaxSDPLen)
	}
	return nil
}

// ParseQuicEndpoint parses the optional quic_endpoint field as a UDP
// address, returning nil if it was not set.
func (m Message) ParseQuicEndpoint() (*net.UDPAddr, error) {
	if m.QuicEndpoint == "" {
		return nil, nil
	}
	return net.ResolveUDPAddr("udp", m.QuicEndpoint)
}
