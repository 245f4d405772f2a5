package media

import (
	"encoding/binary"
	"fmt"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/transport"
)

// MaxRtpPayloadBytes is the largest payload NewRtpPacket accepts; a
// 12-byte logical header plus this payload is exactly MaxRtpPacketBytes.
const MaxRtpPayloadBytes = 1188

// MaxRtpPacketBytes bounds every serialized RtpPacket.
const MaxRtpPacketBytes = 1200

const rtpHeaderBytes = 12

// RtpPacket is the core engine's framing unit for media carried over a
// MediaTransport stream. It mirrors the fields of a real RTP header
// (version/padding/extension/csrc_count/marker/payload_type/sequence_number
// /timestamp/ssrc) plus a StreamType tag used for routing and priority
// lookups; StreamType is logical bookkeeping, not part of the serialized
// header (the MediaTransport stream a packet arrives on already carries
// that information).
type RtpPacket struct {
	Version       uint8
	Padding       bool
	Extension     bool
	CsrcCount     uint8
	Marker        bool
	PayloadType   uint8
	SequenceNumber uint16
	Timestamp     uint32
	Ssrc          uint32
	Payload       []byte
	StreamType    transport.StreamType
}

// NewRtpPacket builds a packet with version=2 and the padding/extension/csrc
// defaults a freshly produced RTP packet has, rejecting payloads that would
// push the serialized size past MaxRtpPacketBytes.
func NewRtpPacket(payloadType uint8, seq uint16, ts uint32, ssrc uint32, payload []byte, st transport.StreamType) (*RtpPacket, error) {
	if len(payload) > MaxRtpPayloadBytes {
		return nil, fmt.Errorf("%w: payload size %d exceeds maximum %d", ErrFramingError, len(payload), MaxRtpPayloadBytes)
	}
	return &RtpPacket{
		Version:        2,
		PayloadType:    payloadType & 0x7f,
		SequenceNumber: seq,
		Timestamp:      ts,
		Ssrc:           ssrc,
		Payload:        payload,
		StreamType:     st,
	}, nil
}

// Size returns the serialized size in bytes (12-byte header + payload).
func (p *RtpPacket) Size() int {
	return rtpHeaderBytes + len(p.Payload)
}

// ToBytes serializes the packet into its wire form.
func (p *RtpPacket) ToBytes() ([]byte, error) {
	if len(p.Payload) > MaxRtpPayloadBytes {
		return nil, fmt.Errorf("%w: payload size %d exceeds maximum %d", ErrFramingError, len(p.Payload), MaxRtpPayloadBytes)
	}
	buf := make([]byte, rtpHeaderBytes+len(p.Payload))

	b0 := (p.Version&0x3)<<6 | boolBit(p.Padding, 5) | boolBit(p.Extension, 4) | (p.CsrcCount & 0x0f)
	b1 := boolBit(p.Marker, 7) | (p.PayloadType & 0x7f)
	buf[0] = b0
	buf[1] = b1
	binary.BigEndian.PutUint16(buf[2:4], p.SequenceNumber)
	binary.BigEndian.PutUint32(buf[4:8], p.Timestamp)
	binary.BigEndian.PutUint32(buf[8:12], p.Ssrc)
	copy(buf[rtpHeaderBytes:], p.Payload)
	return buf, nil
}

// RtpPacketFromBytes deserializes a packet previously produced by ToBytes.
// st is the StreamType of the MediaTransport stream the bytes were read
// from, since that tag travels out-of-band rather than in the header.
func RtpPacketFromBytes(data []byte, st transport.StreamType) (*RtpPacket, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: cannot deserialize empty data", ErrFramingError)
	}
	if len(data) > MaxRtpPacketBytes {
		return nil, fmt.Errorf("%w: data size %d exceeds maximum packet size %d", ErrFramingError, len(data), MaxRtpPacketBytes)
	}
	if len(data) < rtpHeaderBytes {
		return nil, fmt.Errorf("%w: data size %d shorter than header size %d", ErrFramingError, len(data), rtpHeaderBytes)
	}

	b0, b1 := data[0], data[1]
	p := &RtpPacket{
		Version:        (b0 >> 6) & 0x3,
		Padding:        b0&(1<<5) != 0,
		Extension:      b0&(1<<4) != 0,
		CsrcCount:      b0 & 0x0f,
		Marker:         b1&(1<<7) != 0,
		PayloadType:    b1 & 0x7f,
		SequenceNumber: binary.BigEndian.Uint16(data[2:4]),
		Timestamp:      binary.BigEndian.Uint32(data[4:8]),
		Ssrc:           binary.BigEndian.Uint32(data[8:12]),
		StreamType:     st,
	}
	if len(data) > rtpHeaderBytes {
		p.Payload = append([]byte(nil), data[rtpHeaderBytes:]...)
	}
	return p, nil
}

func boolBit(v bool, shift uint) uint8 {
	if v {
		return 1 << shift
	}
	return 0
}
