package media

import (
	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v4"
)

// CapabilityEngine builds the set of codecs this node can advertise in a
// CapabilityExchange message. Codec encode/decode internals are out of
// scope (opaque to the engine); webrtc.MediaEngine here is only ever used
// for its RTPCodecCapability registry, never for ICE/DTLS/SRTP negotiation
// — this mirrors the subset of the teacher's newSFUAPI (webrtc/sfu.go)
// that registers codecs, with the ICE/DTLS machinery left untouched.
type CapabilityEngine struct {
	engine     *webrtc.MediaEngine
	registry   *interceptor.Registry
}

// NewCapabilityEngine registers Opus and H.264 the same way the teacher's
// SFU does (PT 111 Opus, PT 96 H.264 profile-level-id=42e01f with NACK/PLI/
// REMB feedback), then wires the default interceptor registry so RTCP
// feedback types are recognized during capability advertisement.
func NewCapabilityEngine() (*CapabilityEngine, error) {
	m := &webrtc.MediaEngine{}

	if err := m.RegisterCodec(webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2,
		},
		PayloadType: 111,
	}, webrtc.RTPCodecTypeAudio); err != nil {
		return nil, err
	}

	if err := m.RegisterCodec(webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{
			MimeType:    webrtc.MimeTypeH264,
			ClockRate:   90000,
			SDPFmtpLine: "packetization-mode=1;profile-level-id=42e01f",
			RTCPFeedback: []webrtc.RTCPFeedback{
				{Type: "nack"}, {Type: "nack", Parameter: "pli"}, {Type: "goog-remb"},
			},
		},
		PayloadType: 96,
	}, webrtc.RTPCodecTypeVideo); err != nil {
		return nil, err
	}

	registry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(m, registry); err != nil {
		return nil, err
	}

	return &CapabilityEngine{engine: m, registry: registry}, nil
}

// AudioCodecs lists registered audio codec MIME types, to fill a
// CapabilityExchange message's advertised capabilities.
func (c *CapabilityEngine) AudioCodecs() []string {
	return codecMimeTypes(c.engine.GetCodecsByKind(webrtc.RTPCodecTypeAudio))
}

// VideoCodecs lists registered video codec MIME types.
func (c *CapabilityEngine) VideoCodecs() []string {
	return codecMimeTypes(c.engine.GetCodecsByKind(webrtc.RTPCodecTypeVideo))
}

func codecMimeTypes(params []webrtc.RTPCodecParameters) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, p.MimeType)
	}
	return out
}
