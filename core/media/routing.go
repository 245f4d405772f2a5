package media

import "github.com/saorsa-labs/saorsa-webrtc-go/core/transport"

// rtcpPTLow..rtcpPTHigh is the SR/RR/SDES/BYE/APP/RTPFB/PSFB/XR range.
const (
	rtcpPTLow  = 200
	rtcpPTHigh = 211
)

// isAudioPayloadType reports the static audio payload types plus the
// dynamic iLBC assignment (97), checked before video so the PT=97 overlap
// between audio and video candidate ranges resolves to Audio.
func isAudioPayloadType(pt uint8) bool {
	switch pt {
	case 0, 1, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 25, 97:
		return true
	default:
		return false
	}
}

func isVideoPayloadType(pt uint8) bool {
	switch pt {
	case 26, 32, 33, 34, 96, 97, 98, 99, 100, 101, 102, 103, 104, 105:
		return true
	default:
		return false
	}
}

func isRtcpPayloadType(pt uint8) bool {
	return pt >= rtcpPTLow && pt <= rtcpPTHigh
}

// RouteByPayloadType maps an RTP/RTCP payload type to the StreamType it
// should be dispatched on. Audio membership is checked before video so the
// PT=97 overlap resolves to Audio; anything matching neither static range
// is dynamic and defaults to Video (a conservative guess absent SDP).
func RouteByPayloadType(pt uint8) transport.StreamType {
	switch {
	case isRtcpPayloadType(pt):
		return transport.StreamRtcpFeedback
	case isAudioPayloadType(pt):
		return transport.StreamAudio
	case isVideoPayloadType(pt):
		return transport.StreamVideo
	default:
		return transport.StreamVideo
	}
}

// RouteRawPacket classifies a raw wire packet the way a receiver would
// before it even knows the payload type: RTCP is identified by the second
// byte being >= 200 (the RTCP packet-type byte), checked before masking
// off the RTP marker bit. An empty payload routes to Data.
func RouteRawPacket(payload []byte) transport.StreamType {
	if len(payload) == 0 {
		return transport.StreamData
	}
	if len(payload) < 2 {
		return transport.StreamVideo
	}
	if payload[1] >= rtcpPTLow {
		return transport.StreamRtcpFeedback
	}
	pt := payload[1] & 0x7f
	return RouteByPayloadType(pt)
}
