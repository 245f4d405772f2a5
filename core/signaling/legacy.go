package signaling

import "github.com/tidwall/gjson"

// PeekKind extracts the "type" field from a raw inbound frame without
// paying for a full json.Unmarshal into Message, letting a transport drop
// or route an unrecognized/malformed frame before the strongly-typed
// decode. This matters most on the legacy SDP/ICE path, where payloads
// (full session descriptions, long candidate strings) are the largest
// frames this protocol carries.
func PeekKind(data []byte) (Kind, bool) {
	result := gjson.GetBytes(data, "type")
	if !result.Exists() || result.Type != gjson.String {
		return "", false
	}
	return Kind(result.String()), true
}

// PeekSessionID extracts "session_id" the same cheap way, so a hub can
// make early routing decisions (e.g. "which call does this belong to")
// before validating or fully decoding the rest of the message.
func PeekSessionID(data []byte) (string, bool) {
	result := gjson.GetBytes(data, "session_id")
	if !result.Exists() || result.Type != gjson.String {
		return "", false
	}
	return result.String(), true
}

// LegacySDPFields are the subset of an offer/answer/ice_candidate message
// a legacy WebRTC signaling bridge cares about, extracted directly from
// the wire bytes. Used when bridging to a peer that only understands the
// old SDP/ICE dance rather than QUIC-native capability exchange.
type LegacySDPFields struct {
	SDP           string
	Candidate     string
	SDPMid        string
	SDPMLineIndex int64
}

// ExtractLegacyFields pulls the legacy SDP/ICE fields out of a raw frame
// without constructing a full Message, for callers that only need to
// forward the wire-compat payload onward (e.g. a bridge process relaying
// to a browser's RTCPeerConnection).
func ExtractLegacyFields(data []byte) LegacySDPFields {
	parsed := gjson.ParseBytes(data)
	return LegacySDPFields{
		SDP:           parsed.Get("sdp").String(),
		Candidate:     parsed.Get("candidate").String(),
		SDPMid:        parsed.Get("sdp_mid").String(),
		SDPMLineIndex: parsed.Get("sdp_mline_index").Int(),
	}
}
