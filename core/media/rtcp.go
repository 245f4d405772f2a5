package media

import (
	"context"

	"github.com/pion/rtcp"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/transport"
)

// SendPLI requests a keyframe from the remote encoder by serializing a
// PictureLossIndication and sending it on the RtcpFeedback stream, the
// same feedback mechanism the teacher's sfu.go uses in
// relayRTCPToPublisher/requestKeyframePLI to recover from a dropped frame.
func (t *Transport) SendPLI(ctx context.Context, mediaSSRC uint32) error {
	pli := &rtcp.PictureLossIndication{MediaSSRC: mediaSSRC}
	data, err := pli.Marshal()
	if err != nil {
		return err
	}
	packet, err := NewRtpPacket(206, 0, 0, mediaSSRC, data, transport.StreamRtcpFeedback)
	if err != nil {
		return err
	}
	return t.SendRtp(ctx, packet)
}

// DecodeRtcpPackets parses one or more RTCP packets out of a raw payload,
// for callers that received data on the RtcpFeedback stream and need to
// inspect (e.g.) a NACK's lost sequence numbers.
func DecodeRtcpPackets(payload []byte) ([]rtcp.Packet, error) {
	return rtcp.Unmarshal(payload)
}
