package media

import (
	"context"
	"errors"
	"testing"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/transport"
)

func pipedTransports(t *testing.T) (*Transport, *Transport) {
	t.Helper()
	a := transport.NewMemoryTransport("a")
	b := transport.NewMemoryTransport("b")
	transport.Pipe(a, b)
	ctx := context.Background()
	if err := a.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := b.Start(ctx); err != nil {
		t.Fatal(err)
	}

	ta := New(a)
	tb := New(b)
	if err := ta.Connect(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := tb.Connect(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	return ta, tb
}

func TestStateTransitions(t *testing.T) {
	tr := New(transport.NewMemoryTransport("x"))
	if tr.State() != Disconnected {
		t.Fatalf("initial state = %v, want Disconnected", tr.State())
	}
	if err := tr.Connect(context.Background(), "peer"); err != nil {
		t.Fatal(err)
	}
	if tr.State() != Connected {
		t.Fatalf("state = %v, want Connected", tr.State())
	}
	// idempotent on Connected
	if err := tr.Connect(context.Background(), "peer"); err != nil {
		t.Fatalf("re-connect on Connected should be idempotent: %v", err)
	}
	if err := tr.Disconnect(context.Background()); err != nil {
		t.Fatal(err)
	}
	if tr.State() != Disconnected {
		t.Fatalf("state = %v, want Disconnected", tr.State())
	}
}

func TestInvalidStateTransitionRejected(t *testing.T) {
	tr := New(transport.NewMemoryTransport("x"))
	// Disconnected -> Connected directly is not in the table.
	err := tr.setState(Connected)
	if err == nil {
		t.Fatal("expected error")
	}
	var target *ErrInvalidStateTransition
	if !errors.As(err, &target) {
		t.Fatalf("unexpected error type: %v", err)
	}
}

func TestOpenAllStreamsOrderAndPriority(t *testing.T) {
	tr := New(transport.NewMemoryTransport("x"))
	if err := tr.Connect(context.Background(), "peer"); err != nil {
		t.Fatal(err)
	}
	if err := tr.OpenAllStreams(); err != nil {
		t.Fatal(err)
	}
	if !tr.AllStreamsOpen() {
		t.Fatal("expected all streams open")
	}
	want := map[transport.StreamType]transport.StreamPriority{
		transport.StreamAudio:        transport.PriorityHigh,
		transport.StreamRtcpFeedback: transport.PriorityHigh,
		transport.StreamVideo:        transport.PriorityMedium,
		transport.StreamScreen:       transport.PriorityLow,
		transport.StreamData:         transport.PriorityLow,
	}
	for st, pr := range want {
		if got := tr.PriorityFor(st); got != pr {
			t.Fatalf("priority(%v) = %v, want %v", st, got, pr)
		}
	}
}

func TestReopenNonexistentStreamFails(t *testing.T) {
	tr := New(transport.NewMemoryTransport("x"))
	if err := tr.Connect(context.Background(), "peer"); err != nil {
		t.Fatal(err)
	}
	if err := tr.ReopenStream(transport.StreamAudio); err == nil {
		t.Fatal("expected error reopening a stream that was never opened")
	}
}

func TestSendRecvRtpRoundTrip(t *testing.T) {
	ta, tb := pipedTransports(t)
	ctx := context.Background()

	p, err := NewRtpPacket(0, 42, 12345, 0xDEADBEEF, []byte("hello"), transport.StreamAudio)
	if err != nil {
		t.Fatal(err)
	}
	if err := ta.SendRtp(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, err := tb.RecvRtp(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.SequenceNumber != p.SequenceNumber || got.Timestamp != p.Timestamp || got.Ssrc != p.Ssrc {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", got, p)
	}
	if string(got.Payload) != "hello" {
		t.Fatalf("payload mismatch: %q", got.Payload)
	}
	stats := tb.Stats()
	if stats.PacketsReceived != 1 {
		t.Fatalf("PacketsReceived = %d, want 1", stats.PacketsReceived)
	}
}

func TestRtpPacketBoundaries(t *testing.T) {
	maxPayload := make([]byte, MaxRtpPayloadBytes)
	p, err := NewRtpPacket(96, 0, 0, 0, maxPayload, transport.StreamVideo)
	if err != nil {
		t.Fatalf("1188-byte payload should be accepted: %v", err)
	}
	bytes, err := p.ToBytes()
	if err != nil {
		t.Fatal(err)
	}
	if len(bytes) != MaxRtpPacketBytes {
		t.Fatalf("serialized size = %d, want %d", len(bytes), MaxRtpPacketBytes)
	}

	overPayload := make([]byte, MaxRtpPayloadBytes+1)
	if _, err := NewRtpPacket(96, 0, 0, 0, overPayload, transport.StreamVideo); err == nil {
		t.Fatal("1189-byte payload should be rejected")
	}
}

func TestRtpPacketFromBytesRoundTrip(t *testing.T) {
	p, err := NewRtpPacket(111, 7, 999, 0xAB, []byte{1, 2, 3, 4}, transport.StreamAudio)
	if err != nil {
		t.Fatal(err)
	}
	p.Marker = true
	data, err := p.ToBytes()
	if err != nil {
		t.Fatal(err)
	}
	got, err := RtpPacketFromBytes(data, transport.StreamAudio)
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != 2 || !got.Marker || got.PayloadType != 111 || got.SequenceNumber != 7 ||
		got.Timestamp != 999 || got.Ssrc != 0xAB || string(got.Payload) != "\x01\x02\x03\x04" {
		t.Fatalf("mismatch after roundtrip: %+v", got)
	}
}

func TestRtpPacketFromBytesRejectsOutOfBounds(t *testing.T) {
	if _, err := RtpPacketFromBytes(nil, transport.StreamAudio); err == nil {
		t.Fatal("expected error for empty data")
	}
	big := make([]byte, MaxRtpPacketBytes+1)
	if _, err := RtpPacketFromBytes(big, transport.StreamAudio); err == nil {
		t.Fatal("expected error for oversized data")
	}
}

func TestRouteByPayloadType(t *testing.T) {
	cases := []struct {
		pt   uint8
		want transport.StreamType
	}{
		{0, transport.StreamAudio},   // PCMU
		{97, transport.StreamAudio},  // ambiguous PT, audio wins per spec ordering
		{26, transport.StreamVideo},  // Motion JPEG
		{111, transport.StreamVideo}, // unknown dynamic PT, conservative default
		{200, transport.StreamRtcpFeedback},
		{211, transport.StreamRtcpFeedback},
	}
	for _, c := range cases {
		if got := RouteByPayloadType(c.pt); got != c.want {
			t.Fatalf("RouteByPayloadType(%d) = %v, want %v", c.pt, got, c.want)
		}
	}
}

func TestRouteRawPacket(t *testing.T) {
	if got := RouteRawPacket(nil); got != transport.StreamData {
		t.Fatalf("empty payload routed to %v, want Data", got)
	}
	rtcp := []byte{0x80, 0xC8, 0x00, 0x01}
	if got := RouteRawPacket(rtcp); got != transport.StreamRtcpFeedback {
		t.Fatalf("RTCP SR packet routed to %v, want RtcpFeedback", got)
	}
	audio := []byte{0x80, 0x00, 0x00, 0x01}
	if got := RouteRawPacket(audio); got != transport.StreamAudio {
		t.Fatalf("PT=0 packet routed to %v, want Audio", got)
	}
	video := []byte{0x80, 0x1A, 0x00, 0x01}
	if got := RouteRawPacket(video); got != transport.StreamVideo {
		t.Fatalf("PT=26 packet routed to %v, want Video", got)
	}
}

func TestNewVideoResolutionRejectsInvalidDimensions(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
		wantErr       bool
	}{
		{"zero width", 0, 720, true},
		{"zero height", 1280, 0, true},
		{"width over max", MaxVideoDimension + 1, 720, true},
		{"height over max", 1280, MaxVideoDimension + 1, true},
		{"at max is accepted", MaxVideoDimension, MaxVideoDimension, false},
		{"ordinary resolution accepted", 1280, 720, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := NewVideoResolution(c.width, c.height)
			if c.wantErr {
				if err == nil {
					t.Fatalf("NewVideoResolution(%d, %d) = nil error, want ErrInvalidDimensions", c.width, c.height)
				}
				if !errors.Is(err, ErrInvalidDimensions) {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewVideoResolution(%d, %d) unexpected error: %v", c.width, c.height, err)
			}
			if res.Width != c.width || res.Height != c.height {
				t.Fatalf("resolution = %+v, want %dx%d", res, c.width, c.height)
			}
		})
	}
}

func TestOpenStreamAppliesAdaptationSettings(t *testing.T) {
	tr := New(transport.NewMemoryTransport("x"))
	if err := tr.Connect(context.Background(), "peer"); err != nil {
		t.Fatal(err)
	}

	min, err := NewVideoResolution(320, 240)
	if err != nil {
		t.Fatal(err)
	}
	max, err := NewVideoResolution(1920, 1080)
	if err != nil {
		t.Fatal(err)
	}
	settings := AdaptationSettings{MinResolution: min, MaxResolution: max, MaxBitrateKbps: 2500}
	tr.SetAdaptationSettings(settings)

	if err := tr.OpenStream(transport.StreamVideo); err != nil {
		t.Fatal(err)
	}
	h, err := tr.EnsureStreamOpen(transport.StreamVideo)
	if err != nil {
		t.Fatal(err)
	}
	if h.Adaptation == nil || h.Adaptation.MaxBitrateKbps != 2500 || h.Adaptation.MaxResolution != max {
		t.Fatalf("video stream handle did not carry adaptation settings: %+v", h.Adaptation)
	}

	// The audio stream is unaffected by video adaptation settings.
	if err := tr.OpenStream(transport.StreamAudio); err != nil {
		t.Fatal(err)
	}
	audioHandle, err := tr.EnsureStreamOpen(transport.StreamAudio)
	if err != nil {
		t.Fatal(err)
	}
	if audioHandle.Adaptation != nil {
		t.Fatalf("expected audio stream handle to have no adaptation settings, got %+v", audioHandle.Adaptation)
	}
}

func TestDispatcherAntiStarvation(t *testing.T) {
	tr := New(transport.NewMemoryTransport("solo"))
	// Loop back to itself for the purposes of exercising sendNow.
	link := tr.link.(*transport.MemoryTransport)
	transport.Pipe(link, link)
	if err := link.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := tr.Connect(context.Background(), "solo"); err != nil {
		t.Fatal(err)
	}

	d := tr.dispatcher
	d.mu.Lock()
	for i := 0; i < antiStarvationRatio*2; i++ {
		p, _ := NewRtpPacket(0, uint16(i), 0, 0, nil, transport.StreamAudio)
		d.high = append(d.high, &queuedPacket{ctx: context.Background(), packet: p, done: make(chan error, 1)})
	}
	lowPacket, _ := NewRtpPacket(0, 0, 0, 0, nil, transport.StreamData)
	lowQP := &queuedPacket{ctx: context.Background(), packet: lowPacket, done: make(chan error, 1)}
	d.low = append(d.low, lowQP)
	d.mu.Unlock()

	d.drain()

	if len(lowQP.done) == 0 {
		t.Fatal("low-priority packet starved indefinitely")
	}

	// Send order on the wire: antiStarvationRatio High packets, then the
	// queued Low packet, before the remaining High packets.
	for i := 0; i <= antiStarvationRatio; i++ {
		_, st, _, err := link.Receive(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		want := transport.StreamAudio
		if i == antiStarvationRatio {
			want = transport.StreamData
		}
		if st != want {
			t.Fatalf("send #%d went out on %v, want %v", i, st, want)
		}
	}
}
