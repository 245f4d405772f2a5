package media

import (
	"context"
	"fmt"
	"sync"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/transport"
	"github.com/saorsa-labs/saorsa-webrtc-go/internal/logging"
)

// allStreamTypes is the fixed open order open_all_streams uses.
var allStreamTypes = []transport.StreamType{
	transport.StreamAudio,
	transport.StreamVideo,
	transport.StreamScreen,
	transport.StreamRtcpFeedback,
	transport.StreamData,
}

// Transport is the core engine's MediaTransport: it multiplexes
// audio/video/screen/RTCP/data onto typed streams of an underlying
// LinkTransport, tracks per-stream bookkeeping, and enforces the
// high/medium/low priority discipline on send.
type Transport struct {
	link transport.LinkTransport

	mu    sync.RWMutex
	state TransportState
	peer  string

	streamsMu sync.RWMutex
	streams   map[transport.StreamType]*StreamHandle

	statsMu sync.Mutex
	stats   TransportStats

	adaptationMu sync.Mutex
	adaptation   *AdaptationSettings

	dispatcher *dispatcher
}

// New creates a Transport bound to an underlying LinkTransport.
func New(link transport.LinkTransport) *Transport {
	t := &Transport{
		link:    link,
		state:   Disconnected,
		streams: make(map[transport.StreamType]*StreamHandle),
	}
	t.dispatcher = newDispatcher(t)
	return t
}

func (t *Transport) setState(to TransportState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !validTransition(t.state, to) {
		return &ErrInvalidStateTransition{From: t.state, To: to}
	}
	t.state = to
	return nil
}

// State returns the current connection state.
func (t *Transport) State() TransportState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *Transport) isConnected() bool {
	return t.State() == Connected
}

// Connect moves Disconnected -> Connecting -> Connected, matching the
// original crate's MediaTransportState lifecycle. Calling Connect while already
// Connected is idempotent (same-state transitions always succeed).
func (t *Transport) Connect(ctx context.Context, peer string) error {
	if t.State() == Connected {
		return nil
	}
	if err := t.setState(Connecting); err != nil {
		return err
	}
	t.mu.Lock()
	t.peer = peer
	t.mu.Unlock()
	if err := t.setState(Connected); err != nil {
		return err
	}
	logging.L().Infow("media transport connected", "peer", peer)
	return nil
}

// Disconnect closes every open stream, clears the peer, and returns to
// Disconnected.
func (t *Transport) Disconnect(ctx context.Context) error {
	t.streamsMu.Lock()
	for _, h := range t.streams {
		h.IsOpen = false
	}
	t.streams = make(map[transport.StreamType]*StreamHandle)
	t.streamsMu.Unlock()

	t.mu.Lock()
	t.peer = ""
	t.mu.Unlock()

	return t.setState(Disconnected)
}

// Fail transitions the transport to Failed from any state.
func (t *Transport) Fail(reason string) error {
	err := t.setState(Failed)
	logging.L().Warnw("media transport failed", "reason", reason)
	return err
}

func (t *Transport) getOrCreateStream(st transport.StreamType) (*StreamHandle, error) {
	if !t.isConnected() {
		return nil, ErrNotConnected
	}
	t.streamsMu.Lock()
	defer t.streamsMu.Unlock()
	h, ok := t.streams[st]
	if !ok {
		h = newStreamHandle(st)
		t.streams[st] = h
	}
	return h, nil
}

// SetAdaptationSettings configures the resolution/bitrate bounds applied the
// next time the video stream is opened (OpenStream or OpenAllStreams),
// typically set from a negotiated CapabilityExchange before accepting or
// initiating a call. Adaptation decisions themselves remain the media
// producer's responsibility (codec internals are out of scope); the
// transport only carries and exposes the bounds via StreamHandle.Adaptation.
func (t *Transport) SetAdaptationSettings(settings AdaptationSettings) {
	t.adaptationMu.Lock()
	defer t.adaptationMu.Unlock()
	t.adaptation = &settings
}

// OpenStream opens (creating if needed) the stream for st. Opening the
// video stream attaches the transport's current AdaptationSettings, if any,
// to the resulting StreamHandle.
func (t *Transport) OpenStream(st transport.StreamType) error {
	if !t.isConnected() {
		return ErrNotConnected
	}
	t.streamsMu.Lock()
	defer t.streamsMu.Unlock()
	h, ok := t.streams[st]
	if !ok {
		h = newStreamHandle(st)
		t.streams[st] = h
	}
	h.IsOpen = true
	if st == transport.StreamVideo {
		t.adaptationMu.Lock()
		adaptation := t.adaptation
		t.adaptationMu.Unlock()
		if adaptation != nil {
			h.Adaptation = adaptation
			logging.L().Infow("video stream opened with adaptation bounds",
				"min_resolution", fmt.Sprintf("%dx%d", adaptation.MinResolution.Width, adaptation.MinResolution.Height),
				"max_resolution", fmt.Sprintf("%dx%d", adaptation.MaxResolution.Width, adaptation.MaxResolution.Height),
				"max_bitrate_kbps", adaptation.MaxBitrateKbps)
		}
	}
	return nil
}

// OpenAllStreams opens Audio, Video, Screen, RtcpFeedback, Data in that
// fixed order.
func (t *Transport) OpenAllStreams() error {
	for _, st := range allStreamTypes {
		if err := t.OpenStream(st); err != nil {
			return err
		}
	}
	return nil
}

// CloseStream marks a stream closed; it reports whether the stream existed.
func (t *Transport) CloseStream(st transport.StreamType) bool {
	t.streamsMu.Lock()
	defer t.streamsMu.Unlock()
	h, ok := t.streams[st]
	if !ok {
		return false
	}
	h.IsOpen = false
	return true
}

// ReopenStream reopens a stream that must already exist; unlike OpenStream
// it does not create a missing entry.
func (t *Transport) ReopenStream(st transport.StreamType) error {
	t.streamsMu.Lock()
	defer t.streamsMu.Unlock()
	h, ok := t.streams[st]
	if !ok {
		return fmt.Errorf("%w: stream not found", ErrStreamError)
	}
	h.IsOpen = true
	return nil
}

// EnsureStreamOpen opens the stream if necessary and returns its handle.
func (t *Transport) EnsureStreamOpen(st transport.StreamType) (*StreamHandle, error) {
	if err := t.OpenStream(st); err != nil {
		return nil, err
	}
	return t.getOrCreateStream(st)
}

// AllStreamsOpen reports whether every known stream is open (false if none
// exist yet).
func (t *Transport) AllStreamsOpen() bool {
	t.streamsMu.RLock()
	defer t.streamsMu.RUnlock()
	if len(t.streams) == 0 {
		return false
	}
	for _, h := range t.streams {
		if !h.IsOpen {
			return false
		}
	}
	return true
}

// ActiveStreams returns the StreamTypes currently open.
func (t *Transport) ActiveStreams() []transport.StreamType {
	t.streamsMu.RLock()
	defer t.streamsMu.RUnlock()
	var out []transport.StreamType
	for st, h := range t.streams {
		if h.IsOpen {
			out = append(out, st)
		}
	}
	return out
}

// PriorityFor is a pure lookup, StreamPriority's sole source of truth.
func (t *Transport) PriorityFor(st transport.StreamType) transport.StreamPriority {
	return transport.PriorityFor(st)
}

// Stats returns a copy of the transport-wide counters.
func (t *Transport) Stats() TransportStats {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	return t.stats
}

func (t *Transport) recordSent(st transport.StreamType, n int) {
	t.streamsMu.Lock()
	if h, ok := t.streams[st]; ok {
		h.BytesSent += uint64(n)
	}
	t.streamsMu.Unlock()

	t.statsMu.Lock()
	t.stats.PacketsSent++
	t.stats.BytesSent += uint64(n)
	t.statsMu.Unlock()
}

func (t *Transport) recordReceived(st transport.StreamType, n int) {
	t.streamsMu.Lock()
	if h, ok := t.streams[st]; ok {
		h.BytesReceived += uint64(n)
	}
	t.streamsMu.Unlock()

	t.statsMu.Lock()
	t.stats.PacketsReceived++
	t.stats.BytesReceived += uint64(n)
	t.statsMu.Unlock()
}

func (t *Transport) recordError() {
	t.statsMu.Lock()
	t.stats.StreamErrors++
	t.statsMu.Unlock()
}

// SendRtp serializes and sends packet on its StreamType's underlying
// LinkTransport stream, enqueuing it through the priority dispatcher so
// High-priority traffic (audio, RTCP) is serviced ahead of Medium (video)
// ahead of Low (screen, data).
func (t *Transport) SendRtp(ctx context.Context, packet *RtpPacket) error {
	if !t.isConnected() {
		return ErrNotConnected
	}
	if _, err := t.getOrCreateStream(packet.StreamType); err != nil {
		return err
	}
	return t.dispatcher.enqueue(ctx, packet)
}

func (t *Transport) sendNow(ctx context.Context, packet *RtpPacket) error {
	data, err := packet.ToBytes()
	if err != nil {
		t.recordError()
		return err
	}
	t.mu.RLock()
	peer := t.peer
	t.mu.RUnlock()
	if err := t.link.Send(ctx, peer, packet.StreamType, data); err != nil {
		t.recordError()
		return fmt.Errorf("%w: %v", transport.ErrSendFailed, err)
	}
	t.recordSent(packet.StreamType, len(data))
	return nil
}

// RecvRtp receives one frame (one LinkTransport message) from the
// underlying transport and deserializes it as an RtpPacket, rejecting frames outside [1,1200]
// bytes with FramingError.
func (t *Transport) RecvRtp(ctx context.Context) (*RtpPacket, error) {
	if !t.isConnected() {
		return nil, ErrNotConnected
	}
	_, st, data, err := t.link.Receive(ctx)
	if err != nil {
		t.recordError()
		return nil, fmt.Errorf("%w: %v", transport.ErrReceiveFailed, err)
	}
	if len(data) < 1 || len(data) > MaxRtpPacketBytes {
		t.recordError()
		return nil, fmt.Errorf("%w: frame size %d out of bounds", ErrFramingError, len(data))
	}
	packet, err := RtpPacketFromBytes(data, st)
	if err != nil {
		t.recordError()
		return nil, err
	}
	if _, err := t.getOrCreateStream(st); err != nil {
		return nil, err
	}
	t.recordReceived(st, len(data))
	return packet, nil
}
