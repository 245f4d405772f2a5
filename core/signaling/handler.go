package signaling

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/saorsa-labs/saorsa-webrtc-go/internal/logging"
)

// MinMessageInterval is the minimum spacing enforced between successive
// Handler.Receive calls, capping inbound throughput at roughly 100
// messages per second.
const MinMessageInterval = 10 * time.Millisecond

// maxBackoffSteps bounds the error-backoff multiplier.
const maxBackoffSteps = 10

const backoffStep = 100 * time.Millisecond

// Transport is the signaling-layer boundary to whatever actually carries
// signaling bytes — typically a LinkTransport's Data stream, but kept
// separate so a collaborator can plug in any SignalingTransport without
// pulling in the full MediaTransport stack.
type Transport interface {
	SendMessage(ctx context.Context, peer string, msg Message) error
	ReceiveMessage(ctx context.Context) (peer string, msg Message, err error)
	DiscoverPeerEndpoint(ctx context.Context, peer string) (*net.UDPAddr, error)
}

// ConnectionHandleSharer is an optional extension a Transport may
// implement to expose its underlying connection handle, letting
// MediaTransport reuse the same QUIC connection signaling already
// established instead of dialing a second one.
type ConnectionHandleSharer interface {
	ConnectionHandle() (any, bool)
}

// Handler wraps a Transport with the rate limiting, error backoff, and
// validation every inbound signaling message goes through.
type Handler struct {
	transport Transport

	mu           sync.Mutex
	lastReceive  time.Time
	errorCount   int
}

// NewHandler wraps transport with rate-limit/backoff bookkeeping.
func NewHandler(transport Transport) *Handler {
	return &Handler{transport: transport}
}

// Send serializes and sends msg via the wrapped Transport, validating it
// first (rejecting it locally rather than ever putting an invalid message
// on the wire).
func (h *Handler) Send(ctx context.Context, peer string, msg Message) error {
	if err := Validate(msg); err != nil {
		return err
	}
	return h.transport.SendMessage(ctx, peer, msg)
}

// Receive enforces MinMessageInterval spacing between calls and validates
// the received message (an invalid one counts as a receive failure), then
// on success resets the error-backoff counter and on failure sleeps
// min(errorCount, 10)*100ms before returning the original error — the
// backoff delays the caller but never swallows the error.
func (h *Handler) Receive(ctx context.Context) (string, Message, error) {
	h.mu.Lock()
	elapsed := time.Since(h.lastReceive)
	if elapsed < MinMessageInterval && !h.lastReceive.IsZero() {
		wait := MinMessageInterval - elapsed
		h.mu.Unlock()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", Message{}, ctx.Err()
		}
		h.mu.Lock()
	}
	h.lastReceive = time.Now()
	h.mu.Unlock()

	peer, msg, err := h.transport.ReceiveMessage(ctx)
	if err == nil {
		err = Validate(msg)
	}

	h.mu.Lock()
	if err != nil {
		h.errorCount++
		n := h.errorCount
		h.mu.Unlock()

		steps := n
		if steps > maxBackoffSteps {
			steps = maxBackoffSteps
		}
		backoff := time.Duration(steps) * backoffStep
		logging.L().Warnw("signaling receive error, backing off", "consecutive_errors", n, "backoff", backoff.String())
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
		}
		return peer, msg, err
	}
	h.errorCount = 0
	h.mu.Unlock()

	return peer, msg, nil
}

// DiscoverPeerEndpoint is a single-shot, best-effort lookup with no
// caching — every call re-queries the underlying Transport.
func (h *Handler) DiscoverPeerEndpoint(ctx context.Context, peer string) (*net.UDPAddr, error) {
	return h.transport.DiscoverPeerEndpoint(ctx, peer)
}

// ConnectionHandle returns the underlying Transport's shared connection
// handle, if it supports one.
func (h *Handler) ConnectionHandle() (any, bool) {
	if sharer, ok := h.transport.(ConnectionHandleSharer); ok {
		return sharer.ConnectionHandle()
	}
	return nil, false
}

// NativeQuicConfig carries QUIC-native peer-discovery configuration
// through to whatever LinkTransport implementation is in use. DHT-based
// discovery and NAT hole-punching are both out of scope for this engine —
// this struct is pass-through configuration, not an implementation.
type NativeQuicConfig struct {
	DHTDiscovery  bool
	HolePunching  bool
}
