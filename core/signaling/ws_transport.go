package signaling

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/saorsa-labs/saorsa-webrtc-go/internal/logging"
)

// sendBufferSize mirrors the teacher's per-client outbound buffer
// (websocket.go's WebsocketClient.send channel).
const sendBufferSize = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsPeer struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	// evictOnce guards send's close against the two independent paths
	// that can decide to evict a peer (a full-buffer SendMessage and
	// readPump's own teardown), so the channel is never closed twice.
	evictOnce sync.Once
}

// evict closes p.send exactly once, letting writePump's range loop exit.
func (p *wsPeer) evict() {
	p.evictOnce.Do(func() { close(p.send) })
}

type inboundEnvelope struct {
	peer string
	msg  Message
}

// WSHub is a gorilla/websocket-backed signaling.Transport: every connected
// peer gets a registered *wsPeer with its own read/write pump goroutine,
// the same shape as the teacher's Hub/WebsocketClient pair, generalized
// from "rooms of broadcast clients" to "named signaling peers exchanging
// point-to-point Messages."
type WSHub struct {
	mu    sync.Mutex
	peers map[string]*wsPeer

	inbound chan inboundEnvelope
}

// NewWSHub creates an empty hub. Call HandleUpgrade to wire an HTTP mux
// route that accepts inbound connections.
func NewWSHub() *WSHub {
	return &WSHub{
		peers:   make(map[string]*wsPeer),
		inbound: make(chan inboundEnvelope, sendBufferSize),
	}
}

// HandleUpgrade registers a websocket upgrade endpoint on mux. The
// connecting peer must identify itself via a "peer" query parameter,
// analogous to the teacher's "room" query parameter in websocketHandler.
func (h *WSHub) HandleUpgrade(mux *http.ServeMux, path string) {
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		peerID := r.URL.Query().Get("peer")
		if peerID == "" {
			http.Error(w, "missing peer query parameter", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.L().Warnw("signaling: websocket upgrade failed", "err", err)
			return
		}
		h.registerPeer(peerID, conn)
	})
}

func (h *WSHub) registerPeer(peerID string, conn *websocket.Conn) {
	p := &wsPeer{id: peerID, conn: conn, send: make(chan []byte, sendBufferSize)}
	h.mu.Lock()
	h.peers[peerID] = p
	h.mu.Unlock()

	go h.writePump(p)
	go h.readPump(p)
}

func (h *WSHub) readPump(p *wsPeer) {
	defer func() {
		h.mu.Lock()
		// Only remove the registry entry if it is still this exact
		// connection: a reconnect under the same peer id may already have
		// replaced it with a live *wsPeer by the time this one tears down.
		if h.peers[p.id] == p {
			delete(h.peers, p.id)
		}
		h.mu.Unlock()
		p.evict()
		p.conn.Close()
	}()
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			logging.L().Debugw("signaling: websocket read ended", "peer", p.id, "err", err)
			return
		}
		if len(data) > MaxMessageBytes {
			logging.L().Warnw("signaling: dropping oversized frame", "peer", p.id, "size", len(data))
			continue
		}
		if _, ok := PeekKind(data); !ok {
			logging.L().Warnw("signaling: dropping frame with no recognizable type field", "peer", p.id)
			continue
		}
		var raw Message
		if err := json.Unmarshal(data, &raw); err != nil {
			logging.L().Warnw("signaling: dropping malformed message", "peer", p.id, "err", err)
			continue
		}
		if err := Validate(raw); err != nil {
			logging.L().Warnw("signaling: dropping message that failed validation", "peer", p.id, "err", err)
			continue
		}
		h.inbound <- inboundEnvelope{peer: p.id, msg: raw}
	}
}

func (h *WSHub) writePump(p *wsPeer) {
	defer p.conn.Close()
	for data := range p.send {
		if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logging.L().Debugw("signaling: websocket write failed", "peer", p.id, "err", err)
			return
		}
	}
}

// SendMessage looks up peer's live connection and enqueues msg on its send
// buffer; a peer whose buffer is full is evicted rather than let the
// sender block, matching the teacher's Hub.Broadcast backpressure policy.
func (h *WSHub) SendMessage(ctx context.Context, peer string, msg Message) error {
	if err := Validate(msg); err != nil {
		return err
	}
	data, err := Marshal(msg)
	if err != nil {
		return err
	}
	h.mu.Lock()
	p, ok := h.peers[peer]
	h.mu.Unlock()
	if !ok {
		return ErrPeerNotConnected
	}
	select {
	case p.send <- data:
		return nil
	default:
		h.mu.Lock()
		if h.peers[peer] == p {
			delete(h.peers, peer)
		}
		h.mu.Unlock()
		p.evict()
		logging.L().Warnw("signaling: peer send buffer full, evicting", "peer", peer)
		return ErrPeerNotConnected
	}
}

// ReceiveMessage blocks until a message arrives from any connected peer or
// ctx is done.
func (h *WSHub) ReceiveMessage(ctx context.Context) (string, Message, error) {
	select {
	case env := <-h.inbound:
		return env.peer, env.msg, nil
	case <-ctx.Done():
		return "", Message{}, ctx.Err()
	}
}

// DiscoverPeerEndpoint always returns (nil, nil): a websocket peer is
// already connected by the time it is registered, so there is no separate
// address-discovery step. This matches transport.rs's own
// discover_peer_endpoint stub for the same reason — discovery is handled
// upstream of the signaling transport, not by it.
func (h *WSHub) DiscoverPeerEndpoint(ctx context.Context, peer string) (*net.UDPAddr, error) {
	return nil, nil
}

var _ Transport = (*WSHub)(nil)
