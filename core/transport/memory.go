package transport

import (
	"context"
	"net"
	"sync"
)

// MemoryTransport is an in-process LinkTransport used by tests. It pairs
// with another MemoryTransport via Pipe and preserves per-(peer, StreamType)
// FIFO ordering by delivering every message through a single FIFO inbox
// channel (which also keeps order across stream types).
type MemoryTransport struct {
	id      string
	running bool

	mu    sync.Mutex
	peers map[string]*MemoryTransport

	inbox chan inboundMsg

	defaultPeer string
	hasDefault  bool
}

type inboundMsg struct {
	from string
	st   StreamType
	data []byte
}

// NewMemoryTransport creates an unconnected MemoryTransport identified by id.
func NewMemoryTransport(id string) *MemoryTransport {
	return &MemoryTransport{
		id:    id,
		peers: make(map[string]*MemoryTransport),
		inbox: make(chan inboundMsg, 256),
	}
}

// Pipe wires two MemoryTransports together as reachable peers of one
// another, analogous to a loopback QUIC connection.
func Pipe(a, b *MemoryTransport) {
	a.mu.Lock()
	a.peers[b.id] = b
	a.mu.Unlock()

	b.mu.Lock()
	b.peers[a.id] = a
	b.mu.Unlock()
}

func (m *MemoryTransport) Start(ctx context.Context) error { m.running = true; return nil }
func (m *MemoryTransport) Stop(ctx context.Context) error  { m.running = false; return nil }
func (m *MemoryTransport) IsRunning() bool                 { return m.running }
func (m *MemoryTransport) LocalAddr() (net.Addr, error) {
	return &net.UnixAddr{Name: m.id, Net: "memory"}, nil
}

func (m *MemoryTransport) Connect(ctx context.Context, addr net.Addr) (*PeerConnection, error) {
	if !m.running {
		return nil, ErrNotConnected
	}
	peerID := addr.String()
	m.mu.Lock()
	_, ok := m.peers[peerID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrPeerNotFound
	}
	return &PeerConnection{PeerID: peerID, RemoteAddr: addr}, nil
}

// Accept is not used for loopback pairs set up via Pipe: peers are wired
// directly. It blocks until ctx is done and then returns (nil, nil),
// matching the "long-poll, no connection arrived" contract.
func (m *MemoryTransport) Accept(ctx context.Context) (*PeerConnection, error) {
	<-ctx.Done()
	return nil, nil
}

func (m *MemoryTransport) Send(ctx context.Context, peer string, st StreamType, payload []byte) error {
	if !m.running {
		return ErrNotConnected
	}
	m.mu.Lock()
	target, ok := m.peers[peer]
	m.mu.Unlock()
	if !ok {
		return ErrPeerNotFound
	}
	msg := inboundMsg{from: m.id, st: st, data: append([]byte(nil), payload...)}
	select {
	case target.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MemoryTransport) Receive(ctx context.Context) (string, StreamType, []byte, error) {
	select {
	case msg := <-m.inbox:
		return msg.from, msg.st, msg.data, nil
	case <-ctx.Done():
		return "", 0, nil, ctx.Err()
	}
}

func (m *MemoryTransport) DefaultPeer() (string, error) {
	if !m.hasDefault {
		return "", ErrNotConnected
	}
	return m.defaultPeer, nil
}

func (m *MemoryTransport) SetDefaultPeer(peer string) {
	m.defaultPeer = peer
	m.hasDefault = true
}

var (
	_ LinkTransport     = (*MemoryTransport)(nil)
	_ DefaultPeerCapable = (*MemoryTransport)(nil)
)
