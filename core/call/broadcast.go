package call

import (
	"sync"

	"github.com/saorsa-labs/saorsa-webrtc-go/internal/logging"
)

// broadcaster fans Event[I] values out to every subscriber, the way the
// teacher's websocket.Hub fans WebsocketMessages out to every room member
// (websocket/websocket.go Hub.run's Broadcast case). Unlike the Hub — which
// evicts a slow client entirely — a lagging subscriber here has its oldest
// buffered event dropped to make room for the new one, so the producer
// never blocks and no single slow observer loses its subscription.
type broadcaster[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]chan T
	cap    int
}

func newBroadcaster[T any](capacity int) *broadcaster[T] {
	return &broadcaster[T]{subs: make(map[uint64]chan T), cap: capacity}
}

// subscribe returns a receive channel and a cancel func to stop receiving.
func (b *broadcaster[T]) subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan T, b.cap)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// publish never blocks: a full subscriber channel has its oldest event
// dropped (with a logged warning) to make room for v.
func (b *broadcaster[T]) publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
				logging.L().Warnw("event subscriber lagging, dropped oldest event")
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}
