package media

import (
	"context"
	"sync"

	"github.com/saorsa-labs/saorsa-webrtc-go/core/transport"
)

// antiStarvationRatio is the recommended (not prescribed, per spec §9 Open
// Questions) number of consecutive High-priority sends serviced before the
// dispatcher forces through one Medium/Low packet if one is queued.
const antiStarvationRatio = 8

// dispatcher is a single-transport priority scheduler: it enqueues RTP
// packets into three FIFO lanes (High, Medium, Low) and drains them with
// strict priority plus an anti-starvation override, so Medium/Low traffic
// isn't indefinitely starved by a busy High lane.
type dispatcher struct {
	t *Transport

	mu    sync.Mutex
	high  []*queuedPacket
	med   []*queuedPacket
	low   []*queuedPacket
	highRun int
}

type queuedPacket struct {
	ctx    context.Context
	packet *RtpPacket
	done   chan error
}

func newDispatcher(t *Transport) *dispatcher {
	return &dispatcher{t: t}
}

// enqueue adds a packet to its priority lane and synchronously drains the
// dispatcher's queues, returning the error (if any) from actually sending
// this particular packet. Packets send immediately in this single-threaded
// engine; the queues exist to make the service-order deterministic and
// testable rather than to buffer asynchronously.
func (d *dispatcher) enqueue(ctx context.Context, p *RtpPacket) error {
	qp := &queuedPacket{ctx: ctx, packet: p, done: make(chan error, 1)}

	d.mu.Lock()
	switch transport.PriorityFor(p.StreamType) {
	case transport.PriorityHigh:
		d.high = append(d.high, qp)
	case transport.PriorityMedium:
		d.med = append(d.med, qp)
	default:
		d.low = append(d.low, qp)
	}
	d.mu.Unlock()

	d.drain()

	return <-qp.done
}

// drain services queued packets in priority order, enforcing the 8:1
// anti-starvation rule: after antiStarvationRatio consecutive High sends,
// one Medium-or-Low packet (if any is queued) is serviced before resuming
// High.
func (d *dispatcher) drain() {
	for {
		d.mu.Lock()
		var next *queuedPacket

		if d.highRun >= antiStarvationRatio && (len(d.med) > 0 || len(d.low) > 0) {
			next = popFront(&d.med)
			if next == nil {
				next = popFront(&d.low)
			}
			d.highRun = 0
		} else if len(d.high) > 0 {
			next = popFront(&d.high)
			d.highRun++
		} else if len(d.med) > 0 {
			next = popFront(&d.med)
			d.highRun = 0
		} else if len(d.low) > 0 {
			next = popFront(&d.low)
			d.highRun = 0
		}
		d.mu.Unlock()

		if next == nil {
			return
		}
		next.done <- d.t.sendNow(next.ctx, next.packet)
	}
}

func popFront(q *[]*queuedPacket) *queuedPacket {
	if len(*q) == 0 {
		return nil
	}
	item := (*q)[0]
	*q = (*q)[1:]
	return item
}
