// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"sync/atomic"

	"code.hybscloud.com/iox"
)

// chanState is the immutable snapshot of a Channel: buffered values,
// parked consumers, parked producers, and the closed mark. Invariants:
// items never exceeds capacity; takers is non-empty only while items is
// empty; offerers is non-empty only while items is at capacity. Every
// mutation replaces the whole snapshot with one compare-and-swap, so the
// direct-handoff and backpressure-release steps are atomic with the
// queue transition that justifies them.
type chanState[A any] struct {
	items    fifo[A]
	takers   fifo[*chanTaker[A]]
	offerers fifo[*chanOfferer[A]]
	done     bool
}

// chanTaker is a parked Take subscription.
type chanTaker[A any] struct {
	sink Sink[A]
}

func (t *chanTaker[A]) resolve(v A) {
	t.sink(Next(v))
	t.sink(Complete[A]())
}

// chanOfferer is a parked Offer subscription together with the value it
// is waiting to deliver.
type chanOfferer[A any] struct {
	value A
	sink  Sink[struct{}]
}

func (o *chanOfferer[A]) resolve() {
	o.sink(Next(struct{}{}))
	o.sink(Complete[struct{}]())
}

// Channel is a fixed-capacity backpressure buffer between producers and
// consumers. Values are delivered in global FIFO order across the
// buffered and direct-handoff paths: the value delivered to any Take is
// always the value that has been waiting longest. State transitions are
// CAS retry loops over an immutable snapshot; safe for any number of
// concurrent producers and consumers with no external locking.
type Channel[A any] struct {
	state    atomic.Pointer[chanState[A]]
	capacity int
	serial   Serial
}

// NewChannel creates a Channel holding at most capacity buffered values.
// Panics if capacity is not positive.
func NewChannel[A any](capacity int) *Channel[A] {
	if capacity < 1 {
		panic("rx: NewChannel requires capacity > 0")
	}
	c := &Channel[A]{capacity: capacity, serial: nextSerial()}
	c.state.Store(&chanState[A]{})
	return c
}

// Serial returns the serial number assigned to this Channel.
func (c *Channel[A]) Serial() Serial { return c.serial }

// Capacity returns the fixed buffer capacity.
func (c *Channel[A]) Capacity() int { return c.capacity }

// Size returns a point-in-time count of buffered values.
func (c *Channel[A]) Size() int { return c.state.Load().items.size() }

// IsEmpty reports whether no values are buffered at this instant.
func (c *Channel[A]) IsEmpty() bool { return c.Size() == 0 }

// IsFull reports whether the buffer is at capacity at this instant.
func (c *Channel[A]) IsFull() bool { return c.Size() == c.capacity }

// offerAttempt is the single CAS loop behind TryOffer and Offer.
// Accepted reports that v was handed to a taker or buffered within the
// committed transition. With pending nil the attempt is non-blocking and
// signals iox.ErrWouldBlock at the backpressure boundary; otherwise
// pending is parked in offerers for a later Take to release.
func (c *Channel[A]) offerAttempt(v A, pending *chanOfferer[A]) (accepted bool, err error) {
	for {
		s := c.state.Load()
		if s.done {
			return false, ErrChannelClosed
		}
		if t, rest, ok := s.takers.dequeue(); ok {
			// Direct handoff: the buffer is empty whenever a taker is
			// parked, so delivering straight to it preserves FIFO order.
			ns := &chanState[A]{items: s.items, takers: rest, offerers: s.offerers}
			if !c.state.CompareAndSwap(s, ns) {
				continue
			}
			t.resolve(v)
			return true, nil
		}
		if s.items.size() < c.capacity {
			ns := &chanState[A]{items: s.items.enqueue(v), takers: s.takers, offerers: s.offerers}
			if c.state.CompareAndSwap(s, ns) {
				return true, nil
			}
			continue
		}
		if pending == nil {
			return false, iox.ErrWouldBlock
		}
		ns := &chanState[A]{items: s.items, takers: s.takers, offerers: s.offerers.enqueue(pending)}
		if c.state.CompareAndSwap(s, ns) {
			return false, nil
		}
	}
}

// takeAttempt is the single CAS loop behind TryTake and Take. When a
// value is dequeued while a producer is parked, the producer's value is
// admitted into the vacated slot and the producer released in the same
// committed transition, so a waiting producer can never be missed.
func (c *Channel[A]) takeAttempt(pending *chanTaker[A]) (v A, ok bool, err error) {
	for {
		s := c.state.Load()
		if head, rest, has := s.items.dequeue(); has {
			if o, orest, waiting := s.offerers.dequeue(); waiting {
				ns := &chanState[A]{items: rest.enqueue(o.value), takers: s.takers, offerers: orest, done: s.done}
				if !c.state.CompareAndSwap(s, ns) {
					continue
				}
				o.resolve()
				return head, true, nil
			}
			ns := &chanState[A]{items: rest, takers: s.takers, done: s.done}
			if c.state.CompareAndSwap(s, ns) {
				return head, true, nil
			}
			continue
		}
		if s.done {
			return v, false, ErrChannelExhausted
		}
		if pending == nil {
			return v, false, iox.ErrWouldBlock
		}
		ns := &chanState[A]{takers: s.takers.enqueue(pending), offerers: s.offerers}
		if c.state.CompareAndSwap(s, ns) {
			return v, false, nil
		}
	}
}

// TryOffer attempts to hand v to a waiting taker or buffer it, without
// suspending. Returns false when the Channel is full or closed.
func (c *Channel[A]) TryOffer(v A) bool {
	accepted, _ := c.offerAttempt(v, nil)
	return accepted
}

// TryTake dequeues the longest-waiting value without suspending.
// Returns false when the Channel is empty.
func (c *Channel[A]) TryTake() (A, bool) {
	v, ok, _ := c.takeAttempt(nil)
	return v, ok
}

// Offer describes a Flow that completes once v has been accepted —
// handed directly to a taker, buffered, or, when the Channel is full,
// parked until a Take vacates a slot. Offering to a closed Channel fails
// with ErrChannelClosed. Cancelling a parked Offer withdraws v unless a
// concurrent Take has already accepted it.
func (c *Channel[A]) Offer(v A) Flow[struct{}] {
	return flowFunc[struct{}](func(sink Sink[struct{}]) Cancelable {
		g := &gate[struct{}]{sink: sink}
		o := &chanOfferer[A]{value: v, sink: g.deliver}
		accepted, err := c.offerAttempt(v, o)
		if err != nil {
			g.deliver(ErrorEvent[struct{}](err))
			return Nop
		}
		if accepted {
			o.resolve()
			return Nop
		}
		return CancelFunc(func() {
			g.close()
			c.removeOfferer(o)
		})
	})
}

// Take describes a Flow resolving with the longest-waiting value, or
// parking until one is offered. Once the Channel is closed and drained,
// Take fails with ErrChannelExhausted. Cancelling a parked Take unparks
// it; a value it would have received goes to the next consumer instead.
func (c *Channel[A]) Take() Flow[A] {
	return flowFunc[A](func(sink Sink[A]) Cancelable {
		g := &gate[A]{sink: sink}
		t := &chanTaker[A]{sink: g.deliver}
		v, ok, err := c.takeAttempt(t)
		if err != nil {
			g.deliver(ErrorEvent[A](err))
			return Nop
		}
		if ok {
			t.resolve(v)
			return Nop
		}
		return CancelFunc(func() {
			g.close()
			c.removeTaker(t)
		})
	})
}

// removeOfferer withdraws a cancelled parked producer. When it is no
// longer queued, a Take has already committed to admitting its value;
// that acceptance stands and the closed gate absorbs the resolution.
func (c *Channel[A]) removeOfferer(o *chanOfferer[A]) {
	for {
		s := c.state.Load()
		rest, ok := s.offerers.remove(func(x *chanOfferer[A]) bool { return x == o })
		if !ok {
			return
		}
		ns := &chanState[A]{items: s.items, takers: s.takers, offerers: rest, done: s.done}
		if c.state.CompareAndSwap(s, ns) {
			return
		}
	}
}

// removeTaker unparks a cancelled parked consumer. When it is no longer
// queued, an offer has already committed a handoff to it; the closed
// gate absorbs that delivery.
func (c *Channel[A]) removeTaker(t *chanTaker[A]) {
	for {
		s := c.state.Load()
		rest, ok := s.takers.remove(func(x *chanTaker[A]) bool { return x == t })
		if !ok {
			return
		}
		ns := &chanState[A]{items: s.items, takers: rest, offerers: s.offerers, done: s.done}
		if c.state.CompareAndSwap(s, ns) {
			return
		}
	}
}

// Close marks the Channel complete. Buffered values remain takeable;
// parked and future takes fail with ErrChannelExhausted once the buffer
// is empty, and parked and future offers fail with ErrChannelClosed.
// Closing an already-closed Channel is a no-op.
func (c *Channel[A]) Close() {
	for {
		s := c.state.Load()
		if s.done {
			return
		}
		ns := &chanState[A]{items: s.items, done: true}
		if !c.state.CompareAndSwap(s, ns) {
			continue
		}
		s.takers.each(func(t *chanTaker[A]) { t.sink(ErrorEvent[A](ErrChannelExhausted)) })
		s.offerers.each(func(o *chanOfferer[A]) { o.sink(ErrorEvent[struct{}](ErrChannelClosed)) })
		return
	}
}
