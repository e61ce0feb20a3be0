// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import "sync/atomic"

// sourceState is the immutable snapshot of a Source: Events buffered for
// Next consumers, Next subscriptions awaiting an Event, live broadcast
// subscribers, and the sticky terminal Event once one was emitted.
type sourceState[A any] struct {
	events   fifo[Event[A]]
	nexters  fifo[*sourceWaiter[A]]
	subs     fifo[*sourceSub[A]]
	terminal *Event[A]
}

// sourceWaiter is a parked Next subscription.
type sourceWaiter[A any] struct {
	sink Sink[Event[A]]
}

func (w *sourceWaiter[A]) resolve(ev Event[A]) {
	w.sink(Next(ev))
	w.sink(Complete[Event[A]]())
}

// sourceSub is one broadcast subscriber; its gate stops delivery once
// that subscriber alone is cancelled.
type sourceSub[A any] struct {
	g gate[A]
}

// Source is a mutable producer of Events and the extension point for
// primitives that hold internal state. Events pushed with Emit reach
// every active broadcast subscriber in emission order; independently,
// each Event is consumed exactly once through the Next queue.
//
// All state lives in a compare-and-swap snapshot; Emit, Next and
// Subscribe are safe from any number of goroutines.
type Source[A any] struct {
	state  atomic.Pointer[sourceState[A]]
	serial Serial
}

// NewSource creates an empty Source.
func NewSource[A any]() *Source[A] {
	s := &Source[A]{serial: nextSerial()}
	s.state.Store(&sourceState[A]{})
	return s
}

// Serial returns the serial number assigned to this Source.
func (s *Source[A]) Serial() Serial { return s.serial }

// Emit pushes ev into the Source. A parked Next subscription, if any,
// resumes with ev; otherwise ev is buffered for a future Next. Every
// broadcast subscriber observes ev either way. Emit reports false once
// a terminal Event has been emitted (terminal-once invariant); further
// Events are dropped.
func (s *Source[A]) Emit(ev Event[A]) bool {
	for {
		st := s.state.Load()
		if st.terminal != nil {
			return false
		}
		if ev.IsTerminal() {
			ns := &sourceState[A]{events: st.events, terminal: &ev}
			if !s.state.CompareAndSwap(st, ns) {
				continue
			}
			st.nexters.each(func(w *sourceWaiter[A]) { w.resolve(ev) })
			st.subs.each(func(sub *sourceSub[A]) { sub.g.deliver(ev) })
			return true
		}
		if w, rest, ok := st.nexters.dequeue(); ok {
			ns := &sourceState[A]{events: st.events, nexters: rest, subs: st.subs}
			if !s.state.CompareAndSwap(st, ns) {
				continue
			}
			w.resolve(ev)
			st.subs.each(func(sub *sourceSub[A]) { sub.g.deliver(ev) })
			return true
		}
		ns := &sourceState[A]{events: st.events.enqueue(ev), subs: st.subs}
		if !s.state.CompareAndSwap(st, ns) {
			continue
		}
		st.subs.each(func(sub *sourceSub[A]) { sub.g.deliver(ev) })
		return true
	}
}

// Next describes a Flow resolving with the next unconsumed Event of the
// Source: a buffered Event if one is pending, the sticky terminal Event
// if the Source is finished, or — when neither exists yet — a parked
// resumption that a future Emit resolves exactly once. Cancelling the
// subscription unparks it.
func (s *Source[A]) Next() Flow[Event[A]] {
	return flowFunc[Event[A]](func(sink Sink[Event[A]]) Cancelable {
		for {
			st := s.state.Load()
			if ev, rest, ok := st.events.dequeue(); ok {
				ns := &sourceState[A]{events: rest, nexters: st.nexters, subs: st.subs, terminal: st.terminal}
				if !s.state.CompareAndSwap(st, ns) {
					continue
				}
				sink(Next(ev))
				sink(Complete[Event[A]]())
				return Nop
			}
			if st.terminal != nil {
				sink(Next(*st.terminal))
				sink(Complete[Event[A]]())
				return Nop
			}
			w := &sourceWaiter[A]{sink: sink}
			ns := &sourceState[A]{nexters: st.nexters.enqueue(w), subs: st.subs}
			if !s.state.CompareAndSwap(st, ns) {
				continue
			}
			return CancelFunc(func() { s.removeWaiter(w) })
		}
	})
}

// removeWaiter unparks a cancelled Next subscription. When the waiter is
// no longer queued its resumption is already in flight and wins.
func (s *Source[A]) removeWaiter(w *sourceWaiter[A]) {
	for {
		st := s.state.Load()
		rest, ok := st.nexters.remove(func(x *sourceWaiter[A]) bool { return x == w })
		if !ok {
			return
		}
		ns := &sourceState[A]{events: st.events, nexters: rest, subs: st.subs, terminal: st.terminal}
		if s.state.CompareAndSwap(st, ns) {
			return
		}
	}
}

// Subscribe registers a broadcast subscriber. The subscriber observes
// every Event emitted after registration, in emission order; a Source
// already finished delivers just its terminal Event. Cancelling stops
// delivery to this subscriber without affecting others.
func (s *Source[A]) Subscribe(sink Sink[A]) Cancelable {
	sub := &sourceSub[A]{}
	sub.g.sink = sink
	for {
		st := s.state.Load()
		if st.terminal != nil {
			sub.g.deliver(*st.terminal)
			return Nop
		}
		ns := &sourceState[A]{events: st.events, nexters: st.nexters, subs: st.subs.enqueue(sub)}
		if !s.state.CompareAndSwap(st, ns) {
			continue
		}
		return CancelFunc(func() {
			sub.g.close()
			s.removeSub(sub)
		})
	}
}

func (s *Source[A]) removeSub(sub *sourceSub[A]) {
	for {
		st := s.state.Load()
		rest, ok := st.subs.remove(func(x *sourceSub[A]) bool { return x == sub })
		if !ok {
			return
		}
		ns := &sourceState[A]{events: st.events, nexters: st.nexters, subs: rest, terminal: st.terminal}
		if s.state.CompareAndSwap(st, ns) {
			return
		}
	}
}
