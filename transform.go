// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import "sync/atomic"

// Map describes a Flow that transforms every value of f with fn.
// Error and Complete pass through unchanged; fn is never invoked for a
// failed evaluation.
func Map[A, B any](f Flow[A], fn func(A) B) Flow[B] {
	return flowFunc[B](func(sink Sink[B]) Cancelable {
		return f.Subscribe(func(ev Event[A]) {
			switch {
			case ev.IsNext():
				sink(Next(fn(ev.Value())))
			case ev.IsError():
				sink(ErrorEvent[B](ev.Err()))
			default:
				sink(Complete[B]())
			}
		})
	})
}

// Tap describes a Flow identical to f that additionally invokes fn for
// every value, before passing it downstream. Errors short-circuit past
// fn.
func Tap[A any](f Flow[A], fn func(A)) Flow[A] {
	return flowFunc[A](func(sink Sink[A]) Cancelable {
		return f.Subscribe(func(ev Event[A]) {
			if ev.IsNext() {
				fn(ev.Value())
			}
			sink(ev)
		})
	})
}

// Recover describes a Flow that intercepts a failure of f and completes
// with fn(cause) instead. Values and Complete pass through unchanged.
func Recover[A any](f Flow[A], fn func(error) A) Flow[A] {
	return flowFunc[A](func(sink Sink[A]) Cancelable {
		return f.Subscribe(func(ev Event[A]) {
			if ev.IsError() {
				sink(Next(fn(ev.Err())))
				sink(Complete[A]())
				return
			}
			sink(ev)
		})
	})
}

// RecoverWith describes a Flow that intercepts a failure of f and
// continues with the Flow produced by fn(cause). fn receives exactly the
// terminal failure; a failure of the substituted Flow is not intercepted
// again.
func RecoverWith[A any](f Flow[A], fn func(error) Flow[A]) Flow[A] {
	return flowFunc[A](func(sink Sink[A]) Cancelable {
		fallback := &cancelCell{}
		first := f.Subscribe(func(ev Event[A]) {
			if ev.IsError() {
				fallback.Set(fn(ev.Err()).Subscribe(sink))
				return
			}
			sink(ev)
		})
		return CancelAll(first, fallback)
	})
}

// Concat describes a Flow that emits every Event of first and, once
// first completes, every Event of second. Events of second are never
// interleaved before first signals Complete; a failure of first
// suppresses second entirely.
func Concat[A any](first, second Flow[A]) Flow[A] {
	return flowFunc[A](func(sink Sink[A]) Cancelable {
		next := &cancelCell{}
		head := first.Subscribe(func(ev Event[A]) {
			if ev.IsComplete() {
				next.Set(second.Subscribe(sink))
				return
			}
			sink(ev)
		})
		return CancelAll(head, next)
	})
}

// flatMapState is the immutable snapshot of one FlatMap subscription:
// inner Flows awaiting their turn, whether an inner subscription is
// live, and whether the outer Flow has completed. Replaced atomically
// on every transition so that outer and inner Events racing from
// different goroutines agree on who emits the final Complete.
type flatMapState[B any] struct {
	pending   fifo[Flow[B]]
	active    bool
	outerDone bool
}

type flatMapRun[B any] struct {
	sink  Sink[B]
	state atomic.Pointer[flatMapState[B]]
	outer cancelCell
	inner cancelCell
}

// FlatMap describes a Flow that, for every value of f, evaluates
// fn(value) and emits its values downstream. Inner Flows run one at a
// time in the order their triggering values arrived, so downstream
// ordering follows the root source. The composite completes once the
// outer Flow and every inner Flow have completed; any failure
// short-circuits the composite.
func FlatMap[A, B any](f Flow[A], fn func(A) Flow[B]) Flow[B] {
	return flowFunc[B](func(sink Sink[B]) Cancelable {
		r := &flatMapRun[B]{sink: sink}
		r.state.Store(&flatMapState[B]{})
		r.outer.Set(f.Subscribe(func(ev Event[A]) {
			switch {
			case ev.IsNext():
				r.push(fn(ev.Value()))
			case ev.IsError():
				r.fail(ev.Err())
			default:
				r.outerComplete()
			}
		}))
		return CancelAll(&r.outer, &r.inner)
	})
}

// push enqueues an inner Flow, starting it immediately when no inner
// subscription is live.
func (r *flatMapRun[B]) push(in Flow[B]) {
	for {
		s := r.state.Load()
		if s.active {
			ns := &flatMapState[B]{pending: s.pending.enqueue(in), active: true, outerDone: s.outerDone}
			if r.state.CompareAndSwap(s, ns) {
				return
			}
			continue
		}
		ns := &flatMapState[B]{pending: s.pending, active: true, outerDone: s.outerDone}
		if r.state.CompareAndSwap(s, ns) {
			r.startInner(in)
			return
		}
	}
}

func (r *flatMapRun[B]) startInner(in Flow[B]) {
	r.inner.Set(in.Subscribe(func(ev Event[B]) {
		switch {
		case ev.IsNext():
			r.sink(ev)
		case ev.IsError():
			r.fail(ev.Err())
		default:
			r.innerComplete()
		}
	}))
}

// innerComplete advances to the next pending inner Flow, or emits the
// composite Complete when the outer Flow is already done.
func (r *flatMapRun[B]) innerComplete() {
	for {
		s := r.state.Load()
		if in, rest, ok := s.pending.dequeue(); ok {
			ns := &flatMapState[B]{pending: rest, active: true, outerDone: s.outerDone}
			if r.state.CompareAndSwap(s, ns) {
				r.startInner(in)
				return
			}
			continue
		}
		ns := &flatMapState[B]{outerDone: s.outerDone}
		if r.state.CompareAndSwap(s, ns) {
			if s.outerDone {
				r.sink(Complete[B]())
			}
			return
		}
	}
}

// outerComplete records outer completion; the composite Complete is
// emitted here only when no inner work remains.
func (r *flatMapRun[B]) outerComplete() {
	for {
		s := r.state.Load()
		ns := &flatMapState[B]{pending: s.pending, active: s.active, outerDone: true}
		if r.state.CompareAndSwap(s, ns) {
			if !s.active && s.pending.isEmpty() {
				r.sink(Complete[B]())
			}
			return
		}
	}
}

func (r *flatMapRun[B]) fail(cause error) {
	r.sink(ErrorEvent[B](cause))
	r.outer.Cancel()
	r.inner.Cancel()
}
