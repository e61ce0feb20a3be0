// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"iter"
	"slices"
	"sync/atomic"
	"time"
)

// Sink receives the Events of one subscription. A Sink must be safe to
// invoke from any goroutine the producing side happens to run on.
type Sink[A any] func(Event[A])

// Flow is an immutable description of an asynchronous computation that
// delivers Events to a Sink once subscribed. Flows hold no mutable state
// of their own; a Flow is safe to subscribe any number of times, each
// subscription being an independent evaluation.
//
// Combinator nodes (Map, FlatMap, Concat, ...) implement Flow by
// subscribing to their parents and transforming Events; primitives with
// internal state (Source, Fiber, Channel) produce Flows whose
// subscriptions register resumption callbacks instead of blocking.
type Flow[A any] interface {
	// Subscribe starts an evaluation, delivering Events to sink until a
	// terminal Event. The returned Cancelable releases the subscription
	// and every parent subscription it holds.
	Subscribe(sink Sink[A]) Cancelable
}

// flowFunc adapts a subscription function to the Flow interface.
type flowFunc[A any] func(sink Sink[A]) Cancelable

func (f flowFunc[A]) Subscribe(sink Sink[A]) Cancelable { return f(sink) }

// gate enforces the per-subscription delivery invariants: at most one
// terminal Event, and no delivery at all after the subscription is
// cancelled. The flag is a plain CAS; Events may arrive from any
// goroutine.
type gate[A any] struct {
	sink Sink[A]
	done atomic.Bool
}

func (g *gate[A]) deliver(ev Event[A]) {
	if ev.IsTerminal() {
		if !g.done.CompareAndSwap(false, true) {
			return
		}
		g.sink(ev)
		return
	}
	if g.done.Load() {
		return
	}
	g.sink(ev)
}

// close stops all further delivery without emitting anything.
func (g *gate[A]) close() { g.done.Store(true) }

// Run evaluates f against the terminal callback sink. Events preserve
// the order they were produced by the root source; sink receives at most
// one terminal Event. Cancelling the returned Cancelable stops delivery
// to sink and propagates upward through every subscribed parent.
func Run[A any](f Flow[A], sink Sink[A]) Cancelable {
	g := &gate[A]{sink: sink}
	sub := f.Subscribe(g.deliver)
	return CancelAll(CancelFunc(g.close), sub)
}

// Single describes a Flow that emits v and completes.
func Single[A any](v A) Flow[A] {
	return flowFunc[A](func(sink Sink[A]) Cancelable {
		sink(Next(v))
		sink(Complete[A]())
		return Nop
	})
}

// Empty describes a Flow that completes without emitting a value.
func Empty[A any]() Flow[A] {
	return flowFunc[A](func(sink Sink[A]) Cancelable {
		sink(Complete[A]())
		return Nop
	})
}

// Failed describes a Flow that fails immediately with cause.
func Failed[A any](cause error) Flow[A] {
	return flowFunc[A](func(sink Sink[A]) Cancelable {
		sink(ErrorEvent[A](cause))
		return Nop
	})
}

// flagCancelable is a cooperative cancellation flag checked by
// subscription loops between emissions.
type flagCancelable struct {
	canceled atomic.Bool
}

func (f *flagCancelable) Cancel()        { f.canceled.Store(true) }
func (f *flagCancelable) Canceled() bool { return f.canceled.Load() }

// FromSeq describes a Flow that emits every element of seq in order,
// then completes. Each subscription iterates seq independently.
func FromSeq[A any](seq iter.Seq[A]) Flow[A] {
	return flowFunc[A](func(sink Sink[A]) Cancelable {
		c := &flagCancelable{}
		for v := range seq {
			if c.Canceled() {
				return c
			}
			sink(Next(v))
		}
		if !c.Canceled() {
			sink(Complete[A]())
		}
		return c
	})
}

// Of describes a Flow that emits the given values in order, then
// completes.
func Of[A any](values ...A) Flow[A] {
	return FromSeq(slices.Values(values))
}

// Delay describes a Flow that emits the firing time after d has elapsed,
// then completes. Cancelling the subscription stops the timer.
func Delay(d time.Duration) Flow[time.Time] {
	return flowFunc[time.Time](func(sink Sink[time.Time]) Cancelable {
		timer := time.AfterFunc(d, func() {
			sink(Next(time.Now()))
			sink(Complete[time.Time]())
		})
		return CancelFunc(func() { timer.Stop() })
	})
}

// Eval describes a Flow that invokes fn on subscription, on the
// subscribing goroutine, emitting its value or failure.
func Eval[A any](fn func() (A, error)) Flow[A] {
	return flowFunc[A](func(sink Sink[A]) Cancelable {
		v, err := fn()
		if err != nil {
			sink(ErrorEvent[A](err))
			return Nop
		}
		sink(Next(v))
		sink(Complete[A]())
		return Nop
	})
}

// EvalOn describes a Flow that invokes fn on s, emitting its value or
// failure from whichever goroutine the Scheduler chose. Cancelling the
// subscription before fn starts suppresses the evaluation.
func EvalOn[A any](fn func() (A, error), s Scheduler) Flow[A] {
	return flowFunc[A](func(sink Sink[A]) Cancelable {
		c := &flagCancelable{}
		s.Execute(func() {
			if c.Canceled() {
				return
			}
			v, err := fn()
			if c.Canceled() {
				return
			}
			if err != nil {
				sink(ErrorEvent[A](err))
				return
			}
			sink(Next(v))
			sink(Complete[A]())
		})
		return c
	})
}

// EvalOnBlocking describes a Flow that invokes fn on the blocking
// Scheduler. This is the bridge for APIs expected to block a worker.
func EvalOnBlocking[A any](fn func() (A, error)) Flow[A] {
	return EvalOn(fn, Blocking())
}
