// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"sync/atomic"

	"code.hybscloud.com/kont"
)

type fiberPhase uint8

const (
	fiberRunning fiberPhase = iota
	fiberCompleted
	fiberCancelled
)

// fiberState is the immutable snapshot of a Fiber's three-state machine.
// joiners is populated only while Running; outcome only once Completed.
// The Running→terminal transition is a single compare-and-swap, so
// exactly one of complete and cancel takes effect and drains the
// joiners it found in the snapshot it replaced.
type fiberState[A any] struct {
	phase   fiberPhase
	outcome kont.Either[error, A]
	joiners fifo[Sink[A]]
}

// Fiber is a handle to a Flow forked onto a Scheduler. Join awaits the
// result, Cancel requests cooperative interruption, Poll checks status
// without suspending. All transitions are CAS retry loops; no locks.
type Fiber[A any] struct {
	state  atomic.Pointer[fiberState[A]]
	sub    cancelCell
	serial Serial
}

// StartOn forks f onto s and returns immediately. The Flow is evaluated
// on whichever goroutine the Scheduler chooses; its single value (or
// failure) becomes the Fiber's outcome. A Flow that completes without a
// value resolves as a failure with ErrNoValue.
func StartOn[A any](f Flow[A], s Scheduler) *Fiber[A] {
	fb := &Fiber[A]{serial: nextSerial()}
	fb.state.Store(&fiberState[A]{phase: fiberRunning})
	s.Execute(func() {
		if fb.sub.Canceled() {
			return
		}
		var (
			value A
			has   bool
		)
		fb.sub.Set(Run(f, func(ev Event[A]) {
			switch {
			case ev.IsNext():
				value, has = ev.Value(), true
			case ev.IsError():
				fb.complete(kont.Left[error, A](ev.Err()))
			default:
				if has {
					fb.complete(kont.Right[error, A](value))
				} else {
					fb.complete(kont.Left[error, A](ErrNoValue))
				}
			}
		}))
	})
	return fb
}

// Start forks f onto the default Scheduler.
func Start[A any](f Flow[A]) *Fiber[A] {
	return StartOn(f, Default())
}

// Serial returns the serial number assigned to this Fiber.
func (fb *Fiber[A]) Serial() Serial { return fb.serial }

// complete attempts the Running→Completed transition. The first of
// complete and cancelNow wins; the loser observes the terminal state and
// is a no-op. Joiners drained from the replaced snapshot resolve exactly
// once with the recorded outcome.
func (fb *Fiber[A]) complete(outcome kont.Either[error, A]) bool {
	for {
		s := fb.state.Load()
		if s.phase != fiberRunning {
			return false
		}
		ns := &fiberState[A]{phase: fiberCompleted, outcome: outcome}
		if !fb.state.CompareAndSwap(s, ns) {
			continue
		}
		s.joiners.each(func(sink Sink[A]) { resolveJoiner(sink, outcome) })
		return true
	}
}

// cancelNow attempts the Running→Cancelled transition, releases the
// underlying subscription, and resolves drained joiners with the
// interruption failure.
func (fb *Fiber[A]) cancelNow() bool {
	for {
		s := fb.state.Load()
		if s.phase != fiberRunning {
			return false
		}
		ns := &fiberState[A]{phase: fiberCancelled}
		if !fb.state.CompareAndSwap(s, ns) {
			continue
		}
		fb.sub.Cancel()
		s.joiners.each(func(sink Sink[A]) { sink(ErrorEvent[A](ErrFiberCanceled)) })
		return true
	}
}

func resolveJoiner[A any](sink Sink[A], outcome kont.Either[error, A]) {
	if cause, ok := outcome.GetLeft(); ok {
		sink(ErrorEvent[A](cause))
		return
	}
	v, _ := outcome.GetRight()
	sink(Next(v))
	sink(Complete[A]())
}

// Join describes a Flow resolving with the Fiber's result: the value on
// success, the recorded failure on error, ErrFiberCanceled after
// cancellation. Joining before completion parks a resumption callback;
// joining after resolves synchronously from the terminal state. Any
// number of joiners may race; all observe the same outcome, and none is
// dropped. Cancelling a Join subscription stops delivery to that joiner
// only; it does not cancel the Fiber.
func (fb *Fiber[A]) Join() Flow[A] {
	return flowFunc[A](func(sink Sink[A]) Cancelable {
		g := &gate[A]{sink: sink}
		for {
			s := fb.state.Load()
			switch s.phase {
			case fiberCompleted:
				resolveJoiner(g.deliver, s.outcome)
				return Nop
			case fiberCancelled:
				g.deliver(ErrorEvent[A](ErrFiberCanceled))
				return Nop
			}
			ns := &fiberState[A]{phase: fiberRunning, joiners: s.joiners.enqueue(g.deliver)}
			if !fb.state.CompareAndSwap(s, ns) {
				continue
			}
			return CancelFunc(g.close)
		}
	})
}

// Cancel describes a Flow that requests interruption and completes.
// The underlying subscription is cancelled as soon as the transition
// commits; cancelling an already-terminal Fiber is a no-op. Pending and
// future joiners observe ErrFiberCanceled.
func (fb *Fiber[A]) Cancel() Flow[struct{}] {
	return flowFunc[struct{}](func(sink Sink[struct{}]) Cancelable {
		fb.cancelNow()
		sink(Next(struct{}{}))
		sink(Complete[struct{}]())
		return Nop
	})
}

// Poll reports the Fiber's status without suspending: done is false
// while Running; afterwards outcome carries the success value or the
// failure (ErrFiberCanceled for a cancelled Fiber).
func (fb *Fiber[A]) Poll() (outcome kont.Either[error, A], done bool) {
	s := fb.state.Load()
	switch s.phase {
	case fiberCompleted:
		return s.outcome, true
	case fiberCancelled:
		return kont.Left[error, A](ErrFiberCanceled), true
	default:
		return outcome, false
	}
}
