// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// Cancelable is a handle to an active subscription. Cancel releases
// upstream resources and stops further Event delivery to the subscriber.
// Cancel is idempotent: calls after the first are no-ops.
type Cancelable interface {
	Cancel()
}

// Nop is the no-op Cancelable instance.
var Nop Cancelable = nopCancelable{}

type nopCancelable struct{}

func (nopCancelable) Cancel() {}

// funcCancelable runs fn exactly once. The first-caller-wins guard is
// a bare atomic increment; only the caller that observes 1 proceeds.
type funcCancelable struct {
	fn    func()
	fired atomix.Uint32
}

// CancelFunc wraps fn into an idempotent Cancelable.
func CancelFunc(fn func()) Cancelable {
	return &funcCancelable{fn: fn}
}

func (c *funcCancelable) Cancel() {
	if c.fired.Add(1) != 1 {
		return
	}
	c.fn()
}

// compositeCancelable cancels every member. Cancel-idempotent as a whole.
type compositeCancelable struct {
	members []Cancelable
	fired   atomix.Uint32
}

// CancelAll composes members into a single Cancelable: cancelling the
// group cancels all members, once.
func CancelAll(members ...Cancelable) Cancelable {
	return &compositeCancelable{members: members}
}

func (c *compositeCancelable) Cancel() {
	if c.fired.Add(1) != 1 {
		return
	}
	for _, m := range c.members {
		m.Cancel()
	}
}

// cancelCell is a set-later Cancelable slot. Combinators that subscribe
// to an inner Flow only after an upstream Event arrives (flatMap, concat,
// recoverWith) park the inner subscription here so that a Cancel issued
// before the inner subscription exists still reaches it.
type cancelCell struct {
	current  atomic.Pointer[Cancelable]
	canceled atomic.Bool
}

// Set installs c as the current subscription. If the cell was cancelled
// first, c is cancelled immediately. Replacing a previous subscription
// does not cancel it; callers swap only after the previous one is
// terminal.
func (cc *cancelCell) Set(c Cancelable) {
	cc.current.Store(&c)
	if cc.canceled.Load() {
		c.Cancel()
	}
}

// Cancel cancels the current subscription, if any, and every
// subscription installed afterwards.
func (cc *cancelCell) Cancel() {
	cc.canceled.Store(true)
	if p := cc.current.Load(); p != nil {
		(*p).Cancel()
	}
}

// Canceled reports whether Cancel has been requested.
func (cc *cancelCell) Canceled() bool {
	return cc.canceled.Load()
}
