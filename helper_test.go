// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx_test

import (
	"sync"

	"code.hybscloud.com/rx"
)

// inlineScheduler runs tasks synchronously on the submitting goroutine.
// Used by tests that need deterministic fork timing without involving
// the lfq-backed pool.
type inlineScheduler struct{}

func (inlineScheduler) Execute(task func()) { task() }

// recorder collects the Events of one subscription. Safe for delivery
// from any goroutine.
type recorder[A any] struct {
	mu     sync.Mutex
	events []rx.Event[A]
}

func (r *recorder[A]) sink(ev rx.Event[A]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder[A]) snapshot() []rx.Event[A] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]rx.Event[A](nil), r.events...)
}

// values returns the Next payloads recorded so far, in order.
func (r *recorder[A]) values() []A {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []A
	for _, ev := range r.events {
		if ev.IsNext() {
			out = append(out, ev.Value())
		}
	}
	return out
}
