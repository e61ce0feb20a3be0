// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"code.hybscloud.com/rx"
)

func TestPoolSchedulerRunsEveryTask(t *testing.T) {
	skipRace(t)
	s := rx.NewPoolScheduler(2, 16)
	defer s.Shutdown()

	const n = 100
	var done atomic.Int32
	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		s.Execute(func() {
			done.Add(1)
			wg.Done()
		})
	}
	wg.Wait()
	if got := done.Load(); got != n {
		t.Fatalf("ran %d tasks, want %d", got, n)
	}
}

func TestPoolSchedulerShutdownIdempotent(t *testing.T) {
	skipRace(t)
	s := rx.NewPoolScheduler(1, 4)
	s.Shutdown()
	s.Shutdown()
}

func TestPoolSchedulerWorkersPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewPoolScheduler(0, 4) did not panic")
		}
	}()
	rx.NewPoolScheduler(0, 4)
}

func TestBlockingSchedulerBoundsConcurrency(t *testing.T) {
	const limit = 4
	s := rx.NewBlockingScheduler(limit)

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	const n = 16
	wg.Add(n)
	for range n {
		s.Execute(func() {
			defer wg.Done()
			cur := running.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		})
	}
	wg.Wait()
	if p := peak.Load(); p > limit {
		t.Fatalf("peak concurrency %d exceeded limit %d", p, limit)
	}
}

func TestBlockingSchedulerLimitPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewBlockingScheduler(0) did not panic")
		}
	}()
	rx.NewBlockingScheduler(0)
}

func TestProcessWideSchedulersSingletons(t *testing.T) {
	skipRace(t)
	if rx.Default() == nil || rx.Blocking() == nil {
		t.Fatalf("process-wide schedulers not built")
	}
	if rx.Default() != rx.Default() {
		t.Fatalf("Default returned distinct instances")
	}
	if rx.Blocking() != rx.Blocking() {
		t.Fatalf("Blocking returned distinct instances")
	}
}
