// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"context"
	"runtime"
	"sync"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
	"golang.org/x/sync/semaphore"
)

// Scheduler is an execution context: Execute accepts a unit of work and
// guarantees it eventually runs, possibly on a different goroutine.
// No cross-goroutine submission ordering is promised.
type Scheduler interface {
	Execute(task func())
}

// defaultQueueCapacity sizes the pool scheduler's task queue. lfq rounds
// capacity up to the next power of two.
const defaultQueueCapacity = 1024

// defaultBlockingLimit bounds in-flight tasks on the blocking scheduler.
const defaultBlockingLimit = 256

// PoolScheduler runs tasks on a fixed set of workers draining a bounded
// lock-free MPMC queue. Suited to CPU-bound work; a task that blocks its
// worker stalls other queued tasks, use the blocking Scheduler for
// those.
type PoolScheduler struct {
	tasks lfq.Queue[func()]
	quit  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

// NewPoolScheduler creates a PoolScheduler with the given worker count
// and task queue capacity. Panics if workers is not positive.
func NewPoolScheduler(workers, queueCapacity int) *PoolScheduler {
	if workers < 1 {
		panic("rx: NewPoolScheduler requires workers > 0")
	}
	s := &PoolScheduler{
		tasks: lfq.NewMPMC[func()](queueCapacity),
		quit:  make(chan struct{}),
	}
	for range workers {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

// worker drains the task queue, backing off adaptively when it is
// empty, until Shutdown.
func (s *PoolScheduler) worker() {
	defer s.wg.Done()
	var bo iox.Backoff
	for {
		select {
		case <-s.quit:
			return
		default:
		}
		task, err := s.tasks.Dequeue()
		if err != nil {
			bo.Wait()
			continue
		}
		bo.Reset()
		task()
	}
}

// Execute enqueues task, backing off adaptively while the queue is
// full. The task eventually runs on one of the pool's workers.
func (s *PoolScheduler) Execute(task func()) {
	var bo iox.Backoff
	for {
		t := task
		if err := s.tasks.Enqueue(&t); err == nil {
			return
		}
		bo.Wait()
	}
}

// Shutdown stops the workers after their in-flight task and waits for
// them to exit. Tasks still queued are not executed. Idempotent.
func (s *PoolScheduler) Shutdown() {
	s.once.Do(func() { close(s.quit) })
	s.wg.Wait()
}

// BlockingScheduler runs every task on its own goroutine, bounded by a
// weighted semaphore. Suited to operations expected to block (file I/O,
// legacy synchronous APIs) bridged into the Flow world via
// EvalOnBlocking.
type BlockingScheduler struct {
	sem *semaphore.Weighted
}

// NewBlockingScheduler creates a BlockingScheduler admitting at most
// limit concurrently running tasks. Panics if limit is not positive.
func NewBlockingScheduler(limit int64) *BlockingScheduler {
	if limit < 1 {
		panic("rx: NewBlockingScheduler requires limit > 0")
	}
	return &BlockingScheduler{sem: semaphore.NewWeighted(limit)}
}

// Execute starts task on a fresh goroutine once the admission semaphore
// grants a slot. Returns immediately.
func (s *BlockingScheduler) Execute(task func()) {
	go func() {
		if err := s.sem.Acquire(context.Background(), 1); err != nil {
			return
		}
		defer s.sem.Release(1)
		task()
	}()
}

// The process-wide schedulers are explicit singletons built on first
// use; nothing is spawned by merely importing the package.
var (
	defaultPool = sync.OnceValue(func() *PoolScheduler {
		return NewPoolScheduler(runtime.GOMAXPROCS(0), defaultQueueCapacity)
	})
	defaultBlocking = sync.OnceValue(func() *BlockingScheduler {
		return NewBlockingScheduler(defaultBlockingLimit)
	})
)

// Default returns the process-wide Scheduler for CPU-bound work:
// a PoolScheduler with one worker per available CPU, created on first
// call.
func Default() Scheduler { return defaultPool() }

// Blocking returns the process-wide Scheduler for work expected to
// block, created on first call.
func Blocking() Scheduler { return defaultBlocking() }
