// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rx provides a push-based reactive execution core: composable
// asynchronous computations ([Flow]), structured forking ([Fiber]),
// fixed-capacity backpressure ([Channel]) and execution contexts
// ([Scheduler]).
//
// # Architecture
//
//   - Events: [Event] is the three-case signal alphabet ([Next],
//     [ErrorEvent], [Complete]) delivered to subscribers; Error and
//     Complete are terminal-once per subscription.
//   - Flows: immutable descriptions built from constructors ([Single],
//     [Empty], [Failed], [Of], [FromSeq], [Delay], [Eval],
//     [EvalOnBlocking]) and combinators ([Map], [FlatMap], [Tap],
//     [Recover], [RecoverWith], [Concat]). Nothing executes until [Run].
//   - Suspension: nothing blocks a goroutine while waiting — a node that
//     cannot produce an Event synchronously parks a resumption callback,
//     invoked exactly once by whichever operation makes progress
//     possible.
//   - Lock-free state: [Fiber], [Channel] and [Source] mutate exclusively
//     via compare-and-swap retry loops over immutable snapshots holding
//     persistent FIFO queues; no locks, no partial updates.
//   - Non-blocking boundary: Channel fast paths signal backpressure with
//     [code.hybscloud.com/iox.ErrWouldBlock]; the pool [Scheduler] drains
//     a bounded lock-free MPMC queue from [code.hybscloud.com/lfq].
//   - Blocking bridge: [Await] and [AwaitAll] wait past suspension points
//     with adaptive backoff (iox.Backoff), without creating channels.
//
// # Cancellation
//
// [Run] returns a [Cancelable] that propagates structurally: cancelling
// a combinator cancels every parent subscription; cancelling a [Fiber]
// cancels the Cancelable of the Flow it runs. Cancellation is
// cooperative — in-progress synchronous work is not preempted — and
// idempotent.
//
// # Example
//
//	ch := rx.NewChannel[int](2)
//	fib := rx.Start(rx.Map(ch.Take(), func(n int) int { return n * 2 }))
//	ch.TryOffer(21)
//	v, err := rx.Await(fib.Join()) // v == 42
package rx
