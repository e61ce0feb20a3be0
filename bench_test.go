// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx_test

import (
	"testing"

	"code.hybscloud.com/rx"
)

// BenchmarkSingleMapRun measures one synchronous pipeline evaluation.
func BenchmarkSingleMapRun(b *testing.B) {
	b.ReportAllocs()
	f := rx.Map(rx.Single(5), func(n int) int { return n * 2 })
	sink := func(rx.Event[int]) {}
	for b.Loop() {
		rx.Run(f, sink)
	}
}

// BenchmarkFlatMapChain measures a three-stage flatMap pipeline.
func BenchmarkFlatMapChain(b *testing.B) {
	b.ReportAllocs()
	f := rx.FlatMap(rx.Of(1, 2, 3), func(n int) rx.Flow[int] {
		return rx.Single(n * 10)
	})
	sink := func(rx.Event[int]) {}
	for b.Loop() {
		rx.Run(f, sink)
	}
}

// BenchmarkChannelOfferTake measures a buffered offer/take round-trip.
func BenchmarkChannelOfferTake(b *testing.B) {
	b.ReportAllocs()
	ch := rx.NewChannel[int](4)
	for b.Loop() {
		ch.TryOffer(1)
		ch.TryTake()
	}
}

// BenchmarkChannelDirectHandoff measures the taker fast path.
func BenchmarkChannelDirectHandoff(b *testing.B) {
	b.ReportAllocs()
	ch := rx.NewChannel[int](1)
	sink := func(rx.Event[int]) {}
	for b.Loop() {
		rx.Run(ch.Take(), sink)
		ch.TryOffer(1)
	}
}

// BenchmarkFiberStartJoin measures fork and join on a synchronous
// scheduler.
func BenchmarkFiberStartJoin(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		fib := rx.StartOn(rx.Single(42), inlineScheduler{})
		rx.Await(fib.Join())
	}
}

// BenchmarkSourceEmitNext measures push and queued consumption.
func BenchmarkSourceEmitNext(b *testing.B) {
	b.ReportAllocs()
	src := rx.NewSource[int]()
	sink := func(rx.Event[rx.Event[int]]) {}
	for b.Loop() {
		src.Emit(rx.Next(1))
		rx.Run(src.Next(), sink)
	}
}
