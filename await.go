// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import (
	"sync/atomic"

	"code.hybscloud.com/iox"
)

// Await runs f and blocks the calling goroutine until it terminates,
// waiting past suspension points with adaptive backoff (iox.Backoff)
// rather than parking on a channel. Returns the final value, the
// failure cause, or ErrNoValue when f completed without emitting.
func Await[A any](f Flow[A]) (A, error) {
	var (
		value A
		has   bool
		cause error
		done  atomic.Bool
	)
	Run(f, func(ev Event[A]) {
		switch {
		case ev.IsNext():
			value, has = ev.Value(), true
		case ev.IsError():
			cause = ev.Err()
			done.Store(true)
		default:
			if !has {
				cause = ErrNoValue
			}
			done.Store(true)
		}
	})
	var bo iox.Backoff
	for !done.Load() {
		bo.Wait()
	}
	if cause != nil {
		var zero A
		return zero, cause
	}
	return value, nil
}

// AwaitAll runs f and blocks until it terminates, collecting every
// emitted value in order. An empty completed Flow yields an empty slice
// and no error.
func AwaitAll[A any](f Flow[A]) ([]A, error) {
	var (
		values []A
		cause  error
		done   atomic.Bool
	)
	Run(f, func(ev Event[A]) {
		switch {
		case ev.IsNext():
			values = append(values, ev.Value())
		case ev.IsError():
			cause = ev.Err()
			done.Store(true)
		default:
			done.Store(true)
		}
	})
	var bo iox.Backoff
	for !done.Load() {
		bo.Wait()
	}
	if cause != nil {
		return nil, cause
	}
	return values, nil
}
