// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import "errors"

// Failure taxonomy. Computation failures carry whatever cause user code
// produced; the conditions below are the distinguished causes this core
// produces itself. All reach subscribers as ordinary Error Events, so
// downstream Recover logic classifies by cause with errors.Is.
var (
	// ErrFiberCanceled resolves joiners of a Fiber that was cancelled
	// before completing.
	ErrFiberCanceled = errors.New("rx: fiber canceled")

	// ErrNoValue reports a Flow that completed without producing a value
	// where exactly one was awaited (Fiber result, Await).
	ErrNoValue = errors.New("rx: flow completed without a value")

	// ErrChannelClosed fails Offer calls issued against a closed Channel.
	ErrChannelClosed = errors.New("rx: channel closed")

	// ErrChannelExhausted fails Take calls once a closed Channel has
	// drained.
	ErrChannelExhausted = errors.New("rx: channel exhausted")
)
