// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

import "fmt"

// eventKind discriminates the three cases of the Event alphabet.
type eventKind uint8

const (
	kindNext eventKind = iota
	kindError
	kindComplete
)

// Event is the signal alphabet delivered to subscribers: a value (Next),
// a failure (Error), or end of stream (Complete).
//
// Error and Complete are terminal: after either is delivered on a
// subscription, no further Events follow on that subscription.
type Event[A any] struct {
	value A
	err   error
	kind  eventKind
}

// Next creates a value Event.
func Next[A any](v A) Event[A] {
	return Event[A]{value: v, kind: kindNext}
}

// ErrorEvent creates a failure Event carrying cause.
func ErrorEvent[A any](cause error) Event[A] {
	return Event[A]{err: cause, kind: kindError}
}

// Complete creates the end-of-stream Event.
func Complete[A any]() Event[A] {
	return Event[A]{kind: kindComplete}
}

// IsNext reports whether the Event carries a value.
func (e Event[A]) IsNext() bool { return e.kind == kindNext }

// IsError reports whether the Event carries a failure.
func (e Event[A]) IsError() bool { return e.kind == kindError }

// IsComplete reports whether the Event signals end of stream.
func (e Event[A]) IsComplete() bool { return e.kind == kindComplete }

// IsTerminal reports whether the Event ends its subscription.
func (e Event[A]) IsTerminal() bool { return e.kind != kindNext }

// Value returns the carried value. Zero unless IsNext.
func (e Event[A]) Value() A { return e.value }

// Err returns the carried failure cause. Nil unless IsError.
func (e Event[A]) Err() error { return e.err }

// String renders the Event for diagnostics.
func (e Event[A]) String() string {
	switch e.kind {
	case kindNext:
		return fmt.Sprintf("Next(%v)", e.value)
	case kindError:
		return fmt.Sprintf("Error(%v)", e.err)
	default:
		return "Complete"
	}
}
