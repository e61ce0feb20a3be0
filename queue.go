// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx

// node is a cons cell for the persistent FIFO.
type node[T any] struct {
	v    T
	next *node[T]
}

// fifo is an immutable two-list FIFO queue (front for dequeue, back for
// enqueue, back reversed into front on demand). Enqueue and dequeue are
// O(1) amortized with structural sharing, which makes fifo cheap to embed
// in compare-and-swap state snapshots: a failed CAS discards the new
// snapshot without having mutated anything.
type fifo[T any] struct {
	front  *node[T]
	back   *node[T]
	length int
}

// size returns the number of queued elements.
func (q fifo[T]) size() int { return q.length }

// isEmpty reports whether the queue holds no elements.
func (q fifo[T]) isEmpty() bool { return q.length == 0 }

// enqueue returns a queue with v appended at the tail.
func (q fifo[T]) enqueue(v T) fifo[T] {
	return fifo[T]{
		front:  q.front,
		back:   &node[T]{v: v, next: q.back},
		length: q.length + 1,
	}
}

// dequeue returns the head element and the remaining queue.
// ok is false when the queue is empty.
func (q fifo[T]) dequeue() (head T, rest fifo[T], ok bool) {
	if q.length == 0 {
		return head, q, false
	}
	front := q.front
	back := q.back
	if front == nil {
		front = reverse(back)
		back = nil
	}
	return front.v, fifo[T]{front: front.next, back: back, length: q.length - 1}, true
}

// remove returns a queue without the first element matching pred,
// preserving the order of the others. ok is false when no element matched.
func (q fifo[T]) remove(pred func(T) bool) (rest fifo[T], ok bool) {
	if q.length == 0 {
		return q, false
	}
	var out fifo[T]
	removed := false
	for cur := q; ; {
		v, next, has := cur.dequeue()
		if !has {
			break
		}
		if !removed && pred(v) {
			removed = true
		} else {
			out = out.enqueue(v)
		}
		cur = next
	}
	if !removed {
		return q, false
	}
	return out, true
}

// each calls fn for every element in FIFO order.
func (q fifo[T]) each(fn func(T)) {
	for cur := q; ; {
		v, next, ok := cur.dequeue()
		if !ok {
			return
		}
		fn(v)
		cur = next
	}
}

// reverse returns a fresh list with the elements of l in reverse order.
func reverse[T any](l *node[T]) *node[T] {
	var out *node[T]
	for ; l != nil; l = l.next {
		out = &node[T]{v: l.v, next: out}
	}
	return out
}
