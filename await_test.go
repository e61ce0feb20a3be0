// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rx_test

import (
	"errors"
	"slices"
	"testing"
	"time"

	"code.hybscloud.com/rx"
)

func TestAwaitValue(t *testing.T) {
	v, err := rx.Await(rx.Single(3))
	if err != nil || v != 3 {
		t.Fatalf("got (%d, %v), want (3, nil)", v, err)
	}
}

func TestAwaitError(t *testing.T) {
	cause := errors.New("boom")
	if _, err := rx.Await(rx.Failed[int](cause)); !errors.Is(err, cause) {
		t.Fatalf("err got %v, want %v", err, cause)
	}
}

func TestAwaitEmptyIsNoValue(t *testing.T) {
	if _, err := rx.Await(rx.Empty[int]()); !errors.Is(err, rx.ErrNoValue) {
		t.Fatalf("err got %v, want ErrNoValue", err)
	}
}

func TestAwaitSuspendingFlow(t *testing.T) {
	ch := rx.NewChannel[int](1)
	go func() {
		rx.Await(rx.Delay(5 * time.Millisecond))
		ch.TryOffer(42)
	}()
	v, err := rx.Await(ch.Take())
	if err != nil || v != 42 {
		t.Fatalf("got (%d, %v), want (42, nil)", v, err)
	}
}

func TestAwaitAll(t *testing.T) {
	values, err := rx.AwaitAll(rx.Of(1, 2, 3))
	if err != nil {
		t.Fatalf("AwaitAll got error %v", err)
	}
	if !slices.Equal(values, []int{1, 2, 3}) {
		t.Fatalf("values got %v, want [1 2 3]", values)
	}
}

func TestAwaitAllEmpty(t *testing.T) {
	values, err := rx.AwaitAll(rx.Empty[int]())
	if err != nil || len(values) != 0 {
		t.Fatalf("got (%v, %v), want ([], nil)", values, err)
	}
}

func TestAwaitAllError(t *testing.T) {
	cause := errors.New("boom")
	if _, err := rx.AwaitAll(rx.Concat(rx.Of(1), rx.Failed[int](cause))); !errors.Is(err, cause) {
		t.Fatalf("err got %v, want %v", err, cause)
	}
}
