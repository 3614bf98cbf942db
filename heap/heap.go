// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package heap provides an array-backed binary min-heap with explicit
// capacity control. The backing array is laid out 1-based: slot 0 is
// reserved so the parent of i is i/2 and its children are 2i and 2i+1.
//
// A Heap is not safe for concurrent use.
package heap

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/aristanetworks/gocollections/errs"
)

// maxCapacity is the largest number of elements a Heap will hold.
// Growth doubles and saturates just below the signed 32-bit maximum,
// regardless of the platform's native int width.
const maxCapacity = math.MaxInt32 - 1

// Heap is a binary min-heap over T. The ordering is supplied at
// construction and must be a strict total order on the values pushed.
type Heap[T any] struct {
	a     []T // 1-based, a[0] is never read
	count int
	less  func(a, b T) bool
}

// New returns an empty Heap ordered by less.
func New[T any](less func(a, b T) bool) *Heap[T] {
	if less == nil {
		panic("heap: nil less function")
	}
	return &Heap[T]{less: less}
}

// NewOrdered returns an empty Heap over a natively ordered type.
func NewOrdered[T constraints.Ordered]() *Heap[T] {
	return New(func(a, b T) bool { return a < b })
}

// Len returns the number of elements currently in the heap.
func (h *Heap[T]) Len() int {
	return h.count
}

// Cap returns the number of elements the heap can hold before growing.
func (h *Heap[T]) Cap() int {
	if len(h.a) == 0 {
		return 0
	}
	return len(h.a) - 1
}

// Push adds x to the heap. It grows the backing array when full,
// doubling from an initial capacity of 4, and returns a
// maximum-capacity-reached error once growth past the 32-bit bound is
// required.
func (h *Heap[T]) Push(x T) error {
	if h.count == h.Cap() {
		if err := h.grow(); err != nil {
			return err
		}
	}
	h.count++
	h.a[h.count] = x
	h.siftUp(h.count)
	return nil
}

// Top returns the minimum element without removing it.
func (h *Heap[T]) Top() (T, error) {
	var zero T
	if h.count == 0 {
		return zero, errs.New(errs.KindEmptyContainer, "heap.Top", "")
	}
	return h.a[1], nil
}

// Pop removes and returns the minimum element.
func (h *Heap[T]) Pop() (T, error) {
	var zero T
	if h.count == 0 {
		return zero, errs.New(errs.KindEmptyContainer, "heap.Pop", "")
	}
	top := h.a[1]
	h.a[1] = h.a[h.count]
	h.a[h.count] = zero // release the reference
	h.count--
	if h.count > 1 {
		h.siftDown(1)
	}
	return top, nil
}

// Clear removes every element. Live slots are zeroed so references are
// released; capacity is unchanged.
func (h *Heap[T]) Clear() {
	var zero T
	for i := 1; i <= h.count; i++ {
		h.a[i] = zero
	}
	h.count = 0
}

// SetCapacity reallocates the backing array to hold exactly v elements.
// It fails with out-of-range when v is below the current count or at the
// 32-bit bound.
func (h *Heap[T]) SetCapacity(v int) error {
	if v < h.count || v >= math.MaxInt32 {
		return errs.Newf(errs.KindOutOfRange, "heap.SetCapacity", "%d", v)
	}
	if v == h.Cap() {
		return nil
	}
	if v == 0 {
		h.a = nil
		return nil
	}
	a := make([]T, v+1)
	copy(a[1:], h.a[1:h.count+1])
	h.a = a
	return nil
}

func (h *Heap[T]) grow() error {
	c := h.Cap()
	if c >= maxCapacity {
		return errs.New(errs.KindMaxCapacity, "heap.Push", "")
	}
	nc := 4
	if c > 0 {
		nc = c * 2
		if nc > maxCapacity || nc < 0 {
			nc = maxCapacity
		}
	}
	a := make([]T, nc+1)
	copy(a[1:], h.a[1:h.count+1])
	h.a = a
	return nil
}

func (h *Heap[T]) siftUp(i int) {
	x := h.a[i]
	for i > 1 {
		parent := i / 2
		if !h.less(x, h.a[parent]) {
			break
		}
		h.a[i] = h.a[parent]
		i = parent
	}
	h.a[i] = x
}

func (h *Heap[T]) siftDown(i int) {
	x := h.a[i]
	for {
		child := 2 * i
		if child > h.count {
			break
		}
		// Prefer the smaller child; the left one wins ties.
		if child < h.count && h.less(h.a[child+1], h.a[child]) {
			child++
		}
		if !h.less(h.a[child], x) {
			break
		}
		h.a[i] = h.a[child]
		i = child
	}
	h.a[i] = x
}
