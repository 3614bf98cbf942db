// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package sched provides a concurrent scheduler that dispatches work
// items to an execution pool under two constraints: at most one item per
// caller-defined bucket executes at a time, and the total number of
// in-flight items never exceeds a parallelism cap. Between buckets,
// higher-priority items dispatch first; within a priority, earlier
// enqueues win; within a bucket, strict FIFO order holds.
package sched

import (
	"encoding/binary"
	"hash/maphash"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/aristanetworks/glog"
	"github.com/aristanetworks/gomap"

	"github.com/aristanetworks/gocollections/errs"
	"github.com/aristanetworks/gocollections/heap"
)

// Executor runs functions on behalf of the scheduler. Implementations
// may use plain goroutines, a bounded pool, or a test harness.
type Executor interface {
	Go(f func())
}

// GoExecutor runs each function on its own goroutine.
type GoExecutor struct{}

// Go implements Executor.
func (GoExecutor) Go(f func()) { go f() }

// seqStart is the initial value of the insertion counter. The counter
// decreases, so under the max-ordering an earlier enqueue outranks a
// later one at equal priority.
const seqStart = 1 << 56

// item is a work value annotated with its scheduling labels. composite
// packs the user priority into the high byte above the insertion
// counter; no two items share a composite value.
type item[T any] struct {
	value     T
	bucket    int64
	composite uint64
}

// fifo holds a bucket's items that were enqueued while an earlier item
// of the same bucket was still in flight.
type fifo[T any] struct {
	items []item[T]
	head  int
}

func (q *fifo[T]) push(it item[T]) {
	q.items = append(q.items, it)
}

func (q *fifo[T]) pop() item[T] {
	it := q.items[q.head]
	q.items[q.head] = item[T]{}
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return it
}

func (q *fifo[T]) len() int {
	if q == nil {
		return 0
	}
	return len(q.items) - q.head
}

// Scheduler dispatches items of type T to an Executor. The zero value is
// not usable; construct with New.
//
// Two locks protect the state, always acquired buckets before heap,
// never the other way around. The insertion counter is reserved
// atomically outside both.
type Scheduler[T any] struct {
	routine func(T)
	exec    Executor
	maxDOP  int

	seq     atomic.Uint64
	pending atomic.Int64

	// bucketsMu guards buckets. A present key means the bucket has one
	// item dispatched or in the ready heap; a non-nil fifo holds the
	// items queued behind it.
	bucketsMu sync.Mutex
	buckets   *gomap.Map[int64, *fifo[T]]

	// heapMu guards everything below.
	heapMu  sync.Mutex
	ready   *heap.Heap[item[T]]
	active  int
	stopped bool
	done    chan struct{} // non-nil once StopAndWait has been entered
}

// Option configures a Scheduler at construction.
type Option[T any] func(*Scheduler[T])

// WithMaxParallelism caps the number of concurrently executing items.
// Zero or negative means unlimited.
func WithMaxParallelism[T any](n int) Option[T] {
	return func(s *Scheduler[T]) { s.maxDOP = n }
}

// WithExecutor sets the execution pool. The default runs each item on
// its own goroutine.
func WithExecutor[T any](e Executor) Option[T] {
	return func(s *Scheduler[T]) { s.exec = e }
}

func hashInt64(seed maphash.Seed, k int64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(k))
	var h maphash.Hash
	h.SetSeed(seed)
	h.Write(buf[:])
	return h.Sum64()
}

// New returns a Scheduler that runs routine for every enqueued item.
func New[T any](routine func(T), opts ...Option[T]) (*Scheduler[T], error) {
	if routine == nil {
		return nil, errs.New(errs.KindNullArgument, "sched.New", "routine")
	}
	s := &Scheduler[T]{
		routine: routine,
		exec:    GoExecutor{},
		buckets: gomap.New[int64, *fifo[T]](
			func(a, b int64) bool { return a == b }, hashInt64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.seq.Store(seqStart)
	s.ready = heap.New(func(a, b item[T]) bool { return a.composite > b.composite })
	return s, nil
}

// MaxParallelism returns the configured cap, zero meaning unlimited.
func (s *Scheduler[T]) MaxParallelism() int {
	return s.maxDOP
}

// Pending returns the number of items not yet handed to the executor:
// the ready heap plus every bucket's queue.
func (s *Scheduler[T]) Pending() int {
	return int(s.pending.Load())
}

// Stopped reports whether StopAndWait has been entered.
func (s *Scheduler[T]) Stopped() bool {
	s.heapMu.Lock()
	defer s.heapMu.Unlock()
	return s.stopped
}

func (s *Scheduler[T]) activeWorkers() int {
	s.heapMu.Lock()
	defer s.heapMu.Unlock()
	return s.active
}

// Enqueue submits work under the given bucket and priority. Higher
// priorities dispatch earlier. Enqueue is accepted after a stop; the
// item is then held for the next StopAndWait to drain.
func (s *Scheduler[T]) Enqueue(work T, bucket int64, priority uint8) {
	seq := s.seq.Add(^uint64(0))
	it := item[T]{
		value:     work,
		bucket:    bucket,
		composite: uint64(priority)<<56 | seq,
	}
	s.pending.Add(1)

	s.bucketsMu.Lock()
	q, running := s.buckets.Get(bucket)
	if running || s.stoppedLoosely() {
		if q == nil {
			q = &fifo[T]{}
			s.buckets.Set(bucket, q)
		}
		q.push(it)
		s.bucketsMu.Unlock()
		return
	}
	s.buckets.Set(bucket, nil)

	s.heapMu.Lock()
	if s.maxDOP <= 0 || s.active < s.maxDOP {
		s.active++
		s.heapMu.Unlock()
		s.bucketsMu.Unlock()
		s.pending.Add(-1)
		s.dispatch(it)
		return
	}
	if err := s.ready.Push(it); err != nil {
		glog.Errorf("sched: ready heap full: %v", err)
	}
	s.heapMu.Unlock()
	s.bucketsMu.Unlock()
}

// stoppedLoosely reads the stop flag without the heap lock. The flag is
// only ever set while both locks are held, so holding bucketsMu is
// enough to read it.
func (s *Scheduler[T]) stoppedLoosely() bool {
	return s.stopped
}

func (s *Scheduler[T]) dispatch(it item[T]) {
	s.exec.Go(func() { s.run(it) })
}

// run is the worker loop: execute the item, surface the bucket's next
// queued item into the ready heap, then either take more work from the
// heap or retire.
func (s *Scheduler[T]) run(it item[T]) {
	for {
		s.routine(it.value)

		s.bucketsMu.Lock()
		q, _ := s.buckets.Get(it.bucket)
		if q.len() == 0 {
			s.buckets.Delete(it.bucket)
			s.bucketsMu.Unlock()
		} else {
			// Only this worker may surface a successor for its bucket,
			// which is what keeps the bucket serialized: the heap stays
			// the single source of ready items.
			next := q.pop()
			s.heapMu.Lock()
			if err := s.ready.Push(next); err != nil {
				glog.Errorf("sched: ready heap full: %v", err)
			}
			s.heapMu.Unlock()
			s.bucketsMu.Unlock()
		}

		s.heapMu.Lock()
		if s.stopped {
			s.active--
			if s.active == 0 {
				glog.V(2).Info("sched: last worker retiring after stop")
				close(s.done)
			}
			s.heapMu.Unlock()
			return
		}
		if s.ready.Len() == 0 {
			s.active--
			s.heapMu.Unlock()
			return
		}
		it, _ = s.ready.Pop()
		s.pending.Add(-1)
		s.heapMu.Unlock()
	}
}

// StopAndWait ceases dispatch, waits for every in-flight routine to
// finish, and returns the values that were never handed to the executor,
// ordered by priority descending and insertion order within a priority.
// Items enqueued after the stop are included by the next call.
func (s *Scheduler[T]) StopAndWait() []T {
	s.bucketsMu.Lock()
	s.heapMu.Lock()
	if s.done == nil {
		s.done = make(chan struct{})
		s.stopped = true
		if s.active == 0 {
			close(s.done)
		}
	}
	done := s.done
	s.heapMu.Unlock()
	s.bucketsMu.Unlock()

	<-done

	s.bucketsMu.Lock()
	s.heapMu.Lock()
	var drained []item[T]
	for s.ready.Len() > 0 {
		it, _ := s.ready.Pop()
		drained = append(drained, it)
	}
	var emptied []int64
	for iter := s.buckets.Iter(); iter.Next(); {
		q := iter.Elem()
		for q.len() > 0 {
			drained = append(drained, q.pop())
		}
		emptied = append(emptied, iter.Key())
	}
	for _, b := range emptied {
		s.buckets.Delete(b)
	}
	s.pending.Add(-int64(len(drained)))
	s.heapMu.Unlock()
	s.bucketsMu.Unlock()

	sort.Slice(drained, func(i, j int) bool {
		return drained[i].composite > drained[j].composite
	})
	values := make([]T, len(drained))
	for i, it := range drained {
		values[i] = it.value
	}
	glog.V(2).Infof("sched: stopped, drained %d undispatched items", len(values))
	return values
}
