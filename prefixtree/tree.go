// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package prefixtree provides an insert-only mapping from non-empty
// string keys to values, supporting shortest, exact and longest prefix
// queries over a region of text.
//
// The structure is a hybrid of a trie and a radix tree kept in two flat
// arrays. Each node carries one inline "fast child" edge for the common
// unary-continuation case plus an overflow list for genuine branching,
// so a lookup normally follows a single index per character with no
// per-node map. Keys and values live in an append-only match array whose
// indices are stable for the lifetime of the tree.
//
// A Tree is not safe for concurrent use: writers require exclusive
// access, and reads are safe only while no writer is active.
package prefixtree

import (
	"math"

	"github.com/aristanetworks/gocollections/errs"
)

const (
	noNode  int32 = -1
	noMatch int32 = -1

	maxArrayCap = math.MaxInt32 - 1
)

// Match is a stored (key, value) pair. Matches are held in insertion
// order and never removed.
type Match[V any] struct {
	Key   string
	Value V
}

// InsertPolicy controls how Insert treats a key that is already present.
type InsertPolicy uint8

const (
	// ErrorOnExisting makes Insert fail with a duplicate-key error.
	ErrorOnExisting InsertPolicy = iota
	// OverwriteExisting makes Insert replace the existing value.
	OverwriteExisting
	// SkipExisting makes Insert leave the existing value and report the
	// tree as unmodified.
	SkipExisting
)

// node is one character position within some key prefix. fastCh/fastIdx
// form the inline edge, valid only when fastIdx != noNode; overflow
// holds the indices of any further children. A node with no children
// always carries a match, whose key may extend past the node: the
// remaining suffix is implicit and verified against the match record
// during lookups.
type node struct {
	ch       byte
	fastCh   byte
	fastIdx  int32
	matchIdx int32
	overflow []int32
}

func (n *node) isLeaf() bool {
	return n.fastIdx == noNode && len(n.overflow) == 0
}

// Tree maps non-empty string keys to values of type V. The first byte of
// every key is resolved through a direct 128-entry table when ASCII and
// a spill map otherwise.
type Tree[V any] struct {
	matches    []Match[V]
	nodes      []node
	ascii      [128]int32
	other      map[byte]int32
	ignoreCase bool
}

type options struct {
	matchCap   int
	nodeCap    int
	ignoreCase bool
}

// Option configures a Tree at construction.
type Option func(*options)

// WithMatchCapacity pre-allocates the match array.
func WithMatchCapacity(n int) Option {
	return func(o *options) { o.matchCap = n }
}

// WithNodeCapacity pre-allocates the node array.
func WithNodeCapacity(n int) Option {
	return func(o *options) { o.nodeCap = n }
}

// WithIgnoreCase makes key comparison ASCII case-insensitive. Behavior
// on non-ASCII letters is undefined. The mode is fixed for the lifetime
// of the tree.
func WithIgnoreCase() Option {
	return func(o *options) { o.ignoreCase = true }
}

// New returns an empty Tree.
func New[V any](opts ...Option) *Tree[V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	t := &Tree[V]{ignoreCase: o.ignoreCase}
	if o.matchCap > 0 {
		t.matches = make([]Match[V], 0, o.matchCap)
	}
	if o.nodeCap > 0 {
		t.nodes = make([]node, 0, o.nodeCap)
	}
	for i := range t.ascii {
		t.ascii[i] = noNode
	}
	return t
}

// NewFromMap returns a Tree holding every pair in m. Unless overridden,
// node capacity defaults to twice the number of keys. The insertion
// order, and therefore the match indices, follow Go's map iteration
// order.
func NewFromMap[V any](m map[string]V, opts ...Option) (*Tree[V], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.matchCap == 0 {
		o.matchCap = len(m)
	}
	if o.nodeCap == 0 {
		o.nodeCap = 2 * len(m)
	}
	t := New[V](func(oo *options) { *oo = o })
	for k, v := range m {
		if _, err := t.Insert(k, v, ErrorOnExisting); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NewFromPairs returns a Tree holding every pair in order. Duplicate
// keys fail with duplicate-key.
func NewFromPairs[V any](pairs []Match[V], opts ...Option) (*Tree[V], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.matchCap == 0 {
		o.matchCap = len(pairs)
	}
	if o.nodeCap == 0 {
		o.nodeCap = 2 * len(pairs)
	}
	t := New[V](func(oo *options) { *oo = o })
	for _, p := range pairs {
		if _, err := t.Insert(p.Key, p.Value, ErrorOnExisting); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Len returns the number of keys stored.
func (t *Tree[V]) Len() int {
	return len(t.matches)
}

// NodeCount returns the number of tree nodes allocated.
func (t *Tree[V]) NodeCount() int {
	return len(t.nodes)
}

// At returns the i-th match in insertion order.
func (t *Tree[V]) At(i int) (Match[V], error) {
	if i < 0 || i >= len(t.matches) {
		return Match[V]{}, errs.Newf(errs.KindOutOfRange, "prefixtree.At",
			"%d of %d", i, len(t.matches))
	}
	return t.matches[i], nil
}

// Contains reports whether key is stored.
func (t *Tree[V]) Contains(key string) bool {
	_, ok := t.MatchExact(key)
	return ok
}

// Get returns the value stored for key, failing with key-not-found when
// absent.
func (t *Tree[V]) Get(key string) (V, error) {
	m, ok := t.MatchExact(key)
	if !ok {
		var zero V
		return zero, errs.New(errs.KindKeyNotFound, "prefixtree.Get", key)
	}
	return m.Value, nil
}

// Set inserts key or overwrites its value when present.
func (t *Tree[V]) Set(key string, value V) error {
	_, err := t.Insert(key, value, OverwriteExisting)
	return err
}

// EnsureMatchCapacity grows the match array to hold at least n records.
func (t *Tree[V]) EnsureMatchCapacity(n int) {
	if n > cap(t.matches) {
		s := make([]Match[V], len(t.matches), n)
		copy(s, t.matches)
		t.matches = s
	}
}

// EnsureNodeCapacity grows the node array to hold at least n nodes.
func (t *Tree[V]) EnsureNodeCapacity(n int) {
	if n > cap(t.nodes) {
		s := make([]node, len(t.nodes), n)
		copy(s, t.nodes)
		t.nodes = s
	}
}

// fold maps an ASCII upper-case byte to lower case when the tree is
// case-insensitive.
func (t *Tree[V]) fold(c byte) byte {
	if t.ignoreCase && c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func (t *Tree[V]) rootFor(c byte) int32 {
	if c < 128 {
		return t.ascii[c]
	}
	if i, ok := t.other[c]; ok {
		return i
	}
	return noNode
}

func (t *Tree[V]) setRoot(c byte, i int32) {
	if c < 128 {
		t.ascii[c] = i
		return
	}
	if t.other == nil {
		t.other = make(map[byte]int32)
	}
	t.other[c] = i
}

func (t *Tree[V]) addMatch(key string, value V) int32 {
	if len(t.matches) == cap(t.matches) {
		s := make([]Match[V], len(t.matches), grownCap(cap(t.matches)))
		copy(s, t.matches)
		t.matches = s
	}
	t.matches = append(t.matches, Match[V]{Key: key, Value: value})
	return int32(len(t.matches) - 1)
}

func (t *Tree[V]) addNode(n node) int32 {
	if len(t.nodes) == cap(t.nodes) {
		s := make([]node, len(t.nodes), grownCap(cap(t.nodes)))
		copy(s, t.nodes)
		t.nodes = s
	}
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1)
}

// grownCap doubles from an initial capacity of 4, saturating just below
// the signed 32-bit maximum.
func grownCap(c int) int {
	if c == 0 {
		return 4
	}
	nc := c * 2
	if nc > maxArrayCap || nc < 0 {
		nc = maxArrayCap
	}
	return nc
}

// Iterator walks the match records in insertion order. The length is
// snapshotted at creation; mutating the tree during iteration is
// undefined.
type Iterator[V any] struct {
	t *Tree[V]
	n int
	i int
}

// Iter returns an Iterator positioned before the first match.
func (t *Tree[V]) Iter() *Iterator[V] {
	return &Iterator[V]{t: t, n: len(t.matches), i: -1}
}

// Next advances the iterator, reporting whether a match is available.
func (it *Iterator[V]) Next() bool {
	if it.i+1 >= it.n {
		return false
	}
	it.i++
	return true
}

// Match returns the current match record.
func (it *Iterator[V]) Match() Match[V] {
	return it.t.matches[it.i]
}
