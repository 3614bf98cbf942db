// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package strmap provides a hash map that can be queried by a substring
// of a larger buffer without materializing a key string per lookup. The
// table is open-addressed with linear probing; the hash is seeded per
// instance so probe order is not stable across instances or processes.
//
// A Map is not safe for concurrent use.
package strmap

import (
	"golang.org/x/exp/rand"

	"github.com/aristanetworks/gocollections/errs"
)

// SetPolicy controls how Set treats a key that is already present.
type SetPolicy uint8

const (
	// ErrorOnExisting makes Set fail with a duplicate-key error.
	ErrorOnExisting SetPolicy = iota
	// OverwriteExisting makes Set replace the existing value.
	OverwriteExisting
)

const (
	stateEmpty = iota
	stateFilled
	stateTombstone
)

const (
	fnvOffset32 = 2166136261
	fnvPrime32  = 16777619
)

type entry[V any] struct {
	hash  uint32
	state uint8
	key   string
	val   V
}

// Map associates string keys with values of type V. Lookups and removals
// may address the key as a (buffer, offset, length) region.
type Map[V any] struct {
	entries []entry[V] // power-of-two sized
	seed    uint32
	count   int // filled entries
	used    int // filled + tombstones
}

// New returns a Map sized for about sizeHint entries. Each Map draws its
// own hash seed, so numeric hash values are not comparable between
// instances.
func New[V any](sizeHint int) *Map[V] {
	size := 8
	for size*3 < sizeHint*4 {
		size <<= 1
	}
	return &Map[V]{
		entries: make([]entry[V], size),
		seed:    rand.Uint32(),
	}
}

// Len returns the number of keys present.
func (m *Map[V]) Len() int {
	return m.count
}

// hashRegion is 32-bit FNV-1a over buf[off:off+n], mixed with the
// per-instance seed.
func (m *Map[V]) hashRegion(buf string, off, n int) uint32 {
	h := uint32(fnvOffset32)
	for i := off; i < off+n; i++ {
		h ^= uint32(buf[i])
		h *= fnvPrime32
	}
	return h ^ m.seed
}

// Set inserts key with val. A present key fails with duplicate-key under
// ErrorOnExisting and is replaced under OverwriteExisting. The empty key
// is rejected.
func (m *Map[V]) Set(key string, val V, policy SetPolicy) error {
	if len(key) == 0 {
		return errs.New(errs.KindEmptyInput, "strmap.Set", "empty key")
	}
	if (m.used+1)*4 > len(m.entries)*3 {
		m.rehash()
	}
	h := m.hashRegion(key, 0, len(key))
	mask := uint32(len(m.entries) - 1)
	i := h & mask
	insert := -1
	for {
		e := &m.entries[i]
		switch e.state {
		case stateEmpty:
			if insert < 0 {
				insert = int(i)
			}
			m.entries[insert] = entry[V]{hash: h, state: stateFilled, key: key, val: val}
			m.count++
			m.used++
			return nil
		case stateTombstone:
			if insert < 0 {
				insert = int(i)
			}
		case stateFilled:
			if e.hash == h && e.key == key {
				if policy == OverwriteExisting {
					e.val = val
					return nil
				}
				return errs.New(errs.KindDuplicateKey, "strmap.Set", key)
			}
		}
		i = (i + 1) & mask
	}
}

// Get returns the value stored for key.
func (m *Map[V]) Get(key string) (V, bool) {
	v, ok, _ := m.lookup(key, 0, len(key))
	return v, ok
}

// GetRegion returns the value stored for the key equal to
// buf[offset:offset+length], without allocating that key.
func (m *Map[V]) GetRegion(buf string, offset, length int) (V, bool, error) {
	if offset < 0 || length < 0 || offset+length > len(buf) {
		var zero V
		return zero, false, errs.Newf(errs.KindOutOfRange, "strmap.GetRegion",
			"offset %d length %d in buffer of %d", offset, length, len(buf))
	}
	return m.lookup(buf, offset, length)
}

func (m *Map[V]) lookup(buf string, off, n int) (V, bool, error) {
	var zero V
	if m.count == 0 || n == 0 {
		return zero, false, nil
	}
	h := m.hashRegion(buf, off, n)
	mask := uint32(len(m.entries) - 1)
	i := h & mask
	for {
		e := &m.entries[i]
		switch e.state {
		case stateEmpty:
			return zero, false, nil
		case stateFilled:
			if e.hash == h && len(e.key) == n && e.key == buf[off:off+n] {
				return e.val, true, nil
			}
		}
		i = (i + 1) & mask
	}
}

// Remove deletes key, reporting whether it was present.
func (m *Map[V]) Remove(key string) bool {
	ok, _ := m.remove(key, 0, len(key))
	return ok
}

// RemoveRegion deletes the key equal to buf[offset:offset+length],
// reporting whether it was present.
func (m *Map[V]) RemoveRegion(buf string, offset, length int) (bool, error) {
	if offset < 0 || length < 0 || offset+length > len(buf) {
		return false, errs.Newf(errs.KindOutOfRange, "strmap.RemoveRegion",
			"offset %d length %d in buffer of %d", offset, length, len(buf))
	}
	return m.remove(buf, offset, length)
}

func (m *Map[V]) remove(buf string, off, n int) (bool, error) {
	if m.count == 0 || n == 0 {
		return false, nil
	}
	h := m.hashRegion(buf, off, n)
	mask := uint32(len(m.entries) - 1)
	i := h & mask
	for {
		e := &m.entries[i]
		switch e.state {
		case stateEmpty:
			return false, nil
		case stateFilled:
			if e.hash == h && len(e.key) == n && e.key == buf[off:off+n] {
				var zero V
				e.key = ""
				e.val = zero
				e.state = stateTombstone
				m.count--
				return true, nil
			}
		}
		i = (i + 1) & mask
	}
}

// rehash doubles the table when genuinely full, or rebuilds at the same
// size when the load is mostly tombstones.
func (m *Map[V]) rehash() {
	size := len(m.entries)
	if size == 0 {
		size = 8
	} else if (m.count+1)*2 > size {
		size <<= 1
	}
	old := m.entries
	m.entries = make([]entry[V], size)
	m.used = 0
	mask := uint32(size - 1)
	for _, e := range old {
		if e.state != stateFilled {
			continue
		}
		i := e.hash & mask
		for m.entries[i].state == stateFilled {
			i = (i + 1) & mask
		}
		m.entries[i] = e
		m.used++
	}
}
