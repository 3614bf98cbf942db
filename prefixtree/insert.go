// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package prefixtree

import "github.com/aristanetworks/gocollections/errs"

// Insert adds key with value, reporting whether the tree was modified.
// The empty key is rejected; a present key is resolved per policy. A
// failed insert leaves the tree untouched. Keys containing NUL bytes
// have undefined behavior.
func (t *Tree[V]) Insert(key string, value V, policy InsertPolicy) (bool, error) {
	if len(key) == 0 {
		return false, errs.New(errs.KindEmptyInput, "prefixtree.Insert", "empty key")
	}
	c0 := t.fold(key[0])
	ni := t.rootFor(c0)
	if ni == noNode {
		// First key starting with this byte: a single leaf holds the
		// whole suffix implicitly.
		mi := t.addMatch(key, value)
		ni = t.addNode(node{ch: c0, fastIdx: noNode, matchIdx: mi})
		t.setRoot(c0, ni)
		return true, nil
	}

	// Walk down one byte per node. ni is at depth i: key[:i] has been
	// consumed and t.nodes[ni].ch == fold(key[i-1]).
	i := 1
	for {
		if i == len(key) {
			return t.insertEnd(ni, key, value, policy)
		}
		c := t.fold(key[i])
		n := t.nodes[ni]
		if n.fastIdx != noNode && n.fastCh == c {
			ni = n.fastIdx
			i++
			continue
		}
		if n.isLeaf() {
			return t.splitLeaf(ni, i, key, value, policy)
		}
		if len(n.overflow) == 0 {
			// The fast edge is taken by another byte; promote c into a
			// fresh overflow list.
			mi := t.addMatch(key, value)
			leaf := t.addNode(node{ch: c, fastIdx: noNode, matchIdx: mi})
			t.nodes[ni].overflow = []int32{leaf}
			return true, nil
		}
		next := noNode
		for _, ci := range n.overflow {
			if t.nodes[ci].ch == c {
				next = ci
				break
			}
		}
		if next == noNode {
			mi := t.addMatch(key, value)
			leaf := t.addNode(node{ch: c, fastIdx: noNode, matchIdx: mi})
			t.nodes[ni].overflow = append(t.nodes[ni].overflow, leaf)
			return true, nil
		}
		ni = next
		i++
	}
}

// splitLeaf restructures the leaf ni, which holds an earlier key that
// shares key[:i] with the new one. The shared run beyond i is
// materialized as a chain of single-fast-child nodes; the two keys then
// either terminate on the fork node or hang off it as fresh leaves.
func (t *Tree[V]) splitLeaf(ni int32, i int, key string, value V, policy InsertPolicy) (bool, error) {
	prevMi := t.nodes[ni].matchIdx
	prev := t.matches[prevMi].Key

	l := i
	for l < len(key) && l < len(prev) && t.fold(key[l]) == t.fold(prev[l]) {
		l++
	}
	if l == len(key) && l == len(prev) {
		return t.resolveDuplicate(prevMi, value, policy)
	}

	fork := ni
	for d := i; d < l; d++ {
		c := t.fold(key[d])
		child := t.addNode(node{ch: c, fastIdx: noNode, matchIdx: noMatch})
		t.nodes[fork].fastCh = c
		t.nodes[fork].fastIdx = child
		fork = child
	}

	switch {
	case l == len(key):
		// The new key ends on the fork; the earlier, longer key moves
		// one node deeper and keeps its remaining suffix implicit.
		newMi := t.addMatch(key, value)
		prevLeaf := t.addNode(node{ch: t.fold(prev[l]), fastIdx: noNode, matchIdx: prevMi})
		t.nodes[ni].matchIdx = noMatch
		t.nodes[fork].matchIdx = newMi
		t.nodes[fork].fastCh = t.fold(prev[l])
		t.nodes[fork].fastIdx = prevLeaf
	case l == len(prev):
		// The earlier key ends on the fork; the new key continues past it.
		newMi := t.addMatch(key, value)
		c := t.fold(key[l])
		newLeaf := t.addNode(node{ch: c, fastIdx: noNode, matchIdx: newMi})
		if fork != ni {
			t.nodes[ni].matchIdx = noMatch
			t.nodes[fork].matchIdx = prevMi
		}
		t.nodes[fork].fastCh = c
		t.nodes[fork].fastIdx = newLeaf
	default:
		// The keys diverge at l: the fork gains the earlier key's next
		// byte as its fast child and the new key's as its first
		// overflow entry.
		newMi := t.addMatch(key, value)
		prevLeaf := t.addNode(node{ch: t.fold(prev[l]), fastIdx: noNode, matchIdx: prevMi})
		newLeaf := t.addNode(node{ch: t.fold(key[l]), fastIdx: noNode, matchIdx: newMi})
		t.nodes[ni].matchIdx = noMatch
		t.nodes[fork].fastCh = t.fold(prev[l])
		t.nodes[fork].fastIdx = prevLeaf
		t.nodes[fork].overflow = []int32{newLeaf}
	}
	return true, nil
}

// insertEnd handles a walk that consumed all of key at node ni.
func (t *Tree[V]) insertEnd(ni int32, key string, value V, policy InsertPolicy) (bool, error) {
	mi := t.nodes[ni].matchIdx
	if mi == noMatch {
		t.nodes[ni].matchIdx = t.addMatch(key, value)
		return true, nil
	}
	stored := t.matches[mi].Key
	if len(stored) == len(key) {
		// Path equality plus equal length means the keys are equal.
		return t.resolveDuplicate(mi, value, policy)
	}
	// The node is a leaf whose stored key extends past the new key:
	// push the old match one node deeper along a fresh fast edge and
	// install the new match here. Happens when input is not sorted
	// shortest-first.
	newMi := t.addMatch(key, value)
	c := t.fold(stored[len(key)])
	leaf := t.addNode(node{ch: c, fastIdx: noNode, matchIdx: mi})
	t.nodes[ni].fastCh = c
	t.nodes[ni].fastIdx = leaf
	t.nodes[ni].matchIdx = newMi
	return true, nil
}

func (t *Tree[V]) resolveDuplicate(mi int32, value V, policy InsertPolicy) (bool, error) {
	switch policy {
	case OverwriteExisting:
		t.matches[mi].Value = value
		return true, nil
	case SkipExisting:
		return false, nil
	}
	return false, errs.New(errs.KindDuplicateKey, "prefixtree.Insert", t.matches[mi].Key)
}
