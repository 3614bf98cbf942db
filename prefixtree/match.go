// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package prefixtree

import "github.com/aristanetworks/gocollections/errs"

type matchMode uint8

const (
	matchShortest matchMode = iota
	matchExact
	matchLongest
)

// MatchShortest returns the shortest stored key that is a prefix of
// text, with its value.
func (t *Tree[V]) MatchShortest(text string) (Match[V], bool) {
	return t.find(text, 0, len(text), matchShortest)
}

// MatchExact returns the stored key equal to text, with its value.
func (t *Tree[V]) MatchExact(text string) (Match[V], bool) {
	return t.find(text, 0, len(text), matchExact)
}

// MatchLongest returns the longest stored key that is a prefix of text,
// with its value.
func (t *Tree[V]) MatchLongest(text string) (Match[V], bool) {
	return t.find(text, 0, len(text), matchLongest)
}

// MatchShortestRegion is MatchShortest over text[offset:offset+length].
func (t *Tree[V]) MatchShortestRegion(text string, offset, length int) (Match[V], bool, error) {
	if err := checkRegion("prefixtree.MatchShortestRegion", text, offset, length); err != nil {
		return Match[V]{}, false, err
	}
	m, ok := t.find(text, offset, length, matchShortest)
	return m, ok, nil
}

// MatchExactRegion is MatchExact over text[offset:offset+length].
func (t *Tree[V]) MatchExactRegion(text string, offset, length int) (Match[V], bool, error) {
	if err := checkRegion("prefixtree.MatchExactRegion", text, offset, length); err != nil {
		return Match[V]{}, false, err
	}
	m, ok := t.find(text, offset, length, matchExact)
	return m, ok, nil
}

// MatchLongestRegion is MatchLongest over text[offset:offset+length].
func (t *Tree[V]) MatchLongestRegion(text string, offset, length int) (Match[V], bool, error) {
	if err := checkRegion("prefixtree.MatchLongestRegion", text, offset, length); err != nil {
		return Match[V]{}, false, err
	}
	m, ok := t.find(text, offset, length, matchLongest)
	return m, ok, nil
}

func checkRegion(op, text string, offset, length int) error {
	if offset < 0 || length < 0 || offset+length > len(text) {
		return errs.Newf(errs.KindOutOfRange, op,
			"offset %d length %d in text of %d", offset, length, len(text))
	}
	return nil
}

// find is the shared matcher. It walks from the root entry for the
// region's first byte, visiting one node per byte. A node whose match
// terminates exactly at its depth is a hit candidate; a childless node
// whose stored key extends past its depth is compared against the
// remaining region, since that suffix exists only in the match record.
func (t *Tree[V]) find(text string, offset, length int, mode matchMode) (Match[V], bool) {
	if length == 0 {
		return Match[V]{}, false
	}
	ni := t.rootFor(t.fold(text[offset]))
	if ni == noNode {
		return Match[V]{}, false
	}
	depth := 1
	best := noMatch
	for {
		n := t.nodes[ni]
		leaf := n.isLeaf()
		if n.matchIdx != noMatch {
			mk := t.matches[n.matchIdx].Key
			if len(mk) == depth {
				switch mode {
				case matchShortest:
					return t.matches[n.matchIdx], true
				case matchExact:
					if depth == length {
						return t.matches[n.matchIdx], true
					}
				case matchLongest:
					best = n.matchIdx
				}
			} else if leaf && len(mk) <= length &&
				t.regionEq(mk, depth, text, offset+depth, len(mk)-depth) {
				switch mode {
				case matchShortest:
					return t.matches[n.matchIdx], true
				case matchExact:
					if len(mk) == length {
						return t.matches[n.matchIdx], true
					}
				case matchLongest:
					best = n.matchIdx
				}
			}
		}
		if leaf || depth == length {
			break
		}
		c := t.fold(text[offset+depth])
		next := noNode
		if n.fastIdx != noNode && n.fastCh == c {
			next = n.fastIdx
		} else {
			for _, ci := range n.overflow {
				if t.nodes[ci].ch == c {
					next = ci
					break
				}
			}
		}
		if next == noNode {
			break
		}
		ni = next
		depth++
	}
	if mode == matchLongest && best != noMatch {
		return t.matches[best], true
	}
	return Match[V]{}, false
}

// regionEq compares a[ai:ai+n] with b[bi:bi+n] under the tree's folding.
func (t *Tree[V]) regionEq(a string, ai int, b string, bi, n int) bool {
	if !t.ignoreCase {
		return a[ai:ai+n] == b[bi:bi+n]
	}
	for i := 0; i < n; i++ {
		if t.fold(a[ai+i]) != t.fold(b[bi+i]) {
			return false
		}
	}
	return true
}
