// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package prefixtree

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/aristanetworks/gocollections/errs"
	"github.com/aristanetworks/gocollections/test"
)

func build(t *testing.T, pairs []Match[int], opts ...Option) *Tree[int] {
	t.Helper()
	tree := New[int](opts...)
	for _, p := range pairs {
		if _, err := tree.Insert(p.Key, p.Value, ErrorOnExisting); err != nil {
			t.Fatalf("Insert(%q): %v", p.Key, err)
		}
	}
	return tree
}

var helloPairs = []Match[int]{
	{"Hell", 1}, {"Hello", 2}, {"Hello world", 3}, {"Hello world!", 4}, {"world", 5},
}

func TestLongestPrefix(t *testing.T) {
	tree := build(t, helloPairs)

	if m, ok := tree.MatchLongest("Hello everyone!"); !ok || m.Key != "Hello" || m.Value != 2 {
		t.Errorf("MatchLongest(Hello everyone!) = %+v, %v", m, ok)
	}
	if m, ok := tree.MatchExact("Hello "); ok {
		t.Errorf("MatchExact(Hello ) = %+v, want miss", m)
	}
	if m, ok := tree.MatchLongest("Hello "); !ok || m.Key != "Hello" || m.Value != 2 {
		t.Errorf("MatchLongest(Hello ) = %+v, %v", m, ok)
	}
	if m, ok := tree.MatchShortest("Hello "); !ok || m.Key != "Hell" || m.Value != 1 {
		t.Errorf("MatchShortest(Hello ) = %+v, %v", m, ok)
	}
}

func TestIgnoreCase(t *testing.T) {
	tree := build(t, helloPairs, WithIgnoreCase())

	if m, ok := tree.MatchLongest("HeLLo woRld!"); !ok || m.Key != "Hello world!" || m.Value != 4 {
		t.Errorf("MatchLongest(HeLLo woRld!) = %+v, %v", m, ok)
	}
	if !tree.Contains("hello") {
		t.Error("Contains(hello) = false")
	}
	if v, err := tree.Get("HELLO WORLD"); err != nil || v != 3 {
		t.Errorf("Get(HELLO WORLD) = %d, %v", v, err)
	}
	// The originally inserted spelling is what the match reports.
	if m, ok := tree.MatchExact("hell"); !ok || m.Key != "Hell" {
		t.Errorf("MatchExact(hell) = %+v, %v", m, ok)
	}
	if _, err := tree.Insert("HELLO", 9, ErrorOnExisting); !errs.IsKind(err, errs.KindDuplicateKey) {
		t.Errorf("case-folded duplicate: %v", err)
	}
}

func TestBranching(t *testing.T) {
	tree := build(t, []Match[int]{
		{"A", 1}, {"Abc", 2}, {"Aeiou", 3}, {"fooob", 4}, {"foobar1", 5}, {"foobar2", 6},
	})

	if m, ok := tree.MatchLongest("foobar123"); !ok || m.Key != "foobar1" || m.Value != 5 {
		t.Errorf("MatchLongest(foobar123) = %+v, %v", m, ok)
	}
	if m, ok := tree.MatchShortest("Aeiou and something"); !ok || m.Key != "A" || m.Value != 1 {
		t.Errorf("MatchShortest(Aeiou and something) = %+v, %v", m, ok)
	}
	if m, ok := tree.MatchExact("foobar123"); ok {
		t.Errorf("MatchExact(foobar123) = %+v, want miss", m)
	}
}

func TestRoundtrip(t *testing.T) {
	keys := []string{
		"a", "ab", "abc", "b", "ba", "bingo", "bin", "binder",
		"concurrency", "concurrent", "con", "co", "az", "a z",
	}
	tree := New[int]()
	for i, k := range keys {
		modified, err := tree.Insert(k, i, ErrorOnExisting)
		if err != nil || !modified {
			t.Fatalf("Insert(%q) = %v, %v", k, modified, err)
		}
	}
	if tree.Len() != len(keys) {
		t.Fatalf("Len = %d, want %d", tree.Len(), len(keys))
	}
	for i, k := range keys {
		m, ok := tree.MatchExact(k)
		if !ok || m.Key != k || m.Value != i {
			t.Errorf("MatchExact(%q) = %+v, %v", k, m, ok)
		}
		if at, err := tree.At(i); err != nil || at.Key != k {
			t.Errorf("At(%d) = %+v, %v, want key %q", i, at, err, k)
		}
	}
}

func TestInsertionOrderIteration(t *testing.T) {
	tree := build(t, helloPairs)
	var got []Match[int]
	for it := tree.Iter(); it.Next(); {
		got = append(got, it.Match())
	}
	if diff := test.Diff(helloPairs, got); diff != "" {
		t.Errorf("iteration order differs: %s", diff)
	}
}

func TestUnsortedInsertDisplacement(t *testing.T) {
	// Inserting a key that is a strict prefix of an already-stored key
	// and whose walk ends on that key's node must push the old match
	// one node deeper.
	tree := New[string]()
	for _, k := range []string{"abcd", "ab", "abc"} {
		if _, err := tree.Insert(k, k, ErrorOnExisting); err != nil {
			t.Fatalf("Insert(%q): %v", k, err)
		}
	}
	for _, k := range []string{"ab", "abc", "abcd"} {
		if m, ok := tree.MatchExact(k); !ok || m.Value != k {
			t.Errorf("MatchExact(%q) = %+v, %v", k, m, ok)
		}
	}
	if m, ok := tree.MatchLongest("abcdef"); !ok || m.Key != "abcd" {
		t.Errorf("MatchLongest(abcdef) = %+v, %v", m, ok)
	}
	if m, ok := tree.MatchShortest("abcdef"); !ok || m.Key != "ab" {
		t.Errorf("MatchShortest(abcdef) = %+v, %v", m, ok)
	}
}

func TestInsertPolicies(t *testing.T) {
	tree := New[int]()
	if _, err := tree.Insert("key", 1, ErrorOnExisting); err != nil {
		t.Fatal(err)
	}

	if _, err := tree.Insert("key", 2, ErrorOnExisting); !errs.IsKind(err, errs.KindDuplicateKey) {
		t.Errorf("ErrorOnExisting: %v", err)
	}
	if v, _ := tree.Get("key"); v != 1 {
		t.Errorf("value changed by failed insert: %d", v)
	}

	if modified, err := tree.Insert("key", 2, SkipExisting); err != nil || modified {
		t.Errorf("SkipExisting = %v, %v", modified, err)
	}
	if v, _ := tree.Get("key"); v != 1 {
		t.Errorf("value changed by skipped insert: %d", v)
	}

	if modified, err := tree.Insert("key", 2, OverwriteExisting); err != nil || !modified {
		t.Errorf("OverwriteExisting = %v, %v", modified, err)
	}
	if v, _ := tree.Get("key"); v != 2 {
		t.Errorf("value not overwritten: %d", v)
	}
}

func TestErrors(t *testing.T) {
	tree := New[int]()
	if _, err := tree.Insert("", 1, ErrorOnExisting); !errs.IsKind(err, errs.KindEmptyInput) {
		t.Errorf("empty key: %v", err)
	}
	if _, err := tree.Get("missing"); !errs.IsKind(err, errs.KindKeyNotFound) {
		t.Errorf("Get miss: %v", err)
	}
	if _, err := tree.At(0); !errs.IsKind(err, errs.KindOutOfRange) {
		t.Errorf("At(0) on empty: %v", err)
	}
	tree.Set("k", 1)
	for _, tc := range []struct{ off, n int }{{-1, 1}, {0, -1}, {1, 1}, {0, 2}} {
		if _, _, err := tree.MatchLongestRegion("k", tc.off, tc.n); !errs.IsKind(err, errs.KindOutOfRange) {
			t.Errorf("region (%d,%d): %v", tc.off, tc.n, err)
		}
	}
}

func TestRegionEquivalence(t *testing.T) {
	tree := build(t, helloPairs)
	texts := []string{"xxHello world!yy", "Hello", "xHell", "world peace", ""}
	for _, text := range texts {
		for off := 0; off <= len(text); off++ {
			for n := 0; off+n <= len(text); n++ {
				sub := text[off : off+n]
				wantL, okL := tree.MatchLongest(sub)
				gotL, gok, err := tree.MatchLongestRegion(text, off, n)
				if err != nil || gok != okL || gotL != wantL {
					t.Fatalf("longest region (%q,%d,%d) = %+v,%v,%v want %+v,%v",
						text, off, n, gotL, gok, err, wantL, okL)
				}
				wantS, okS := tree.MatchShortest(sub)
				gotS, gok, _ := tree.MatchShortestRegion(text, off, n)
				if gok != okS || gotS != wantS {
					t.Fatalf("shortest region (%q,%d,%d) = %+v,%v want %+v,%v",
						text, off, n, gotS, gok, wantS, okS)
				}
				wantE, okE := tree.MatchExact(sub)
				gotE, gok, _ := tree.MatchExactRegion(text, off, n)
				if gok != okE || gotE != wantE {
					t.Fatalf("exact region (%q,%d,%d) = %+v,%v want %+v,%v",
						text, off, n, gotE, gok, wantE, okE)
				}
			}
		}
	}
}

func TestNewFromMap(t *testing.T) {
	m := map[string]int{"one": 1, "two": 2, "three": 3, "th": 30}
	tree, err := NewFromMap(m)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Len() != len(m) {
		t.Fatalf("Len = %d, want %d", tree.Len(), len(m))
	}
	for k, v := range m {
		if got, err := tree.Get(k); err != nil || got != v {
			t.Errorf("Get(%q) = %d, %v", k, got, err)
		}
	}
	if _, err := NewFromMap(map[string]int{"": 1}); !errs.IsKind(err, errs.KindEmptyInput) {
		t.Errorf("empty key in map: %v", err)
	}
}

func TestNewFromPairs(t *testing.T) {
	tree, err := NewFromPairs(helloPairs)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range helloPairs {
		if at, err := tree.At(i); err != nil || at != p {
			t.Errorf("At(%d) = %+v, %v, want %+v", i, at, err, p)
		}
	}
	dup := append([]Match[int]{}, helloPairs...)
	dup = append(dup, Match[int]{"Hell", 9})
	if _, err := NewFromPairs(dup); !errs.IsKind(err, errs.KindDuplicateKey) {
		t.Errorf("duplicate pair: %v", err)
	}
}

// naive is the reference the randomized test compares against.
type naive struct {
	keys   map[string]int
	folded bool
}

func (n naive) fold(s string) string {
	if n.folded {
		return strings.ToLower(s)
	}
	return s
}

func (n naive) match(text string, mode matchMode) (string, int, bool) {
	bestKey, bestVal, found := "", 0, false
	for k, v := range n.keys {
		fk, ft := n.fold(k), n.fold(text)
		if !strings.HasPrefix(ft, fk) {
			continue
		}
		switch mode {
		case matchExact:
			if len(fk) == len(ft) {
				return k, v, true
			}
		case matchShortest:
			if !found || len(k) < len(bestKey) {
				bestKey, bestVal, found = k, v, true
			}
		case matchLongest:
			if !found || len(k) > len(bestKey) {
				bestKey, bestVal, found = k, v, true
			}
		}
	}
	return bestKey, bestVal, found
}

func TestRandomizedAgainstReference(t *testing.T) {
	for _, folded := range []bool{false, true} {
		r := rand.New(rand.NewSource(1))
		alphabet := "abAB"
		randKey := func() string {
			n := 1 + r.Intn(8)
			var sb strings.Builder
			for i := 0; i < n; i++ {
				sb.WriteByte(alphabet[r.Intn(len(alphabet))])
			}
			return sb.String()
		}

		var opts []Option
		if folded {
			opts = append(opts, WithIgnoreCase())
		}
		tree := New[int](opts...)
		ref := naive{keys: map[string]int{}, folded: folded}

		for i := 0; i < 500; i++ {
			k := randKey()
			if _, taken := ref.keys[strings.ToLower(k)]; folded && taken {
				continue
			}
			if _, taken := ref.keys[k]; !folded && taken {
				continue
			}
			if folded {
				// Track by folded key so the reference agrees on duplicates,
				// but remember the inserted spelling.
				modified, err := tree.Insert(k, i, SkipExisting)
				if err != nil {
					t.Fatal(err)
				}
				if modified {
					ref.keys[strings.ToLower(k)] = i
				}
			} else {
				if _, err := tree.Insert(k, i, ErrorOnExisting); err != nil {
					t.Fatal(err)
				}
				ref.keys[k] = i
			}
		}

		for i := 0; i < 2000; i++ {
			text := randKey()
			for _, mode := range []matchMode{matchShortest, matchExact, matchLongest} {
				wantKey, wantVal, wantOK := ref.match(text, mode)
				got, ok := tree.find(text, 0, len(text), mode)
				if ok != wantOK {
					t.Fatalf("folded=%v mode=%d text=%q: ok=%v want %v",
						folded, mode, text, ok, wantOK)
				}
				if !ok {
					continue
				}
				if got.Value != wantVal || len(got.Key) != len(wantKey) {
					t.Fatalf("folded=%v mode=%d text=%q: got (%q,%d) want (%q,%d)",
						folded, mode, text, got.Key, got.Value, wantKey, wantVal)
				}
			}
		}
	}
}

func TestCapacityOptionsAndGrowth(t *testing.T) {
	tree := New[int](WithMatchCapacity(2), WithNodeCapacity(2))
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}
	for i, w := range words {
		if _, err := tree.Insert(w, i, ErrorOnExisting); err != nil {
			t.Fatal(err)
		}
	}
	if tree.Len() != len(words) {
		t.Errorf("Len = %d", tree.Len())
	}
	tree.EnsureMatchCapacity(100)
	tree.EnsureNodeCapacity(100)
	for i, w := range words {
		if v, err := tree.Get(w); err != nil || v != i {
			t.Errorf("Get(%q) after growth = %d, %v", w, v, err)
		}
	}
}

func TestNonASCIIKeys(t *testing.T) {
	// Byte-wise handling of multi-byte runes, no case folding applied.
	tree := New[int]()
	keys := []string{"héllo", "hé", "日本", "日本語"}
	for i, k := range keys {
		if _, err := tree.Insert(k, i, ErrorOnExisting); err != nil {
			t.Fatalf("Insert(%q): %v", k, err)
		}
	}
	for i, k := range keys {
		if v, err := tree.Get(k); err != nil || v != i {
			t.Errorf("Get(%q) = %d, %v", k, v, err)
		}
	}
	if m, ok := tree.MatchLongest("日本語です"); !ok || m.Key != "日本語" {
		t.Errorf("MatchLongest = %+v, %v", m, ok)
	}
	if m, ok := tree.MatchShortest("日本語です"); !ok || m.Key != "日本" {
		t.Errorf("MatchShortest = %+v, %v", m, ok)
	}
}
