// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// The prefixmatch command loads a dictionary file into a prefix tree
// and matches every line of stdin against it.
//
// Dictionary lines are "key" or "key<TAB>value"; when the value is
// omitted the key is its own value.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aristanetworks/glog"

	"github.com/aristanetworks/gocollections/prefixtree"
)

func main() {
	dictFile := flag.String("dict", "", "Path to the dictionary `file`")
	mode := flag.String("mode", "longest", "Match mode: shortest, exact or longest")
	ignoreCase := flag.Bool("ignorecase", false, "ASCII case-insensitive matching")
	flag.Parse()

	if *dictFile == "" {
		glog.Fatal("You need to specify a dictionary using -dict")
	}
	tree, err := loadDict(*dictFile, *ignoreCase)
	if err != nil {
		glog.Fatalf("Can't load dictionary %q: %v", *dictFile, err)
	}
	glog.Infof("loaded %d keys, %d nodes", tree.Len(), tree.NodeCount())

	var match func(string) (prefixtree.Match[string], bool)
	switch *mode {
	case "shortest":
		match = tree.MatchShortest
	case "exact":
		match = tree.MatchExact
	case "longest":
		match = tree.MatchLongest
	default:
		glog.Fatalf("Unknown -mode %q", *mode)
	}

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		if m, ok := match(in.Text()); ok {
			fmt.Printf("%s\t%s\n", m.Key, m.Value)
		} else {
			fmt.Println("-")
		}
	}
	if err := in.Err(); err != nil {
		glog.Fatalf("Error reading stdin: %v", err)
	}
}

func loadDict(path string, ignoreCase bool) (*prefixtree.Tree[string], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var opts []prefixtree.Option
	if ignoreCase {
		opts = append(opts, prefixtree.WithIgnoreCase())
	}
	tree := prefixtree.New[string](opts...)

	in := bufio.NewScanner(f)
	line := 0
	for in.Scan() {
		line++
		text := in.Text()
		if text == "" {
			continue
		}
		key, value, ok := strings.Cut(text, "\t")
		if !ok {
			value = key
		}
		if _, err := tree.Insert(key, value, prefixtree.ErrorOnExisting); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return tree, nil
}
