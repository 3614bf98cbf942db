// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package test contains the comparison helpers shared by this
// repository's tests.
package test

import (
	"reflect"

	"github.com/kylelemons/godebug/pretty"
)

// equaler types define their own equality.
type equaler interface {
	// Equal returns true if this object is equal to the other one.
	Equal(other interface{}) bool
}

// DeepEqual compares a and b, giving types the ability to define their
// own comparison by implementing an Equal method.
func DeepEqual(a, b interface{}) bool {
	if ac, ok := a.(equaler); ok {
		return ac.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}

// Diff returns the difference of two objects in a human readable
// format, or the empty string when there is none.
func Diff(a, b interface{}) string {
	if DeepEqual(a, b) {
		return ""
	}
	d := pretty.Compare(a, b)
	if d == "" {
		// Equal under pretty printing but not DeepEqual, e.g. an Equal
		// method that inspects unexported state.
		d = pretty.Sprint(a) + " != " + pretty.Sprint(b)
	}
	return d
}
