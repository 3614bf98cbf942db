// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package errs defines the error kinds shared by the collection packages
// in this repository. Every failing operation returns an *Error carrying
// one of the Kind constants below, so callers can classify failures with
// errors.Is/errors.As instead of matching message strings.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies the failure class of a collection operation.
type Kind string

const (
	// KindNone indicates that the error kind is not defined
	KindNone Kind = "none"
	// KindNullArgument indicates that a required argument was absent
	KindNullArgument Kind = "null-argument"
	// KindOutOfRange indicates that a numeric parameter was outside its
	// documented domain
	KindOutOfRange Kind = "out-of-range"
	// KindEmptyInput indicates a zero-length key or region where a
	// non-empty one is required
	KindEmptyInput Kind = "empty-input"
	// KindKeyNotFound indicates that a keyed read missed
	KindKeyNotFound Kind = "key-not-found"
	// KindDuplicateKey indicates that an insert hit an existing key
	KindDuplicateKey Kind = "duplicate-key"
	// KindEmptyContainer indicates a read or removal from an empty container
	KindEmptyContainer Kind = "empty-container"
	// KindMaxCapacity indicates that growth would exceed the maximum
	// supported capacity
	KindMaxCapacity Kind = "maximum-capacity-reached"
)

// Error is the failure of a single collection operation. Op names the
// failing operation ("heap.Pop"), Detail carries operation-specific
// context such as the offending key or parameter.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
}

// New returns an *Error of the given kind.
func New(kind Kind, op, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail}
}

// Newf is New with a formatted detail string.
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Detail: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Detail)
}

// Is reports whether target is an *Error of the same kind. An *Error
// with an empty Op matches any operation, so
// errors.Is(err, errs.New(errs.KindDuplicateKey, "", "")) classifies
// without naming the operation.
func (e *Error) Is(target error) bool {
	var o *Error
	if !errors.As(target, &o) {
		return false
	}
	if o.Op != "" && o.Op != e.Op {
		return false
	}
	return o.Kind == e.Kind
}

// KindOf returns the Kind of err, or KindNone if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
