package blist

import (
	"errors"
	"fmt"

	"blist/btree"
)

// ListError is the package error type, mirroring the teacher's CordError
// string-based sentinel style for simple, non-wrapped cases.
type ListError string

func (e ListError) Error() string { return string(e) }

// ErrIndexOutOfRange is flagged whenever a List position is out of bounds.
const ErrIndexOutOfRange = ListError("index out of range")

// ErrValueError is flagged by Index/Remove when a value is not found, or
// by Sort when a comparator observed the list being modified mid-sort.
const ErrValueError = ListError("value error")

// ErrTypeError is flagged when an operation that requires a Comparator or
// Refcounter is called on a List configured without one.
const ErrTypeError = ListError("type error: no comparator configured")

var (
	// ErrOverflow signals that an operation would exceed the maximum
	// representable element count.
	ErrOverflow = errors.New("blist: overflow")
	// ErrMemory signals an internal allocation failure.
	ErrMemory = errors.New("blist: allocation failed")
)

// wrapEngineErr translates a btree package sentinel into this package's
// taxonomy, preserving %w-wrapping so errors.Is still matches the
// underlying sentinel.
func wrapEngineErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, btree.ErrIndexOutOfRange):
		return fmt.Errorf("%w: %v", ErrIndexOutOfRange, err)
	case errors.Is(err, btree.ErrOverflow):
		return fmt.Errorf("%w: %v", ErrOverflow, err)
	case errors.Is(err, btree.ErrMemory):
		return fmt.Errorf("%w: %v", ErrMemory, err)
	case errors.Is(err, btree.ErrValueError):
		return fmt.Errorf("%w: %v", ErrValueError, err)
	default:
		return err
	}
}
