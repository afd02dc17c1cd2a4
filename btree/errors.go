package btree

import "errors"

var (
	// ErrInvalidConfig signals an invalid tree configuration.
	ErrInvalidConfig = errors.New("btree: invalid configuration")
	// ErrIndexOutOfRange signals an invalid positional index.
	ErrIndexOutOfRange = errors.New("btree: index out of range")
	// ErrValueError signals a not-found lookup or a sort that observed the
	// tree being modified by a comparator mid-sort.
	ErrValueError = errors.New("btree: value error")
	// ErrOverflow signals that an operation would exceed MaxElements.
	ErrOverflow = errors.New("btree: overflow")
	// ErrMemory signals an allocation failure (dirty-index growth, most
	// notably); the corresponding accelerator falls back to "wholly dirty".
	ErrMemory = errors.New("btree: allocation failed")
)
