/*
Package blist implements a persistent, general-purpose list backed by a B+
tree.

A List stores elements in the leaves of a copy-on-write B+ tree. Insert,
Remove and Sort mutate the receiver and leave any other List that shared
its structure untouched; Concat returns a new List. Shared nodes are copied
only when first written, making Clone an O(1) operation regardless of
length.

All positional APIs operate on logical element indexes, not byte or rune
offsets: List is agnostic to what T actually is.

Typical usage:

	l, _ := blist.New[int](blist.Config[int]{})
	l.Append(1)
	l.Append(2)
	l2 := l.Clone()
	l2.Append(3)
	// l still has length 2; l2 has length 3.

Package `btree` contains the generic persistent B+ tree engine this package
is built on.
*/
package blist

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'blist'.
func tracer() tracing.Trace {
	return tracing.Select("blist")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
