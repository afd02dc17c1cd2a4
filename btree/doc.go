// Package btree implements the core tree engine of a BList: a B+ tree of
// elements with branching factor LIMIT and minimum fill HALF, supporting
// copy-on-write sharing between trees, a dirty-index accelerator for
// repeated positional access, bottom-up bulk construction via a forest,
// and a tree-structured merge sort.
//
// Element storage lives only in leaves; interior nodes carry child pointers
// plus the aggregate element count of their subtree. Nodes with a reference
// count greater than one are shared between trees and must be copied before
// they can be mutated (see prepareWrite).
package btree

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
