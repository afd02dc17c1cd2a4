package btree

// prepareWrite returns a node equivalent to n that is safe to mutate
// in-place: if n is uniquely referenced (rc == 1) it is returned as-is,
// otherwise a private copy is made and n's own reference count is dropped
// by one. Every mutating path in mutate.go and rebalance.go calls this
// before touching a node's fields, which is the copy-on-write discipline
// that lets two trees share structure after Clone. Grounded on cords.go's
// swapNodeClone, generalized from the rope's single clone-or-not branch to
// the B+ tree's leaf/inner split.
func prepareWrite[T any](n node[T], cfg Config[T]) node[T] {
	if !isShared[T](n) {
		return n
	}
	*n.refs()--
	switch v := n.(type) {
	case *leafNode[T]:
		return cloneLeaf(v, cfg)
	case *innerNode[T]:
		return cloneInner(v, cfg.Limit)
	}
	panic("btree: unknown node kind")
}

// locate finds the child of an interior node containing logical position i
// (0 <= i < in.count()) and the position within that child, scanning from
// whichever end is nearer so that Get/Set near either edge of a wide node
// costs O(1) amortized rather than O(LIMIT). Grounded on blist.c's
// blist_locate, reconciled with tree.go's locateChildForInsert /
// locateChildForDelete (which scan only forward).
func locate[T any](in *innerNode[T], i int) (childIdx, offset int) {
	if i*2 < in.n {
		acc := 0
		for idx, c := range in.children {
			cn := c.count()
			if i < acc+cn {
				return idx, i - acc
			}
			acc += cn
		}
	} else {
		acc := in.n
		for idx := len(in.children) - 1; idx >= 0; idx-- {
			cn := in.children[idx].count()
			acc -= cn
			if i >= acc {
				return idx, i - acc
			}
		}
	}
	panic("btree: locate out of range")
}

// locateForInsert is like locate but treats i == in.count() (append at the
// end of the subtree) as belonging to the last child, since insertion at
// the end must still land somewhere.
func locateForInsert[T any](in *innerNode[T], i int) (childIdx, offset int) {
	if i == in.n {
		last := len(in.children) - 1
		return last, in.children[last].count()
	}
	return locate(in, i)
}

// reverseInPlace reverses the sequence of elements represented by the
// subtree rooted at n, cloning any node it needs to mutate that is shared
// with another tree. It never touches element reference counts: the same
// elements end up in the reversed order, so no retain/release is needed.
// Grounded on spec §4.10's "reverse: recursive in-place; reverses children
// and then recurses into each."
func reverseInPlace[T any](n node[T], cfg Config[T]) node[T] {
	n = prepareWrite[T](n, cfg)
	switch x := n.(type) {
	case *leafNode[T]:
		reverseSlice(x.items)
		return x
	case *innerNode[T]:
		reverseChildSlice(x.children)
		for i, c := range x.children {
			x.children[i] = reverseInPlace(c, cfg)
		}
		return x
	}
	return n
}

func reverseChildSlice[T any](s []node[T]) {
	for a, b := 0, len(s)-1; a < b; a, b = a+1, b-1 {
		s[a], s[b] = s[b], s[a]
	}
}

// height returns the number of edges from n down to a leaf, following the
// leftmost child; every sibling subtree of a balanced tree has the same
// height, so descending one path suffices.
func height[T any](n node[T]) int {
	h := 0
	for {
		in, ok := n.(*innerNode[T])
		if !ok {
			return h
		}
		n = in.children[0]
		h++
	}
}
