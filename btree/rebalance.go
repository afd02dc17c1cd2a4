package btree

// This file implements the rebalance kernel: the operations that keep
// every non-root node's fill between HALF and LIMIT after a mutation.
// Grounded on tree.go's rebalanceLeafChild / rebalanceInnerChild /
// applyRebalancePolicy / splitInner / concatNodes / concatSameHeight,
// reconciled against blist.c's blist_underflow / blist_borrow_left /
// blist_borrow_right / blist_merge_left / blist_merge_right /
// blist_insert_here / blist_reinsert_subtree / blist_concat_subtrees /
// blist_concat_roots, which the teacher's GC-backed tree does not need in
// the same shape since it never shares subtrees between trees.

// insertHere inserts v into leaf l at position i, splitting it into two
// leaves if the insert would overflow LIMIT. It returns the right half of
// the split, or nil if no split was needed.
func insertHere[T any](l *leafNode[T], i int, v T, cfg Config[T], p *pool[T]) *leafNode[T] {
	insertItemsAt(l, i, []T{v})
	if len(l.items) <= cfg.Limit {
		return nil
	}
	return splitLeaf(l, cfg, p)
}

func splitLeaf[T any](l *leafNode[T], cfg Config[T], p *pool[T]) *leafNode[T] {
	mid := len(l.items) / 2
	right := p.getLeaf()
	right.items = append(right.items, l.items[mid:]...)
	removeItemsRange(l, mid, len(l.items))
	return right
}

// insertSubtree inserts child c into interior node in at position i,
// splitting in into two interior nodes if the insert would overflow LIMIT.
// It returns the right half of the split, or nil.
func insertSubtree[T any](in *innerNode[T], i int, c node[T], cfg Config[T], p *pool[T]) *innerNode[T] {
	insertChildAt(in, i, c)
	in.n += c.count()
	if len(in.children) <= cfg.Limit {
		return nil
	}
	return splitInner(in, cfg, p)
}

func splitInner[T any](in *innerNode[T], cfg Config[T], p *pool[T]) *innerNode[T] {
	mid := len(in.children) / 2
	right := p.getInner()
	right.children = append(right.children, in.children[mid:]...)
	for i := mid; i < len(in.children); i++ {
		in.children[i] = nil
	}
	in.children = in.children[:mid]
	right.recount()
	in.recount()
	return right
}

// underflowLeaf repairs parent's child at idx, a leaf, after a deletion
// dropped it below HALF items. When a neighbor holds at least HALF plus
// child's shortfall, it borrows from that neighbor, splitting their
// combined items evenly; otherwise it merges with a neighbor, emptying
// the absorbed sibling and removing it from parent. parent is assumed already uniquely
// owned (prepared for write) by the caller.
func underflowLeaf[T any](parent *innerNode[T], idx int, cfg Config[T], q *releaseQueue[T], p *pool[T]) {
	half := cfg.half()
	child := parent.children[idx].(*leafNode[T])
	if len(child.items) >= half || len(parent.children) == 1 {
		return
	}
	// A sibling can only lend without itself dropping below half: it must
	// hold at least half plus child's shortfall, so an even split leaves
	// both sides at or above half.
	shortfall := half - len(child.items)
	if idx > 0 {
		left := prepareWrite[T](parent.children[idx-1], cfg).(*leafNode[T])
		parent.children[idx-1] = left
		if len(left.items) >= half+shortfall {
			borrowLeafLeft(left, child)
			return
		}
	}
	if idx+1 < len(parent.children) {
		right := prepareWrite[T](parent.children[idx+1], cfg).(*leafNode[T])
		parent.children[idx+1] = right
		if len(right.items) >= half+shortfall {
			borrowLeafRight(child, right)
			return
		}
	}
	if idx > 0 {
		left := parent.children[idx-1].(*leafNode[T])
		mergeLeaves(left, child)
		q.deferNode(removeChildAt(parent, idx), p)
	} else {
		right := parent.children[idx+1].(*leafNode[T])
		mergeLeaves(child, right)
		q.deferNode(removeChildAt(parent, idx+1), p)
	}
}

func borrowLeafLeft[T any](left, right *leafNode[T]) {
	n := len(left.items) - (len(left.items)+len(right.items))/2
	moved := removeItemsRange(left, len(left.items)-n, len(left.items))
	insertItemsAt(right, 0, moved)
}

func borrowLeafRight[T any](left, right *leafNode[T]) {
	n := len(right.items) - (len(left.items)+len(right.items))/2
	moved := removeItemsRange(right, 0, n)
	insertItemsAt(left, len(left.items), moved)
}

func mergeLeaves[T any](left, right *leafNode[T]) {
	left.items = append(left.items, right.items...)
	right.items = right.items[:0]
}

// underflowInner is the interior-node analogue of underflowLeaf. After a
// borrow or merge it also re-checks the children of the node it repaired,
// since a range delete can leave them underfull as well.
func underflowInner[T any](parent *innerNode[T], idx int, cfg Config[T], q *releaseQueue[T], p *pool[T]) {
	half := cfg.half()
	child := parent.children[idx].(*innerNode[T])
	if len(child.children) >= half || len(parent.children) == 1 {
		return
	}
	// See underflowLeaf: a sibling must hold at least half plus child's
	// shortfall, not merely more than half, or an even split leaves both
	// sides underfull.
	shortfall := half - len(child.children)
	if idx > 0 {
		left := prepareWrite[T](parent.children[idx-1], cfg).(*innerNode[T])
		parent.children[idx-1] = left
		if len(left.children) >= half+shortfall {
			borrowInnerLeft(left, child)
			reconcileAfterRangeDelete(child, cfg, q, p)
			if len(child.children) < half {
				underflowInner(parent, idx, cfg, q, p)
			}
			return
		}
	}
	if idx+1 < len(parent.children) {
		right := prepareWrite[T](parent.children[idx+1], cfg).(*innerNode[T])
		parent.children[idx+1] = right
		if len(right.children) >= half+shortfall {
			borrowInnerRight(child, right)
			reconcileAfterRangeDelete(child, cfg, q, p)
			if len(child.children) < half {
				underflowInner(parent, idx, cfg, q, p)
			}
			return
		}
	}
	if idx > 0 {
		left := parent.children[idx-1].(*innerNode[T])
		mergeInners(left, child)
		q.deferNode(removeChildAt(parent, idx), p)
		reconcileAfterRangeDelete(left, cfg, q, p)
	} else {
		right := parent.children[idx+1].(*innerNode[T])
		mergeInners(child, right)
		q.deferNode(removeChildAt(parent, idx+1), p)
		reconcileAfterRangeDelete(child, cfg, q, p)
	}
}

func borrowInnerLeft[T any](left, right *innerNode[T]) {
	n := len(left.children) - (len(left.children)+len(right.children))/2
	moved := left.children[len(left.children)-n:]
	movedCount := 0
	for _, c := range moved {
		movedCount += c.count()
	}
	right.children = append(append([]node[T]{}, moved...), right.children...)
	right.n += movedCount
	for i := len(left.children) - n; i < len(left.children); i++ {
		left.children[i] = nil
	}
	left.children = left.children[:len(left.children)-n]
	left.n -= movedCount
}

func borrowInnerRight[T any](left, right *innerNode[T]) {
	n := len(right.children) - (len(left.children)+len(right.children))/2
	moved := right.children[:n]
	movedCount := 0
	for _, c := range moved {
		movedCount += c.count()
	}
	left.children = append(left.children, moved...)
	left.n += movedCount
	copy(right.children, right.children[n:])
	for i := len(right.children) - n; i < len(right.children); i++ {
		right.children[i] = nil
	}
	right.children = right.children[:len(right.children)-n]
	right.n -= movedCount
}

func mergeInners[T any](left, right *innerNode[T]) {
	left.children = append(left.children, right.children...)
	left.n += right.n
	right.children = right.children[:0]
	right.n = 0
}

// releaseNodeSkeleton decrements n's reference count and, only if that
// drops it to zero, recurses into its children doing the same, returning
// exhausted nodes to the pool. Unlike releaseQueue.deferNode/teardown, it
// never touches element reference counts. Root.SortFunc uses it to discard
// a freshly sorted rebuild that it declines to install: that rebuild's
// leaves hold elements without having retained them, so releasing them
// through the normal node teardown would under-count elements that the
// current tree still holds.
func releaseNodeSkeleton[T any](n node[T], p *pool[T]) {
	if n == nil {
		return
	}
	rc := n.refs()
	*rc--
	if *rc > 0 {
		return
	}
	if in, ok := n.(*innerNode[T]); ok {
		for i, c := range in.children {
			releaseNodeSkeleton(c, p)
			in.children[i] = nil
		}
	}
	p.release(n)
}

// collapse strips redundant single-child interior levels from the top of a
// subtree, reducing height without changing the sequence of elements it
// represents. Grounded on blist.c's behavior of never leaving a root with
// only one child whose own height could instead be the root's height.
func collapse[T any](n node[T]) node[T] {
	for {
		in, ok := n.(*innerNode[T])
		if !ok || len(in.children) != 1 {
			return n
		}
		only := in.children[0]
		in.children[0] = nil
		n = only
	}
}

// concat joins left and right, two independently rooted subtrees of
// possibly different heights, into a single subtree covering left's
// elements followed by right's. Both inputs are consumed: concat either
// reuses or releases every node it is handed. Grounded on blist.c's
// blist_concat_roots, which walks down the taller tree's rightmost (or
// leftmost) spine until it reaches the shorter tree's height, then grafts
// the shorter tree on as a sibling and rebalances upward.
func concat[T any](left, right node[T], cfg Config[T], q *releaseQueue[T], p *pool[T]) node[T] {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	hl, hr := height[T](left), height[T](right)
	switch {
	case hl == hr:
		return concatSameHeight(left, right, cfg, q, p)
	case hl > hr:
		return concatIntoTaller(left, right, hl-hr, cfg, q, p, true)
	default:
		return concatIntoTaller(right, left, hr-hl, cfg, q, p, false)
	}
}

func concatSameHeight[T any](left, right node[T], cfg Config[T], q *releaseQueue[T], p *pool[T]) node[T] {
	top := p.getInner()
	top.children = append(top.children, prepareWrite[T](left, cfg), prepareWrite[T](right, cfg))
	top.recount()
	if len(top.children) <= cfg.Limit {
		reconcileAfterRangeDelete(top, cfg, q, p)
		return collapse[T](top)
	}
	rightHalf := splitInner(top, cfg, p)
	grand := p.getInner()
	grand.children = append(grand.children, top, rightHalf)
	grand.recount()
	return grand
}

// concatIntoTaller grafts shorter onto one spine of taller. tallerIsLeft
// true means taller holds the left elements and shorter is grafted onto
// taller's rightmost spine; false means shorter holds the left elements
// and is grafted onto taller's leftmost spine. The node that receives the
// graft is then rebalanced, so an underfull shorter root is repaired.
func concatIntoTaller[T any](taller, shorter node[T], drop int, cfg Config[T], q *releaseQueue[T], p *pool[T], tallerIsLeft bool) node[T] {
	taller = prepareWrite[T](taller, cfg)
	top := taller.(*innerNode[T])
	path := []*innerNode[T]{top}
	cur := top
	for i := 0; i < drop-1; i++ {
		var idx int
		if tallerIsLeft {
			idx = len(cur.children) - 1
		} else {
			idx = 0
		}
		next := prepareWrite[T](cur.children[idx], cfg).(*innerNode[T])
		cur.children[idx] = next
		cur = next
		path = append(path, cur)
	}
	var insertIdx int
	if tallerIsLeft {
		insertIdx = len(cur.children)
	} else {
		insertIdx = 0
	}
	shorter = prepareWrite[T](shorter, cfg)
	insertChildAt(cur, insertIdx, shorter)
	cur.n += shorter.count()
	reconcileAfterRangeDelete(cur, cfg, q, p)
	var overflow *innerNode[T]
	if len(cur.children) > cfg.Limit {
		overflow = splitInner(cur, cfg, p)
	}
	return propagateSplit(path, overflow, cfg, p)
}

// propagateSplit walks back up path (innermost last) absorbing an overflow
// sibling produced at the bottom of the chain, splitting further ancestors
// as needed and recounting every ancestor on the way, and returns the new top-level node (possibly taller than
// path[0] if the root itself had to split).
func propagateSplit[T any](path []*innerNode[T], overflow *innerNode[T], cfg Config[T], p *pool[T]) node[T] {
	for i := len(path) - 2; i >= 0; i-- {
		parent := path[i]
		parent.recount()
		if overflow == nil {
			continue
		}
		child := path[i+1]
		idx := -1
		for j, c := range parent.children {
			if c == node[T](child) {
				idx = j
				break
			}
		}
		overflow = insertSubtree(parent, idx+1, overflow, cfg, p)
	}
	top := node[T](path[0])
	if overflow != nil {
		grand := p.getInner()
		grand.children = append(grand.children, top, overflow)
		grand.recount()
		top = grand
	}
	return top
}
