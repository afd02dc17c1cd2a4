package btree

// The dirty-index accelerator caches, for each block of cfg.IndexFactor
// logical positions, the leaf that covers it and that leaf's starting
// offset, so repeated nearby Get calls (the common access pattern for
// sequential scans) skip the root-to-leaf descent entirely. A mutation can
// invalidate an unbounded range of blocks at once (an insert near the
// front shifts every block after it), so instead of eagerly recomputing
// the whole index table on every write we track *which* blocks are stale
// in a binary trie over block indices and only refill a block's cache
// entry the next time it's looked up.
//
// Grounded directly on blist.c's ext_init / ext_alloc / ext_free /
// ext_mark / ext_mark_r / ext_is_dirty / ext_find_dirty / ext_grow_index /
// ext_make_clean; the teacher has no analogue since its tree has no
// positional cache at all.

const (
	dirtyClean = -1 // sentinel: this whole subrange is clean
	dirtyDirty = -2 // sentinel: this whole subrange is dirty
)

// dirtyTrieNode is one level of the binary trie: left/right are either a
// sentinel (dirtyClean/dirtyDirty) or an index into the owning dirtyTrie's
// arena for a further split of that half.
type dirtyTrieNode struct {
	left, right int
}

// dirtyTrie is a free-list-backed arena of dirtyTrieNode, rooted at a
// single sentinel or node index. A fresh trie is "wholly dirty" (root ==
// dirtyDirty), matching ext_init's initial state before anything has been
// cached.
type dirtyTrie struct {
	arena []dirtyTrieNode
	free  []int
	root  int
}

func newDirtyTrie() dirtyTrie {
	return dirtyTrie{root: dirtyDirty}
}

func (t *dirtyTrie) alloc() int {
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		return idx
	}
	t.arena = append(t.arena, dirtyTrieNode{})
	return len(t.arena) - 1
}

func (t *dirtyTrie) free_(idx int) {
	if idx < 0 {
		return // sentinel, nothing to free
	}
	n := t.arena[idx]
	t.free_(n.left)
	t.free_(n.right)
	t.free = append(t.free, idx)
}

// reset marks the whole trie dirty, discarding all nodes back to the
// free-list. Called whenever a mutation may have invalidated everything
// (the conservative default; markClean re-establishes precision).
func (t *dirtyTrie) reset() {
	if t.root >= 0 {
		t.free_(t.root)
	}
	t.root = dirtyDirty
}

// markClean marks block i as clean within a universe of n total blocks,
// splitting nodes along the path from the root as needed. Grounded on
// ext_mark/ext_mark_r's recursive descent-and-split, including
// consolidation back into a single sentinel once both children agree.
func (t *dirtyTrie) markClean(i, n int) {
	t.root = t.markCleanNode(t.root, 0, n, i)
}

func (t *dirtyTrie) markCleanNode(node, lo, hi, i int) int {
	if hi-lo == 1 {
		return dirtyClean
	}
	if node == dirtyClean {
		return dirtyClean
	}
	var left, right int
	mid := lo + (hi-lo)/2
	if node == dirtyDirty {
		left, right = dirtyDirty, dirtyDirty
	} else {
		n := t.arena[node]
		left, right = n.left, n.right
	}
	if i < mid {
		left = t.markCleanNode(left, lo, mid, i)
	} else {
		right = t.markCleanNode(right, mid, hi, i)
	}
	if left == dirtyClean && right == dirtyClean {
		if node >= 0 {
			t.free = append(t.free, node)
		}
		return dirtyClean
	}
	idx := node
	if idx < 0 {
		idx = t.alloc()
	}
	t.arena[idx] = dirtyTrieNode{left: left, right: right}
	return idx
}

// isDirty reports whether block i is marked dirty within a universe of n
// total blocks.
func (t *dirtyTrie) isDirty(i, n int) bool {
	node := t.root
	lo, hi := 0, n
	for {
		switch node {
		case dirtyClean:
			return false
		case dirtyDirty:
			return true
		}
		mid := lo + (hi-lo)/2
		entry := t.arena[node]
		if i < mid {
			node, hi = entry.left, mid
		} else {
			node, lo = entry.right, mid
		}
	}
}

// invalidateIndex discards all cached index/offset entries and marks the
// whole accelerator dirty; called by every structural mutation since Root
// does not currently track which blocks a given edit actually touched.
func (r *Root[T]) invalidateIndex() {
	r.index = nil
	r.offset = nil
	r.dirty.reset()
}

// lookupIndex returns the leaf covering logical position i and i's offset
// within it, using the cached index/offset tables when the covering block
// is clean, and otherwise performing (and caching) a fresh descent.
func (r *Root[T]) lookupIndex(i int) (*leafNode[T], int, bool) {
	if r.root == nil {
		return nil, 0, false
	}
	factor := r.cfg.IndexFactor
	block := i / factor
	numBlocks := (r.Len() + factor - 1) / factor
	if numBlocks == 0 {
		return nil, 0, false
	}
	for len(r.index) < numBlocks {
		r.index = append(r.index, nil)
		r.offset = append(r.offset, 0)
	}
	if !r.dirty.isDirty(block, numBlocks) && r.index[block] != nil {
		leaf := r.index[block].(*leafNode[T])
		off := i - r.offset[block]
		if off >= 0 && off < len(leaf.items) {
			return leaf, off, true
		}
	}
	leaf, leafStart := r.descendToLeaf(i)
	if leaf == nil {
		return nil, 0, false
	}
	r.index[block] = leaf
	r.offset[block] = leafStart
	r.dirty.markClean(block, numBlocks)
	return leaf, i - leafStart, true
}

func (r *Root[T]) descendToLeaf(i int) (*leafNode[T], int) {
	n := r.root
	start := 0
	for {
		switch x := n.(type) {
		case *leafNode[T]:
			return x, start
		case *innerNode[T]:
			local := i - start
			idx, off := locate(x, local)
			start = start + (local - off)
			n = x.children[idx]
		default:
			return nil, 0
		}
	}
}
