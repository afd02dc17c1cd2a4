package btree

import "fmt"

// Root wraps a tree's root node together with the bookkeeping that does
// not belong on the node itself: the tree height, the
// deferred-release queue, the node pool, and a dirty-index accelerator
// that caches repeated positional lookups. No analogue of this type exists
// in the teacher (a bare *Tree there); it is grounded directly on
// blist.c's per-list fields (count, index, offset, setclean, dirty) and
// the ext_* functions that maintain them.
type Root[T any] struct {
	cfg  Config[T]
	root node[T]
	ht   int
	rq   *releaseQueue[T]
	pool *pool[T]
	gen  int // bumped on every structural mutation; see SortFunc's re-entrancy guard

	index   []node[T] // cached leaf for block i (block size cfg.IndexFactor)
	offset  []int     // logical start offset of index[i]
	dirty   dirtyTrie // tracks which blocks of index/offset are stale
}

// NewRoot returns an empty Root.
func NewRoot[T any](cfg Config[T]) (*Root[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.normalized()
	r := &Root[T]{cfg: cfg, pool: newPool[T](cfg.Limit), dirty: newDirtyTrie()}
	r.rq = newReleaseQueue[T](cfg)
	return r, nil
}

// NewRootFromNode wraps an already-assembled subtree (typically the result
// of a Forest.Finish bulk build) as a fresh Root, bypassing per-element
// ins1 calls entirely. Used by the blist package's Builder, grounded on
// spec §4.7's "bottom-up bulk construction" used directly as a List
// constructor rather than only as an Extend helper.
func NewRootFromNode[T any](cfg Config[T], root node[T]) *Root[T] {
	cfg = cfg.normalized()
	r := &Root[T]{cfg: cfg, root: root, pool: newPool[T](cfg.Limit), dirty: newDirtyTrie()}
	r.rq = newReleaseQueue[T](cfg)
	r.ht = height[T](r.root)
	return r
}

func (r *Root[T]) Len() int {
	return countOf[T](r.root)
}

func (r *Root[T]) Height() int {
	return r.ht
}

// Clone returns a new Root sharing r's current structure via copy-on-write;
// neither Root's subsequent mutations affect the other until they touch a
// shared node, at which point prepareWrite copies it.
func (r *Root[T]) Clone() *Root[T] {
	retainNode[T](r.root)
	c := &Root[T]{cfg: r.cfg, root: r.root, ht: r.ht, pool: newPool[T](r.cfg.Limit), dirty: newDirtyTrie()}
	c.rq = newReleaseQueue[T](r.cfg)
	return c
}

// withWrite runs fn with the root prepared for exclusive mutation, inside
// a release-queue scope, and installs fn's result (and recomputed height)
// back as r.root. It also invalidates the dirty-index cache, since any
// mutation may shift positions arbitrarily.
func (r *Root[T]) withWrite(fn func(root node[T]) node[T]) {
	r.rq.enter()
	defer r.rq.leave(r.pool)
	if r.root != nil {
		r.root = prepareWrite[T](r.root, r.cfg)
	}
	r.root = fn(r.root)
	r.ht = height[T](r.root)
	r.invalidateIndex()
	r.gen++
}

func (r *Root[T]) Insert(i int, v T) error {
	if r.Len() >= MaxElements {
		return ErrOverflow
	}
	if i < 0 || i > r.Len() {
		return ErrIndexOutOfRange
	}
	if r.cfg.Refcount != nil {
		r.cfg.Refcount.Retain(v)
	}
	r.withWrite(func(root node[T]) node[T] {
		if root == nil {
			l := r.pool.getLeaf()
			l.items = append(l.items, v)
			return l
		}
		return ins1(root, i, v, r.cfg, r.rq, r.pool)
	})
	return nil
}

func (r *Root[T]) Get(i int) (T, error) {
	var zero T
	if i < 0 || i >= r.Len() {
		return zero, ErrIndexOutOfRange
	}
	if leaf, off, ok := r.lookupIndex(i); ok {
		return leaf.items[off], nil
	}
	return get[T](r.root, i), nil
}

func (r *Root[T]) Set(i int, v T) (T, error) {
	var zero T
	if i < 0 || i >= r.Len() {
		return zero, ErrIndexOutOfRange
	}
	if r.cfg.Refcount != nil {
		r.cfg.Refcount.Retain(v)
	}
	var old T
	r.withWrite(func(root node[T]) node[T] {
		newRoot, displaced := set(root, i, v, r.cfg)
		old = displaced
		r.rq.deferItem(old)
		return newRoot
	})
	return old, nil
}

func (r *Root[T]) GetSlice(lo, hi int) ([]T, error) {
	if lo < 0 || hi > r.Len() || lo > hi {
		return nil, ErrIndexOutOfRange
	}
	return getSlice(r.root, lo, hi, make([]T, 0, hi-lo)), nil
}

func (r *Root[T]) DeleteAt(i int) (T, error) {
	var zero T
	if i < 0 || i >= r.Len() {
		return zero, ErrIndexOutOfRange
	}
	var removed T
	r.withWrite(func(root node[T]) node[T] {
		newRoot, v := deleteOne(root, i, r.cfg, r.rq, r.pool)
		removed = v
		return collapse[T](newRoot)
	})
	return removed, nil
}

func (r *Root[T]) DeleteRange(lo, hi int) error {
	if lo < 0 || hi > r.Len() || lo > hi {
		return ErrIndexOutOfRange
	}
	if lo == hi {
		return nil
	}
	r.withWrite(func(root node[T]) node[T] {
		newRoot := delSlice(root, lo, hi, r.cfg, r.rq, r.pool)
		return collapse[T](newRoot)
	})
	return nil
}

// Extend appends every element of vs to the end of r, in order, via bulk
// construction (Forest) rather than len(vs) individual ins1 calls, then
// concatenates the freshly built subtree onto the existing one. Grounded
// on spec §4.10's "extend(iter): bulk-loads through forest_append;
// concatenates the resulting tree."
func (r *Root[T]) Extend(vs []T) error {
	if len(vs) == 0 {
		return nil
	}
	if r.Len() > MaxElements-len(vs) {
		return ErrOverflow
	}
	if r.cfg.Refcount != nil {
		for _, v := range vs {
			r.cfg.Refcount.Retain(v)
		}
	}
	f := NewForest[T](r.cfg)
	f.AppendLeafSafe(vs)
	added := f.Finish()
	r.rq.enter()
	if r.root != nil {
		r.root = prepareWrite[T](r.root, r.cfg)
	}
	r.root = concat(r.root, added, r.cfg, r.rq, r.pool)
	r.ht = height[T](r.root)
	r.invalidateIndex()
	r.gen++
	r.rq.leave(r.pool)
	return nil
}

// Reverse reverses r's elements in place.
func (r *Root[T]) Reverse() {
	r.withWrite(func(root node[T]) node[T] {
		return reverseInPlace(root, r.cfg)
	})
}

func (r *Root[T]) Iterator() *Iterator[T] {
	return NewIterator[T](r.root)
}

func (r *Root[T]) ReverseIterator() *ReverseIterator[T] {
	return NewReverseIterator[T](r.root)
}

func (r *Root[T]) ForEach(fn func(T) bool) {
	ForEach(r.root, fn)
}

// SortFunc sorts r's elements using less, which may re-enter r (spec §6
// sanctions a comparator that calls back into the list it is sorting). less
// only ever runs against a detached scratch slice (see sort.go), so a
// re-entrant mutation cannot corrupt the sort itself, but it can race the
// rebuild this function does afterwards: if it lands, r.root by the time
// Sort returns is no longer the tree that was flattened, and blindly
// installing the freshly sorted rebuild would both discard the re-entrant
// mutation and unwind a node skeleton that no longer matches what r.root
// points to. gen is r's mutation counter, bumped by every structural
// change; SortFunc snapshots it before sorting and refuses to install the
// result if it moved, the same role the spec's "sentinel that detects
// mutation of the tree during the sort" plays.
func (r *Root[T]) SortFunc(less func(a, b T) (bool, error)) error {
	startGen := r.gen
	newRoot, err := Sort(r.root, r.cfg, less)
	if err != nil {
		return err
	}
	if r.gen != startGen {
		releaseNodeSkeleton[T](newRoot, r.pool)
		return ErrValueError
	}
	old := r.root
	r.root = newRoot
	r.ht = height[T](r.root)
	r.invalidateIndex()
	r.gen++
	// Sort flattens to a scratch slice and rebuilds entirely fresh nodes
	// around the very same elements (see sort.go's doc comment). The new
	// leaves take their own reference to each element, and the old root is
	// then released through the ordinary deferred teardown, which drops the
	// references of whichever old nodes are no longer shared with a clone.
	if r.cfg.Refcount != nil {
		ForEach(newRoot, func(v T) bool {
			r.cfg.Refcount.Retain(v)
			return true
		})
	}
	r.rq.enter()
	r.rq.deferNode(old, r.pool)
	r.rq.leave(r.pool)
	return nil
}

func (r *Root[T]) Concat(other *Root[T]) *Root[T] {
	retainNode[T](r.root)
	retainNode[T](other.root)
	q := newReleaseQueue[T](r.cfg)
	q.enter()
	newRoot := concat(r.root, other.root, r.cfg, q, r.pool)
	q.leave(r.pool)
	result := collapse[T](newRoot)
	return &Root[T]{cfg: r.cfg, root: result, ht: height[T](result), rq: newReleaseQueue[T](r.cfg), pool: newPool[T](r.cfg.Limit), dirty: newDirtyTrie()}
}

// Check walks the whole tree verifying every invariant from spec §3 and
// §4: every non-root node's fill is within [HALF, LIMIT], cached counts
// match actual child counts, and leaves all sit at the same depth.
func (r *Root[T]) Check() error {
	if r.root == nil {
		return nil
	}
	return checkNode(r.root, r.cfg, height[T](r.root), true)
}

func checkNode[T any](n node[T], cfg Config[T], expectHeight int, isRoot bool) error {
	switch x := n.(type) {
	case *leafNode[T]:
		if expectHeight != 0 {
			return fmt.Errorf("%w: leaf at wrong height", ErrValueError)
		}
		if !isRoot && len(x.items) < cfg.half() {
			return fmt.Errorf("%w: leaf underflow", ErrValueError)
		}
		if len(x.items) > cfg.Limit {
			return fmt.Errorf("%w: leaf overflow", ErrValueError)
		}
		return nil
	case *innerNode[T]:
		if !isRoot && len(x.children) < cfg.half() {
			return fmt.Errorf("%w: inner underflow", ErrValueError)
		}
		if len(x.children) > cfg.Limit {
			return fmt.Errorf("%w: inner overflow", ErrValueError)
		}
		total := 0
		for _, c := range x.children {
			if err := checkNode(c, cfg, expectHeight-1, false); err != nil {
				return err
			}
			total += c.count()
		}
		if total != x.n {
			return fmt.Errorf("%w: inner count mismatch", ErrValueError)
		}
		return nil
	}
	return nil
}
