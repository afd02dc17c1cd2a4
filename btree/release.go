package btree

// releaseQueue defers element reference-count decrements until the
// outermost public tree operation returns, so that a user-supplied
// Refcounter.Release — which may itself call back into this tree or a
// sibling tree sharing nodes with it — never observes a tree in a
// half-mutated state. Grounded directly on blist.c's decref_init /
// _decref_later / _decref_flush, which exist for exactly this reason: a
// Python object's __del__ can run arbitrary code, including further list
// operations, while the C implementation is still mid-rebalance.
//
// A releaseQueue is owned by a single Tree and is not safe for concurrent
// use, matching blist.c's single-threaded (GIL-protected) assumption.
type releaseQueue[T any] struct {
	pending      []node[T]
	pendingItems []T
	flushing     bool
	depth        int
	cfg          Config[T]
}

func newReleaseQueue[T any](cfg Config[T]) *releaseQueue[T] {
	return &releaseQueue[T]{cfg: cfg}
}

// enter marks the start of a public operation. Only the outermost enter
// triggers a flush on the matching leave; nested enter/leave pairs (an
// operation calling another internally) simply track depth.
func (q *releaseQueue[T]) enter() {
	q.depth++
}

// leave matches enter and, once the outermost call is exiting, drains the
// queue.
func (q *releaseQueue[T]) leave(p *pool[T]) {
	q.depth--
	if q.depth == 0 {
		q.flush(p)
	}
}

// deferNode decrements n's reference count. If it reaches zero, n is queued
// for deferred teardown (its elements released and its children, if any,
// likewise decremented) rather than torn down inline.
func (q *releaseQueue[T]) deferNode(n node[T], p *pool[T]) {
	if n == nil {
		return
	}
	rc := n.refs()
	*rc--
	if *rc <= 0 {
		q.pending = append(q.pending, n)
	}
}

// deferItem queues v's reference-count release. Used directly whenever an
// element is spliced out of a still-live leaf (the common case: the leaf
// itself survives, only one of its items does not).
func (q *releaseQueue[T]) deferItem(v T) {
	if q.cfg.Refcount == nil {
		return
	}
	q.pendingItems = append(q.pendingItems, v)
}

func (q *releaseQueue[T]) deferItems(vs []T) {
	if q.cfg.Refcount == nil {
		return
	}
	q.pendingItems = append(q.pendingItems, vs...)
}

// flush drains q.pending and q.pendingItems to completion. Because
// releasing one node's elements (or, for an interior node, decrementing its
// children) may append more work to either queue — either directly, from
// this function, or re-entrantly, from a user Refcounter.Release calling
// back into a tree — flush loops until both are empty rather than ranging
// over them once.
func (q *releaseQueue[T]) flush(p *pool[T]) {
	if q.flushing {
		return
	}
	q.flushing = true
	defer func() { q.flushing = false }()

	for len(q.pending) > 0 || len(q.pendingItems) > 0 {
		for len(q.pendingItems) > 0 {
			v := q.pendingItems[len(q.pendingItems)-1]
			q.pendingItems = q.pendingItems[:len(q.pendingItems)-1]
			q.cfg.Refcount.Release(v)
		}
		if len(q.pending) > 0 {
			n := q.pending[len(q.pending)-1]
			q.pending = q.pending[:len(q.pending)-1]
			q.teardown(n, p)
		}
	}
}

func (q *releaseQueue[T]) teardown(n node[T], p *pool[T]) {
	switch v := n.(type) {
	case *leafNode[T]:
		if q.cfg.Refcount != nil {
			for _, item := range v.items {
				q.cfg.Refcount.Release(item)
			}
		}
		p.putLeaf(v)
	case *innerNode[T]:
		for _, c := range v.children {
			q.deferNode(c, p)
		}
		p.putInner(v)
	}
}
