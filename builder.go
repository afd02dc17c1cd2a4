package blist

import "blist/btree"

// Builder incrementally assembles a List by appending elements through the
// bottom-up forest path (module 4.7) instead of len(vs) individual Insert
// calls, the same tradeoff the teacher's Builder/Append/Cord surface makes
// for ropes. It is the preferred way to construct a List from a large
// known-size source (a slice, a channel drained to completion, a decoder).
//
// Grounded on cords.go's Builder (Append/Cord, "illegal to add fragments
// after Cord has been called") rewired onto btree.Forest instead of binary
// rope balancing.
type Builder[T any] struct {
	cfg    Config[T]
	forest *btree.Forest[T]
	done   bool
	built  *btree.Tree[T]
}

// NewBuilder returns a Builder ready to accept elements via Append.
func NewBuilder[T any](cfg Config[T]) *Builder[T] {
	return &Builder[T]{cfg: cfg, forest: btree.NewForest[T](cfg.engine())}
}

// Append adds v to the end of the sequence under construction. It is
// illegal to call Append after List has been called; doing so returns
// ErrValueError, mirroring the teacher's ErrCordCompleted discipline.
func (b *Builder[T]) Append(v T) error {
	if b.done {
		return ErrValueError
	}
	if b.cfg.Refcount != nil {
		b.cfg.Refcount.Retain(v)
	}
	b.forest.Append(v)
	return nil
}

// AppendSlice bulk-appends vs, preferring the forest's batch path
// (AppendLeafSafe) over one Append call per element.
func (b *Builder[T]) AppendSlice(vs []T) error {
	if b.done {
		return ErrValueError
	}
	if b.cfg.Refcount != nil {
		for _, v := range vs {
			b.cfg.Refcount.Retain(v)
		}
	}
	b.forest.AppendLeafSafe(vs)
	return nil
}

// List finishes the build and returns the assembled List. It is legal to
// call List multiple times, as with the teacher's "Cord may be called
// multiple times": the forest is only drained once, on the first call, and
// later calls hand out independent Lists sharing structure via
// copy-on-write with the first.
func (b *Builder[T]) List() *List[T] {
	if !b.done {
		root := b.forest.Finish()
		b.built = btree.NewRootFromNode[T](b.cfg.engine(), root)
		b.done = true
	}
	return &List[T]{cfg: b.cfg, tree: b.built.Clone()}
}
