package btree

import "fmt"

// DotNode is one node's worth of information needed to render a tree as a
// debug graph: its identity, shape, sharing state, and the identities of
// its children (nil for a leaf). Exported so the blist package's Dot/Dump
// writer (dotty.go) can walk a Root without reaching into btree's
// unexported node types directly.
type DotNode struct {
	ID       string
	IsLeaf   bool
	Shared   bool // rc > 1: this node is copy-on-write shared with another tree
	Count    int
	Children []string
}

// Walk returns DotNode records for every node reachable from r's root,
// children before the parent that references them, suitable for graph
// rendering. Grounded on the teacher's dotty.go Cord2Dot, which performs the same
// traversal over cordNode to emit Graphviz records; generalized here to
// the B+ tree's variable fan-out instead of the rope's fixed left/right.
func (r *Root[T]) Walk() []DotNode {
	var out []DotNode
	walkNode[T](r.root, &out)
	return out
}

func walkNode[T any](n node[T], out *[]DotNode) string {
	if n == nil {
		return ""
	}
	id := fmt.Sprintf("%p", n)
	for _, existing := range *out {
		if existing.ID == id {
			return id // already visited (shared subtree)
		}
	}
	switch x := n.(type) {
	case *leafNode[T]:
		*out = append(*out, DotNode{ID: id, IsLeaf: true, Shared: x.rc > 1, Count: len(x.items)})
	case *innerNode[T]:
		childIDs := make([]string, 0, len(x.children))
		for _, c := range x.children {
			childIDs = append(childIDs, walkNode[T](c, out))
		}
		*out = append(*out, DotNode{ID: id, IsLeaf: false, Shared: x.rc > 1, Count: x.n, Children: childIDs})
	}
	return id
}
