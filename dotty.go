package blist

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Dot writes l's internal tree structure to w in Graphviz DOT format, for
// debugging tree shape after a sequence of mutations. Grounded on the
// teacher's dotty.go Cord2Dot (node-table + nodelist/edgelist accumulation
// strategy), generalized from the rope's fixed left/right children to the
// B+ tree's variable fan-out via (*btree.Root[T]).Walk.
func (l *List[T]) Dot(w io.Writer) {
	io.WriteString(w, "strict digraph {\n")
	io.WriteString(w, "\tnode [fontname=Arial,fontsize=12];\n")
	nodes := l.tree.Walk()
	var nodelist, edgelist string
	for _, n := range nodes {
		styles := dotStyles(n.IsLeaf, n.Shared)
		if n.IsLeaf {
			nodelist += fmt.Sprintf("\"%s\" [label=\"leaf(%d)\" %s];\n", n.ID, n.Count, styles)
			continue
		}
		nodelist += fmt.Sprintf("\"%s\" [label=\"n=%d\" %s];\n", n.ID, n.Count, styles)
		for _, c := range n.Children {
			edgelist += fmt.Sprintf("\"%s\" -> \"%s\";\n", n.ID, c)
		}
	}
	io.WriteString(w, nodelist)
	io.WriteString(w, edgelist)
	io.WriteString(w, "}\n")
}

func dotStyles(leaf, shared bool) string {
	s := ",style=filled"
	if leaf {
		s += ",shape=box"
	} else {
		s += ",shape=circle"
	}
	if shared {
		s += ",fillcolor=\"#ffcc88\""
	} else {
		s += ",fillcolor=\"#a3d7e4\""
	}
	return s
}

// Dump writes a colorized, indented listing of l's tree shape to w:
// interior nodes in one color, leaves in another, and copy-on-write shared
// nodes (reachable from more than one List) highlighted, when w is a
// terminal. This is the one place this module reaches for
// github.com/fatih/color — the teacher only pulls it in transitively
// through its styled-text demo layers, never from core tree code (see
// DESIGN.md); here it colorizes real debug output instead of riding along
// unused.
func (l *List[T]) Dump(w io.Writer) {
	leafColor := color.New(color.FgCyan)
	innerColor := color.New(color.FgGreen)
	sharedColor := color.New(color.FgYellow, color.Bold)
	tracer().Debugf("blist: dumping tree of length %d", l.Len())
	for _, n := range l.tree.Walk() {
		c := innerColor
		kind := "inner"
		if n.IsLeaf {
			c = leafColor
			kind = "leaf"
		}
		if n.Shared {
			c = sharedColor
		}
		c.Fprintf(w, "%s count=%d shared=%v\n", kind, n.Count, n.Shared)
	}
}
