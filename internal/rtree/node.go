// Package rtree implements a Guttman-style dynamic R-tree: insert,
// delete with node condensation, window search, and best-first k-NN
// over (bbox, payload) entries (§4.2).
package rtree

import "github.com/tonycui/spatio/internal/geometry"

// Entry is either a leaf entry (BBox, Payload) or an internal entry
// (BBox, Child) — exactly one of Payload/Child is set, matching the
// owning Node's Level.
type Entry struct {
	BBox    geometry.BBox
	Payload string
	Child   *Node
}

// Node is one R-tree node. Level 0 holds leaf entries (Payload set);
// Level > 0 holds internal entries (Child set), with Child.Level ==
// Level-1. A node's MBR always equals the union of its entries' bboxes.
type Node struct {
	MBR     geometry.BBox
	Level   int
	Entries []Entry
}

// IsLeaf reports whether n holds leaf entries.
func (n *Node) IsLeaf() bool { return n.Level == 0 }

func newLeaf() *Node {
	return &Node{Level: 0, MBR: geometry.EmptyBBox()}
}

// recalcMBR recomputes n's MBR from its current entries. Called after
// every mutation of n.Entries.
func (n *Node) recalcMBR() {
	b := geometry.EmptyBBox()
	for _, e := range n.Entries {
		b = b.Union(e.BBox)
	}
	n.MBR = b
}
