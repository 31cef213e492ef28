package rtree

import "github.com/tonycui/spatio/internal/geometry"

// insertEntry inserts e into the subtree so that it lands in a node
// whose Level equals level — level 0 for a fresh leaf entry, or a
// stashed node's original level when delete's condensation pass
// re-inserts it (§4.2's "level-aware insert").
func (t *RTree) insertEntry(e Entry, level int) {
	sibling := t.insertInto(t.root, e, level)
	if sibling == nil {
		return
	}
	newRoot := &Node{Level: t.root.Level + 1}
	newRoot.Entries = []Entry{
		{BBox: t.root.MBR, Child: t.root},
		{BBox: sibling.MBR, Child: sibling},
	}
	newRoot.recalcMBR()
	t.root = newRoot
}

// insertInto descends from n until it reaches a node at the target
// level, places e there, and splits on overflow, returning the new
// sibling node (nil if no split occurred) and leaving n.MBR current.
func (t *RTree) insertInto(n *Node, e Entry, level int) *Node {
	if n.Level == level {
		n.Entries = append(n.Entries, e)
	} else {
		idx := chooseSubtree(n, e.BBox)
		child := n.Entries[idx].Child
		sibling := t.insertInto(child, e, level)
		n.Entries[idx].BBox = child.MBR
		if sibling != nil {
			n.Entries = append(n.Entries, Entry{BBox: sibling.MBR, Child: sibling})
		}
	}
	n.recalcMBR()
	if len(n.Entries) > t.M {
		return t.splitNode(n)
	}
	return nil
}

// chooseSubtree picks the child whose bbox needs the least enlargement
// to include bbox, tie-breaking on smaller existing area (§4.2 Insert).
func chooseSubtree(n *Node, bbox geometry.BBox) int {
	best := 0
	bestEnlargement := n.Entries[0].BBox.Enlargement(bbox)
	bestArea := n.Entries[0].BBox.Area()
	for i := 1; i < len(n.Entries); i++ {
		enl := n.Entries[i].BBox.Enlargement(bbox)
		area := n.Entries[i].BBox.Area()
		if enl < bestEnlargement || (enl == bestEnlargement && area < bestArea) {
			best = i
			bestEnlargement = enl
			bestArea = area
		}
	}
	return best
}
