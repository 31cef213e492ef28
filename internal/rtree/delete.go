package rtree

import "github.com/tonycui/spatio/internal/geometry"

type stashedEntry struct {
	Entry Entry
	Level int
}

// delete removes the entry matching (bbox, payload) exactly and
// condenses the tree per §4.2: underflowing non-root nodes are
// detached and their entries re-inserted afterward at their original
// level; the root is shrunk if it becomes a single-child internal node.
func (t *RTree) delete(bbox geometry.BBox, payload string) bool {
	var stash []stashedEntry

	var deleteRec func(n *Node) bool
	deleteRec = func(n *Node) bool {
		if n.IsLeaf() {
			for i, e := range n.Entries {
				if e.Payload == payload && bboxEqual(e.BBox, bbox) {
					n.Entries = append(n.Entries[:i:i], n.Entries[i+1:]...)
					n.recalcMBR()
					return true
				}
			}
			return false
		}
		for i := range n.Entries {
			if !n.Entries[i].BBox.Contains(bbox) {
				continue
			}
			child := n.Entries[i].Child
			if !deleteRec(child) {
				continue
			}
			if child != t.root && len(child.Entries) < t.m {
				n.Entries = append(n.Entries[:i:i], n.Entries[i+1:]...)
				for _, e := range child.Entries {
					stash = append(stash, stashedEntry{Entry: e, Level: child.Level})
				}
			} else {
				n.Entries[i].BBox = child.MBR
			}
			n.recalcMBR()
			return true
		}
		return false
	}

	if !deleteRec(t.root) {
		return false
	}

	for !t.root.IsLeaf() && len(t.root.Entries) == 1 {
		t.root = t.root.Entries[0].Child
	}

	for _, se := range stash {
		t.insertEntry(se.Entry, se.Level)
	}
	return true
}

func bboxEqual(a, b geometry.BBox) bool {
	return a.MinX == b.MinX && a.MinY == b.MinY && a.MaxX == b.MaxX && a.MaxY == b.MaxY
}
