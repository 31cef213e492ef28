package rtree

import "github.com/tonycui/spatio/internal/geometry"

// DefaultMinEntries and DefaultMaxEntries are the canonical M=8, m=4
// settings the spec names for the server-side index (§3).
const (
	DefaultMinEntries = 4
	DefaultMaxEntries = 8
)

// RTree is a Guttman-style dynamic R-tree over (bbox, payload)
// entries. payload is an opaque string key; the tree itself never
// interprets it.
type RTree struct {
	root *Node
	m, M int
	size int
}

// New returns an empty R-tree with the given min/max entries per node.
// 2 <= m <= ceil(M/2) must hold.
func New(m, M int) *RTree {
	return &RTree{root: newLeaf(), m: m, M: M}
}

// NewDefault returns an empty R-tree using DefaultMinEntries/DefaultMaxEntries.
func NewDefault() *RTree {
	return New(DefaultMinEntries, DefaultMaxEntries)
}

// Len returns the number of leaf entries currently in the tree.
func (t *RTree) Len() int { return t.size }

// Clear resets the tree to empty.
func (t *RTree) Clear() {
	t.root = newLeaf()
	t.size = 0
}

// Insert adds (bbox, payload) to the tree.
func (t *RTree) Insert(bbox geometry.BBox, payload string) {
	t.insertEntry(Entry{BBox: bbox, Payload: payload}, 0)
	t.size++
}

// Delete removes the entry matching (bbox, payload) exactly, returning
// true if an entry was removed. Equal-bbox duplicates are disambiguated
// by payload equality (§4.2).
func (t *RTree) Delete(bbox geometry.BBox, payload string) bool {
	removed := t.delete(bbox, payload)
	if removed {
		t.size--
	}
	return removed
}

// Search returns the payloads of every entry whose bbox intersects window.
func (t *RTree) Search(window geometry.BBox) []string {
	var out []string
	t.search(t.root, window, &out)
	return out
}

func (t *RTree) search(n *Node, window geometry.BBox, out *[]string) {
	for _, e := range n.Entries {
		if !e.BBox.Intersects(window) {
			continue
		}
		if n.IsLeaf() {
			*out = append(*out, e.Payload)
		} else {
			t.search(e.Child, window, out)
		}
	}
}
