package rtree

import (
	"math"

	"github.com/tonycui/spatio/internal/geometry"
)

// splitNode performs a quadratic split of an overflowing node (§4.2
// Split): n keeps one resulting group, the returned sibling holds the
// other, both at n's original Level.
func (t *RTree) splitNode(n *Node) *Node {
	entries := n.Entries
	seedA, seedB := pickSeeds(entries)

	groupA := []Entry{entries[seedA]}
	groupB := []Entry{entries[seedB]}
	bboxA := groupA[0].BBox
	bboxB := groupB[0].BBox

	remaining := make([]Entry, 0, len(entries)-2)
	for i, e := range entries {
		if i != seedA && i != seedB {
			remaining = append(remaining, e)
		}
	}

	for len(remaining) > 0 {
		// Forced assignment: if one group would fall below m because
		// only enough entries remain to bring it up to m, take them all.
		if len(groupA)+len(remaining) <= t.m {
			groupA = append(groupA, remaining...)
			bboxA = unionAll(bboxA, remaining)
			remaining = nil
			break
		}
		if len(groupB)+len(remaining) <= t.m {
			groupB = append(groupB, remaining...)
			bboxB = unionAll(bboxB, remaining)
			remaining = nil
			break
		}

		bestIdx := 0
		bestDiff := -1.0
		var bestEnlA, bestEnlB float64
		for i, e := range remaining {
			enlA := bboxA.Enlargement(e.BBox)
			enlB := bboxB.Enlargement(e.BBox)
			diff := math.Abs(enlA - enlB)
			if diff > bestDiff {
				bestDiff = diff
				bestIdx = i
				bestEnlA = enlA
				bestEnlB = enlB
			}
		}

		chosen := remaining[bestIdx]
		remaining = append(remaining[:bestIdx:bestIdx], remaining[bestIdx+1:]...)

		if placeInGroupA(bestEnlA, bestEnlB, bboxA, bboxB, len(groupA), len(groupB)) {
			groupA = append(groupA, chosen)
			bboxA = bboxA.Union(chosen.BBox)
		} else {
			groupB = append(groupB, chosen)
			bboxB = bboxB.Union(chosen.BBox)
		}
	}

	n.Entries = groupA
	n.recalcMBR()
	sibling := &Node{Level: n.Level, Entries: groupB}
	sibling.recalcMBR()
	return sibling
}

// placeInGroupA implements the tie-break ladder from §4.2: smaller
// enlargement, then smaller existing area, then fewer entries, then
// the first group.
func placeInGroupA(enlA, enlB float64, bboxA, bboxB geometry.BBox, countA, countB int) bool {
	if enlA != enlB {
		return enlA < enlB
	}
	areaA, areaB := bboxA.Area(), bboxB.Area()
	if areaA != areaB {
		return areaA < areaB
	}
	if countA != countB {
		return countA < countB
	}
	return true
}

func pickSeeds(entries []Entry) (int, int) {
	bestWaste := -1.0
	bestI, bestJ := 0, 1
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			union := entries[i].BBox.Union(entries[j].BBox)
			waste := union.Area() - entries[i].BBox.Area() - entries[j].BBox.Area()
			if waste > bestWaste {
				bestWaste = waste
				bestI, bestJ = i, j
			}
		}
	}
	return bestI, bestJ
}

func unionAll(b geometry.BBox, entries []Entry) geometry.BBox {
	out := b
	for _, e := range entries {
		out = out.Union(e.BBox)
	}
	return out
}
