package rtree

import (
	"container/heap"

	"github.com/tonycui/spatio/internal/geometry"
)

// Neighbor is one best-first k-NN result.
type Neighbor struct {
	Payload        string
	DistanceMeters float64
}

// KNNQuery bundles a NEARBY query's parameters. At least one of
// HasK/HasRadius must be true; supplying both applies whichever
// terminates the search first (§4.2).
type KNNQuery struct {
	Lon, Lat     float64
	K            int
	HasK         bool
	RadiusMeters float64
	HasRadius    bool
}

type pqEntry struct {
	dist  float64
	node  *Node // set for a pending node to expand; nil for a ready leaf entry
	entry Entry
}

type priorityQueue []pqEntry

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqEntry)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// Nearest performs best-first k-NN against the query point, ranked by
// haversine distance (§4.2).
func (t *RTree) Nearest(q KNNQuery) []Neighbor {
	var results []Neighbor
	if (!q.HasK && !q.HasRadius) || t.size == 0 {
		return results
	}

	pq := &priorityQueue{}
	heap.Init(pq)
	heap.Push(pq, pqEntry{
		dist: geometry.BBoxHaversineMeters(q.Lon, q.Lat, t.root.MBR),
		node: t.root,
	})

	for pq.Len() > 0 {
		if q.HasK && len(results) >= q.K {
			break
		}
		item := heap.Pop(pq).(pqEntry)
		if q.HasRadius && item.dist > q.RadiusMeters {
			break
		}
		if item.node != nil {
			n := item.node
			for _, e := range n.Entries {
				d := geometry.BBoxHaversineMeters(q.Lon, q.Lat, e.BBox)
				if n.IsLeaf() {
					heap.Push(pq, pqEntry{dist: d, entry: e})
				} else {
					heap.Push(pq, pqEntry{dist: d, node: e.Child})
				}
			}
			continue
		}
		results = append(results, Neighbor{Payload: item.entry.Payload, DistanceMeters: item.dist})
	}
	return results
}
