// Package store implements the in-memory collection store (§4.5): a
// per-collection {items, index} pair, a top-level name→collection map,
// and the orchestration that keeps a collection's item map, its R-tree
// index, and the append-only log consistent on every mutation.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/tonycui/spatio/internal/geometry"
	"github.com/tonycui/spatio/internal/index"
	"github.com/tonycui/spatio/internal/rtree"
)

// Collection is {name, items: key→Item, index: R-tree of (bbox, key)}.
// items and the index are mutated only together, under the index's
// single logical write lock (§4.5) — items is never touched outside a
// WithWrite/WithRead callback.
type Collection struct {
	Name  string
	idx   index.Index
	items map[string]geometry.Object
}

func newCollection(name string, defaultTimeout time.Duration) *Collection {
	return &Collection{
		Name:  name,
		idx:   index.New(defaultTimeout),
		items: make(map[string]geometry.Object),
	}
}

// set stores obj under key, unconditionally replacing any existing item
// and its index entry, even when the GeoJSON text is identical (§9 open
// question a). It reports only a lock error, so SET's reply is always
// OK on success.
func (c *Collection) set(ctx context.Context, timeout time.Duration, key string, obj geometry.Object) error {
	return c.idx.WithWrite(ctx, timeout, func(tree *rtree.RTree) {
		if old, ok := c.items[key]; ok {
			tree.Delete(old.BBox, key)
		}
		c.items[key] = obj
		tree.Insert(obj.BBox, key)
	})
}

func (c *Collection) get(ctx context.Context, timeout time.Duration, key string) (string, bool, error) {
	var raw string
	var ok bool
	err := c.idx.WithRead(ctx, timeout, func(_ *rtree.RTree) {
		obj, found := c.items[key]
		ok = found
		if found {
			raw = obj.Raw
		}
	})
	return raw, ok, err
}

func (c *Collection) delete(ctx context.Context, timeout time.Duration, key string) (bool, error) {
	var removed bool
	err := c.idx.WithWrite(ctx, timeout, func(tree *rtree.RTree) {
		obj, ok := c.items[key]
		if !ok {
			return
		}
		tree.Delete(obj.BBox, key)
		delete(c.items, key)
		removed = true
	})
	return removed, err
}

func (c *Collection) len(ctx context.Context, timeout time.Duration) (int, error) {
	n := 0
	err := c.idx.WithRead(ctx, timeout, func(_ *rtree.RTree) {
		n = len(c.items)
	})
	return n, err
}

// candidateMatch pairs a stored item with its key for query results.
type candidateMatch struct {
	Key string
	Obj geometry.Object
}

func (c *Collection) windowSearch(ctx context.Context, timeout time.Duration, window geometry.BBox) ([]candidateMatch, error) {
	var out []candidateMatch
	err := c.idx.WithRead(ctx, timeout, func(tree *rtree.RTree) {
		for _, key := range tree.Search(window) {
			if obj, ok := c.items[key]; ok {
				out = append(out, candidateMatch{Key: key, Obj: obj})
			}
		}
	})
	return out, err
}

func (c *Collection) nearest(ctx context.Context, timeout time.Duration, q rtree.KNNQuery) ([]rtree.Neighbor, error) {
	var out []rtree.Neighbor
	err := c.idx.WithRead(ctx, timeout, func(tree *rtree.RTree) {
		out = tree.Nearest(q)
	})
	return out, err
}

// keysSnapshot returns every key currently stored, in no particular
// order.
func (c *Collection) keysSnapshot(ctx context.Context, timeout time.Duration) ([]string, error) {
	var out []string
	err := c.idx.WithRead(ctx, timeout, func(_ *rtree.RTree) {
		out = make([]string, 0, len(c.items))
		for k := range c.items {
			out = append(out, k)
		}
	})
	return out, err
}

// registry is the top-level name→collection map, guarded by its own
// lock held only briefly for lookup/insert/remove (§4.5).
type registry struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

func newRegistry() *registry {
	return &registry{collections: make(map[string]*Collection)}
}

func (r *registry) get(name string) (*Collection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collections[name]
	return c, ok
}

func (r *registry) getOrCreate(name string, defaultTimeout time.Duration) *Collection {
	r.mu.RLock()
	c, ok := r.collections[name]
	r.mu.RUnlock()
	if ok {
		return c
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.collections[name]; ok {
		return c
	}
	c = newCollection(name, defaultTimeout)
	r.collections[name] = c
	return c
}

func (r *registry) remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.collections[name]; !ok {
		return false
	}
	delete(r.collections, name)
	return true
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.collections))
	for name := range r.collections {
		out = append(out, name)
	}
	return out
}

func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections = make(map[string]*Collection)
}
