// Package index wraps an R-tree in a timeout-bounded reader/writer
// lock, cheap to clone by shared reference (§4.3).
package index

import (
	"context"
	"sync"
	"time"

	"github.com/tonycui/spatio/internal/geometry"
	"github.com/tonycui/spatio/internal/rtree"
	"github.com/tonycui/spatio/internal/spatioerr"
)

// Index is a concurrency-safe handle onto a shared R-tree. Copying an
// Index by value is cheap and shares the same lock and tree, matching
// the spec's "cheap clone by shared reference".
type Index struct {
	shared *shared
}

type shared struct {
	mu             sync.RWMutex
	tree           *rtree.RTree
	defaultTimeout time.Duration
}

// New returns an Index wrapping a fresh default R-tree, with
// defaultTimeout applied to any call that doesn't pass its own
// per-call timeout. When neither the per-call nor the default timeout
// is positive, lock acquisition waits without a deadline (only ctx can
// end the wait).
func New(defaultTimeout time.Duration) Index {
	return Index{shared: &shared{
		tree:           rtree.NewDefault(),
		defaultTimeout: defaultTimeout,
	}}
}

// acquire blocks on the given lock function (RLock or Lock) until it
// succeeds or the deadline elapses, returning spatioerr.Timeout on
// expiry without having mutated anything — the lock attempt itself is
// the only suspension point, per §4.3/§5.
func (s *shared) acquire(ctx context.Context, timeout time.Duration, lock func(), unlock func()) (func(), error) {
	if timeout <= 0 {
		timeout = s.defaultTimeout
	}
	done := make(chan struct{})
	go func() {
		lock()
		close(done)
	}()

	if timeout <= 0 {
		select {
		case <-done:
			return unlock, nil
		case <-ctx.Done():
			go func() { <-done; unlock() }()
			return nil, spatioerr.Wrap(spatioerr.KindTimeout, "context canceled", ctx.Err())
		}
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case <-done:
		return unlock, nil
	case <-ctx.Done():
		go func() { <-done; unlock() }()
		return nil, spatioerr.Wrap(spatioerr.KindTimeout, "context canceled", ctx.Err())
	case <-deadline.C:
		go func() { <-done; unlock() }()
		return nil, spatioerr.Timeout(timeout)
	}
}

// WithWrite acquires the write lock, runs fn with direct access to the
// underlying tree, then releases. Callers needing to mutate more than
// just the tree under the same critical section (Collection's items
// map alongside its index, §4.5) use this instead of the single-
// purpose Insert/Delete helpers below.
func (idx Index) WithWrite(ctx context.Context, timeout time.Duration, fn func(*rtree.RTree)) error {
	unlock, err := idx.shared.acquire(ctx, timeout, idx.shared.mu.Lock, idx.shared.mu.Unlock)
	if err != nil {
		return err
	}
	defer unlock()
	fn(idx.shared.tree)
	return nil
}

// WithRead acquires the read lock and runs fn with direct read access
// to the underlying tree.
func (idx Index) WithRead(ctx context.Context, timeout time.Duration, fn func(*rtree.RTree)) error {
	unlock, err := idx.shared.acquire(ctx, timeout, idx.shared.mu.RLock, idx.shared.mu.RUnlock)
	if err != nil {
		return err
	}
	defer unlock()
	fn(idx.shared.tree)
	return nil
}

// Insert acquires the write lock and inserts (bbox, payload).
func (idx Index) Insert(ctx context.Context, timeout time.Duration, bbox geometry.BBox, payload string) error {
	unlock, err := idx.shared.acquire(ctx, timeout, idx.shared.mu.Lock, idx.shared.mu.Unlock)
	if err != nil {
		return err
	}
	defer unlock()
	idx.shared.tree.Insert(bbox, payload)
	return nil
}

// Delete acquires the write lock and removes (bbox, payload).
func (idx Index) Delete(ctx context.Context, timeout time.Duration, bbox geometry.BBox, payload string) (bool, error) {
	unlock, err := idx.shared.acquire(ctx, timeout, idx.shared.mu.Lock, idx.shared.mu.Unlock)
	if err != nil {
		return false, err
	}
	defer unlock()
	return idx.shared.tree.Delete(bbox, payload), nil
}

// Search acquires the read lock and returns payloads intersecting window.
func (idx Index) Search(ctx context.Context, timeout time.Duration, window geometry.BBox) ([]string, error) {
	unlock, err := idx.shared.acquire(ctx, timeout, idx.shared.mu.RLock, idx.shared.mu.RUnlock)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return idx.shared.tree.Search(window), nil
}

// Nearest acquires the read lock and runs a best-first k-NN query.
func (idx Index) Nearest(ctx context.Context, timeout time.Duration, q rtree.KNNQuery) ([]rtree.Neighbor, error) {
	unlock, err := idx.shared.acquire(ctx, timeout, idx.shared.mu.RLock, idx.shared.mu.RUnlock)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return idx.shared.tree.Nearest(q), nil
}

// Len acquires the read lock and returns the entry count.
func (idx Index) Len(ctx context.Context, timeout time.Duration) (int, error) {
	unlock, err := idx.shared.acquire(ctx, timeout, idx.shared.mu.RLock, idx.shared.mu.RUnlock)
	if err != nil {
		return 0, err
	}
	defer unlock()
	return idx.shared.tree.Len(), nil
}

// Clear acquires the write lock and empties the tree.
func (idx Index) Clear(ctx context.Context, timeout time.Duration) error {
	unlock, err := idx.shared.acquire(ctx, timeout, idx.shared.mu.Lock, idx.shared.mu.Unlock)
	if err != nil {
		return err
	}
	defer unlock()
	idx.shared.tree.Clear()
	return nil
}
