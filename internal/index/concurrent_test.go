package index

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonycui/spatio/internal/geometry"
	"github.com/tonycui/spatio/internal/rtree"
	"github.com/tonycui/spatio/internal/spatioerr"
)

func TestInsertThenSearchFindsEntry(t *testing.T) {
	idx := New(time.Second)
	ctx := context.Background()
	require.NoError(t, idx.Insert(ctx, 0, geometry.BBox{MinX: 0, MinY: 0, MaxX: 0, MaxY: 0}, "a"))

	got, err := idx.Search(ctx, 0, geometry.BBox{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

func TestWriteTimeoutLeavesStateUnchanged(t *testing.T) {
	idx := New(time.Second)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	holding := make(chan struct{})
	go func() {
		defer wg.Done()
		_ = idx.WithWrite(ctx, time.Second, func(_ *rtree.RTree) {
			close(holding)
			time.Sleep(150 * time.Millisecond)
		})
	}()
	<-holding

	err := idx.Insert(ctx, 20*time.Millisecond, geometry.BBox{MinX: 0, MinY: 0, MaxX: 0, MaxY: 0}, "b")
	require.Error(t, err)
	assert.True(t, spatioerr.Is(err, spatioerr.KindTimeout))

	wg.Wait()
	n, err := idx.Len(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
