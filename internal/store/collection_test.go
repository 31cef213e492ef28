package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonycui/spatio/internal/geometry"
)

func TestRegistryGetOrCreateIsIdempotent(t *testing.T) {
	reg := newRegistry()
	a := reg.getOrCreate("fleet", time.Second)
	b := reg.getOrCreate("fleet", time.Second)
	assert.Same(t, a, b)
}

func TestRegistryRemoveReportsWhetherItExisted(t *testing.T) {
	reg := newRegistry()
	assert.False(t, reg.remove("missing"))
	reg.getOrCreate("fleet", time.Second)
	assert.True(t, reg.remove("fleet"))
	assert.False(t, reg.remove("fleet"))
}

func TestCollectionSetOverwritesExistingKeyInIndexToo(t *testing.T) {
	ctx := context.Background()
	coll := newCollection("fleet", time.Second)

	objA, err := geometry.ParseObject(`{"type":"Point","coordinates":[0,0]}`)
	require.NoError(t, err)
	require.NoError(t, coll.set(ctx, 0, "truck1", objA))

	objB, err := geometry.ParseObject(`{"type":"Point","coordinates":[5,5]}`)
	require.NoError(t, err)
	require.NoError(t, coll.set(ctx, 0, "truck1", objB))

	matches, err := coll.windowSearch(ctx, 0, geometry.BBox{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1})
	require.NoError(t, err)
	assert.Empty(t, matches, "old bbox entry must not remain in the index after overwrite")

	matches, err = coll.windowSearch(ctx, 0, geometry.BBox{MinX: 4, MinY: 4, MaxX: 6, MaxY: 6})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "truck1", matches[0].Key)
}

func TestCollectionLenTracksSetAndDelete(t *testing.T) {
	ctx := context.Background()
	coll := newCollection("fleet", time.Second)

	obj, err := geometry.ParseObject(`{"type":"Point","coordinates":[0,0]}`)
	require.NoError(t, err)
	require.NoError(t, coll.set(ctx, 0, "a", obj))
	require.NoError(t, coll.set(ctx, 0, "b", obj))

	n, err := coll.len(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	removed, err := coll.delete(ctx, 0, "a")
	require.NoError(t, err)
	assert.True(t, removed)

	n, err = coll.len(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
