package command

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonycui/spatio/internal/aol"
	"github.com/tonycui/spatio/internal/reply"
	"github.com/tonycui/spatio/internal/store"
)

func newTestDatabase(t *testing.T) *store.Database {
	t.Helper()
	db, _, err := store.Open(store.Options{
		AofPath:       filepath.Join(t.TempDir(), "appendonly.aof"),
		AofEnabled:    true,
		AofSyncPolicy: aol.SyncAlways,
	})
	require.NoError(t, err)
	return db
}

func TestPingRepliesPong(t *testing.T) {
	r := NewRegistry()
	got := r.Dispatch(context.Background(), newTestDatabase(t), "ping", nil)
	assert.Equal(t, reply.SimpleString("PONG"), got)
}

func TestUnknownCommandRepliesError(t *testing.T) {
	r := NewRegistry()
	got := r.Dispatch(context.Background(), newTestDatabase(t), "BOGUS", nil)
	require.True(t, got.IsError())
	assert.Contains(t, got.Str, "unknown command")
}

func TestSetGetRoundTripThroughRegistry(t *testing.T) {
	r := NewRegistry()
	db := newTestDatabase(t)
	ctx := context.Background()

	geojson := `{"type":"Point","coordinates":[116.3,39.9]}`
	setReply := r.Dispatch(ctx, db, "SET", []string{"fleet", "truck1", geojson})
	assert.Equal(t, reply.SimpleString("OK"), setReply)

	getReply := r.Dispatch(ctx, db, "GET", []string{"fleet", "truck1"})
	assert.Equal(t, reply.BulkString(geojson), getReply)

	missReply := r.Dispatch(ctx, db, "GET", []string{"fleet", "missing"})
	assert.Equal(t, reply.Nil(), missReply)
}

func TestSetWrongArityRepliesError(t *testing.T) {
	r := NewRegistry()
	got := r.Dispatch(context.Background(), newTestDatabase(t), "SET", []string{"fleet"})
	require.True(t, got.IsError())
	assert.Contains(t, got.Str, "wrong number of arguments")
}

func TestNearbyRequiresCountOrRadius(t *testing.T) {
	r := NewRegistry()
	db := newTestDatabase(t)
	ctx := context.Background()
	r.Dispatch(ctx, db, "SET", []string{"fleet", "a", `{"type":"Point","coordinates":[0,0]}`})

	got := r.Dispatch(ctx, db, "NEARBY", []string{"fleet", "POINT", "0", "0"})
	require.True(t, got.IsError())
}

func TestNearbyWithCountReturnsOrderedMatches(t *testing.T) {
	r := NewRegistry()
	db := newTestDatabase(t)
	ctx := context.Background()
	r.Dispatch(ctx, db, "SET", []string{"fleet", "a", `{"type":"Point","coordinates":[0,0]}`})
	r.Dispatch(ctx, db, "SET", []string{"fleet", "b", `{"type":"Point","coordinates":[1,0]}`})
	r.Dispatch(ctx, db, "SET", []string{"fleet", "c", `{"type":"Point","coordinates":[10,0]}`})

	got := r.Dispatch(ctx, db, "NEARBY", []string{"fleet", "POINT", "0", "0", "COUNT", "2"})
	require.Equal(t, reply.TypeArray, got.Type)
	require.Len(t, got.Array, 2)
	require.Len(t, got.Array[0].Array, 3)
	require.Len(t, got.Array[1].Array, 3)
	assert.Equal(t, "a", got.Array[0].Array[0].Str)
	assert.Equal(t, "b", got.Array[1].Array[0].Str)
}

func TestIntersectsWithKeysInterleavesKeyAndGeoJSON(t *testing.T) {
	r := NewRegistry()
	db := newTestDatabase(t)
	ctx := context.Background()
	poly := `{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`
	r.Dispatch(ctx, db, "SET", []string{"districts", "A", poly})

	got := r.Dispatch(ctx, db, "INTERSECTS", []string{"districts", poly, "WITHKEYS"})
	require.Equal(t, reply.TypeArray, got.Type)
	require.Len(t, got.Array, 2)
	assert.Equal(t, "A", got.Array[0].Str)
	assert.Equal(t, poly, got.Array[1].Str)
}

func TestDropAbsentCollectionReturnsZero(t *testing.T) {
	r := NewRegistry()
	got := r.Dispatch(context.Background(), newTestDatabase(t), "DROP", []string{"nope"})
	assert.Equal(t, reply.Integer(0), got)
}
