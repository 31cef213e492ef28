package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonycui/spatio/internal/aol"
)

func tempAofOptions(t *testing.T) Options {
	t.Helper()
	var tick uint64
	return Options{
		AofPath:       filepath.Join(t.TempDir(), "appendonly.aof"),
		AofEnabled:    true,
		AofSyncPolicy: aol.SyncAlways,
		Clock:         func() uint64 { tick++; return tick },
	}
}

func TestSetThenGetRoundTrips(t *testing.T) {
	db, _, err := Open(tempAofOptions(t))
	require.NoError(t, err)
	ctx := context.Background()

	geojson := `{"type":"Point","coordinates":[116.3,39.9]}`
	require.NoError(t, db.Set(ctx, "fleet", "truck1", geojson))

	got, ok, err := db.Get(ctx, "fleet", "truck1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, geojson, got)

	_, ok, err = db.Get(ctx, "fleet", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIntersectsFiltersByFullGeometry(t *testing.T) {
	db, _, err := Open(tempAofOptions(t))
	require.NoError(t, err)
	ctx := context.Background()

	poly := `{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`
	require.NoError(t, db.Set(ctx, "districts", "A", poly))

	matches, err := db.Intersects(ctx, "districts", `{"type":"Polygon","coordinates":[[[5,5],[15,5],[15,15],[5,15],[5,5]]]}`)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, poly, matches[0].GeoJSON)

	matches, err = db.Intersects(ctx, "districts", `{"type":"Point","coordinates":[100,100]}`)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestNearbyOrdersByAscendingDistance(t *testing.T) {
	db, _, err := Open(tempAofOptions(t))
	require.NoError(t, err)
	ctx := context.Background()

	points := map[string][2]float64{
		"a": {0, 0}, "b": {1, 0}, "c": {3, 0}, "d": {10, 0},
	}
	for key, c := range points {
		require.NoError(t, db.Set(ctx, "fleet", key, pointGeoJSON(c[0], c[1])))
	}

	matches, err := db.Nearby(ctx, "fleet", NearbyQuery{Lon: 0, Lat: 0, Count: 2, HasCount: true})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].Key)
	assert.Equal(t, "b", matches[1].Key)

	matches, err = db.Nearby(ctx, "fleet", NearbyQuery{Lon: 0, Lat: 0, RadiusMeters: 200000, HasRadius: true})
	require.NoError(t, err)
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, m.Key)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestDeleteRemovesFromIndex(t *testing.T) {
	db, _, err := Open(tempAofOptions(t))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, "c", "k", `{"type":"Point","coordinates":[0,0]}`))
	removed, err := db.Delete(ctx, "c", "k")
	require.NoError(t, err)
	assert.True(t, removed)

	matches, err := db.Intersects(ctx, "c", `{"type":"Polygon","coordinates":[[[-1,-1],[1,-1],[1,1],[-1,1],[-1,-1]]]}`)
	require.NoError(t, err)
	assert.Empty(t, matches)

	removed, err = db.Delete(ctx, "c", "k")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDropThenRestartRecoversCorrectly(t *testing.T) {
	opts := tempAofOptions(t)
	ctx := context.Background()

	db, _, err := Open(opts)
	require.NoError(t, err)
	require.NoError(t, db.Set(ctx, "coll", "a", pointGeoJSON(0, 0)))
	require.NoError(t, db.Set(ctx, "coll", "b", pointGeoJSON(1, 1)))
	require.NoError(t, db.Set(ctx, "coll", "c", pointGeoJSON(2, 2)))
	removed, err := db.Drop(ctx, "coll")
	require.NoError(t, err)
	assert.True(t, removed)
	require.NoError(t, db.Set(ctx, "coll", "d", pointGeoJSON(3, 3)))
	require.NoError(t, db.Close())

	db2, recovery, err := Open(opts)
	require.NoError(t, err)
	assert.Empty(t, recovery.Errors)

	for _, key := range []string{"a", "b", "c"} {
		_, ok, err := db2.Get(ctx, "coll", key)
		require.NoError(t, err)
		assert.False(t, ok, "key %q should not have survived drop", key)
	}
	got, ok, err := db2.Get(ctx, "coll", "d")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pointGeoJSON(3, 3), got)
}

func TestAofRecoveryToleratesCorruptLine(t *testing.T) {
	opts := tempAofOptions(t)
	content := "" +
		`{"ts":1,"cmd":"INSERT","collection":"c","key":"a","geojson":"{\"type\":\"Point\",\"coordinates\":[0,0]}"}` + "\n" +
		`garbage` + "\n" +
		`{"ts":2,"cmd":"INSERT","collection":"c","key":"b","geojson":"{\"type\":\"Point\",\"coordinates\":[1,1]}"}` + "\n"
	require.NoError(t, os.WriteFile(opts.AofPath, []byte(content), 0644))

	db, recovery, err := Open(opts)
	require.NoError(t, err)
	require.Len(t, recovery.Errors, 1)

	ctx := context.Background()
	_, ok, err := db.Get(ctx, "c", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = db.Get(ctx, "c", "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFlushAllClearsEveryCollection(t *testing.T) {
	db, _, err := Open(tempAofOptions(t))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, "a", "k1", pointGeoJSON(0, 0)))
	require.NoError(t, db.Set(ctx, "b", "k2", pointGeoJSON(1, 1)))
	require.NoError(t, db.FlushAll(ctx))

	assert.Empty(t, db.Keys())
}

func pointGeoJSON(lon, lat float64) string {
	return fmt.Sprintf(`{"type":"Point","coordinates":[%g,%g]}`, lon, lat)
}
