package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonycui/spatio/internal/spatioerr"
)

func TestParsePoint(t *testing.T) {
	g, err := Parse([]byte(`{"type":"Point","coordinates":[116.3,39.9]}`))
	require.NoError(t, err)
	assert.Equal(t, KindPoint, g.Kind)
	assert.Equal(t, BBox{116.3, 39.9, 116.3, 39.9}, g.BBox())
}

func TestParsePolygonRequiresClosedRing(t *testing.T) {
	_, err := Parse([]byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1]]]}`))
	require.Error(t, err)
	assert.True(t, spatioerr.Is(err, spatioerr.KindInvalidGeoJSON))
}

func TestParseRejectsNonFinite(t *testing.T) {
	_, err := Parse([]byte(`{"type":"Point","coordinates":[1e400,0]}`))
	require.Error(t, err)
}

func TestFeatureUnwrapsForBBox(t *testing.T) {
	g, err := Parse([]byte(`{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}`))
	require.NoError(t, err)
	assert.Equal(t, KindFeature, g.Kind)
	assert.Equal(t, BBox{1, 2, 1, 2}, g.BBox())
}

func TestGeometryCollectionUnionsBBox(t *testing.T) {
	g, err := Parse([]byte(`{"type":"GeometryCollection","geometries":[
		{"type":"Point","coordinates":[0,0]},
		{"type":"Point","coordinates":[10,10]}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, BBox{0, 0, 10, 10}, g.BBox())
}

func TestPolygonIntersectsOverlappingPolygon(t *testing.T) {
	a, err := Parse([]byte(`{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`))
	require.NoError(t, err)
	b, err := Parse([]byte(`{"type":"Polygon","coordinates":[[[5,5],[15,5],[15,15],[5,15],[5,5]]]}`))
	require.NoError(t, err)
	assert.True(t, a.Intersects(b))
}

func TestPolygonDoesNotIntersectFarPoint(t *testing.T) {
	a, err := Parse([]byte(`{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`))
	require.NoError(t, err)
	p, err := Parse([]byte(`{"type":"Point","coordinates":[100,100]}`))
	require.NoError(t, err)
	assert.False(t, a.Intersects(p))
}

func TestContainedInRequiresFullContainment(t *testing.T) {
	region, err := Parse([]byte(`{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,10],[0,0]]]}`))
	require.NoError(t, err)
	inside, err := Parse([]byte(`{"type":"Point","coordinates":[5,5]}`))
	require.NoError(t, err)
	outside, err := Parse([]byte(`{"type":"Point","coordinates":[50,50]}`))
	require.NoError(t, err)

	assert.True(t, inside.ContainedIn(region))
	assert.False(t, outside.ContainedIn(region))
}

// TestContainedInRejectsEdgeCrossingConcaveNotch uses a square region
// with a rectangular notch bitten out of its right side (x in [4,10],
// y in [4,6] excluded). A line whose endpoints both sit inside the
// region, above and below the notch, but whose straight edge cuts
// through the notch band, must not be reported as contained — even
// though vertex-only containment would wrongly accept it.
func TestContainedInRejectsEdgeCrossingConcaveNotch(t *testing.T) {
	region, err := Parse([]byte(`{"type":"Polygon","coordinates":[[
		[0,0],[10,0],[10,4],[4,4],[4,6],[10,6],[10,10],[0,10],[0,0]
	]]}`))
	require.NoError(t, err)

	crossing, err := Parse([]byte(`{"type":"LineString","coordinates":[[7,2],[7,8]]}`))
	require.NoError(t, err)
	assert.False(t, crossing.ContainedIn(region), "edge cuts through the notch and must be rejected")

	withinColumn, err := Parse([]byte(`{"type":"LineString","coordinates":[[2,2],[2,8]]}`))
	require.NoError(t, err)
	assert.True(t, withinColumn.ContainedIn(region))
}
