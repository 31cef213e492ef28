package geometry

import "math"

// EarthRadiusMeters is the mean Earth radius used for all haversine
// distance calculations (§4.1).
const EarthRadiusMeters = 6371008.8

// HaversineMeters returns the great-circle distance in meters between
// two (lon, lat) points in degrees.
func HaversineMeters(lon1, lat1, lon2, lat2 float64) float64 {
	const deg2rad = math.Pi / 180
	phi1 := lat1 * deg2rad
	phi2 := lat2 * deg2rad
	dPhi := (lat2 - lat1) * deg2rad
	dLambda := (lon2 - lon1) * deg2rad

	sinDPhi := math.Sin(dPhi / 2)
	sinDLambda := math.Sin(dLambda / 2)

	a := sinDPhi*sinDPhi + math.Cos(phi1)*math.Cos(phi2)*sinDLambda*sinDLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// BBoxHaversineMeters returns the haversine distance from (lon, lat)
// to the closest point of b, approximated by clamping the query point
// into b and taking the haversine distance to that clamped point
// (§4.2). Returns 0 when the point is inside b.
func BBoxHaversineMeters(lon, lat float64, b BBox) float64 {
	cx, cy := b.ClampPoint(lon, lat)
	return HaversineMeters(lon, lat, cx, cy)
}
