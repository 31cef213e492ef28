package geometry

import "math"

const epsilon = 1e-9

// atomKind is the leaf geometry shape after flattening away
// Multi*/Feature/*Collection wrappers — the granularity the
// intersection toolkit actually operates on.
type atomKind int

const (
	atomPoint atomKind = iota
	atomLine
	atomPolygon
)

type atom struct {
	kind  atomKind
	point Position   // atomPoint
	line  []Position // atomLine
	rings [][]Position
}

// flatten distributes a Geometry down to its atomic parts: points,
// polylines, and polygons (with holes). Multi* members, Feature's
// wrapped geometry, and GeometryCollection/FeatureCollection children
// are all merged into one flat slice, matching the design note that
// Multi* and collection geometries distribute over their members.
func flatten(g *Geometry) []atom {
	switch g.Kind {
	case KindPoint:
		return []atom{{kind: atomPoint, point: g.Point}}
	case KindMultiPoint:
		out := make([]atom, 0, len(g.MultiPoint))
		for _, p := range g.MultiPoint {
			out = append(out, atom{kind: atomPoint, point: p})
		}
		return out
	case KindLineString:
		return []atom{{kind: atomLine, line: g.LineString}}
	case KindMultiLineString:
		out := make([]atom, 0, len(g.MultiLineString))
		for _, l := range g.MultiLineString {
			out = append(out, atom{kind: atomLine, line: l})
		}
		return out
	case KindPolygon:
		return []atom{{kind: atomPolygon, rings: g.Polygon}}
	case KindMultiPolygon:
		out := make([]atom, 0, len(g.MultiPolygon))
		for _, rings := range g.MultiPolygon {
			out = append(out, atom{kind: atomPolygon, rings: rings})
		}
		return out
	case KindFeature:
		if len(g.Parts) == 0 {
			return nil
		}
		return flatten(g.Parts[0])
	case KindGeometryCollection, KindFeatureCollection:
		var out []atom
		for _, part := range g.Parts {
			out = append(out, flatten(part)...)
		}
		return out
	default:
		return nil
	}
}

// Intersects reports whether g and other share any point, distributing
// over Multi*/collection members on both sides. Boundary touches count
// as intersection.
func (g *Geometry) Intersects(other *Geometry) bool {
	as := flatten(g)
	bs := flatten(other)
	for _, a := range as {
		for _, b := range bs {
			if atomsIntersect(a, b) {
				return true
			}
		}
	}
	return false
}

func atomsIntersect(a, b atom) bool {
	switch {
	case a.kind == atomPoint && b.kind == atomPoint:
		return pointsEqual(a.point, b.point)
	case a.kind == atomPoint && b.kind == atomLine:
		return pointOnPolyline(a.point, b.line)
	case a.kind == atomLine && b.kind == atomPoint:
		return pointOnPolyline(b.point, a.line)
	case a.kind == atomPoint && b.kind == atomPolygon:
		return pointInRings(a.point, b.rings)
	case a.kind == atomPolygon && b.kind == atomPoint:
		return pointInRings(b.point, a.rings)
	case a.kind == atomLine && b.kind == atomLine:
		return polylinesIntersect(a.line, b.line)
	case a.kind == atomLine && b.kind == atomPolygon:
		return lineIntersectsPolygon(a.line, b.rings)
	case a.kind == atomPolygon && b.kind == atomLine:
		return lineIntersectsPolygon(b.line, a.rings)
	case a.kind == atomPolygon && b.kind == atomPolygon:
		return polygonsIntersect(a.rings, b.rings)
	default:
		return false
	}
}

func pointsEqual(p, q Position) bool {
	return math.Abs(p.X-q.X) < epsilon && math.Abs(p.Y-q.Y) < epsilon
}

// onSegment reports whether p lies on the closed segment [a, b],
// boundary inclusive.
func onSegment(p, a, b Position) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if math.Abs(cross) > epsilon {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-epsilon && p.X <= math.Max(a.X, b.X)+epsilon &&
		p.Y >= math.Min(a.Y, b.Y)-epsilon && p.Y <= math.Max(a.Y, b.Y)+epsilon
}

func pointOnPolyline(p Position, line []Position) bool {
	for i := 0; i+1 < len(line); i++ {
		if onSegment(p, line[i], line[i+1]) {
			return true
		}
	}
	return false
}

func orientation(a, b, c Position) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// segmentsIntersect reports whether segments [p1,p2] and [q1,q2]
// intersect or touch, including the collinear-overlap case.
func segmentsIntersect(p1, p2, q1, q2 Position) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if ((d1 > epsilon && d2 < -epsilon) || (d1 < -epsilon && d2 > epsilon)) &&
		((d3 > epsilon && d4 < -epsilon) || (d3 < -epsilon && d4 > epsilon)) {
		return true
	}

	if math.Abs(d1) <= epsilon && onSegment(p1, q1, q2) {
		return true
	}
	if math.Abs(d2) <= epsilon && onSegment(p2, q1, q2) {
		return true
	}
	if math.Abs(d3) <= epsilon && onSegment(q1, p1, p2) {
		return true
	}
	if math.Abs(d4) <= epsilon && onSegment(q2, p1, p2) {
		return true
	}
	return false
}

func polylinesIntersect(a, b []Position) bool {
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			if segmentsIntersect(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}
	return false
}

func ringEdges(ring []Position, fn func(a, b Position) bool) bool {
	for i := 0; i+1 < len(ring); i++ {
		if fn(ring[i], ring[i+1]) {
			return true
		}
	}
	return false
}

// pointInRing reports whether p is inside or on the boundary of the
// single ring, via boundary check plus even-odd ray casting.
func pointInRing(p Position, ring []Position) bool {
	if pointOnPolyline(p, ring) {
		return true
	}
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].X, ring[i].Y
		xj, yj := ring[j].X, ring[j].Y
		if (yi > p.Y) != (yj > p.Y) {
			xAtY := xi + (p.Y-yi)*(xj-xi)/(yj-yi)
			if p.X < xAtY {
				inside = !inside
			}
		}
	}
	return inside
}

// pointInRings reports whether p is inside the polygon described by
// rings[0] (exterior) and not excluded by any hole rings[1:], or lies
// on any ring's boundary (boundary touches count as intersection).
func pointInRings(p Position, rings [][]Position) bool {
	if len(rings) == 0 {
		return false
	}
	if !pointInRing(p, rings[0]) {
		return false
	}
	for _, hole := range rings[1:] {
		if pointOnPolyline(p, hole) {
			return true
		}
		if pointInRing(p, hole) {
			return false
		}
	}
	return true
}

func lineIntersectsPolygon(line []Position, rings [][]Position) bool {
	for _, ring := range rings {
		if ringEdges(ring, func(a, b Position) bool {
			return polylinesIntersect(line, []Position{a, b})
		}) {
			return true
		}
	}
	for _, p := range line {
		if pointInRings(p, rings) {
			return true
		}
	}
	return false
}

// polygonsIntersect implements §4.1's "edge intersection plus
// interior-point test": edges crossing catches overlapping polygons,
// and checking a vertex of each against the other catches full
// containment where no edge actually crosses.
func polygonsIntersect(a, b [][]Position) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for _, ringA := range a {
		for _, ringB := range b {
			if polylinesIntersect(ringA, ringB) {
				return true
			}
		}
	}
	if len(a[0]) > 0 && pointInRings(a[0][0], b) {
		return true
	}
	if len(b[0]) > 0 && pointInRings(b[0][0], a) {
		return true
	}
	return false
}

// properCrossing reports whether segments [p1,p2] and [q1,q2] cross
// transversally — strictly, not at a shared endpoint or via collinear
// overlap. Unlike segmentsIntersect, a boundary touch is not a crossing:
// that lets an atom legitimately run along or touch region's boundary
// without being rejected as escaping it.
func properCrossing(p1, p2, q1, q2 Position) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)
	return ((d1 > epsilon && d2 < -epsilon) || (d1 < -epsilon && d2 > epsilon)) &&
		((d3 > epsilon && d4 < -epsilon) || (d3 < -epsilon && d4 > epsilon))
}

// ContainedIn reports whether g lies fully within region (§4.6's WITHIN):
// region's bbox contains g's bbox, every atomic part of g lies
// inside-or-on-boundary of region, and no edge of g properly crosses
// region's boundary. The crossing check is what makes this correct for
// concave regions too — vertex-in-region alone can't tell a polygon that
// stays inside a concave region's notch from one whose edge cuts back
// out through it, but an edge that exits must cross the boundary
// somewhere, which this catches.
func (g *Geometry) ContainedIn(region *Geometry) bool {
	if !region.BBox().Contains(g.BBox()) {
		return false
	}
	regionAtoms := flatten(region)
	var regionPolygons [][][]Position
	for _, a := range regionAtoms {
		if a.kind == atomPolygon {
			regionPolygons = append(regionPolygons, a.rings)
		}
	}

	inRegion := func(p Position) bool {
		if len(regionPolygons) == 0 {
			return region.BBox().ContainsPoint(p.X, p.Y)
		}
		for _, rings := range regionPolygons {
			if pointInRings(p, rings) {
				return true
			}
		}
		return false
	}

	crossesRegionBoundary := func(a, b Position) bool {
		for _, rings := range regionPolygons {
			for _, ring := range rings {
				for i := 0; i+1 < len(ring); i++ {
					if properCrossing(a, b, ring[i], ring[i+1]) {
						return true
					}
				}
			}
		}
		return false
	}

	edgesContained := func(line []Position) bool {
		for _, p := range line {
			if !inRegion(p) {
				return false
			}
		}
		for i := 0; i+1 < len(line); i++ {
			if crossesRegionBoundary(line[i], line[i+1]) {
				return false
			}
		}
		return true
	}

	for _, a := range flatten(g) {
		switch a.kind {
		case atomPoint:
			if !inRegion(a.point) {
				return false
			}
		case atomLine:
			if !edgesContained(a.line) {
				return false
			}
		case atomPolygon:
			for _, ring := range a.rings {
				if !edgesContained(ring) {
					return false
				}
			}
		}
	}
	return true
}
