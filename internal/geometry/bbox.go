package geometry

import "math"

// BBox is an axis-aligned 2-D bounding rectangle. Coordinates are
// treated as planar (lon/lat degrees used as Cartesian x/y) everywhere
// except haversine distance, which is explicitly spherical.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyBBox returns a bbox that acts as the identity element for Union:
// unioning it with any real bbox yields that bbox unchanged.
func EmptyBBox() BBox {
	return BBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// IsEmpty reports whether b is the EmptyBBox identity value.
func (b BBox) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Area returns the bbox's area. A degenerate bbox (a point or a
// vertical/horizontal line) has area zero, not an error.
func (b BBox) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	return (b.MaxX - b.MinX) * (b.MaxY - b.MinY)
}

// Margin returns the half-perimeter, used by some split heuristics as
// a cheaper proxy for "how sprawling" a bbox is.
func (b BBox) Margin() float64 {
	if b.IsEmpty() {
		return 0
	}
	return (b.MaxX - b.MinX) + (b.MaxY - b.MinY)
}

// Union returns the smallest bbox containing both b and other.
func (b BBox) Union(other BBox) BBox {
	if b.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return b
	}
	return BBox{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// Enlargement returns the additional area b would need to enlarge by
// to include other: area(union) - area(b).
func (b BBox) Enlargement(other BBox) float64 {
	return b.Union(other).Area() - b.Area()
}

// Contains reports whether b fully contains other.
func (b BBox) Contains(other BBox) bool {
	return other.MinX >= b.MinX && other.MaxX <= b.MaxX &&
		other.MinY >= b.MinY && other.MaxY <= b.MaxY
}

// ContainsPoint reports whether b contains the point (x, y), boundary
// inclusive.
func (b BBox) ContainsPoint(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Intersects reports whether b and other share at least a touching
// boundary point.
func (b BBox) Intersects(other BBox) bool {
	return b.MinX <= other.MaxX && b.MaxX >= other.MinX &&
		b.MinY <= other.MaxY && b.MaxY >= other.MinY
}

// ClampPoint returns the point in b closest to (x, y): (x, y) itself
// if already inside, otherwise each coordinate clamped to b's range.
// Used to compute the minimum haversine distance from a query point to
// an axis-aligned bbox (§4.2's k-NN pruning bound).
func (b BBox) ClampPoint(x, y float64) (float64, float64) {
	return clamp(x, b.MinX, b.MaxX), clamp(y, b.MinY, b.MaxY)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
