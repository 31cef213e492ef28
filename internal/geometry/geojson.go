package geometry

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/tonycui/spatio/internal/spatioerr"
)

// rawGeoJSON is the generic envelope every GeoJSON object decodes
// into before this package dispatches on its Type field. Properties
// and other Feature metadata are accepted but not retained — this
// repo's GeoObject keeps the original text verbatim for GET, so no
// field of the input is ever lost; Parse only needs the geometry.
type rawGeoJSON struct {
	Type        string            `json:"type"`
	Coordinates json.RawMessage   `json:"coordinates"`
	Geometry    json.RawMessage   `json:"geometry"`
	Geometries  []json.RawMessage `json:"geometries"`
	Features    []json.RawMessage `json:"features"`
}

// Parse decodes raw GeoJSON text into a Geometry, validating shape and
// finiteness per §4.1. Any structural problem is reported as an
// *spatioerr.Error with Kind == KindInvalidGeoJSON.
func Parse(raw []byte) (*Geometry, error) {
	var r rawGeoJSON
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, spatioerr.Wrap(spatioerr.KindInvalidGeoJSON, "malformed JSON", err)
	}
	return parseValue(r)
}

func parseValue(r rawGeoJSON) (*Geometry, error) {
	switch r.Type {
	case "":
		return nil, spatioerr.InvalidGeoJSON("missing \"type\"")
	case "Point":
		pos, err := decodePosition(r.Coordinates)
		if err != nil {
			return nil, err
		}
		return &Geometry{Kind: KindPoint, Point: pos}, nil
	case "MultiPoint":
		pts, err := decodePositionArray(r.Coordinates)
		if err != nil {
			return nil, err
		}
		return &Geometry{Kind: KindMultiPoint, MultiPoint: pts}, nil
	case "LineString":
		pts, err := decodePositionArray(r.Coordinates)
		if err != nil {
			return nil, err
		}
		if len(pts) < 2 {
			return nil, spatioerr.InvalidGeoJSON("LineString requires at least 2 positions")
		}
		return &Geometry{Kind: KindLineString, LineString: pts}, nil
	case "MultiLineString":
		lines, err := decodePositionArrayArray(r.Coordinates)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			if len(l) < 2 {
				return nil, spatioerr.InvalidGeoJSON("MultiLineString member requires at least 2 positions")
			}
		}
		return &Geometry{Kind: KindMultiLineString, MultiLineString: lines}, nil
	case "Polygon":
		rings, err := decodePositionArrayArray(r.Coordinates)
		if err != nil {
			return nil, err
		}
		if err := validateRings(rings); err != nil {
			return nil, err
		}
		return &Geometry{Kind: KindPolygon, Polygon: rings}, nil
	case "MultiPolygon":
		polys, err := decodeRingsArray(r.Coordinates)
		if err != nil {
			return nil, err
		}
		for _, rings := range polys {
			if err := validateRings(rings); err != nil {
				return nil, err
			}
		}
		return &Geometry{Kind: KindMultiPolygon, MultiPolygon: polys}, nil
	case "GeometryCollection":
		if len(r.Geometries) == 0 {
			return nil, spatioerr.InvalidGeoJSON("GeometryCollection requires \"geometries\"")
		}
		parts := make([]*Geometry, 0, len(r.Geometries))
		for _, raw := range r.Geometries {
			var child rawGeoJSON
			if err := json.Unmarshal(raw, &child); err != nil {
				return nil, spatioerr.Wrap(spatioerr.KindInvalidGeoJSON, "malformed geometry member", err)
			}
			g, err := parseValue(child)
			if err != nil {
				return nil, err
			}
			parts = append(parts, g)
		}
		return &Geometry{Kind: KindGeometryCollection, Parts: parts}, nil
	case "Feature":
		if len(r.Geometry) == 0 {
			return nil, spatioerr.InvalidGeoJSON("Feature requires \"geometry\"")
		}
		var child rawGeoJSON
		if err := json.Unmarshal(r.Geometry, &child); err != nil {
			return nil, spatioerr.Wrap(spatioerr.KindInvalidGeoJSON, "malformed Feature geometry", err)
		}
		g, err := parseValue(child)
		if err != nil {
			return nil, err
		}
		return &Geometry{Kind: KindFeature, Parts: []*Geometry{g}}, nil
	case "FeatureCollection":
		if len(r.Features) == 0 {
			return nil, spatioerr.InvalidGeoJSON("FeatureCollection requires \"features\"")
		}
		parts := make([]*Geometry, 0, len(r.Features))
		for _, raw := range r.Features {
			var feat rawGeoJSON
			if err := json.Unmarshal(raw, &feat); err != nil {
				return nil, spatioerr.Wrap(spatioerr.KindInvalidGeoJSON, "malformed feature member", err)
			}
			if feat.Type != "Feature" {
				return nil, spatioerr.InvalidGeoJSON("FeatureCollection member must be a Feature")
			}
			g, err := parseValue(feat)
			if err != nil {
				return nil, err
			}
			parts = append(parts, g)
		}
		return &Geometry{Kind: KindFeatureCollection, Parts: parts}, nil
	default:
		return nil, spatioerr.InvalidGeoJSON("unknown geometry type %q", r.Type)
	}
}

func decodePosition(raw json.RawMessage) (Position, error) {
	var xy []float64
	if err := json.Unmarshal(raw, &xy); err != nil {
		return Position{}, spatioerr.Wrap(spatioerr.KindInvalidGeoJSON, "malformed coordinates", err)
	}
	if len(xy) < 2 {
		return Position{}, spatioerr.InvalidGeoJSON("position requires at least 2 coordinates")
	}
	if !isFinite(xy[0]) || !isFinite(xy[1]) {
		return Position{}, spatioerr.InvalidGeoJSON("non-finite coordinate")
	}
	return Position{X: xy[0], Y: xy[1]}, nil
}

func decodePositionArray(raw json.RawMessage) ([]Position, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, spatioerr.Wrap(spatioerr.KindInvalidGeoJSON, "malformed coordinates", err)
	}
	if len(arr) == 0 {
		return nil, spatioerr.InvalidGeoJSON("coordinates array is empty")
	}
	out := make([]Position, 0, len(arr))
	for _, item := range arr {
		pos, err := decodePosition(item)
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, nil
}

func decodePositionArrayArray(raw json.RawMessage) ([][]Position, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, spatioerr.Wrap(spatioerr.KindInvalidGeoJSON, "malformed coordinates", err)
	}
	if len(arr) == 0 {
		return nil, spatioerr.InvalidGeoJSON("coordinates array is empty")
	}
	out := make([][]Position, 0, len(arr))
	for _, item := range arr {
		pts, err := decodePositionArray(item)
		if err != nil {
			return nil, err
		}
		out = append(out, pts)
	}
	return out, nil
}

func decodeRingsArray(raw json.RawMessage) ([][][]Position, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, spatioerr.Wrap(spatioerr.KindInvalidGeoJSON, "malformed coordinates", err)
	}
	if len(arr) == 0 {
		return nil, spatioerr.InvalidGeoJSON("coordinates array is empty")
	}
	out := make([][][]Position, 0, len(arr))
	for _, item := range arr {
		rings, err := decodePositionArrayArray(item)
		if err != nil {
			return nil, err
		}
		out = append(out, rings)
	}
	return out, nil
}

func validateRings(rings [][]Position) error {
	if len(rings) == 0 {
		return spatioerr.InvalidGeoJSON("Polygon requires at least one ring")
	}
	for i, ring := range rings {
		if len(ring) < 4 {
			return spatioerr.InvalidGeoJSON("polygon ring %d has fewer than 4 positions", i)
		}
		first, last := ring[0], ring[len(ring)-1]
		if first.X != last.X || first.Y != last.Y {
			return spatioerr.InvalidGeoJSON("polygon ring %d is not closed", i)
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// BBox computes the geometry's bounding box by walking all coordinate
// pairs; Feature unwraps to its geometry and FeatureCollection/
// GeometryCollection take the union of their children's bboxes.
func (g *Geometry) BBox() BBox {
	switch g.Kind {
	case KindPoint:
		return BBox{g.Point.X, g.Point.Y, g.Point.X, g.Point.Y}
	case KindMultiPoint:
		return positionsBBox(g.MultiPoint)
	case KindLineString:
		return positionsBBox(g.LineString)
	case KindMultiLineString:
		b := EmptyBBox()
		for _, l := range g.MultiLineString {
			b = b.Union(positionsBBox(l))
		}
		return b
	case KindPolygon:
		return ringsBBox(g.Polygon)
	case KindMultiPolygon:
		b := EmptyBBox()
		for _, rings := range g.MultiPolygon {
			b = b.Union(ringsBBox(rings))
		}
		return b
	case KindGeometryCollection, KindFeatureCollection:
		b := EmptyBBox()
		for _, part := range g.Parts {
			b = b.Union(part.BBox())
		}
		return b
	case KindFeature:
		if len(g.Parts) == 0 {
			return EmptyBBox()
		}
		return g.Parts[0].BBox()
	default:
		return EmptyBBox()
	}
}

func positionsBBox(pts []Position) BBox {
	b := EmptyBBox()
	for _, p := range pts {
		b = b.Union(BBox{p.X, p.Y, p.X, p.Y})
	}
	return b
}

func ringsBBox(rings [][]Position) BBox {
	b := EmptyBBox()
	for _, r := range rings {
		b = b.Union(positionsBBox(r))
	}
	return b
}

// String renders a human-readable tag, used only in log lines and
// error messages, never on the wire.
func (g *Geometry) String() string {
	return fmt.Sprintf("%s(bbox=%v)", g.Kind, g.BBox())
}
