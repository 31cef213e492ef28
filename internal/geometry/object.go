package geometry

// Object is the spec's GeoObject: the verbatim input text paired with
// its parsed geometry and the bbox derived once at parse time. GET
// returns Raw unchanged rather than re-serializing Geom, so round-trip
// formatting differences in the client's input are never lost.
type Object struct {
	Raw  string
	Geom *Geometry
	BBox BBox
}

// ParseObject parses raw GeoJSON text into an Object, deriving its
// bbox once.
func ParseObject(raw string) (Object, error) {
	g, err := Parse([]byte(raw))
	if err != nil {
		return Object{}, err
	}
	return Object{Raw: raw, Geom: g, BBox: g.BBox()}, nil
}
