package sfs

import (
	"strconv"
	"strings"
)

// MarshalWKT returns the Well-Known Text of g, for example
// "LINESTRING (0 0, 0 1)". Layouts other than XY add a " Z", " M" or " ZM"
// suffix to every tag. It returns "" for a nil geometry.
func MarshalWKT(g Geometry) string {
	if isNilGeometry(g) {
		return ""
	}
	w := wktWriter{layout: layoutOf(g)}
	w.geometry(g)
	return w.String()
}

type wktWriter struct {
	strings.Builder
	layout Layout
}

func wktTag(t Type) string {
	switch t {
	case TypePoint:
		return "POINT"
	case TypeLineString, TypeLine:
		return "LINESTRING"
	case TypeLinearRing:
		return "LINEARRING"
	case TypePolygon:
		return "POLYGON"
	case TypeMultiPoint:
		return "MULTIPOINT"
	case TypeMultiLineString:
		return "MULTILINESTRING"
	case TypeMultiPolygon:
		return "MULTIPOLYGON"
	}
	return "GEOMETRYCOLLECTION"
}

func (w *wktWriter) tag(t Type) {
	w.WriteString(wktTag(t))
	switch w.layout {
	case XYZ:
		w.WriteString(" Z")
	case XYM:
		w.WriteString(" M")
	case XYZM:
		w.WriteString(" ZM")
	}
	w.WriteByte(' ')
}

func (w *wktWriter) geometry(g Geometry) {
	w.tag(g.GeometryType())
	switch g := g.(type) {
	case Point:
		if g.IsEmpty() {
			w.WriteString("EMPTY")
			return
		}
		w.WriteByte('(')
		w.coord(g.Coord())
		w.WriteByte(')')
	case LineString:
		w.coords(g.Coords())
	case Polygon:
		w.polygon(g)
	case MultiPoint:
		pts := g.Points()
		w.list(len(pts), func(i int) {
			p := pts[i]
			if p.IsEmpty() {
				w.WriteString("EMPTY")
				return
			}
			w.WriteByte('(')
			w.coord(p.Coord())
			w.WriteByte(')')
		})
	case MultiLineString:
		ls := g.LineStrings()
		w.list(len(ls), func(i int) { w.coords(ls[i].Coords()) })
	case MultiPolygon:
		ps := g.Polygons()
		w.list(len(ps), func(i int) { w.polygon(ps[i]) })
	case GeometryCollection:
		gs := g.Geometries()
		w.list(len(gs), func(i int) { w.geometry(gs[i]) })
	}
}

// list writes "EMPTY" for n == 0 and "(e0, e1, ...)" otherwise.
func (w *wktWriter) list(n int, elem func(i int)) {
	if n == 0 {
		w.WriteString("EMPTY")
		return
	}
	w.WriteByte('(')
	for i := 0; i < n; i++ {
		if i > 0 {
			w.WriteString(", ")
		}
		elem(i)
	}
	w.WriteByte(')')
}

func (w *wktWriter) coords(cs []Coord) {
	w.list(len(cs), func(i int) { w.coord(cs[i]) })
}

func (w *wktWriter) polygon(p Polygon) {
	if p.IsEmpty() {
		w.WriteString("EMPTY")
		return
	}
	rings := append([]LinearRing{p.ExteriorRing()}, p.InteriorRings()...)
	w.list(len(rings), func(i int) { w.coords(rings[i].Coords()) })
}

func (w *wktWriter) coord(c Coord) {
	var ords [4]float64
	for i, v := range c.ordinates(ords[:0], w.layout) {
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
}
