package flatgeobuf

import (
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	sfs "github.com/tingold/orb-sfs"
)

// geometryType maps an sfs type to its FlatGeobuf GeometryType. Line and
// LinearRing are stored as LineString.
func geometryType(t sfs.Type) flattypes.GeometryType {
	switch t {
	case sfs.TypePoint:
		return flattypes.GeometryTypePoint
	case sfs.TypeLineString, sfs.TypeLine, sfs.TypeLinearRing:
		return flattypes.GeometryTypeLineString
	case sfs.TypePolygon:
		return flattypes.GeometryTypePolygon
	case sfs.TypeMultiPoint:
		return flattypes.GeometryTypeMultiPoint
	case sfs.TypeMultiLineString:
		return flattypes.GeometryTypeMultiLineString
	case sfs.TypeMultiPolygon:
		return flattypes.GeometryTypeMultiPolygon
	case sfs.TypeGeometryCollection:
		return flattypes.GeometryTypeGeometryCollection
	default:
		return flattypes.GeometryTypeUnknown
	}
}

// layerType returns the common type of geoms, or Unknown when they differ.
func layerType(geoms []sfs.Geometry) flattypes.GeometryType {
	t := flattypes.GeometryTypeUnknown
	for i, g := range geoms {
		gt := geometryType(g.GeometryType())
		if i == 0 {
			t = gt
		} else if gt != t {
			return flattypes.GeometryTypeUnknown
		}
	}
	return t
}

// geometryToFGB converts g to a FlatGeobuf writer.Geometry. It returns nil
// for nil or empty input.
func geometryToFGB(g sfs.Geometry, builder *flatbuffers.Builder) *writer.Geometry {
	if g == nil || g.IsEmpty() {
		return nil
	}

	fg := writer.NewGeometry(builder)
	fg.SetType(geometryType(g.GeometryType()))

	switch g.GeometryType() {
	case sfs.TypePoint:
		p := g.(sfs.Point)
		fg.SetXY([]float64{p.X(), p.Y()})

	case sfs.TypeLineString, sfs.TypeLine, sfs.TypeLinearRing:
		fg.SetXY(appendXY(nil, g.(sfs.LineString).Coords()))

	case sfs.TypePolygon:
		xy, ends := polygonXYEnds(g.(sfs.Polygon))
		fg.SetXY(xy)
		fg.SetEnds(ends)

	case sfs.TypeMultiPoint:
		var xy []float64
		for _, p := range g.(sfs.MultiPoint).Points() {
			if !p.IsEmpty() {
				xy = append(xy, p.X(), p.Y())
			}
		}
		fg.SetXY(xy)

	case sfs.TypeMultiLineString:
		var xy []float64
		var ends []uint32
		for _, l := range g.(sfs.MultiLineString).LineStrings() {
			if l.IsEmpty() {
				continue
			}
			xy = appendXY(xy, l.Coords())
			ends = append(ends, uint32(len(xy)/2))
		}
		fg.SetXY(xy)
		fg.SetEnds(ends)

	case sfs.TypeMultiPolygon:
		var parts []writer.Geometry
		for _, p := range g.(sfs.MultiPolygon).Polygons() {
			if part := geometryToFGB(p, builder); part != nil {
				parts = append(parts, *part)
			}
		}
		fg.SetParts(parts)

	case sfs.TypeGeometryCollection:
		var parts []writer.Geometry
		for _, child := range g.(sfs.GeometryCollection).Geometries() {
			if part := geometryToFGB(child, builder); part != nil {
				parts = append(parts, *part)
			}
		}
		fg.SetParts(parts)

	default:
		return nil
	}

	return fg
}

func appendXY(xy []float64, cs []sfs.Coord) []float64 {
	for _, c := range cs {
		xy = append(xy, c.X, c.Y)
	}
	return xy
}

func polygonXYEnds(p sfs.Polygon) ([]float64, []uint32) {
	xy := appendXY(nil, p.ExteriorRing().Coords())
	ends := []uint32{uint32(len(xy) / 2)}
	for _, h := range p.InteriorRings() {
		xy = appendXY(xy, h.Coords())
		ends = append(ends, uint32(len(xy)/2))
	}
	return xy, ends
}

// decoder rebuilds FlatGeobuf geometries with a factory. Every method
// returns nil when the stored geometry fails the factory's validation.
type decoder struct {
	f *sfs.Factory
	// layer is the header geometry type, used for features that leave
	// their own type unset.
	layer flattypes.GeometryType
}

func (d decoder) typeOf(fg *flattypes.Geometry) flattypes.GeometryType {
	if t := fg.Type(); t != flattypes.GeometryTypeUnknown {
		return t
	}
	return d.layer
}

func (d decoder) geometry(fg *flattypes.Geometry) sfs.Geometry {
	if fg == nil {
		return nil
	}

	switch d.typeOf(fg) {
	case flattypes.GeometryTypePoint:
		pts := d.points(fg, 0, fg.XyLength()/2)
		if len(pts) != 1 {
			return nil
		}
		return pts[0]

	case flattypes.GeometryTypeMultiPoint:
		return d.f.MultiPoint(d.points(fg, 0, fg.XyLength()/2))

	case flattypes.GeometryTypeLineString:
		return d.f.LineString(d.points(fg, 0, fg.XyLength()/2))

	case flattypes.GeometryTypeMultiLineString:
		ss, ok := spans(fg)
		if !ok {
			return nil
		}
		var lines []sfs.LineString
		for _, span := range ss {
			l := d.f.LineString(d.points(fg, span[0], span[1]))
			if l == nil {
				return nil
			}
			lines = append(lines, l)
		}
		return d.f.MultiLineString(lines)

	case flattypes.GeometryTypePolygon:
		return d.polygon(fg)

	case flattypes.GeometryTypeMultiPolygon:
		n := fg.PartsLength()
		if n == 0 {
			p := d.polygon(fg)
			if p == nil {
				return nil
			}
			return d.f.MultiPolygon([]sfs.Polygon{p})
		}
		polys := make([]sfs.Polygon, 0, n)
		for i := 0; i < n; i++ {
			var part flattypes.Geometry
			if !fg.Parts(&part, i) {
				return nil
			}
			p := d.polygon(&part)
			if p == nil {
				return nil
			}
			polys = append(polys, p)
		}
		return d.f.MultiPolygon(polys)

	case flattypes.GeometryTypeGeometryCollection:
		n := fg.PartsLength()
		geoms := make([]sfs.Geometry, 0, n)
		for i := 0; i < n; i++ {
			var part flattypes.Geometry
			if !fg.Parts(&part, i) {
				return nil
			}
			g := decoder{f: d.f}.geometry(&part)
			if g == nil {
				return nil
			}
			geoms = append(geoms, g)
		}
		return d.f.Collection(geoms)
	}

	return nil
}

// points returns the points with coordinate indexes [start, end). Z and M
// come from the z and m arrays when the factory layout has them, and are 0
// when the file does not store them.
func (d decoder) points(fg *flattypes.Geometry, start, end int) []sfs.Point {
	layout := d.f.Layout()
	zm := make([]float64, 0, 2)
	pts := make([]sfs.Point, 0, end-start)
	for i := start; i < end; i++ {
		zm = zm[:0]
		if layout.HasZ() {
			zm = append(zm, ordinate(fg.ZLength(), fg.Z, i))
		}
		if layout.HasM() {
			zm = append(zm, ordinate(fg.MLength(), fg.M, i))
		}
		pts = append(pts, d.f.Point(fg.Xy(2*i), fg.Xy(2*i+1), zm...))
	}
	return pts
}

func ordinate(n int, at func(int) float64, i int) float64 {
	if i < n {
		return at(i)
	}
	return 0
}

// spans splits the coordinates of fg at its ends array. Without ends the
// whole coordinate list is one span. ok is false when the ends are out of
// order or past the coordinates.
func spans(fg *flattypes.Geometry) (out [][2]int, ok bool) {
	n := fg.XyLength() / 2
	if fg.EndsLength() == 0 {
		if n == 0 {
			return nil, true
		}
		return [][2]int{{0, n}}, true
	}
	out = make([][2]int, 0, fg.EndsLength())
	start := 0
	for i := 0; i < fg.EndsLength(); i++ {
		end := int(fg.Ends(i))
		if end < start || end > n {
			return nil, false
		}
		out = append(out, [2]int{start, end})
		start = end
	}
	return out, true
}

func (d decoder) polygon(fg *flattypes.Geometry) sfs.Polygon {
	ss, ok := spans(fg)
	if !ok {
		return nil
	}
	var rings []sfs.LinearRing
	for _, span := range ss {
		r := d.f.LinearRing(d.points(fg, span[0], span[1]))
		if r == nil || r.IsEmpty() {
			return nil
		}
		rings = append(rings, r)
	}
	if len(rings) == 0 {
		return nil
	}
	return d.f.Polygon(rings[0], rings[1:]...)
}
