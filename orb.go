package sfs

import (
	"github.com/paulmach/orb"
)

// ToOrb converts g to its 2D orb equivalent. Z and M are dropped, Line and
// LinearRing map to orb.LineString and orb.Ring, and an empty point becomes
// nil. It returns nil for a nil geometry.
func ToOrb(g Geometry) orb.Geometry {
	if isNilGeometry(g) {
		return nil
	}
	switch g.GeometryType() {
	case TypePoint:
		p := g.(Point)
		if p.IsEmpty() {
			return nil
		}
		return orb.Point{p.X(), p.Y()}
	case TypeLinearRing:
		return orb.Ring(orbPoints(g.(LineString).Coords()))
	case TypeLineString, TypeLine:
		return orb.LineString(orbPoints(g.(LineString).Coords()))
	case TypePolygon:
		return orbPolygon(g.(Polygon))
	case TypeMultiPoint:
		var mp orb.MultiPoint
		for _, p := range g.(MultiPoint).Points() {
			if !p.IsEmpty() {
				mp = append(mp, orb.Point{p.X(), p.Y()})
			}
		}
		return mp
	case TypeMultiLineString:
		var ml orb.MultiLineString
		for _, l := range g.(MultiLineString).LineStrings() {
			ml = append(ml, orbPoints(l.Coords()))
		}
		return ml
	case TypeMultiPolygon:
		var mp orb.MultiPolygon
		for _, p := range g.(MultiPolygon).Polygons() {
			mp = append(mp, orbPolygon(p))
		}
		return mp
	case TypeGeometryCollection:
		var c orb.Collection
		for _, p := range g.(GeometryCollection).Geometries() {
			if o := ToOrb(p); o != nil {
				c = append(c, o)
			}
		}
		return c
	}
	return nil
}

func orbPoints(cs []Coord) []orb.Point {
	pts := make([]orb.Point, len(cs))
	for i, c := range cs {
		pts[i] = orb.Point{c.X, c.Y}
	}
	return pts
}

func orbPolygon(p Polygon) orb.Polygon {
	if p.IsEmpty() {
		return orb.Polygon{}
	}
	poly := orb.Polygon{orbPoints(p.ExteriorRing().Coords())}
	for _, h := range p.InteriorRings() {
		poly = append(poly, orbPoints(h.Coords()))
	}
	return poly
}

func coordsFromOrb(pts []orb.Point) []Coord {
	cs := make([]Coord, len(pts))
	for i, p := range pts {
		cs[i] = Coord{X: p[0], Y: p[1]}
	}
	return cs
}

// GeometryFrom builds a geometry of this factory from an orb geometry,
// validating it like the constructors do. orb.Bound becomes its polygon.
func (f *Factory) GeometryFrom(g orb.Geometry) Geometry {
	switch g := g.(type) {
	case nil:
		return nil
	case orb.Point:
		return f.build(&rawGeometry{typ: TypePoint, coords: []Coord{{X: g[0], Y: g[1]}}})
	case orb.MultiPoint:
		r := &rawGeometry{typ: TypeMultiPoint}
		for _, p := range g {
			r.parts = append(r.parts, &rawGeometry{typ: TypePoint, coords: []Coord{{X: p[0], Y: p[1]}}})
		}
		return f.build(r)
	case orb.LineString:
		return f.build(&rawGeometry{typ: TypeLineString, coords: coordsFromOrb(g)})
	case orb.Ring:
		return f.build(&rawGeometry{typ: TypeLinearRing, coords: coordsFromOrb(g)})
	case orb.MultiLineString:
		r := &rawGeometry{typ: TypeMultiLineString}
		for _, l := range g {
			r.parts = append(r.parts, &rawGeometry{typ: TypeLineString, coords: coordsFromOrb(l)})
		}
		return f.build(r)
	case orb.Polygon:
		return f.build(rawPolygon(g))
	case orb.MultiPolygon:
		r := &rawGeometry{typ: TypeMultiPolygon}
		for _, p := range g {
			r.parts = append(r.parts, rawPolygon(p))
		}
		return f.build(r)
	case orb.Bound:
		return f.build(rawPolygon(g.ToPolygon()))
	case orb.Collection:
		parts := make([]Geometry, len(g))
		for i, c := range g {
			if parts[i] = f.GeometryFrom(c); parts[i] == nil {
				return nil
			}
		}
		return nilIfInvalid(f.Collection(parts))
	}
	return nil
}

func rawPolygon(p orb.Polygon) *rawGeometry {
	r := &rawGeometry{typ: TypePolygon}
	for _, ring := range p {
		r.rings = append(r.rings, coordsFromOrb(ring))
	}
	return r
}
