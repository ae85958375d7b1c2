package sfs

import (
	"slices"
)

func layoutOf(g Geometry) Layout {
	if f := g.Factory(); f != nil {
		return f.layout
	}
	return XY
}

// exactEquals reports structural identity: same type tag, same layout and
// the same ordered coordinates at every level of nesting. The SRID is not
// compared.
func exactEquals(a, b Geometry) bool {
	if isNilGeometry(a) || isNilGeometry(b) {
		return false
	}
	if a.GeometryType() != b.GeometryType() || layoutOf(a) != layoutOf(b) {
		return false
	}
	return sameStructure(a, b)
}

func sameStructure(a, b Geometry) bool {
	if a.GeometryType() != b.GeometryType() {
		return false
	}
	switch a := a.(type) {
	case Point:
		b := b.(Point)
		if a.IsEmpty() || b.IsEmpty() {
			return a.IsEmpty() == b.IsEmpty()
		}
		return a.Coord() == b.Coord()
	case LineString:
		return slices.Equal(a.Coords(), b.(LineString).Coords())
	case Polygon:
		b := b.(Polygon)
		if a.NumInteriorRings() != b.NumInteriorRings() {
			return false
		}
		if !sameStructure(a.ExteriorRing(), b.ExteriorRing()) {
			return false
		}
		for i := 0; i < a.NumInteriorRings(); i++ {
			if !sameStructure(a.InteriorRingN(i), b.InteriorRingN(i)) {
				return false
			}
		}
		return true
	case GeometryCollection:
		b := b.(GeometryCollection)
		if a.NumGeometries() != b.NumGeometries() {
			return false
		}
		for i := 0; i < a.NumGeometries(); i++ {
			if !sameStructure(a.GeometryN(i), b.GeometryN(i)) {
				return false
			}
		}
		return true
	}
	return false
}

// geometricEquals reports point-set equality. Empty geometries equal each
// other when their dimensions agree or either is an empty collection. When
// both operands share a native engine the engine decides; otherwise the
// fallback compares normalized XY components.
func geometricEquals(a, b Geometry) bool {
	if isNilGeometry(a) || isNilGeometry(b) {
		return false
	}
	ae, be := a.IsEmpty(), b.IsEmpty()
	if ae || be {
		if !ae || !be {
			return false
		}
		da, db := a.Dimension(), b.Dimension()
		return da == db || da == -1 || db == -1
	}
	if e := sharedEngine(a, b); e != nil {
		return e.Equals(a, b)
	}
	return fallbackEquals(a, b)
}

type segment [2]Coord

// components is a geometry split into puntal, lineal and polygonal parts.
type components struct {
	points   []Coord
	segments []segment
	polygons [][][]Coord
}

func decompose(g Geometry, c *components) {
	switch g := g.(type) {
	case Point:
		if !g.IsEmpty() {
			c.points = append(c.points, g.Coord().XY())
		}
	case LineString:
		cs := g.Coords()
		n := len(c.segments)
		for i := 1; i < len(cs); i++ {
			s := segment{cs[i-1].XY(), cs[i].XY()}
			if s[0] != s[1] {
				c.segments = append(c.segments, s)
			}
		}
		if len(cs) > 0 && len(c.segments) == n {
			// every segment collapsed to a single location
			c.points = append(c.points, cs[0].XY())
		}
	case Polygon:
		if g.IsEmpty() {
			return
		}
		rings := [][]Coord{g.ExteriorRing().Coords()}
		for _, h := range g.InteriorRings() {
			rings = append(rings, h.Coords())
		}
		c.polygons = append(c.polygons, rings)
	case GeometryCollection:
		for _, p := range g.Geometries() {
			decompose(p, c)
		}
	}
}

// onSegment reports whether v lies on s, endpoints included.
func onSegment(s segment, v Coord) bool {
	return v == s[0] || v == s[1] || strictlyInside(s, v)
}

// crosses reports whether s and t cross at a single point interior to both.
func crosses(s, t segment) bool {
	d1, d2 := cross(t[0], t[1], s[0]), cross(t[0], t[1], s[1])
	d3, d4 := cross(s[0], s[1], t[0]), cross(s[0], s[1], t[1])
	return d1*d2 < 0 && d3*d4 < 0
}

// locate returns 1 when v is inside ring, 0 when on it and -1 outside.
func locate(ring []Coord, v Coord) int {
	inside := false
	for i := range ring {
		a, b := ring[(i+len(ring)-1)%len(ring)].XY(), ring[i].XY()
		if onSegment(segment{a, b}, v) {
			return 0
		}
		if (a.Y > v.Y) != (b.Y > v.Y) && v.X < a.X+(v.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y) {
			inside = !inside
		}
	}
	if inside {
		return 1
	}
	return -1
}

// inPolygons reports whether v lies in a polygon of c or on its boundary.
func (c *components) inPolygons(v Coord) bool {
	for _, rings := range c.polygons {
		if locate(rings[0], v) < 0 {
			continue
		}
		inHole := false
		for _, h := range rings[1:] {
			if locate(h, v) > 0 {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// polygonsCover reports whether the polygons of c cover s. The segment is
// split at the ring vertices lying on it and rejected when it properly
// crosses a ring, so every piece lies wholly inside or outside.
func (c *components) polygonsCover(s segment, edges []segment) bool {
	cuts := []Coord{s[0], s[1]}
	for _, e := range edges {
		if crosses(s, e) {
			return false
		}
		if strictlyInside(s, e[1]) {
			cuts = append(cuts, e[1])
		}
	}
	slices.SortFunc(cuts, compareCoords)
	cuts = slices.Compact(cuts)
	for i, v := range cuts {
		if !c.inPolygons(v) {
			return false
		}
		if i > 0 && !c.inPolygons(Coord{X: (cuts[i-1].X + v.X) / 2, Y: (cuts[i-1].Y + v.Y) / 2}) {
			return false
		}
	}
	return true
}

// absorb drops the segments of c its polygons cover and the points lying
// on its segments or polygons.
func (c *components) absorb() {
	if len(c.polygons) > 0 {
		var edges []segment
		for _, rings := range c.polygons {
			for _, r := range rings {
				for i := range r {
					edges = append(edges, segment{r[(i+len(r)-1)%len(r)].XY(), r[i].XY()})
				}
			}
		}
		c.segments = slices.DeleteFunc(c.segments, func(s segment) bool {
			return c.polygonsCover(s, edges)
		})
	}
	c.points = slices.DeleteFunc(c.points, func(v Coord) bool {
		for _, s := range c.segments {
			if onSegment(s, v) {
				return true
			}
		}
		return c.inPolygons(v)
	})
}

// fallbackEquals compares the normalized components of a and b after each
// has absorbed the parts its higher-dimension parts cover. It is exact for
// point sets whose polygons do not merge across components, which covers
// reordered, reversed, re-split and re-started representations of the same
// geometry.
func fallbackEquals(a, b Geometry) bool {
	var ca, cb components
	decompose(a, &ca)
	decompose(b, &cb)
	ca.absorb()
	cb.absorb()

	if !slices.Equal(normalizePoints(ca.points), normalizePoints(cb.points)) {
		return false
	}

	var vertices []Coord
	for _, s := range append(ca.segments[:len(ca.segments):len(ca.segments)], cb.segments...) {
		vertices = append(vertices, s[0], s[1])
	}
	if !slices.Equal(normalizeSegments(ca.segments, vertices), normalizeSegments(cb.segments, vertices)) {
		return false
	}

	pa, pb := normalizePolygons(ca.polygons), normalizePolygons(cb.polygons)
	return slices.EqualFunc(pa, pb, func(x, y [][]Coord) bool {
		return slices.EqualFunc(x, y, slices.Equal[[]Coord])
	})
}

func compareCoords(a, b Coord) int {
	switch {
	case a.less(b):
		return -1
	case b.less(a):
		return 1
	}
	return 0
}

func normalizePoints(pts []Coord) []Coord {
	out := slices.Clone(pts)
	slices.SortFunc(out, compareCoords)
	return slices.Compact(out)
}

// cross returns the z component of (b-a) x (c-a).
func cross(a, b, c Coord) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// strictlyInside reports whether v lies on s, excluding its endpoints.
func strictlyInside(s segment, v Coord) bool {
	if v == s[0] || v == s[1] || cross(s[0], s[1], v) != 0 {
		return false
	}
	return v.X >= min(s[0].X, s[1].X) && v.X <= max(s[0].X, s[1].X) &&
		v.Y >= min(s[0].Y, s[1].Y) && v.Y <= max(s[0].Y, s[1].Y)
}

// normalizeSegments splits every segment at the given vertices that lie on
// it, orients each piece from its smaller endpoint and returns the sorted
// set of pieces.
func normalizeSegments(segs []segment, vertices []Coord) []segment {
	var out []segment
	for _, s := range segs {
		cuts := []Coord{s[0], s[1]}
		for _, v := range vertices {
			if strictlyInside(s, v) {
				cuts = append(cuts, v)
			}
		}
		slices.SortFunc(cuts, compareCoords)
		cuts = slices.Compact(cuts)
		for i := 1; i < len(cuts); i++ {
			out = append(out, segment{cuts[i-1], cuts[i]})
		}
	}
	slices.SortFunc(out, func(a, b segment) int {
		if c := compareCoords(a[0], b[0]); c != 0 {
			return c
		}
		return compareCoords(a[1], b[1])
	})
	return slices.Compact(out)
}

// signedArea is positive for counter-clockwise rings.
func signedArea(ring []Coord) float64 {
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return sum / 2
}

// normalizeRing drops the closing point, repeated and collinear vertices,
// orients the ring (counter-clockwise when ccw) and rotates it to start at
// its smallest vertex.
func normalizeRing(cs []Coord, ccw bool) []Coord {
	ring := make([]Coord, 0, len(cs))
	for _, c := range cs {
		c = c.XY()
		if len(ring) == 0 || ring[len(ring)-1] != c {
			ring = append(ring, c)
		}
	}
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	for changed := true; changed && len(ring) > 2; {
		changed = false
		for i := 0; i < len(ring) && len(ring) > 2; i++ {
			prev := ring[(i+len(ring)-1)%len(ring)]
			next := ring[(i+1)%len(ring)]
			if cross(prev, ring[i], next) == 0 {
				ring = slices.Delete(ring, i, i+1)
				changed = true
				i--
			}
		}
	}
	if (signedArea(ring) > 0) != ccw {
		slices.Reverse(ring)
	}
	start := 0
	for i, c := range ring {
		if c.less(ring[start]) {
			start = i
		}
	}
	return append(ring[start:], ring[:start]...)
}

func compareRings(a, b []Coord) int {
	return slices.CompareFunc(a, b, compareCoords)
}

func normalizePolygons(polys [][][]Coord) [][][]Coord {
	out := make([][][]Coord, 0, len(polys))
	for _, rings := range polys {
		norm := [][]Coord{normalizeRing(rings[0], true)}
		var holes [][]Coord
		for _, h := range rings[1:] {
			holes = append(holes, normalizeRing(h, false))
		}
		slices.SortFunc(holes, compareRings)
		out = append(out, append(norm, holes...))
	}
	slices.SortFunc(out, func(a, b [][]Coord) int {
		return slices.CompareFunc(a, b, compareRings)
	})
	return out
}
