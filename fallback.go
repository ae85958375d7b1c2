package sfs

// visitCoords calls fn for every coordinate of g in storage order.
func visitCoords(g Geometry, fn func(Coord)) {
	switch g := g.(type) {
	case Point:
		if !g.IsEmpty() {
			fn(g.Coord())
		}
	case LineString:
		for _, c := range g.Coords() {
			fn(c)
		}
	case Polygon:
		if g.IsEmpty() {
			return
		}
		visitCoords(g.ExteriorRing(), fn)
		for _, h := range g.InteriorRings() {
			visitCoords(h, fn)
		}
	case GeometryCollection:
		for _, p := range g.Geometries() {
			visitCoords(p, fn)
		}
	}
}

// bounds returns the XY bounding box of g; ok is false when g is empty.
func bounds(g Geometry) (lo, hi Coord, ok bool) {
	visitCoords(g, func(c Coord) {
		if !ok {
			lo, hi, ok = c.XY(), c.XY(), true
			return
		}
		if c.X < lo.X {
			lo.X = c.X
		}
		if c.Y < lo.Y {
			lo.Y = c.Y
		}
		if c.X > hi.X {
			hi.X = c.X
		}
		if c.Y > hi.Y {
			hi.Y = c.Y
		}
	})
	return lo, hi, ok
}

// fallbackEnvelope returns the bounding box of g in its own factory: an
// empty collection, a Point, a Line for a degenerate box, or a Polygon.
func fallbackEnvelope(g Geometry) Geometry {
	return envelopeIn(g.Factory(), g)
}

func envelopeIn(f *Factory, g Geometry) Geometry {
	lo, hi, ok := bounds(g)
	switch {
	case !ok:
		return f.newCollection(nil)
	case lo == hi:
		return f.newPoint(lo)
	case lo.X == hi.X || lo.Y == hi.Y:
		return f.newLine([]Coord{lo, hi})
	}
	ring := f.newLinearRing([]Coord{
		lo,
		{X: hi.X, Y: lo.Y},
		hi,
		{X: lo.X, Y: hi.Y},
		lo,
	})
	return f.newPolygon(ring, nil)
}

// fallbackBoundary computes the combinatorial boundary of g. It returns nil
// for heterogeneous geometry collections.
func fallbackBoundary(g Geometry) Geometry {
	f := g.Factory()
	switch g.GeometryType() {
	case TypePoint, TypeMultiPoint:
		return f.newCollection(nil)
	case TypeLineString, TypeLine, TypeLinearRing:
		l := g.(LineString)
		if l.IsEmpty() || l.IsClosed() {
			return f.newMultiPoint(nil)
		}
		cs := l.Coords()
		return f.newMultiPoint([]Geometry{f.newPoint(cs[0]), f.newPoint(cs[len(cs)-1])})
	case TypeMultiLineString:
		return multiCurveBoundary(f, g.(MultiLineString))
	case TypePolygon:
		p := g.(Polygon)
		if p.IsEmpty() {
			return f.newMultiLineString(nil)
		}
		if p.NumInteriorRings() == 0 {
			return f.newLineString(p.ExteriorRing().Coords())
		}
		return f.newMultiLineString(ringLines(f, p))
	case TypeMultiPolygon:
		var lines []Geometry
		for _, p := range g.(MultiPolygon).Polygons() {
			if !p.IsEmpty() {
				lines = append(lines, ringLines(f, p)...)
			}
		}
		return f.newMultiLineString(lines)
	}
	return nil
}

func ringLines(f *Factory, p Polygon) []Geometry {
	lines := []Geometry{f.newLineString(p.ExteriorRing().Coords())}
	for _, h := range p.InteriorRings() {
		lines = append(lines, f.newLineString(h.Coords()))
	}
	return lines
}

// multiCurveBoundary applies the mod-2 rule: an endpoint is on the boundary
// when it ends an odd number of elements.
func multiCurveBoundary(f *Factory, m MultiLineString) Geometry {
	counts := make(map[Coord]int)
	var order []Coord
	for _, l := range m.LineStrings() {
		if l.IsEmpty() {
			continue
		}
		cs := l.Coords()
		for _, c := range [...]Coord{cs[0], cs[len(cs)-1]} {
			k := c.XY()
			if _, seen := counts[k]; !seen {
				order = append(order, c)
			}
			counts[k]++
		}
	}
	var pts []Geometry
	for _, c := range order {
		if counts[c.XY()]%2 == 1 {
			pts = append(pts, f.newPoint(c))
		}
	}
	return f.newMultiPoint(pts)
}
