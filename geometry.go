package sfs

// Geometry is the capability set shared by every geometry kind.
type Geometry interface {
	// Factory returns the factory that built the geometry.
	Factory() *Factory
	GeometryType() Type
	// Dimension is 0 for puntal, 1 for lineal and 2 for polygonal
	// geometries. A GeometryCollection reports the maximum over its
	// parts, or -1 when it has none.
	Dimension() int
	SRID() int
	IsEmpty() bool
	AsText() string
	AsBinary() []byte
	// Boundary returns the combinatorial boundary, or nil where it is
	// undefined (heterogeneous collections).
	Boundary() Geometry
	// Envelope returns the bounding box as a Point, Line or Polygon, or an
	// empty collection for empty input.
	Envelope() Geometry
	// Equals reports whether both geometries denote the same point set.
	Equals(other Geometry) bool
	// ExactEquals reports whether both geometries have the same type and
	// the same ordered coordinates.
	ExactEquals(other Geometry) bool
	// Hash is consistent with ExactEquals.
	Hash() uint64
	String() string
}

// Point is a 0-dimensional geometry: a single location.
type Point interface {
	Geometry
	X() float64
	Y() float64
	Z() float64
	M() float64
	Coord() Coord
}

// Curve is a 1-dimensional geometry.
type Curve interface {
	Geometry
	StartPoint() Point
	EndPoint() Point
	IsClosed() bool
	IsRing() bool
}

// LineString is a curve with linear interpolation between points.
type LineString interface {
	Curve
	NumPoints() int
	PointN(i int) Point
	Points() []Point
	Coords() []Coord
}

// Line is a LineString with exactly two points.
type Line interface {
	LineString
	line()
}

// LinearRing is a closed LineString.
type LinearRing interface {
	LineString
	linearRing()
}

// Surface is a 2-dimensional geometry.
type Surface interface {
	Geometry
	surface()
}

// Polygon is a planar surface bounded by one exterior ring and zero or more
// interior rings.
type Polygon interface {
	Surface
	ExteriorRing() LinearRing
	NumInteriorRings() int
	InteriorRingN(i int) LinearRing
	InteriorRings() []LinearRing
}

// GeometryCollection is an ordered collection of geometries.
type GeometryCollection interface {
	Geometry
	NumGeometries() int
	GeometryN(i int) Geometry
	Geometries() []Geometry
}

// MultiPoint is a collection of points.
type MultiPoint interface {
	GeometryCollection
	Points() []Point
}

// MultiCurve is a collection of curves.
type MultiCurve interface {
	GeometryCollection
	IsClosed() bool
}

// MultiLineString is a collection of line strings.
type MultiLineString interface {
	MultiCurve
	LineStrings() []LineString
}

// MultiSurface is a collection of surfaces.
type MultiSurface interface {
	GeometryCollection
	multiSurface()
}

// MultiPolygon is a collection of polygons.
type MultiPolygon interface {
	MultiSurface
	Polygons() []Polygon
}

// base carries what every concrete geometry shares. self points back at the
// outermost value so promoted methods dispatch on the real kind.
type base struct {
	f    *Factory
	self Geometry
}

func (b *base) Factory() *Factory { return b.f }
func (b *base) SRID() int         { return b.f.srid }
func (b *base) AsText() string    { return MarshalWKT(b.self) }
func (b *base) String() string    { return MarshalWKT(b.self) }
func (b *base) AsBinary() []byte  { return MarshalWKB(b.self, b.f.wkbOptions()) }
func (b *base) Hash() uint64      { return hashGeometry(b.self) }

func (b *base) ExactEquals(other Geometry) bool { return exactEquals(b.self, other) }
func (b *base) Equals(other Geometry) bool      { return geometricEquals(b.self, other) }

func (b *base) Boundary() Geometry {
	if e := b.f.engine; e != nil {
		return e.Boundary(b.self)
	}
	return fallbackBoundary(b.self)
}

func (b *base) Envelope() Geometry {
	if e := b.f.engine; e != nil {
		return e.Envelope(b.self)
	}
	return fallbackEnvelope(b.self)
}

type point struct {
	base
	c     Coord
	empty bool
}

func (p *point) GeometryType() Type { return TypePoint }
func (p *point) Dimension() int     { return 0 }
func (p *point) IsEmpty() bool      { return p.empty }
func (p *point) X() float64         { return p.c.X }
func (p *point) Y() float64         { return p.c.Y }
func (p *point) Z() float64         { return p.c.Z }
func (p *point) M() float64         { return p.c.M }
func (p *point) Coord() Coord       { return p.c }

type lineString struct {
	base
	coords []Coord
}

func (l *lineString) GeometryType() Type { return TypeLineString }
func (l *lineString) Dimension() int     { return 1 }
func (l *lineString) IsEmpty() bool      { return len(l.coords) == 0 }
func (l *lineString) NumPoints() int     { return len(l.coords) }

// PointN returns the i'th point, or nil when i is out of range.
func (l *lineString) PointN(i int) Point {
	if i < 0 || i >= len(l.coords) {
		return nil
	}
	return l.f.newPoint(l.coords[i])
}

func (l *lineString) Points() []Point {
	pts := make([]Point, len(l.coords))
	for i, c := range l.coords {
		pts[i] = l.f.newPoint(c)
	}
	return pts
}

func (l *lineString) Coords() []Coord {
	return append([]Coord(nil), l.coords...)
}

func (l *lineString) StartPoint() Point { return l.PointN(0) }
func (l *lineString) EndPoint() Point   { return l.PointN(len(l.coords) - 1) }

func (l *lineString) IsClosed() bool {
	n := len(l.coords)
	return n > 0 && l.coords[0].equalXY(l.coords[n-1])
}

// IsRing reports whether the curve is closed with at least four points.
// Simplicity is only checked when the factory has a native engine.
func (l *lineString) IsRing() bool {
	if len(l.coords) < 4 || !l.IsClosed() {
		return false
	}
	if e := l.f.engine; e != nil {
		return e.IsValid(l.f.newLinearRing(l.coords))
	}
	return true
}

type line struct{ lineString }

func (l *line) GeometryType() Type { return TypeLine }
func (l *line) line()              {}

type linearRing struct{ lineString }

func (r *linearRing) GeometryType() Type { return TypeLinearRing }
func (r *linearRing) linearRing()        {}

type polygon struct {
	base
	shell LinearRing
	holes []LinearRing
}

func (p *polygon) GeometryType() Type       { return TypePolygon }
func (p *polygon) Dimension() int           { return 2 }
func (p *polygon) IsEmpty() bool            { return p.shell.IsEmpty() && len(p.holes) == 0 }
func (p *polygon) surface()                 {}
func (p *polygon) ExteriorRing() LinearRing { return p.shell }
func (p *polygon) NumInteriorRings() int    { return len(p.holes) }

// InteriorRingN returns the i'th hole, or nil when i is out of range.
func (p *polygon) InteriorRingN(i int) LinearRing {
	if i < 0 || i >= len(p.holes) {
		return nil
	}
	return p.holes[i]
}

func (p *polygon) InteriorRings() []LinearRing {
	return append([]LinearRing(nil), p.holes...)
}

// rings returns the shell followed by the holes.
func (p *polygon) rings() []LinearRing {
	return append([]LinearRing{p.shell}, p.holes...)
}

type collection struct {
	base
	geoms []Geometry
}

func (c *collection) GeometryType() Type { return TypeGeometryCollection }
func (c *collection) NumGeometries() int { return len(c.geoms) }

func (c *collection) Dimension() int {
	dim := -1
	for _, g := range c.geoms {
		if d := g.Dimension(); d > dim {
			dim = d
		}
	}
	return dim
}

func (c *collection) IsEmpty() bool {
	for _, g := range c.geoms {
		if !g.IsEmpty() {
			return false
		}
	}
	return true
}

// GeometryN returns the i'th element, or nil when i is out of range.
func (c *collection) GeometryN(i int) Geometry {
	if i < 0 || i >= len(c.geoms) {
		return nil
	}
	return c.geoms[i]
}

func (c *collection) Geometries() []Geometry {
	return append([]Geometry(nil), c.geoms...)
}

type multiPoint struct{ collection }

func (m *multiPoint) GeometryType() Type { return TypeMultiPoint }
func (m *multiPoint) Dimension() int     { return 0 }

func (m *multiPoint) Points() []Point {
	pts := make([]Point, len(m.geoms))
	for i, g := range m.geoms {
		pts[i] = g.(Point)
	}
	return pts
}

type multiLineString struct{ collection }

func (m *multiLineString) GeometryType() Type { return TypeMultiLineString }
func (m *multiLineString) Dimension() int     { return 1 }

// IsClosed reports whether every element is closed.
func (m *multiLineString) IsClosed() bool {
	for _, g := range m.geoms {
		if !g.(LineString).IsClosed() {
			return false
		}
	}
	return true
}

func (m *multiLineString) LineStrings() []LineString {
	ls := make([]LineString, len(m.geoms))
	for i, g := range m.geoms {
		ls[i] = g.(LineString)
	}
	return ls
}

type multiPolygon struct{ collection }

func (m *multiPolygon) GeometryType() Type { return TypeMultiPolygon }
func (m *multiPolygon) Dimension() int     { return 2 }
func (m *multiPolygon) multiSurface()      {}

func (m *multiPolygon) Polygons() []Polygon {
	ps := make([]Polygon, len(m.geoms))
	for i, g := range m.geoms {
		ps[i] = g.(Polygon)
	}
	return ps
}
