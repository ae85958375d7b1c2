package sfs

import (
	"encoding/binary"
	"math"
)

// Backend selects how a Factory computes geometric operations.
type Backend int

const (
	// BackendAuto uses the registered native engine when one is
	// available and the fallback otherwise.
	BackendAuto Backend = iota
	// BackendNative requires a native engine.
	BackendNative
	// BackendFallback never uses a native engine.
	BackendFallback
)

func (b Backend) String() string {
	switch b {
	case BackendNative:
		return "native"
	case BackendFallback:
		return "fallback"
	default:
		return "auto"
	}
}

// Options configures a Factory.
type Options struct {
	Backend Backend
	// Engine overrides the registered native engine. It is ignored for
	// BackendFallback.
	Engine Engine
	SRID   int
	Layout Layout
	// Precision snaps every ordinate to a grid of this size. Zero keeps
	// full double precision.
	Precision float64
	// ByteOrder and ExtendedWKB control AsBinary output.
	ByteOrder   binary.ByteOrder
	ExtendedWKB bool
}

// DefaultOptions returns options for a 2D factory with no SRID that uses the
// native engine when one is registered.
func DefaultOptions() *Options {
	return &Options{
		Backend:   BackendAuto,
		Layout:    XY,
		ByteOrder: binary.LittleEndian,
	}
}

// Factory is the single entry point for constructing, validating and parsing
// geometries. A Factory is immutable and safe for concurrent use.
//
// Constructors return nil when their input violates a geometry invariant.
// Parse methods return an error for malformed input and (nil, nil) for
// well-formed input that describes an invalid geometry.
type Factory struct {
	backend   Backend
	engine    Engine
	srid      int
	layout    Layout
	precision float64
	byteOrder binary.ByteOrder
	extended  bool
}

// NewFactory creates a factory. A nil opts uses DefaultOptions. It returns
// nil if the options are invalid or BackendNative is requested and no
// engine is available.
func NewFactory(opts *Options) *Factory {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Layout < XY || opts.Layout > XYZM {
		return nil
	}
	if opts.Precision < 0 || math.IsNaN(opts.Precision) || math.IsInf(opts.Precision, 0) {
		return nil
	}

	f := &Factory{
		srid:      opts.SRID,
		layout:    opts.Layout,
		precision: opts.Precision,
		byteOrder: opts.ByteOrder,
		extended:  opts.ExtendedWKB,
	}
	if f.byteOrder == nil {
		f.byteOrder = binary.LittleEndian
	}

	engine := opts.Engine
	if engine == nil {
		engine = NativeEngine()
	}
	switch opts.Backend {
	case BackendNative:
		if engine == nil {
			return nil
		}
		f.backend, f.engine = BackendNative, engine
	case BackendFallback:
		f.backend = BackendFallback
	default:
		if engine != nil {
			f.backend, f.engine = BackendNative, engine
		} else {
			f.backend = BackendFallback
		}
	}
	return f
}

// Backend returns the resolved backend: BackendNative or BackendFallback.
func (f *Factory) Backend() Backend { return f.backend }

// IsNative reports whether the factory computes through a native engine.
func (f *Factory) IsNative() bool { return f.engine != nil }

// EngineName returns the native engine's name, or "fallback".
func (f *Factory) EngineName() string {
	if f.engine == nil {
		return "fallback"
	}
	return f.engine.Name()
}

func (f *Factory) SRID() int      { return f.srid }
func (f *Factory) Layout() Layout { return f.layout }

func (f *Factory) wkbOptions() *WKBOptions {
	return &WKBOptions{ByteOrder: f.byteOrder, Extended: f.extended}
}

// normalize fits c to the factory layout and precision.
func (f *Factory) normalize(c Coord) (Coord, bool) {
	if !f.layout.HasZ() {
		c.Z = 0
	}
	if !f.layout.HasM() {
		c.M = 0
	}
	if !c.finite() {
		return Coord{}, false
	}
	if p := f.precision; p > 0 {
		c.X = math.Round(c.X/p) * p
		c.Y = math.Round(c.Y/p) * p
		c.Z = math.Round(c.Z/p) * p
		c.M = math.Round(c.M/p) * p
	}
	return c, true
}

func (f *Factory) normalizeAll(cs []Coord) ([]Coord, bool) {
	out := make([]Coord, len(cs))
	for i, c := range cs {
		n, ok := f.normalize(c)
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// Point creates a point. zm supplies the extra ordinates of the factory
// layout (Z, M, or Z then M); it must be empty or complete.
func (f *Factory) Point(x, y float64, zm ...float64) Point {
	extra := f.layout.Stride() - 2
	if len(zm) != 0 && len(zm) != extra {
		return nil
	}
	c := Coord{X: x, Y: y}
	if len(zm) > 0 {
		switch f.layout {
		case XYZ:
			c.Z = zm[0]
		case XYM:
			c.M = zm[0]
		case XYZM:
			c.Z, c.M = zm[0], zm[1]
		}
	}
	c, ok := f.normalize(c)
	if !ok {
		return nil
	}
	return f.newPoint(c)
}

// LineString creates a line string. It returns nil for exactly one point
// or for nil or empty points.
func (f *Factory) LineString(points []Point) LineString {
	cs, ok := f.pointCoords(points)
	if !ok {
		return nil
	}
	return f.lineStringFromCoords(cs)
}

// Line creates a two-point line.
func (f *Factory) Line(p1, p2 Point) Line {
	cs, ok := f.pointCoords([]Point{p1, p2})
	if !ok {
		return nil
	}
	return f.newLine(cs)
}

// LinearRing creates a ring, appending the first point when the input is
// not closed. It returns nil when the closed ring has fewer than four
// points, or when a native engine rejects it.
func (f *Factory) LinearRing(points []Point) LinearRing {
	cs, ok := f.pointCoords(points)
	if !ok {
		return nil
	}
	return f.linearRingFromCoords(cs)
}

// Polygon creates a polygon from an exterior ring and optional holes.
func (f *Factory) Polygon(exterior LinearRing, interiors ...LinearRing) Polygon {
	if isNilGeometry(exterior) {
		return nil
	}
	shell := f.adoptRing(exterior)
	if shell == nil {
		return nil
	}
	holes := make([]LinearRing, 0, len(interiors))
	for _, r := range interiors {
		if isNilGeometry(r) || r.IsEmpty() {
			return nil
		}
		h := f.adoptRing(r)
		if h == nil {
			return nil
		}
		holes = append(holes, h)
	}
	return f.polygonFromRings(shell, holes)
}

// MultiPoint creates a multi point. Empty points are allowed as elements.
func (f *Factory) MultiPoint(points []Point) MultiPoint {
	geoms := make([]Geometry, len(points))
	for i, p := range points {
		if isNilGeometry(p) {
			return nil
		}
		g := f.Convert(p)
		if g == nil {
			return nil
		}
		geoms[i] = g
	}
	return f.newMultiPoint(geoms)
}

// MultiLineString creates a multi line string. Elements keep their kind,
// so a Line stays a Line.
func (f *Factory) MultiLineString(lines []LineString) MultiLineString {
	geoms := make([]Geometry, len(lines))
	for i, l := range lines {
		if isNilGeometry(l) {
			return nil
		}
		g := f.Convert(l)
		if g == nil {
			return nil
		}
		geoms[i] = g
	}
	return f.newMultiLineString(geoms)
}

// MultiPolygon creates a multi polygon.
func (f *Factory) MultiPolygon(polygons []Polygon) MultiPolygon {
	geoms := make([]Geometry, len(polygons))
	for i, p := range polygons {
		if isNilGeometry(p) {
			return nil
		}
		g := f.Convert(p)
		if g == nil {
			return nil
		}
		geoms[i] = g
	}
	return f.newMultiPolygon(geoms)
}

// Collection creates a geometry collection of arbitrary geometries.
func (f *Factory) Collection(geoms []Geometry) GeometryCollection {
	out := make([]Geometry, len(geoms))
	for i, g := range geoms {
		if isNilGeometry(g) {
			return nil
		}
		c := f.Convert(g)
		if c == nil {
			return nil
		}
		out[i] = c
	}
	return f.newCollection(out)
}

// Convert rebuilds g, which may come from any factory or backend, in this
// factory. It returns g itself when it already belongs to f, and nil when g
// fails this factory's validation.
func (f *Factory) Convert(g Geometry) Geometry {
	if isNilGeometry(g) {
		return nil
	}
	if g.Factory() == f {
		return g
	}
	switch g.GeometryType() {
	case TypePoint:
		p, ok := g.(Point)
		if !ok {
			return nil
		}
		if p.IsEmpty() {
			return f.newEmptyPoint()
		}
		c, ok := f.normalize(p.Coord())
		if !ok {
			return nil
		}
		return f.newPoint(c)
	case TypeLineString, TypeLine, TypeLinearRing:
		l, ok := g.(LineString)
		if !ok {
			return nil
		}
		cs, ok := f.normalizeAll(l.Coords())
		if !ok {
			return nil
		}
		switch g.GeometryType() {
		case TypeLine:
			return nilIfInvalid(f.newLine(cs))
		case TypeLinearRing:
			return nilIfInvalid(f.linearRingFromCoords(cs))
		}
		return nilIfInvalid(f.lineStringFromCoords(cs))
	case TypePolygon:
		p, ok := g.(Polygon)
		if !ok {
			return nil
		}
		return nilIfInvalid(f.Polygon(p.ExteriorRing(), p.InteriorRings()...))
	case TypeMultiPoint:
		m, ok := g.(MultiPoint)
		if !ok {
			return nil
		}
		return nilIfInvalid(f.MultiPoint(m.Points()))
	case TypeMultiLineString:
		m, ok := g.(MultiLineString)
		if !ok {
			return nil
		}
		return nilIfInvalid(f.MultiLineString(m.LineStrings()))
	case TypeMultiPolygon:
		m, ok := g.(MultiPolygon)
		if !ok {
			return nil
		}
		return nilIfInvalid(f.MultiPolygon(m.Polygons()))
	case TypeGeometryCollection:
		c, ok := g.(GeometryCollection)
		if !ok {
			return nil
		}
		return nilIfInvalid(f.Collection(c.Geometries()))
	}
	return nil
}

// nilIfInvalid turns a nil interface of a narrower kind into a nil Geometry.
func nilIfInvalid[T Geometry](g T) Geometry {
	if isNilGeometry(g) {
		return nil
	}
	return g
}

// pointCoords extracts normalized coordinates; nil or empty points fail.
func (f *Factory) pointCoords(points []Point) ([]Coord, bool) {
	cs := make([]Coord, len(points))
	for i, p := range points {
		if isNilGeometry(p) || p.IsEmpty() {
			return nil, false
		}
		c, ok := f.normalize(p.Coord())
		if !ok {
			return nil, false
		}
		cs[i] = c
	}
	return cs, true
}

func (f *Factory) lineStringFromCoords(cs []Coord) LineString {
	if len(cs) == 1 {
		return nil
	}
	return f.newLineString(cs)
}

func (f *Factory) linearRingFromCoords(cs []Coord) LinearRing {
	if len(cs) > 0 && !cs[0].equalXY(cs[len(cs)-1]) {
		cs = append(cs[:len(cs):len(cs)], cs[0])
	}
	if len(cs) > 0 && len(cs) < 4 {
		return nil
	}
	r := f.newLinearRing(cs)
	if f.engine != nil && len(cs) > 0 && !f.engine.IsValid(r) {
		return nil
	}
	return r
}

// adoptRing returns r as a ring of this factory.
func (f *Factory) adoptRing(r LinearRing) LinearRing {
	if r.Factory() == f {
		return r
	}
	cs, ok := f.normalizeAll(r.Coords())
	if !ok {
		return nil
	}
	return f.linearRingFromCoords(cs)
}

func (f *Factory) polygonFromRings(shell LinearRing, holes []LinearRing) Polygon {
	if shell.IsEmpty() && len(holes) > 0 {
		return nil
	}
	p := f.newPolygon(shell, holes)
	if f.engine != nil && !p.IsEmpty() && !f.engine.IsValid(p) {
		return nil
	}
	return p
}

// The new* helpers build values without validation. Callers own the
// invariants.

func (f *Factory) newPoint(c Coord) *point {
	p := &point{c: c}
	p.base = base{f: f, self: p}
	return p
}

func (f *Factory) newEmptyPoint() *point {
	p := &point{empty: true}
	p.base = base{f: f, self: p}
	return p
}

func (f *Factory) newLineString(cs []Coord) *lineString {
	l := &lineString{coords: cs}
	l.base = base{f: f, self: l}
	return l
}

func (f *Factory) newLine(cs []Coord) Line {
	if len(cs) != 2 {
		return nil
	}
	l := &line{lineString{coords: cs}}
	l.base = base{f: f, self: l}
	return l
}

func (f *Factory) newLinearRing(cs []Coord) *linearRing {
	r := &linearRing{lineString{coords: cs}}
	r.base = base{f: f, self: r}
	return r
}

func (f *Factory) newPolygon(shell LinearRing, holes []LinearRing) *polygon {
	p := &polygon{shell: shell, holes: holes}
	p.base = base{f: f, self: p}
	return p
}

func (f *Factory) newCollection(geoms []Geometry) *collection {
	c := &collection{geoms: geoms}
	c.base = base{f: f, self: c}
	return c
}

func (f *Factory) newMultiPoint(geoms []Geometry) *multiPoint {
	m := &multiPoint{collection{geoms: geoms}}
	m.base = base{f: f, self: m}
	return m
}

func (f *Factory) newMultiLineString(geoms []Geometry) *multiLineString {
	m := &multiLineString{collection{geoms: geoms}}
	m.base = base{f: f, self: m}
	return m
}

func (f *Factory) newMultiPolygon(geoms []Geometry) *multiPolygon {
	m := &multiPolygon{collection{geoms: geoms}}
	m.base = base{f: f, self: m}
	return m
}

func (f *Factory) emptyRing() *linearRing { return f.newLinearRing(nil) }

// rawGeometry is what the WKT and WKB decoders produce: syntactically valid
// but not yet checked against any geometry invariant.
type rawGeometry struct {
	typ    Type
	empty  bool
	coords []Coord
	rings  [][]Coord
	parts  []*rawGeometry
}

// build validates r through the same paths as the public constructors.
func (f *Factory) build(r *rawGeometry) Geometry {
	switch r.typ {
	case TypePoint:
		if r.empty {
			return f.newEmptyPoint()
		}
		c, ok := f.normalize(r.coords[0])
		if !ok {
			return nil
		}
		return f.newPoint(c)
	case TypeLineString:
		cs, ok := f.normalizeAll(r.coords)
		if !ok {
			return nil
		}
		return nilIfInvalid(f.lineStringFromCoords(cs))
	case TypeLinearRing:
		cs, ok := f.normalizeAll(r.coords)
		if !ok {
			return nil
		}
		return nilIfInvalid(f.linearRingFromCoords(cs))
	case TypePolygon:
		return nilIfInvalid(f.buildPolygon(r.rings))
	case TypeMultiPoint, TypeMultiLineString, TypeMultiPolygon, TypeGeometryCollection:
		parts := make([]Geometry, len(r.parts))
		for i, p := range r.parts {
			g := f.build(p)
			if g == nil {
				return nil
			}
			parts[i] = g
		}
		switch r.typ {
		case TypeMultiPoint:
			return f.newMultiPoint(parts)
		case TypeMultiLineString:
			return f.newMultiLineString(parts)
		case TypeMultiPolygon:
			return f.newMultiPolygon(parts)
		}
		return f.newCollection(parts)
	}
	return nil
}

func (f *Factory) buildPolygon(rings [][]Coord) Polygon {
	if len(rings) == 0 {
		return f.newPolygon(f.emptyRing(), nil)
	}
	lrs := make([]LinearRing, len(rings))
	for i, rc := range rings {
		cs, ok := f.normalizeAll(rc)
		if !ok || len(cs) == 0 {
			return nil
		}
		r := f.linearRingFromCoords(cs)
		if r == nil {
			return nil
		}
		lrs[i] = r
	}
	return f.polygonFromRings(lrs[0], lrs[1:])
}
