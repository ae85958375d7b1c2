// Package orbengine is the native geometry engine for sfs, computing on
// github.com/paulmach/orb values with the orb/planar algorithms.
//
// Importing the package registers a default engine:
//
//	import _ "github.com/tingold/orb-sfs/orbengine"
//
// Factories created afterwards with sfs.BackendAuto or sfs.BackendNative
// use it. New builds an engine with a custom tolerance for Options.Engine.
package orbengine

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	sfs "github.com/tingold/orb-sfs"
)

func init() {
	sfs.Register(New(nil))
}

// Options configures an Engine.
type Options struct {
	// Tolerance is the distance under which two locations are treated as
	// the same by Equals.
	Tolerance float64
}

// DefaultOptions returns the options of the registered engine.
func DefaultOptions() *Options {
	return &Options{Tolerance: 1e-9}
}

// Engine implements sfs.Engine.
type Engine struct {
	tolerance float64
}

// New creates an engine. A nil opts uses DefaultOptions.
func New(opts *Options) *Engine {
	if opts == nil {
		opts = DefaultOptions()
	}
	tol := opts.Tolerance
	if tol < 0 || math.IsNaN(tol) {
		tol = 0
	}
	return &Engine{tolerance: tol}
}

func (e *Engine) Name() string { return "orb" }

// IsValid checks rings and polygons: rings must be closed, enclose a
// non-zero area and not self-intersect; holes must lie within the shell and
// not cross any other ring. Other kinds are always valid.
func (e *Engine) IsValid(g sfs.Geometry) bool {
	switch g := g.(type) {
	case sfs.LinearRing:
		if g.IsEmpty() {
			return true
		}
		return validRing(ringOf(g))
	case sfs.Polygon:
		if g.IsEmpty() {
			return true
		}
		return validPolygon(polygonOf(g))
	}
	return true
}

// Envelope returns the orb.Bound of g as a geometry of g's factory.
func (e *Engine) Envelope(g sfs.Geometry) sfs.Geometry {
	f := g.Factory()
	o := sfs.ToOrb(g)
	if o == nil || g.IsEmpty() {
		return f.Collection(nil)
	}
	b := o.Bound()
	switch {
	case b.Min == b.Max:
		return f.Point(b.Min[0], b.Min[1])
	case b.Min[0] == b.Max[0] || b.Min[1] == b.Max[1]:
		return f.Line(f.Point(b.Min[0], b.Min[1]), f.Point(b.Max[0], b.Max[1]))
	}
	return f.GeometryFrom(b)
}

// Boundary returns the combinatorial boundary of g, or nil for geometry
// collections.
func (e *Engine) Boundary(g sfs.Geometry) sfs.Geometry {
	f := g.Factory()
	switch g.GeometryType() {
	case sfs.TypePoint, sfs.TypeMultiPoint:
		return f.Collection(nil)
	case sfs.TypeLineString, sfs.TypeLine, sfs.TypeLinearRing:
		return endpoints(f, []sfs.LineString{g.(sfs.LineString)})
	case sfs.TypeMultiLineString:
		return endpoints(f, g.(sfs.MultiLineString).LineStrings())
	case sfs.TypePolygon:
		p := g.(sfs.Polygon)
		if p.IsEmpty() {
			return f.MultiLineString(nil)
		}
		if p.NumInteriorRings() == 0 {
			return f.LineString(p.ExteriorRing().Points())
		}
		return f.MultiLineString(rings(p))
	case sfs.TypeMultiPolygon:
		var ls []sfs.LineString
		for _, p := range g.(sfs.MultiPolygon).Polygons() {
			if !p.IsEmpty() {
				ls = append(ls, rings(p)...)
			}
		}
		return f.MultiLineString(ls)
	}
	return nil
}

func rings(p sfs.Polygon) []sfs.LineString {
	f := p.Factory()
	ls := []sfs.LineString{f.LineString(p.ExteriorRing().Points())}
	for _, h := range p.InteriorRings() {
		ls = append(ls, f.LineString(h.Points()))
	}
	return ls
}

// endpoints applies the mod-2 rule to the ends of the given curves.
func endpoints(f *sfs.Factory, curves []sfs.LineString) sfs.Geometry {
	counts := make(map[orb.Point]int)
	var order []sfs.Point
	for _, c := range curves {
		if c.IsEmpty() {
			continue
		}
		for _, p := range [...]sfs.Point{c.StartPoint(), c.EndPoint()} {
			k := orb.Point{p.X(), p.Y()}
			if counts[k] == 0 {
				order = append(order, p)
			}
			counts[k]++
		}
	}
	var pts []sfs.Point
	for _, p := range order {
		if counts[orb.Point{p.X(), p.Y()}]%2 == 1 {
			pts = append(pts, p)
		}
	}
	return f.MultiPoint(pts)
}

// Area returns the planar area of g.
func Area(g sfs.Geometry) float64 {
	o := sfs.ToOrb(g)
	if o == nil {
		return 0
	}
	return math.Abs(planar.Area(o))
}

// Length returns the planar length of g's lineal and polygonal boundaries.
func Length(g sfs.Geometry) float64 {
	o := sfs.ToOrb(g)
	if o == nil {
		return 0
	}
	return planar.Length(o)
}

// Centroid returns the area-weighted centroid of g; ok is false for empty
// input.
func Centroid(g sfs.Geometry) (x, y float64, ok bool) {
	o := sfs.ToOrb(g)
	if o == nil || g.IsEmpty() {
		return 0, 0, false
	}
	c, _ := planar.CentroidArea(o)
	return c[0], c[1], true
}

// Distance returns the smallest planar distance between the vertices and
// segments of a and b, or +Inf when either is empty.
func Distance(a, b sfs.Geometry) float64 {
	pa, pb := partsOf(sfs.ToOrb(a)), partsOf(sfs.ToOrb(b))
	for _, la := range pa.segments() {
		for _, lb := range pb.segments() {
			for i := 1; i < len(la); i++ {
				for j := 1; j < len(lb); j++ {
					if segmentsIntersect(la[i-1], la[i], lb[j-1], lb[j]) {
						return 0
					}
				}
			}
		}
	}
	d := math.Inf(1)
	for _, v := range pa.vertices() {
		d = math.Min(d, pb.distance(v))
	}
	for _, v := range pb.vertices() {
		d = math.Min(d, pa.distance(v))
	}
	return d
}
