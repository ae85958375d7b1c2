package orbengine

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	sfs "github.com/tingold/orb-sfs"
)

// parts splits an orb geometry by dimension.
type parts struct {
	points orb.MultiPoint
	lines  []orb.LineString
	polys  orb.MultiPolygon
}

func partsOf(g orb.Geometry) parts {
	var p parts
	p.add(g)
	return p
}

func (p *parts) add(g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		p.points = append(p.points, g)
	case orb.MultiPoint:
		p.points = append(p.points, g...)
	case orb.LineString:
		if len(g) > 0 {
			p.lines = append(p.lines, g)
		}
	case orb.Ring:
		if len(g) > 0 {
			p.lines = append(p.lines, orb.LineString(g))
		}
	case orb.MultiLineString:
		for _, l := range g {
			p.add(l)
		}
	case orb.Polygon:
		if len(g) > 0 && len(g[0]) > 0 {
			p.polys = append(p.polys, g)
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			p.add(poly)
		}
	case orb.Bound:
		p.add(g.ToPolygon())
	case orb.Collection:
		for _, c := range g {
			p.add(c)
		}
	}
}

func (p parts) vertices() []orb.Point {
	vs := append([]orb.Point(nil), p.points...)
	for _, l := range p.lines {
		vs = append(vs, l...)
	}
	for _, poly := range p.polys {
		for _, r := range poly {
			vs = append(vs, r...)
		}
	}
	return vs
}

// rings returns every polygon ring as a line.
func (p parts) rings() []orb.LineString {
	var ls []orb.LineString
	for _, poly := range p.polys {
		for _, r := range poly {
			ls = append(ls, orb.LineString(r))
		}
	}
	return ls
}

func lineDistance(lines []orb.LineString, v orb.Point) float64 {
	d := math.Inf(1)
	for _, l := range lines {
		if len(l) == 1 {
			d = math.Min(d, planar.Distance(l[0], v))
		}
		for i := 1; i < len(l); i++ {
			d = math.Min(d, planar.DistanceFromSegment(l[i-1], l[i], v))
		}
	}
	return d
}

func pointDistance(points []orb.Point, v orb.Point) float64 {
	d := math.Inf(1)
	for _, p := range points {
		d = math.Min(d, planar.Distance(p, v))
	}
	return d
}

// distance is the planar distance from v to the point set of p.
func (p parts) distance(v orb.Point) float64 {
	if len(p.polys) > 0 && planar.MultiPolygonContains(p.polys, v) {
		return 0
	}
	d := pointDistance(p.points, v)
	d = math.Min(d, lineDistance(p.lines, v))
	return math.Min(d, lineDistance(p.rings(), v))
}

// tol is the engine tolerance scaled by the largest ordinate magnitude of
// the operands, at least 1.
func (e *Engine) tol(ps ...parts) float64 {
	m := 1.0
	for _, p := range ps {
		for _, v := range p.vertices() {
			m = math.Max(m, math.Max(math.Abs(v[0]), math.Abs(v[1])))
		}
	}
	return e.tolerance * m
}

// inPolygons reports whether v lies in the polygons of p or on their rings.
func (p parts) inPolygons(v orb.Point, tol float64) bool {
	return len(p.polys) > 0 &&
		(planar.MultiPolygonContains(p.polys, v) || lineDistance(p.rings(), v) <= tol)
}

// absorb drops the points lying on the lines or polygons of p and the lines
// its polygons cover.
func (p parts) absorb(tol float64) parts {
	if len(p.polys) > 0 {
		polys := parts{polys: p.polys}
		var lines []orb.LineString
		for _, l := range p.lines {
			covered := linesCovered([]orb.LineString{l}, polys, tol, func(v orb.Point) bool {
				return p.inPolygons(v, tol)
			})
			if !covered {
				lines = append(lines, l)
			}
		}
		p.lines = lines
	}
	var points orb.MultiPoint
	for _, v := range p.points {
		if lineDistance(p.lines, v) > tol && !p.inPolygons(v, tol) {
			points = append(points, v)
		}
	}
	p.points = points
	return p
}

// Equals compares the point sets of a and b. Parts covered by a part of
// higher dimension in the same operand are dropped first; then points must
// match within the tolerance, lines must cover each other, and polygons
// must have the same area and cover each other's boundaries.
func (e *Engine) Equals(a, b sfs.Geometry) bool {
	pa, pb := partsOf(sfs.ToOrb(a)), partsOf(sfs.ToOrb(b))
	tol := e.tol(pa, pb)
	pa, pb = pa.absorb(tol), pb.absorb(tol)

	if (len(pa.points) == 0) != (len(pb.points) == 0) ||
		(len(pa.lines) == 0) != (len(pb.lines) == 0) ||
		(len(pa.polys) == 0) != (len(pb.polys) == 0) {
		return false
	}

	for _, v := range pa.points {
		if pointDistance(pb.points, v) > tol {
			return false
		}
	}
	for _, v := range pb.points {
		if pointDistance(pa.points, v) > tol {
			return false
		}
	}

	if !linesCovered(pa.lines, pb, tol, func(v orb.Point) bool {
		return pb.distance(v) <= tol
	}) || !linesCovered(pb.lines, pa, tol, func(v orb.Point) bool {
		return pa.distance(v) <= tol
	}) {
		return false
	}

	if len(pa.polys) == 0 {
		return true
	}
	areaA, areaB := math.Abs(planar.Area(pa.polys)), math.Abs(planar.Area(pb.polys))
	if math.Abs(areaA-areaB) > e.tolerance*math.Max(1, math.Max(areaA, areaB)) {
		return false
	}
	ca, _ := planar.CentroidArea(pa.polys)
	cb, _ := planar.CentroidArea(pb.polys)
	if planar.Distance(ca, cb) > math.Max(tol, e.tolerance*math.Sqrt(areaA)) {
		return false
	}
	return linesCovered(pa.rings(), pb, tol, func(v orb.Point) bool { return pb.inPolygons(v, tol) }) &&
		linesCovered(pb.rings(), pa, tol, func(v orb.Point) bool { return pa.inPolygons(v, tol) })
}

// linesCovered splits every segment of lines where the vertices or segments
// of other meet it and checks the ends and midpoint of every piece against
// covered.
func linesCovered(lines []orb.LineString, other parts, tol float64, covered func(orb.Point) bool) bool {
	vertices, edges := other.vertices(), other.segments()
	for _, l := range lines {
		if len(l) == 1 && !covered(l[0]) {
			return false
		}
		for i := 1; i < len(l); i++ {
			a, b := l[i-1], l[i]
			if !covered(a) || !covered(b) {
				return false
			}
			dx, dy := b[0]-a[0], b[1]-a[1]
			length2 := dx*dx + dy*dy
			if length2 == 0 {
				continue
			}
			ts := []float64{0, 1}
			for _, v := range vertices {
				if planar.DistanceFromSegment(a, b, v) > tol {
					continue
				}
				t := ((v[0]-a[0])*dx + (v[1]-a[1])*dy) / length2
				if t > 0 && t < 1 {
					ts = append(ts, t)
				}
			}
			for _, edge := range edges {
				for k := 1; k < len(edge); k++ {
					if t, ok := crossing(a, b, edge[k-1], edge[k]); ok {
						ts = append(ts, t)
					}
				}
			}
			sort.Float64s(ts)
			for k := 1; k < len(ts); k++ {
				if ts[k] == ts[k-1] {
					continue
				}
				t := (ts[k-1] + ts[k]) / 2
				if !covered(orb.Point{a[0] + t*dx, a[1] + t*dy}) {
					return false
				}
			}
		}
	}
	return true
}

// crossing returns the position along a->b where it properly crosses c->d.
func crossing(a, b, c, d orb.Point) (float64, bool) {
	if !segmentsCross(a, b, c, d) {
		return 0, false
	}
	rx, ry := b[0]-a[0], b[1]-a[1]
	sx, sy := d[0]-c[0], d[1]-c[1]
	denom := rx*sy - ry*sx
	if denom == 0 {
		return 0, false
	}
	t := ((c[0]-a[0])*sy - (c[1]-a[1])*sx) / denom
	return t, t > 0 && t < 1
}

// segments returns the lines and rings of p.
func (p parts) segments() []orb.LineString {
	return append(append([]orb.LineString(nil), p.lines...), p.rings()...)
}
