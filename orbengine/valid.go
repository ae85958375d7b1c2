package orbengine

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	sfs "github.com/tingold/orb-sfs"
)

func ringOf(l sfs.LineString) orb.Ring {
	cs := l.Coords()
	r := make(orb.Ring, len(cs))
	for i, c := range cs {
		r[i] = orb.Point{c.X, c.Y}
	}
	return r
}

func polygonOf(p sfs.Polygon) orb.Polygon {
	poly := orb.Polygon{ringOf(p.ExteriorRing())}
	for _, h := range p.InteriorRings() {
		poly = append(poly, ringOf(h))
	}
	return poly
}

// orient is positive when c is left of a->b, negative when right and zero
// when the three points are collinear.
func orient(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// within reports whether p, known to be collinear with a and b, lies in
// their bounding box.
func within(a, b, p orb.Point) bool {
	return p[0] >= math.Min(a[0], b[0]) && p[0] <= math.Max(a[0], b[0]) &&
		p[1] >= math.Min(a[1], b[1]) && p[1] <= math.Max(a[1], b[1])
}

func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	d1, d2 := orient(q1, q2, p1), orient(q1, q2, p2)
	d3, d4 := orient(p1, p2, q1), orient(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return d1 == 0 && within(q1, q2, p1) ||
		d2 == 0 && within(q1, q2, p2) ||
		d3 == 0 && within(p1, p2, q1) ||
		d4 == 0 && within(p1, p2, q2)
}

// segmentsCross reports a proper crossing, where each segment has its
// endpoints strictly on opposite sides of the other.
func segmentsCross(p1, p2, q1, q2 orb.Point) bool {
	d1, d2 := orient(q1, q2, p1), orient(q1, q2, p2)
	d3, d4 := orient(p1, p2, q1), orient(p1, p2, q2)
	return d1*d2 < 0 && d3*d4 < 0
}

// dedupe drops consecutive repeated points.
func dedupe(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r))
	for _, p := range r {
		if len(out) == 0 || out[len(out)-1] != p {
			out = append(out, p)
		}
	}
	return out
}

func validRing(r orb.Ring) bool {
	if len(r) < 4 || r[0] != r[len(r)-1] {
		return false
	}
	r = dedupe(r)
	if len(r) < 4 || planar.Area(r) == 0 {
		return false
	}
	n := len(r) - 1
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a1, a2, b1, b2 := r[i], r[i+1], r[j], r[j+1]
			switch {
			case j == i+1:
				// neighbours share a2 == b1 and must not fold back
				if orient(a1, a2, b2) == 0 && (within(a1, a2, b2) || within(b1, b2, a1)) {
					return false
				}
			case i == 0 && j == n-1:
				// the closing pair shares a1 == b2
				if orient(a1, a2, b1) == 0 && (within(a1, a2, b1) || within(b1, b2, a2)) {
					return false
				}
			default:
				if segmentsIntersect(a1, a2, b1, b2) {
					return false
				}
			}
		}
	}
	return true
}

func onRing(r orb.Ring, p orb.Point) bool {
	for i := 1; i < len(r); i++ {
		if planar.DistanceFromSegment(r[i-1], r[i], p) == 0 {
			return true
		}
	}
	return false
}

func validPolygon(p orb.Polygon) bool {
	for _, r := range p {
		if !validRing(r) {
			return false
		}
	}
	shell := p[0]
	for i, h := range p[1:] {
		for _, v := range h {
			if !planar.RingContains(shell, v) {
				return false
			}
		}
		for j, other := range p[1:] {
			if i != j && planar.RingContains(other, h[0]) && !onRing(other, h[0]) {
				return false
			}
		}
	}
	for i := range p {
		for j := i + 1; j < len(p); j++ {
			if ringsCross(p[i], p[j]) {
				return false
			}
		}
	}
	return true
}

func ringsCross(a, b orb.Ring) bool {
	for i := 1; i < len(a); i++ {
		for j := 1; j < len(b); j++ {
			if segmentsCross(a[i-1], a[i], b[j-1], b[j]) {
				return true
			}
		}
	}
	return false
}
