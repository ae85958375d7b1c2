// Package sfs implements the OGC Simple Features geometry model: points,
// curves, surfaces and their collections, constructed through a Factory and
// exchanged as Well-Known Text (WKT) and Well-Known Binary (WKB).
//
// Geometries are immutable values. Two relations compare them:
// ExactEquals (same type, same ordered coordinates) and Equals (same point
// set). A Factory computes geometric operations either through a registered
// native Engine (see the orbengine package) or through the built-in fallback.
package sfs

import (
	"errors"
	"math"
)

// Common errors returned by this package. Parse failures are reported as a
// *ParseError wrapping one of these.
var (
	ErrSyntax       = errors.New("sfs: syntax error")
	ErrUnknownType  = errors.New("sfs: unknown geometry type")
	ErrNestedType   = errors.New("sfs: unexpected nested geometry type")
	ErrUnbalanced   = errors.New("sfs: unbalanced parentheses")
	ErrArity        = errors.New("sfs: wrong coordinate arity")
	ErrTrailingData = errors.New("sfs: trailing data after geometry")
	ErrTruncated    = errors.New("sfs: truncated input")
	ErrByteOrder    = errors.New("sfs: invalid byte order")
	ErrBadCount     = errors.New("sfs: inconsistent element count")
	ErrTooDeep      = errors.New("sfs: geometry nested too deeply")
	ErrSRIDMismatch = errors.New("sfs: srid does not match factory")
)

// maxNesting bounds collection recursion in both codecs.
const maxNesting = 128

// Layout describes which ordinates a coordinate carries.
type Layout int

const (
	XY Layout = iota
	XYZ
	XYM
	XYZM
)

// Stride returns the number of ordinates per coordinate.
func (l Layout) Stride() int {
	switch l {
	case XYZ, XYM:
		return 3
	case XYZM:
		return 4
	default:
		return 2
	}
}

// HasZ reports whether the layout carries a Z ordinate.
func (l Layout) HasZ() bool { return l == XYZ || l == XYZM }

// HasM reports whether the layout carries an M ordinate.
func (l Layout) HasM() bool { return l == XYM || l == XYZM }

func (l Layout) String() string {
	switch l {
	case XYZ:
		return "XYZ"
	case XYM:
		return "XYM"
	case XYZM:
		return "XYZM"
	default:
		return "XY"
	}
}

// layoutFor returns the layout with the given ordinate flags.
func layoutFor(z, m bool) Layout {
	switch {
	case z && m:
		return XYZM
	case z:
		return XYZ
	case m:
		return XYM
	default:
		return XY
	}
}

// Coord is a single position. Z and M are only meaningful when the owning
// factory's layout carries them; otherwise they are zero.
type Coord struct {
	X, Y, Z, M float64
}

// XY returns the coordinate with Z and M cleared.
func (c Coord) XY() Coord { return Coord{X: c.X, Y: c.Y} }

// ordinates appends the ordinates of c in layout order.
func (c Coord) ordinates(dst []float64, l Layout) []float64 {
	dst = append(dst, c.X, c.Y)
	if l.HasZ() {
		dst = append(dst, c.Z)
	}
	if l.HasM() {
		dst = append(dst, c.M)
	}
	return dst
}

// coordFromOrdinates builds a coordinate from stride ordinates in layout order.
func coordFromOrdinates(ords []float64, l Layout) Coord {
	c := Coord{X: ords[0], Y: ords[1]}
	i := 2
	if l.HasZ() {
		c.Z = ords[i]
		i++
	}
	if l.HasM() {
		c.M = ords[i]
	}
	return c
}

func (c Coord) finite() bool {
	for _, v := range [...]float64{c.X, c.Y, c.Z, c.M} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// less orders coordinates by X then Y.
func (c Coord) less(o Coord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

func (c Coord) equalXY(o Coord) bool { return c.X == o.X && c.Y == o.Y }
