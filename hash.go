package sfs

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

type hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func (h *hasher) uint(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	h.d.Write(h.buf[:])
}

func (h *hasher) float(v float64) {
	if v == 0 {
		v = 0 // fold -0 into +0
	}
	h.uint(math.Float64bits(v))
}

func (h *hasher) coord(c Coord, l Layout) {
	h.float(c.X)
	h.float(c.Y)
	if l.HasZ() {
		h.float(c.Z)
	}
	if l.HasM() {
		h.float(c.M)
	}
}

// hashGeometry digests exactly what exactEquals compares.
func hashGeometry(g Geometry) uint64 {
	h := &hasher{d: xxhash.New()}
	l := layoutOf(g)
	h.uint(uint64(l))
	h.geometry(g, l)
	return h.d.Sum64()
}

func (h *hasher) geometry(g Geometry, l Layout) {
	h.uint(uint64(g.GeometryType()))
	switch g := g.(type) {
	case Point:
		if g.IsEmpty() {
			h.uint(0)
			return
		}
		h.uint(1)
		h.coord(g.Coord(), l)
	case LineString:
		cs := g.Coords()
		h.uint(uint64(len(cs)))
		for _, c := range cs {
			h.coord(c, l)
		}
	case Polygon:
		h.uint(uint64(g.NumInteriorRings()))
		h.geometry(g.ExteriorRing(), l)
		for _, r := range g.InteriorRings() {
			h.geometry(r, l)
		}
	case GeometryCollection:
		h.uint(uint64(g.NumGeometries()))
		for _, p := range g.Geometries() {
			h.geometry(p, l)
		}
	}
}
