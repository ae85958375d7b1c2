package sfs

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// WKB byte order markers.
const (
	XDR byte = 0 // big endian
	NDR byte = 1 // little endian
)

// WKB type code components. ISO WKB adds 1000, 2000 or 3000 to the base code;
// extended WKB sets high flag bits instead.
const (
	wkbPoint              = 1
	wkbLineString         = 2
	wkbPolygon            = 3
	wkbMultiPoint         = 4
	wkbMultiLineString    = 5
	wkbMultiPolygon       = 6
	wkbGeometryCollection = 7

	ewkbZFlag    uint32 = 0x80000000
	ewkbMFlag    uint32 = 0x40000000
	ewkbSRIDFlag uint32 = 0x20000000
)

// WKBOptions controls binary output.
type WKBOptions struct {
	// ByteOrder defaults to little endian.
	ByteOrder binary.ByteOrder
	// Extended writes PostGIS EWKB: Z and M as flag bits, and the SRID in
	// the top-level header when it is non-zero.
	Extended bool
}

var defaultWKBOptions = &WKBOptions{ByteOrder: binary.LittleEndian}

// MarshalWKB encodes g as Well-Known Binary. A nil opts writes ISO WKB in
// little endian order. It returns nil for a nil geometry.
func MarshalWKB(g Geometry, opts *WKBOptions) []byte {
	if isNilGeometry(g) {
		return nil
	}
	if opts == nil {
		opts = defaultWKBOptions
	}
	e := &wkbEncoder{order: opts.ByteOrder, extended: opts.Extended, layout: layoutOf(g)}
	if e.order == nil {
		e.order = binary.LittleEndian
	}
	srid := 0
	if opts.Extended {
		srid = g.SRID()
	}
	e.geometry(g, srid)
	return e.buf.Bytes()
}

// MarshalWKBHex returns MarshalWKB as upper-case hex, the form PostGIS
// prints.
func MarshalWKBHex(g Geometry, opts *WKBOptions) string {
	return strings.ToUpper(hex.EncodeToString(MarshalWKB(g, opts)))
}

type wkbEncoder struct {
	buf      bytes.Buffer
	scratch  [8]byte
	order    binary.ByteOrder
	extended bool
	layout   Layout
}

func (e *wkbEncoder) uint32(v uint32) {
	e.order.PutUint32(e.scratch[:4], v)
	e.buf.Write(e.scratch[:4])
}

func (e *wkbEncoder) float64(v float64) {
	e.order.PutUint64(e.scratch[:], math.Float64bits(v))
	e.buf.Write(e.scratch[:])
}

func (e *wkbEncoder) coord(c Coord) {
	var ords [4]float64
	for _, v := range c.ordinates(ords[:0], e.layout) {
		e.float64(v)
	}
}

func (e *wkbEncoder) coords(cs []Coord) {
	e.uint32(uint32(len(cs)))
	for _, c := range cs {
		e.coord(c)
	}
}

func wkbCode(t Type) uint32 {
	switch t {
	case TypePoint:
		return wkbPoint
	case TypeLineString, TypeLine, TypeLinearRing:
		return wkbLineString
	case TypePolygon:
		return wkbPolygon
	case TypeMultiPoint:
		return wkbMultiPoint
	case TypeMultiLineString:
		return wkbMultiLineString
	case TypeMultiPolygon:
		return wkbMultiPolygon
	}
	return wkbGeometryCollection
}

func (e *wkbEncoder) header(t Type, srid int) {
	if e.order == binary.ByteOrder(binary.BigEndian) {
		e.buf.WriteByte(XDR)
	} else {
		e.buf.WriteByte(NDR)
	}
	code := wkbCode(t)
	if e.extended {
		if e.layout.HasZ() {
			code |= ewkbZFlag
		}
		if e.layout.HasM() {
			code |= ewkbMFlag
		}
		if srid != 0 {
			code |= ewkbSRIDFlag
		}
	} else {
		switch e.layout {
		case XYZ:
			code += 1000
		case XYM:
			code += 2000
		case XYZM:
			code += 3000
		}
	}
	e.uint32(code)
	if e.extended && srid != 0 {
		e.uint32(uint32(int32(srid)))
	}
}

// geometry writes g; srid is only non-zero for the top-level record.
func (e *wkbEncoder) geometry(g Geometry, srid int) {
	e.header(g.GeometryType(), srid)
	switch g := g.(type) {
	case Point:
		if g.IsEmpty() {
			for i := 0; i < e.layout.Stride(); i++ {
				e.float64(math.NaN())
			}
			return
		}
		e.coord(g.Coord())
	case LineString:
		e.coords(g.Coords())
	case Polygon:
		if g.IsEmpty() {
			e.uint32(0)
			return
		}
		e.uint32(uint32(1 + g.NumInteriorRings()))
		e.coords(g.ExteriorRing().Coords())
		for _, r := range g.InteriorRings() {
			e.coords(r.Coords())
		}
	case GeometryCollection:
		gs := g.Geometries()
		e.uint32(uint32(len(gs)))
		for _, p := range gs {
			e.geometry(p, 0)
		}
	}
}

// wkbDecoder reads one WKB or EWKB record into a rawGeometry.
type wkbDecoder struct {
	data      []byte
	pos       int
	depth     int
	layout    Layout
	layoutSet bool
}

// parseWKB decodes data; srid is 0 unless an EWKB SRID is present.
func parseWKB(data []byte) (raw *rawGeometry, srid int, err error) {
	d := &wkbDecoder{data: data}
	raw, srid, err = d.geometry(true, nil)
	if err != nil {
		return nil, 0, err
	}
	if d.pos != len(d.data) {
		return nil, 0, d.errorf(ErrTrailingData, "%d bytes left", len(d.data)-d.pos)
	}
	return raw, srid, nil
}

func (d *wkbDecoder) errorf(err error, format string, args ...any) *ParseError {
	return &ParseError{Format: "WKB", Pos: d.pos, Detail: fmt.Sprintf(format, args...), Err: err}
}

func (d *wkbDecoder) need(n int) error {
	if n < 0 || len(d.data)-d.pos < n {
		return d.errorf(ErrTruncated, "need %d bytes, have %d", n, len(d.data)-d.pos)
	}
	return nil
}

func (d *wkbDecoder) uint32(order binary.ByteOrder) (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := order.Uint32(d.data[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *wkbDecoder) coord(order binary.ByteOrder) Coord {
	var ords [4]float64
	stride := d.layout.Stride()
	for i := 0; i < stride; i++ {
		ords[i] = math.Float64frombits(order.Uint64(d.data[d.pos:]))
		d.pos += 8
	}
	return coordFromOrdinates(ords[:stride], d.layout)
}

// count reads an element count and checks that count elements of at least
// minSize bytes each fit in the remaining input.
func (d *wkbDecoder) count(order binary.ByteOrder, minSize int) (int, error) {
	start := d.pos
	n, err := d.uint32(order)
	if err != nil {
		return 0, err
	}
	if remaining := len(d.data) - d.pos; uint64(n)*uint64(minSize) > uint64(remaining) {
		d.pos = start
		return 0, d.errorf(ErrBadCount, "count %d exceeds remaining %d bytes", n, remaining)
	}
	return int(n), nil
}

func (d *wkbDecoder) coords(order binary.ByteOrder) ([]Coord, error) {
	n, err := d.count(order, 8*d.layout.Stride())
	if err != nil {
		return nil, err
	}
	cs := make([]Coord, n)
	for i := range cs {
		cs[i] = d.coord(order)
	}
	return cs, nil
}

func wkbType(code uint32) (Type, bool) {
	switch code {
	case wkbPoint:
		return TypePoint, true
	case wkbLineString:
		return TypeLineString, true
	case wkbPolygon:
		return TypePolygon, true
	case wkbMultiPoint:
		return TypeMultiPoint, true
	case wkbMultiLineString:
		return TypeMultiLineString, true
	case wkbMultiPolygon:
		return TypeMultiPolygon, true
	case wkbGeometryCollection:
		return TypeGeometryCollection, true
	}
	return 0, false
}

// elementType returns the type a collection's elements must have, or
// TypeGeometry when any is allowed.
func elementType(t Type) Type {
	switch t {
	case TypeMultiPoint:
		return TypePoint
	case TypeMultiLineString:
		return TypeLineString
	case TypeMultiPolygon:
		return TypePolygon
	}
	return TypeGeometry
}

// minRecord is the size of the smallest nested record: a header and a count.
const minRecord = 1 + 4 + 4

func (d *wkbDecoder) geometry(top bool, parent *rawGeometry) (*rawGeometry, int, error) {
	start := d.pos
	if err := d.need(1); err != nil {
		return nil, 0, err
	}
	var order binary.ByteOrder
	switch d.data[d.pos] {
	case XDR:
		order = binary.BigEndian
	case NDR:
		order = binary.LittleEndian
	default:
		return nil, 0, d.errorf(ErrByteOrder, "byte order marker %d", d.data[d.pos])
	}
	d.pos++

	code, err := d.uint32(order)
	if err != nil {
		return nil, 0, err
	}
	hasZ, hasM, hasSRID := code&ewkbZFlag != 0, code&ewkbMFlag != 0, code&ewkbSRIDFlag != 0
	code &^= ewkbZFlag | ewkbMFlag | ewkbSRIDFlag
	switch code / 1000 {
	case 0:
	case 1:
		hasZ = true
	case 2:
		hasM = true
	case 3:
		hasZ, hasM = true, true
	default:
		d.pos = start
		return nil, 0, d.errorf(ErrUnknownType, "type code %d", code)
	}
	typ, ok := wkbType(code % 1000)
	if !ok {
		d.pos = start
		return nil, 0, d.errorf(ErrUnknownType, "type code %d", code)
	}
	if parent != nil {
		if want := elementType(parent.typ); want != TypeGeometry && typ != want {
			d.pos = start
			return nil, 0, d.errorf(ErrNestedType, "%s inside %s", typ, parent.typ)
		}
	}
	layout := layoutFor(hasZ, hasM)
	if d.layoutSet && layout != d.layout {
		d.pos = start
		return nil, 0, d.errorf(ErrArity, "mixed dimensionality %s and %s", d.layout, layout)
	}
	d.layout, d.layoutSet = layout, true

	srid := 0
	if hasSRID {
		v, err := d.uint32(order)
		if err != nil {
			return nil, 0, err
		}
		if top {
			srid = int(int32(v))
		}
	}

	raw := &rawGeometry{typ: typ}
	switch typ {
	case TypePoint:
		if err := d.need(8 * layout.Stride()); err != nil {
			return nil, 0, err
		}
		c := d.coord(order)
		if math.IsNaN(c.X) && math.IsNaN(c.Y) {
			raw.empty = true
		} else {
			raw.coords = []Coord{c}
		}
	case TypeLineString:
		if raw.coords, err = d.coords(order); err != nil {
			return nil, 0, err
		}
	case TypePolygon:
		n, err := d.count(order, 4)
		if err != nil {
			return nil, 0, err
		}
		for i := 0; i < n; i++ {
			ring, err := d.coords(order)
			if err != nil {
				return nil, 0, err
			}
			raw.rings = append(raw.rings, ring)
		}
		raw.empty = n == 0
	default:
		if d.depth++; d.depth > maxNesting {
			return nil, 0, d.errorf(ErrTooDeep, "more than %d levels", maxNesting)
		}
		n, err := d.count(order, minRecord)
		if err != nil {
			return nil, 0, err
		}
		for i := 0; i < n; i++ {
			part, _, err := d.geometry(false, raw)
			if err != nil {
				return nil, 0, err
			}
			raw.parts = append(raw.parts, part)
		}
		d.depth--
	}
	return raw, srid, nil
}

// ParseWKBHex decodes hex-encoded WKB or EWKB with ParseWKB.
func (f *Factory) ParseWKBHex(s string) (Geometry, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, &ParseError{Format: "WKB", Detail: err.Error(), Err: ErrSyntax}
	}
	return f.ParseWKB(data)
}

// ParseWKB decodes ISO WKB or PostGIS EWKB. It returns an error wrapping one
// of the package sentinels for malformed input, and (nil, nil) when the
// input is well formed but the geometry is invalid.
func (f *Factory) ParseWKB(data []byte) (Geometry, error) {
	raw, srid, err := parseWKB(data)
	if err != nil {
		return nil, err
	}
	if err := f.checkSRID(srid); err != nil {
		return nil, err
	}
	return f.build(raw), nil
}

// checkSRID rejects an embedded SRID that differs from a non-zero factory
// SRID.
func (f *Factory) checkSRID(srid int) error {
	if srid != 0 && f.srid != 0 && srid != f.srid {
		return fmt.Errorf("%w: input has %d, factory has %d", ErrSRIDMismatch, srid, f.srid)
	}
	return nil
}
