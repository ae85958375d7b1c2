package flatgeobuf

import (
	"fmt"

	flatgeobuf "github.com/flatgeobuf/flatgeobuf/src/go"
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/paulmach/orb"
	sfs "github.com/tingold/orb-sfs"
)

// Reader provides read access to a FlatGeobuf file.
type Reader struct {
	fgb     *flatgeobuf.FlatGeoBuf
	factory *sfs.Factory
}

// NewReader creates a reader from a file path.
// The file is memory-mapped for efficient access. Geometries are built with
// f; a nil f uses a default factory in the SRID of the file's CRS.
func NewReader(path string, f *sfs.Factory) (*Reader, error) {
	fgb, err := flatgeobuf.New(path)
	if err != nil {
		return nil, err
	}

	return newReader(fgb, f), nil
}

// NewReaderFromData creates a reader from byte data.
func NewReaderFromData(data []byte, f *sfs.Factory) (*Reader, error) {
	fgb, err := flatgeobuf.NewWithData(data)
	if err != nil {
		return nil, err
	}

	return newReader(fgb, f), nil
}

func newReader(fgb *flatgeobuf.FlatGeoBuf, f *sfs.Factory) *Reader {
	r := &Reader{fgb: fgb, factory: f}
	if f == nil {
		r.factory = sfs.NewFactory(&sfs.Options{SRID: r.Header().SRID()})
	}
	return r
}

// Factory returns the factory geometries are built with.
func (r *Reader) Factory() *sfs.Factory { return r.factory }

// Header returns metadata about the FlatGeobuf file.
func (r *Reader) Header() *Header {
	h := r.fgb.Header()
	if h == nil {
		return nil
	}

	header := &Header{
		Name:          string(h.Name()),
		Description:   string(h.Description()),
		FeaturesCount: h.FeaturesCount(),
		HasIndex:      h.IndexNodeSize() > 0,
		GeometryType:  flattypes.EnumNamesGeometryType[h.GeometryType()],
	}

	if h.EnvelopeLength() >= 4 {
		header.Envelope = [4]float64{
			h.Envelope(0),
			h.Envelope(1),
			h.Envelope(2),
			h.Envelope(3),
		}
	}

	var crs flattypes.Crs
	if h.Crs(&crs) != nil {
		header.CRS = &CRS{
			Code:        int(crs.Code()),
			Name:        string(crs.Name()),
			Description: string(crs.Description()),
		}
	}

	return header
}

// ReadGeometries reads every geometry in the file.
// Features are visited through the spatial index, so a file written without
// one reads as empty, and the order is the index order.
func (r *Reader) ReadGeometries() ([]sfs.Geometry, error) {
	h := r.fgb.Header()
	if h.FeaturesCount() == 0 || h.IndexNodeSize() == 0 || h.EnvelopeLength() < 4 {
		return nil, nil
	}

	return r.search(h.Envelope(0), h.Envelope(1), h.Envelope(2), h.Envelope(3))
}

// Search performs a spatial query using the built-in index.
// Returns geometries whose bounding boxes intersect the query bounds.
func (r *Reader) Search(bounds orb.Bound) ([]sfs.Geometry, error) {
	if r.fgb.Header().IndexNodeSize() == 0 {
		return nil, ErrNoIndex
	}

	return r.search(bounds.Min[0], bounds.Min[1], bounds.Max[0], bounds.Max[1])
}

// SearchEnvelope is Search with the bounding box of g.
func (r *Reader) SearchEnvelope(g sfs.Geometry) ([]sfs.Geometry, error) {
	o := sfs.ToOrb(g)
	if o == nil || g.IsEmpty() {
		return nil, ErrNilGeometry
	}
	return r.Search(o.Bound())
}

func (r *Reader) search(minX, minY, maxX, maxY float64) ([]sfs.Geometry, error) {
	features, err := r.fgb.Search(minX, minY, maxX, maxY)
	if err != nil {
		return nil, err
	}

	d := decoder{f: r.factory, layer: r.fgb.Header().GeometryType()}
	geometries := make([]sfs.Geometry, 0, len(features))
	for i, feature := range features {
		if feature == nil {
			continue
		}
		var geomObj flattypes.Geometry
		fg := feature.Geometry(&geomObj)
		if fg == nil {
			continue
		}
		typ := d.typeOf(fg)
		if sfsType(typ) == sfs.TypeGeometry {
			return nil, fmt.Errorf("%w: %s in feature %d", ErrUnsupportedType, flattypes.EnumNamesGeometryType[typ], i)
		}
		g := d.geometry(fg)
		if g == nil {
			return nil, fmt.Errorf("%w: invalid %s in feature %d", ErrInvalidData, flattypes.EnumNamesGeometryType[typ], i)
		}
		geometries = append(geometries, g)
	}

	return geometries, nil
}

// sfsType maps a FlatGeobuf type to the sfs type it decodes to, or
// TypeGeometry for types this package does not read.
func sfsType(t flattypes.GeometryType) sfs.Type {
	switch t {
	case flattypes.GeometryTypePoint:
		return sfs.TypePoint
	case flattypes.GeometryTypeLineString:
		return sfs.TypeLineString
	case flattypes.GeometryTypePolygon:
		return sfs.TypePolygon
	case flattypes.GeometryTypeMultiPoint:
		return sfs.TypeMultiPoint
	case flattypes.GeometryTypeMultiLineString:
		return sfs.TypeMultiLineString
	case flattypes.GeometryTypeMultiPolygon:
		return sfs.TypeMultiPolygon
	case flattypes.GeometryTypeGeometryCollection:
		return sfs.TypeGeometryCollection
	}
	return sfs.TypeGeometry
}

// Close releases resources associated with the reader.
func (r *Reader) Close() error {
	r.fgb = nil
	return nil
}
