package flatgeobuf

import (
	"bytes"
	"io"

	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	sfs "github.com/tingold/orb-sfs"
)

// Write writes geometries to FlatGeobuf format, one feature per geometry.
// Nil and empty geometries are skipped. When opts.CRS is nil the CRS is
// taken from the SRID shared by all geometries, if any.
func Write(w io.Writer, geometries []sfs.Geometry, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	geoms := make([]sfs.Geometry, 0, len(geometries))
	for _, g := range geometries {
		if g != nil && !g.IsEmpty() {
			geoms = append(geoms, g)
		}
	}
	if len(geoms) == 0 {
		return ErrNilGeometry
	}

	crs := opts.CRS
	if crs == nil {
		crs = CRSForSRID(commonSRID(geoms))
	}

	builder := flatbuffers.NewBuilder(4096)

	header := writer.NewHeader(builder)
	header.SetGeometryType(layerType(geoms))

	if opts.Name != "" {
		header.SetName(opts.Name)
	}
	if opts.Description != "" {
		header.SetDescription(opts.Description)
	}

	if crs != nil {
		c := writer.NewCrs(builder)
		c.SetOrg("EPSG")
		if crs.Code > 0 {
			c.SetCode(int32(crs.Code))
		}
		if crs.Name != "" {
			c.SetName(crs.Name)
		}
		if crs.Description != "" {
			c.SetDescription(crs.Description)
		} else if crs.WKT != "" {
			c.SetDescription(crs.WKT)
		}
		header.SetCrs(c)
	}

	gen := &geometryFeatureGenerator{geometries: geoms}
	fgbWriter := writer.NewWriter(header, opts.IncludeIndex, gen, nil)

	_, err := fgbWriter.Write(w)
	return err
}

// Marshal returns the FlatGeobuf encoding of geometries.
func Marshal(geometries []sfs.Geometry, opts *Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, geometries, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// commonSRID returns the SRID shared by geoms, or 0 when they differ.
func commonSRID(geoms []sfs.Geometry) int {
	srid := geoms[0].SRID()
	for _, g := range geoms[1:] {
		if g.SRID() != srid {
			return 0
		}
	}
	return srid
}

// geometryFeatureGenerator generates features from geometries.
type geometryFeatureGenerator struct {
	geometries []sfs.Geometry
	index      int
}

func (g *geometryFeatureGenerator) Generate() *writer.Feature {
	for g.index < len(g.geometries) {
		geom := g.geometries[g.index]
		g.index++

		builder := flatbuffers.NewBuilder(1024)
		fgbGeom := geometryToFGB(geom, builder)
		if fgbGeom == nil {
			continue
		}

		feature := writer.NewFeature(builder)
		feature.SetGeometry(fgbGeom)
		return feature
	}
	return nil
}
