// Package flatgeobuf reads and writes sfs geometries as FlatGeobuf files.
//
// Only XY coordinates are written: Z and M ordinates are dropped, and empty
// components are skipped the same way sfs.ToOrb skips them. Geometries read
// back are rebuilt and validated by an sfs.Factory; a factory with Z or M
// reads them from the file when present and uses 0 otherwise.
package flatgeobuf

import (
	"errors"
)

// Common errors returned by this package.
var (
	ErrNilGeometry     = errors.New("flatgeobuf: nil geometry")
	ErrUnsupportedType = errors.New("flatgeobuf: unsupported geometry type")
	ErrInvalidData     = errors.New("flatgeobuf: invalid data")
	ErrNoIndex         = errors.New("flatgeobuf: file has no spatial index")
)

// CRS represents a coordinate reference system.
type CRS struct {
	Code        int    // EPSG code (e.g., 4326 for WGS84)
	Name        string // CRS name
	Description string // CRS description
	WKT         string // Well-Known Text representation
}

// WGS84 returns the standard WGS84 CRS (EPSG:4326).
func WGS84() *CRS {
	return &CRS{
		Code: 4326,
		Name: "WGS 84",
	}
}

// CRSForSRID returns the EPSG CRS for an SRID, or nil for SRID 0.
func CRSForSRID(srid int) *CRS {
	switch srid {
	case 0:
		return nil
	case 4326:
		return WGS84()
	}
	return &CRS{Code: srid}
}

// Options configures FlatGeobuf writing.
type Options struct {
	Name         string // Layer name
	Description  string // Layer description
	IncludeIndex bool   // Include spatial index (default: true)
	CRS          *CRS   // Coordinate reference system; derived from the geometries' SRID when nil
}

// DefaultOptions returns default options for writing FlatGeobuf files.
func DefaultOptions() *Options {
	return &Options{
		IncludeIndex: true,
	}
}

// Header contains metadata about a FlatGeobuf file.
type Header struct {
	Name          string     // Layer name
	Description   string     // Layer description
	GeometryType  string     // Geometry type ("Point", "Polygon", "Unknown", etc.)
	FeaturesCount uint64     // Number of features in the file
	Envelope      [4]float64 // Bounding box [minX, minY, maxX, maxY]
	CRS           *CRS       // Coordinate reference system
	HasIndex      bool       // Whether the file has a spatial index
}

// SRID returns the EPSG code of the header CRS, or 0 when there is none.
func (h *Header) SRID() int {
	if h == nil || h.CRS == nil {
		return 0
	}
	return h.CRS.Code
}
