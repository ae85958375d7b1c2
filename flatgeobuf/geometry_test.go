package flatgeobuf

import (
	"testing"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	flatbuffers "github.com/google/flatbuffers/go"
	sfs "github.com/tingold/orb-sfs"
)

func mustWKT(t testing.TB, f *sfs.Factory, s string) sfs.Geometry {
	t.Helper()
	g, err := f.ParseWKT(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	if g == nil {
		t.Fatalf("parse %q: invalid geometry", s)
	}
	return g
}

func TestGeometryType(t *testing.T) {
	f := sfs.NewFactory(nil)

	tests := []struct {
		name     string
		wkt      string
		expected flattypes.GeometryType
	}{
		{"Point", "POINT (1 2)", flattypes.GeometryTypePoint},
		{"MultiPoint", "MULTIPOINT ((1 2), (3 4))", flattypes.GeometryTypeMultiPoint},
		{"LineString", "LINESTRING (0 0, 1 1, 2 0)", flattypes.GeometryTypeLineString},
		{"LinearRing", "LINEARRING (0 0, 1 0, 1 1, 0 0)", flattypes.GeometryTypeLineString},
		{"MultiLineString", "MULTILINESTRING ((0 0, 1 1))", flattypes.GeometryTypeMultiLineString},
		{"Polygon", "POLYGON ((0 0, 1 0, 1 1, 0 0))", flattypes.GeometryTypePolygon},
		{"MultiPolygon", "MULTIPOLYGON (((0 0, 1 0, 1 1, 0 0)))", flattypes.GeometryTypeMultiPolygon},
		{"Collection", "GEOMETRYCOLLECTION (POINT (1 2))", flattypes.GeometryTypeGeometryCollection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustWKT(t, f, tt.wkt)
			if result := geometryType(g.GeometryType()); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
			if back := sfsType(tt.expected); !g.GeometryType().IsA(back) {
				t.Errorf("expected %v to decode as a kind of %v", tt.expected, g.GeometryType())
			}
		})
	}

	line := f.Line(f.Point(0, 0), f.Point(1, 1))
	if result := geometryType(line.GeometryType()); result != flattypes.GeometryTypeLineString {
		t.Errorf("expected LineString, got %v", result)
	}
	if result := geometryType(sfs.TypeCurve); result != flattypes.GeometryTypeUnknown {
		t.Errorf("expected Unknown, got %v", result)
	}
	if result := sfsType(flattypes.GeometryTypeCircularString); result != sfs.TypeGeometry {
		t.Errorf("expected Geometry, got %v", result)
	}
}

func TestLayerType(t *testing.T) {
	f := sfs.NewFactory(nil)
	p1, p2 := f.Point(1, 2), f.Point(3, 4)
	ls := mustWKT(t, f, "LINESTRING (0 0, 1 1)")
	ring := mustWKT(t, f, "LINEARRING (0 0, 1 0, 1 1, 0 0)")

	tests := []struct {
		name     string
		geoms    []sfs.Geometry
		expected flattypes.GeometryType
	}{
		{"points", []sfs.Geometry{p1, p2}, flattypes.GeometryTypePoint},
		{"lines and rings", []sfs.Geometry{ls, ring}, flattypes.GeometryTypeLineString},
		{"mixed", []sfs.Geometry{p1, ls}, flattypes.GeometryTypeUnknown},
		{"none", nil, flattypes.GeometryTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := layerType(tt.geoms); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestGeometryToFGB(t *testing.T) {
	f := sfs.NewFactory(nil)

	tests := []struct {
		name     string
		wkt      string
		expected bool
	}{
		{"Point", "POINT (1.5 2.5)", true},
		{"LineString", "LINESTRING (0 0, 1 1, 2 2)", true},
		{"Polygon", "POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0), (2 2, 8 2, 8 8, 2 8, 2 2))", true},
		{"MultiPolygon", "MULTIPOLYGON (((0 0, 5 0, 5 5, 0 5, 0 0)), ((10 10, 15 10, 15 15, 10 15, 10 10)))", true},
		{"Collection", "GEOMETRYCOLLECTION (POINT (1 2), LINESTRING (0 0, 1 1))", true},
		{"EmptyPoint", "POINT EMPTY", false},
		{"EmptyCollection", "GEOMETRYCOLLECTION EMPTY", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builder := flatbuffers.NewBuilder(256)
			geom := geometryToFGB(mustWKT(t, f, tt.wkt), builder)
			if (geom != nil) != tt.expected {
				t.Errorf("expected non-nil %v, got %v", tt.expected, geom != nil)
			}
		})
	}

	if geometryToFGB(nil, flatbuffers.NewBuilder(256)) != nil {
		t.Error("expected nil geometry for nil input")
	}
}

func TestAppendXY(t *testing.T) {
	f := sfs.NewFactory(&sfs.Options{Layout: sfs.XYZ})
	ls := mustWKT(t, f, "LINESTRING Z (1 2 9, 3 4 9, 5 6 9)").(sfs.LineString)
	xy := appendXY(nil, ls.Coords())

	expected := []float64{1, 2, 3, 4, 5, 6}
	if len(xy) != len(expected) {
		t.Fatalf("expected %d coordinates, got %d", len(expected), len(xy))
	}

	for i, v := range expected {
		if xy[i] != v {
			t.Errorf("at index %d: expected %f, got %f", i, v, xy[i])
		}
	}
}

func TestPolygonXYEnds(t *testing.T) {
	f := sfs.NewFactory(nil)
	poly := mustWKT(t, f, "POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0), (2 2, 8 2, 8 8, 2 2))").(sfs.Polygon)

	xy, ends := polygonXYEnds(poly)

	if len(xy) != 18 {
		t.Errorf("expected 18 coordinates, got %d", len(xy))
	}

	if len(ends) != 2 {
		t.Fatalf("expected 2 ends, got %d", len(ends))
	}

	if ends[0] != 5 || ends[1] != 9 {
		t.Errorf("expected ends [5 9], got %v", ends)
	}
}

func TestCommonSRID(t *testing.T) {
	a := sfs.NewFactory(&sfs.Options{SRID: 4326})
	b := sfs.NewFactory(&sfs.Options{SRID: 3857})

	if got := commonSRID([]sfs.Geometry{a.Point(0, 0), a.Point(1, 1)}); got != 4326 {
		t.Errorf("expected 4326, got %d", got)
	}
	if got := commonSRID([]sfs.Geometry{a.Point(0, 0), b.Point(1, 1)}); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestCRSForSRID(t *testing.T) {
	if CRSForSRID(0) != nil {
		t.Error("expected nil CRS for SRID 0")
	}
	if crs := CRSForSRID(4326); crs.Code != 4326 || crs.Name != "WGS 84" {
		t.Errorf("expected WGS 84, got %+v", crs)
	}
	if crs := CRSForSRID(3857); crs.Code != 3857 {
		t.Errorf("expected 3857, got %d", crs.Code)
	}
	var h *Header
	if h.SRID() != 0 {
		t.Error("expected SRID 0 for nil header")
	}
}
