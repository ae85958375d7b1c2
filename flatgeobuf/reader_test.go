package flatgeobuf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	sfs "github.com/tingold/orb-sfs"
)

// writeFile writes geometries to a temporary file and opens it.
func writeFile(t *testing.T, geometries []sfs.Geometry, opts *Options, f *sfs.Factory) *Reader {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), "test.fgb")
	file, err := os.Create(tmpFile)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	err = Write(file, geometries, opts)
	_ = file.Close()
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	reader, err := NewReader(tmpFile, f)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	t.Cleanup(func() { _ = reader.Close() })
	return reader
}

// sameSet reports whether every geometry in a has an Equals match in b and
// the lengths agree. Features come back in index order.
func sameSet(a, b []sfs.Geometry) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, g := range a {
		found := false
		for j, h := range b {
			if !used[j] && g.Equals(h) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func TestNewReaderFromData_Invalid(t *testing.T) {
	// Invalid data (not a FlatGeobuf file)
	_, err := NewReaderFromData([]byte("not a flatgeobuf"), nil)
	if err == nil {
		t.Error("expected error for invalid data")
	}
}

func TestNewReaderFromData_Empty(t *testing.T) {
	_, err := NewReaderFromData([]byte{}, nil)
	if err == nil {
		t.Error("expected error for empty data")
	}
}

func TestNewReader_NonExistent(t *testing.T) {
	_, err := NewReader("/nonexistent/path/to/file.fgb", nil)
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestRoundTrip_Points(t *testing.T) {
	f := sfs.NewFactory(&sfs.Options{SRID: 4326})

	geometries := make([]sfs.Geometry, 0, 10)
	for i := 0; i < 10; i++ {
		geometries = append(geometries, f.Point(float64(i), float64(i*2)))
	}

	reader := writeFile(t, geometries, &Options{Name: "test_points", IncludeIndex: true}, nil)

	// Check header
	header := reader.Header()
	if header == nil {
		t.Fatal("expected non-nil header")
	}

	if header.Name != "test_points" {
		t.Errorf("expected name 'test_points', got %q", header.Name)
	}

	if header.GeometryType != "Point" {
		t.Errorf("expected geometry type 'Point', got %q", header.GeometryType)
	}

	if !header.HasIndex {
		t.Error("expected HasIndex to be true")
	}

	if header.FeaturesCount != 10 {
		t.Errorf("expected 10 features, got %d", header.FeaturesCount)
	}

	if header.Envelope != [4]float64{0, 0, 9, 18} {
		t.Errorf("expected envelope [0 0 9 18], got %v", header.Envelope)
	}

	if header.SRID() != 4326 {
		t.Errorf("expected CRS derived from SRID 4326, got %+v", header.CRS)
	}

	if reader.Factory().SRID() != 4326 {
		t.Errorf("expected reader factory SRID 4326, got %d", reader.Factory().SRID())
	}

	geoms, err := reader.ReadGeometries()
	if err != nil {
		t.Fatalf("ReadGeometries failed: %v", err)
	}

	if !sameSet(geometries, geoms) {
		t.Errorf("expected %d points to round trip, got %d", len(geometries), len(geoms))
	}

	for _, g := range geoms {
		if g.SRID() != 4326 {
			t.Errorf("expected SRID 4326, got %d", g.SRID())
		}
	}
}

func TestRoundTrip_Geometries(t *testing.T) {
	f := sfs.NewFactory(nil)

	tests := []struct {
		name     string
		wkt      []string
		geomType string
	}{
		{"Polygons", []string{
			"POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))",
			"POLYGON ((20 20, 30 20, 30 30, 20 30, 20 20), (22 22, 28 22, 28 28, 22 22))",
		}, "Polygon"},
		{"LineStrings", []string{
			"LINESTRING (0 0, 1 1, 2 0)",
			"LINESTRING (5 5, 6 6)",
		}, "LineString"},
		{"MultiPolygons", []string{
			"MULTIPOLYGON (((0 0, 5 0, 5 5, 0 5, 0 0)), ((10 10, 15 10, 15 15, 10 15, 10 10), (11 11, 14 11, 14 14, 11 11)))",
		}, "MultiPolygon"},
		{"MultiLineStrings", []string{
			"MULTILINESTRING ((0 0, 1 1), (2 2, 3 3, 4 2))",
		}, "MultiLineString"},
		{"MultiPoints", []string{
			"MULTIPOINT ((1 2), (3 4))",
		}, "MultiPoint"},
		{"Mixed", []string{
			"POINT (1 2)",
			"LINESTRING (0 0, 1 1)",
			"POLYGON ((0 0, 4 0, 4 4, 0 0))",
			"GEOMETRYCOLLECTION (POINT (3 3), LINESTRING (0 0, 2 2))",
		}, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geometries := make([]sfs.Geometry, 0, len(tt.wkt))
			for _, s := range tt.wkt {
				geometries = append(geometries, mustWKT(t, f, s))
			}

			reader := writeFile(t, geometries, nil, f)

			if header := reader.Header(); header.GeometryType != tt.geomType {
				t.Errorf("expected geometry type %q, got %q", tt.geomType, header.GeometryType)
			}

			geoms, err := reader.ReadGeometries()
			if err != nil {
				t.Fatalf("ReadGeometries failed: %v", err)
			}

			if !sameSet(geometries, geoms) {
				t.Errorf("expected geometries to round trip, got %d of %d", len(geoms), len(geometries))
			}
		})
	}
}

func TestRoundTrip_LinearRing(t *testing.T) {
	f := sfs.NewFactory(nil)
	ring := mustWKT(t, f, "LINEARRING (0 0, 1 0, 1 1, 0 0)")

	reader := writeFile(t, []sfs.Geometry{ring}, nil, f)

	geoms, err := reader.ReadGeometries()
	if err != nil {
		t.Fatalf("ReadGeometries failed: %v", err)
	}

	if len(geoms) != 1 {
		t.Fatalf("expected 1 geometry, got %d", len(geoms))
	}

	if geoms[0].GeometryType() != sfs.TypeLineString {
		t.Errorf("expected LineString, got %v", geoms[0].GeometryType())
	}

	if !geoms[0].Equals(ring) {
		t.Errorf("expected %s to equal %s", geoms[0].AsText(), ring.AsText())
	}
}

func TestRoundTrip_Search(t *testing.T) {
	f := sfs.NewFactory(nil)

	// Write points in a grid
	geometries := make([]sfs.Geometry, 0, 100)
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			geometries = append(geometries, f.Point(float64(x), float64(y)))
		}
	}

	reader := writeFile(t, geometries, &Options{IncludeIndex: true}, f)

	// Search a small area
	bounds := orb.Bound{
		Min: orb.Point{2, 2},
		Max: orb.Point{4, 4},
	}

	results, err := reader.Search(bounds)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) == 0 {
		t.Fatal("expected some results from search")
	}

	found := false
	for _, g := range results {
		p := g.(sfs.Point)
		if !bounds.Contains(orb.Point{p.X(), p.Y()}) {
			t.Errorf("unexpected result %s", g.AsText())
		}
		if p.X() == 3 && p.Y() == 3 {
			found = true
		}
	}

	if !found {
		t.Error("expected POINT (3 3) in results")
	}
}

func TestSearchEnvelope(t *testing.T) {
	f := sfs.NewFactory(nil)
	geometries := []sfs.Geometry{
		f.Point(1, 1),
		f.Point(5, 5),
		f.Point(9, 9),
	}

	reader := writeFile(t, geometries, nil, f)

	query := mustWKT(t, f, "POLYGON ((0 0, 6 0, 6 6, 0 6, 0 0))")
	geoms, err := reader.SearchEnvelope(query)
	if err != nil {
		t.Fatalf("SearchEnvelope failed: %v", err)
	}

	// Should find points at (1,1) and (5,5)
	if !sameSet(geoms, geometries[:2]) {
		t.Errorf("expected 2 geometries, got %d", len(geoms))
	}

	if _, err := reader.SearchEnvelope(mustWKT(t, f, "POLYGON EMPTY")); !errors.Is(err, ErrNilGeometry) {
		t.Errorf("expected ErrNilGeometry, got %v", err)
	}
}

func TestSearch_NoIndex(t *testing.T) {
	f := sfs.NewFactory(nil)
	reader := writeFile(t, []sfs.Geometry{f.Point(1, 2)}, &Options{IncludeIndex: false}, f)

	if reader.Header().HasIndex {
		t.Error("expected HasIndex to be false")
	}

	_, err := reader.Search(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}})
	if !errors.Is(err, ErrNoIndex) {
		t.Errorf("expected ErrNoIndex, got %v", err)
	}

	geoms, err := reader.ReadGeometries()
	if err != nil {
		t.Fatalf("ReadGeometries failed: %v", err)
	}
	if len(geoms) != 0 {
		t.Errorf("expected no geometries without an index, got %d", len(geoms))
	}
}

func TestNewReaderFromData(t *testing.T) {
	f := sfs.NewFactory(&sfs.Options{SRID: 3857})
	geometries := []sfs.Geometry{f.Point(1, 2), f.Point(3, 4)}

	data, err := Marshal(geometries, &Options{IncludeIndex: true, Name: "memory"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	reader, err := NewReaderFromData(data, nil)
	if err != nil {
		t.Fatalf("NewReaderFromData failed: %v", err)
	}
	defer func() { _ = reader.Close() }()

	header := reader.Header()
	if header.Name != "memory" {
		t.Errorf("expected name 'memory', got %q", header.Name)
	}
	if header.CRS == nil || header.CRS.Code != 3857 {
		t.Errorf("expected CRS 3857, got %+v", header.CRS)
	}

	geoms, err := reader.ReadGeometries()
	if err != nil {
		t.Fatalf("ReadGeometries failed: %v", err)
	}
	if !sameSet(geometries, geoms) {
		t.Errorf("expected 2 geometries, got %d", len(geoms))
	}
}

func TestReader_Close(t *testing.T) {
	f := sfs.NewFactory(nil)

	data, err := Marshal([]sfs.Geometry{f.Point(1, 2)}, nil)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// Open and close
	reader, err := NewReaderFromData(data, f)
	if err != nil {
		t.Fatalf("NewReaderFromData failed: %v", err)
	}

	err = reader.Close()
	if err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestReadIntoZFactory(t *testing.T) {
	f := sfs.NewFactory(nil)
	data, err := Marshal([]sfs.Geometry{mustWKT(t, f, "LINESTRING (0 0, 1 1)")}, nil)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	fz := sfs.NewFactory(&sfs.Options{Layout: sfs.XYZ})
	reader, err := NewReaderFromData(data, fz)
	if err != nil {
		t.Fatalf("NewReaderFromData failed: %v", err)
	}
	defer func() { _ = reader.Close() }()

	geoms, err := reader.ReadGeometries()
	if err != nil {
		t.Fatalf("ReadGeometries failed: %v", err)
	}
	if len(geoms) != 1 {
		t.Fatalf("expected 1 geometry, got %d", len(geoms))
	}

	expected := "LINESTRING Z (0 0 0, 1 1 0)"
	if got := geoms[0].AsText(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}
