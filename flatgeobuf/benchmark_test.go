package flatgeobuf

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	sfs "github.com/tingold/orb-sfs"
)

// =============================================================================
// Test Data Generators
// =============================================================================

// generateGeometries creates n random geometries of geomType within
// [0, 100) x [0, 100).
func generateGeometries(f *sfs.Factory, r *rand.Rand, n int, geomType string) []sfs.Geometry {
	geoms := make([]sfs.Geometry, 0, n)
	for i := 0; i < n; i++ {
		x, y := r.Float64()*100, r.Float64()*100
		switch geomType {
		case "point":
			geoms = append(geoms, f.Point(x, y))
		case "linestring":
			pts := make([]sfs.Point, 10)
			for j := range pts {
				pts[j] = f.Point(x+float64(j)*0.01, y+float64(j%2)*0.01)
			}
			geoms = append(geoms, f.LineString(pts))
		case "complexpolygon":
			size := 0.1 + r.Float64()*0.5
			pts := make([]sfs.Point, 0, 51)
			for j := 0; j < 50; j++ {
				a := 2 * math.Pi * float64(j) / 50
				pts = append(pts, f.Point(x+size*math.Cos(a), y+size*math.Sin(a)))
			}
			pts = append(pts, pts[0])
			geoms = append(geoms, f.Polygon(f.LinearRing(pts)))
		default:
			size := 0.1 + r.Float64()*0.5
			shell := f.LinearRing([]sfs.Point{
				f.Point(x, y), f.Point(x+size, y), f.Point(x+size, y+size),
				f.Point(x, y+size), f.Point(x, y),
			})
			geoms = append(geoms, f.Polygon(shell))
		}
	}
	return geoms
}

// =============================================================================
// Serialization Benchmarks
// =============================================================================

func BenchmarkSerialize_GeoJSON_Points_1000(b *testing.B) {
	benchmarkGeoJSONSerialize(b, "point", 1000)
}

func BenchmarkSerialize_FlatGeobuf_Points_1000(b *testing.B) {
	benchmarkFlatGeobufSerialize(b, "point", 1000, false)
}

func BenchmarkSerialize_FlatGeobufIdx_Points_1000(b *testing.B) {
	benchmarkFlatGeobufSerialize(b, "point", 1000, true)
}

func BenchmarkSerialize_FlatGeobufIdx_Polygons_1000(b *testing.B) {
	benchmarkFlatGeobufSerialize(b, "polygon", 1000, true)
}

func BenchmarkSerialize_GeoJSON_ComplexPolygons_1000(b *testing.B) {
	benchmarkGeoJSONSerialize(b, "complexpolygon", 1000)
}

func BenchmarkSerialize_FlatGeobufIdx_ComplexPolygons_1000(b *testing.B) {
	benchmarkFlatGeobufSerialize(b, "complexpolygon", 1000, true)
}

func BenchmarkSerialize_FlatGeobufIdx_LineStrings_1000(b *testing.B) {
	benchmarkFlatGeobufSerialize(b, "linestring", 1000, true)
}

func benchmarkGeoJSONSerialize(b *testing.B, geomType string, n int) {
	geoms := generateGeometries(sfs.NewFactory(nil), rand.New(rand.NewSource(42)), n, geomType)
	fc := geojson.NewFeatureCollection()
	for _, g := range geoms {
		fc.Append(geojson.NewFeature(sfs.ToOrb(g)))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := json.Marshal(fc)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkFlatGeobufSerialize(b *testing.B, geomType string, n int, includeIndex bool) {
	geoms := generateGeometries(sfs.NewFactory(nil), rand.New(rand.NewSource(42)), n, geomType)
	opts := &Options{IncludeIndex: includeIndex}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		err := Write(&buf, geoms, opts)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// =============================================================================
// Deserialization Benchmarks
// =============================================================================

func BenchmarkDeserialize_FlatGeobuf_Points_1000(b *testing.B) {
	benchmarkFlatGeobufDeserialize(b, "point", 1000)
}

func BenchmarkDeserialize_FlatGeobuf_Polygons_1000(b *testing.B) {
	benchmarkFlatGeobufDeserialize(b, "polygon", 1000)
}

func BenchmarkDeserialize_FlatGeobuf_ComplexPolygons_1000(b *testing.B) {
	benchmarkFlatGeobufDeserialize(b, "complexpolygon", 1000)
}

func benchmarkFlatGeobufDeserialize(b *testing.B, geomType string, n int) {
	f := sfs.NewFactory(nil)
	data, err := Marshal(generateGeometries(f, rand.New(rand.NewSource(42)), n, geomType), nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		reader, err := NewReaderFromData(data, f)
		if err != nil {
			b.Fatal(err)
		}

		_, err = reader.ReadGeometries()
		if err != nil {
			_ = reader.Close()
			b.Fatal(err)
		}

		if err := reader.Close(); err != nil {
			b.Fatal(err)
		}
	}
}

// =============================================================================
// Spatial Query Benchmarks
// =============================================================================

func BenchmarkSpatialQuery_FlatGeobuf_Points_10000(b *testing.B) {
	f := sfs.NewFactory(nil)
	data, err := Marshal(generateGeometries(f, rand.New(rand.NewSource(42)), 10000, "point"), nil)
	if err != nil {
		b.Fatal(err)
	}

	reader, err := NewReaderFromData(data, f)
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = reader.Close() }()

	bounds := orb.Bound{Min: orb.Point{45, 45}, Max: orb.Point{55, 55}}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := reader.Search(bounds); err != nil {
			b.Fatal(err)
		}
	}
}
