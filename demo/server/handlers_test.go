package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	sfs "github.com/tingold/orb-sfs"
	"github.com/tingold/orb-sfs/flatgeobuf"
	"go.mongodb.org/mongo-driver/bson"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, err := newServer(sfs.NewFactory(&sfs.Options{SRID: 4326}), 1<<20)
	if err != nil {
		t.Fatalf("newServer failed: %v", err)
	}
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path string, body []byte) (int, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/octet-stream", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func TestConvert(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name     string
		path     string
		body     string
		status   int
		expected string
	}{
		{"wkt to wkt", "/convert?from=wkt&to=wkt", "point(1 2)", http.StatusOK, "POINT (1 2)"},
		{"default formats", "/convert", "LINESTRING EMPTY", http.StatusOK, "LINESTRING EMPTY"},
		{"wkt to wkb", "/convert?to=wkb", "POINT (1 2)", http.StatusOK, "0101000000000000000000F03F0000000000000040"},
		{"wkt to ewkb", "/convert?to=ewkb", "POINT (1 2)", http.StatusOK, "0101000020E6100000000000000000F03F0000000000000040"},
		{"wkb to wkt", "/convert?from=wkb", "0101000000000000000000F03F0000000000000040\n", http.StatusOK, "POINT (1 2)"},
		{"geojson to wkt", "/convert?from=geojson", `{"type":"LineString","coordinates":[[0,0],[1,1]]}`, http.StatusOK, "LINESTRING (0 0, 1 1)"},
		{"parse error", "/convert", "LINESTRING(21 22, 11)", http.StatusBadRequest, ""},
		{"invalid geometry", "/convert", "LINESTRING(1 1)", http.StatusUnprocessableEntity, ""},
		{"unknown input", "/convert?from=kml", "POINT (1 2)", http.StatusBadRequest, ""},
		{"unknown output", "/convert?to=kml", "POINT (1 2)", http.StatusBadRequest, ""},
		{"empty point has no geojson", "/convert?to=geojson", "POINT EMPTY", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, ts, tt.path, []byte(tt.body))
			if status != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, status, body)
			}
			if tt.expected != "" && string(body) != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, body)
			}
		})
	}
}

func TestConvertGeoJSON(t *testing.T) {
	ts := newTestServer(t)

	status, body := post(t, ts, "/convert?to=geojson", []byte("POLYGON ((0 0, 4 0, 4 4, 0 4, 0 0))"))
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", status, body)
	}

	g, err := geojson.UnmarshalGeometry(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	expected := orb.Polygon{{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}}
	if !orb.Equal(g.Geometry(), expected) {
		t.Errorf("expected %v, got %v", expected, g.Geometry())
	}
}

func TestConvertBSON(t *testing.T) {
	ts := newTestServer(t)

	status, body := post(t, ts, "/convert?to=bson", []byte("MULTIPOINT ((1 2), (3 4))"))
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", status, body)
	}

	var g geojson.Geometry
	if err := bson.Unmarshal(body, &g); err != nil {
		t.Fatalf("bson unmarshal: %v", err)
	}
	expected := orb.MultiPoint{{1, 2}, {3, 4}}
	if !orb.Equal(g.Geometry(), expected) {
		t.Errorf("expected %v, got %v", expected, g.Geometry())
	}
}

func TestConvertFlatGeobuf(t *testing.T) {
	ts := newTestServer(t)
	input := "GEOMETRYCOLLECTION (POINT (1 2), LINESTRING (0 0, 1 1))"

	status, data := post(t, ts, "/convert?to=fgb", []byte(input))
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", status, data)
	}

	reader, err := flatgeobuf.NewReaderFromData(data, nil)
	if err != nil {
		t.Fatalf("NewReaderFromData failed: %v", err)
	}
	defer func() { _ = reader.Close() }()
	if got := reader.Header().FeaturesCount; got != 2 {
		t.Errorf("expected 2 features, got %d", got)
	}

	status, text := post(t, ts, "/convert?from=fgb&to=wkt", data)
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", status, text)
	}

	f := sfs.NewFactory(nil)
	want, _ := f.ParseWKT(input)
	got, err := f.ParseWKT(string(text))
	if err != nil || got == nil {
		t.Fatalf("parse %q: %v", text, err)
	}
	if !got.Equals(want) {
		t.Errorf("expected %s, got %s", input, text)
	}
}

func TestEquals(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		a, b   string
		status int
		equals bool
		exact  bool
	}{
		{"same", "POINT (1 2)", "POINT (1 2)", http.StatusOK, true, true},
		{"reversed", "LINESTRING (0 0, 1 1)", "LINESTRING (1 1, 0 0)", http.StatusOK, true, false},
		{"different", "POINT (1 2)", "POINT (2 1)", http.StatusOK, false, false},
		{"parse error", "POINT (1", "POINT (1 2)", http.StatusBadRequest, false, false},
		{"invalid", "LINESTRING (1 1)", "POINT (1 2)", http.StatusUnprocessableEntity, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := json.Marshal(equalsRequest{A: tt.a, B: tt.b})
			status, body := post(t, ts, "/equals", req)
			if status != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, status, body)
			}
			if status != http.StatusOK {
				return
			}
			var result map[string]bool
			if err := json.Unmarshal(body, &result); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if result["equals"] != tt.equals || result["exactEquals"] != tt.exact {
				t.Errorf("expected equals=%v exactEquals=%v, got %v", tt.equals, tt.exact, result)
			}
		})
	}
}

func TestCities(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/cities.json")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var fc geojson.FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(fc.Features) != len(cities) {
		t.Errorf("expected %d features, got %d", len(cities), len(fc.Features))
	}

	resp, err = http.Get(ts.URL + "/cities.fgb")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, _ := io.ReadAll(resp.Body)

	reader, err := flatgeobuf.NewReaderFromData(data, nil)
	if err != nil {
		t.Fatalf("NewReaderFromData failed: %v", err)
	}
	defer func() { _ = reader.Close() }()

	header := reader.Header()
	if header.Name != "world_cities" || header.SRID() != 4326 {
		t.Errorf("unexpected header %+v", header)
	}

	// Europe
	geoms, err := reader.Search(orb.Bound{Min: orb.Point{-10, 35}, Max: orb.Point{40, 60}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(geoms) != 5 {
		t.Errorf("expected 5 European cities, got %d", len(geoms))
	}
}

func TestEngine(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/engine")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info["supported"] != true || info["engine"] != "orb" || info["backend"] != "native" {
		t.Errorf("unexpected engine info %v", info)
	}
	if !strings.EqualFold(info["layout"].(string), "XY") {
		t.Errorf("expected XY layout, got %v", info["layout"])
	}
}
