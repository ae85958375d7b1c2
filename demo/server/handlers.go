package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/paulmach/orb/geojson"
	sfs "github.com/tingold/orb-sfs"
	"github.com/tingold/orb-sfs/flatgeobuf"
	"go.mongodb.org/mongo-driver/bson"
)

type City struct {
	Name       string
	Country    string
	Longitude  float64
	Latitude   float64
	Population int
	Capital    bool
}

var cities = []City{
	{"Tokyo", "Japan", 139.6917, 35.6895, 13960000, true},
	{"New York", "United States", -73.9857, 40.7484, 8336817, false},
	{"London", "United Kingdom", -0.1276, 51.5074, 8982000, true},
	{"Paris", "France", 2.3522, 48.8566, 2161000, true},
	{"Beijing", "China", 116.4074, 39.9042, 21540000, true},
	{"Moscow", "Russia", 37.6173, 55.7558, 12615000, true},
	{"São Paulo", "Brazil", -46.6333, -23.5505, 12300000, false},
	{"Mumbai", "India", 72.8777, 19.0760, 12400000, false},
	{"Los Angeles", "United States", -118.2437, 34.0522, 3971883, false},
	{"Shanghai", "China", 121.4737, 31.2304, 24870000, false},
	{"Istanbul", "Turkey", 28.9784, 41.0082, 15520000, false},
	{"Buenos Aires", "Argentina", -58.3816, -34.6037, 3075646, true},
	{"Cairo", "Egypt", 31.2357, 30.0444, 10230000, true},
	{"Sydney", "Australia", 151.2093, -33.8688, 5312000, false},
	{"Berlin", "Germany", 13.4050, 52.5200, 3669491, true},
}

var errNoGeoJSON = errors.New("geometry has no GeoJSON form")

type server struct {
	factory *sfs.Factory
	maxBody int64

	// city layer, prebuilt
	cityPoints []sfs.Point
	citiesFGB  []byte
}

func newServer(f *sfs.Factory, maxBody int64) (*server, error) {
	s := &server{factory: f, maxBody: maxBody}

	wgs84 := sfs.NewFactory(&sfs.Options{SRID: 4326})
	geoms := make([]sfs.Geometry, 0, len(cities))
	for _, city := range cities {
		p := wgs84.Point(city.Longitude, city.Latitude)
		s.cityPoints = append(s.cityPoints, p)
		geoms = append(geoms, p)
	}

	data, err := flatgeobuf.Marshal(geoms, &flatgeobuf.Options{
		Name:         "world_cities",
		Description:  "Major world cities",
		IncludeIndex: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build city layer: %w", err)
	}
	s.citiesFGB = data

	return s, nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /cities.fgb", s.handleCitiesFGB)
	mux.HandleFunc("GET /cities.json", s.handleCitiesGeoJSON)
	mux.HandleFunc("GET /engine", s.handleEngine)
	mux.HandleFunc("POST /convert", s.handleConvert)
	mux.HandleFunc("POST /equals", s.handleEquals)
	return logRequests(mux)
}

func (s *server) handleCitiesFGB(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(s.citiesFGB)
}

func (s *server) handleCitiesGeoJSON(w http.ResponseWriter, _ *http.Request) {
	fc := geojson.NewFeatureCollection()
	for i, city := range cities {
		f := geojson.NewFeature(sfs.ToOrb(s.cityPoints[i]))
		f.Properties = geojson.Properties{
			"name":       city.Name,
			"country":    city.Country,
			"population": city.Population,
			"capital":    city.Capital,
		}
		fc.Append(f)
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, fc)
}

func (s *server) handleEngine(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"supported": sfs.Supported(),
		"backend":   s.factory.Backend().String(),
		"engine":    s.factory.EngineName(),
		"srid":      s.factory.SRID(),
		"layout":    s.factory.Layout().String(),
	})
}

// handleConvert decodes the body in the "from" format and re-encodes it in
// the "to" format.
func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	from := strings.ToLower(r.URL.Query().Get("from"))
	to := strings.ToLower(r.URL.Query().Get("to"))
	if from == "" {
		from = "wkt"
	}
	if to == "" {
		to = "wkt"
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	g, err := s.decode(from, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if g == nil {
		writeError(w, http.StatusUnprocessableEntity, errors.New("invalid geometry"))
		return
	}

	out, contentType, err := s.encode(to, g)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	slog.Debug("converted geometry", "from", from, "to", to, "type", g.GeometryType().String())
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(out)
}

type equalsRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// handleEquals compares two WKT geometries with both equality relations.
func (s *server) handleEquals(w http.ResponseWriter, r *http.Request) {
	var req equalsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var geoms [2]sfs.Geometry
	for i, text := range []string{req.A, req.B} {
		g, err := s.factory.ParseWKT(text)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if g == nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("invalid geometry %q", text))
			return
		}
		geoms[i] = g
	}

	writeJSON(w, http.StatusOK, map[string]bool{
		"equals":      geoms[0].Equals(geoms[1]),
		"exactEquals": geoms[0].ExactEquals(geoms[1]),
	})
}

// decode returns (nil, nil) for well-formed input that fails validation.
func (s *server) decode(format string, body []byte) (sfs.Geometry, error) {
	switch format {
	case "wkt":
		return s.factory.ParseWKT(string(body))
	case "wkb", "ewkb":
		return s.factory.ParseWKBHex(strings.TrimSpace(string(body)))
	case "geojson":
		g, err := geojson.UnmarshalGeometry(body)
		if err != nil {
			return nil, err
		}
		return s.factory.GeometryFrom(g.Geometry()), nil
	case "fgb":
		reader, err := flatgeobuf.NewReaderFromData(body, s.factory)
		if err != nil {
			return nil, err
		}
		defer func() { _ = reader.Close() }()
		geoms, err := reader.ReadGeometries()
		if err != nil {
			return nil, err
		}
		if len(geoms) == 1 {
			return geoms[0], nil
		}
		return s.factory.Collection(geoms), nil
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

func (s *server) encode(format string, g sfs.Geometry) ([]byte, string, error) {
	switch format {
	case "wkt":
		return []byte(g.AsText()), "text/plain; charset=utf-8", nil
	case "wkb":
		return []byte(sfs.MarshalWKBHex(g, nil)), "text/plain; charset=utf-8", nil
	case "ewkb":
		return []byte(sfs.MarshalWKBHex(g, &sfs.WKBOptions{Extended: true})), "text/plain; charset=utf-8", nil
	case "geojson":
		o := sfs.ToOrb(g)
		if o == nil {
			return nil, "", errNoGeoJSON
		}
		data, err := json.Marshal(geojson.NewGeometry(o))
		return data, "application/geo+json", err
	case "bson":
		o := sfs.ToOrb(g)
		if o == nil {
			return nil, "", errNoGeoJSON
		}
		data, err := bson.Marshal(geojson.NewGeometry(o))
		return data, "application/bson", err
	case "fgb":
		parts := []sfs.Geometry{g}
		if g.GeometryType() == sfs.TypeGeometryCollection {
			parts = g.(sfs.GeometryCollection).Geometries()
		}
		data, err := flatgeobuf.Marshal(parts, &flatgeobuf.Options{Name: "converted", IncludeIndex: true})
		return data, "application/octet-stream", err
	}
	return nil, "", fmt.Errorf("unknown output format %q", format)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	slog.Debug("request failed", "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
