package zonelookup

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"

	"github.com/ngmaloney/reefcast/internal/catalog"
	"github.com/ngmaloney/reefcast/internal/database"
	"github.com/ngmaloney/reefcast/internal/models"
)

type testZone struct {
	code, name string
	lat, lon   float64
}

var testZones = []testZone{
	{"PHZ115", "Oahu North Shore Waters", 21.70, -158.05},
	{"PHZ116", "Oahu South Shore Waters", 21.20, -157.85},
	{"ANZ250", "Coastal waters east of Cape Ann", 42.60, -70.50},
}

// writeShapefile writes a small marine zone shapefile with a square around
// each zone centre and returns the .shp path
func writeShapefile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "mz_test.shp")

	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	fields := []shp.Field{
		shp.StringField("ID", 6),
		shp.StringField("WFO", 3),
		shp.StringField("GL_WFO", 3),
		shp.StringField("NAME", 60),
		shp.FloatField("LON", 12, 4),
		shp.FloatField("LAT", 12, 4),
	}
	if err := w.SetFields(fields); err != nil {
		t.Fatalf("SetFields() error = %v", err)
	}

	for _, z := range testZones {
		ring := []shp.Point{
			{X: z.lon - 0.1, Y: z.lat - 0.1},
			{X: z.lon - 0.1, Y: z.lat + 0.1},
			{X: z.lon + 0.1, Y: z.lat + 0.1},
			{X: z.lon + 0.1, Y: z.lat - 0.1},
			{X: z.lon - 0.1, Y: z.lat - 0.1},
		}
		poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{ring}))
		row := int(w.Write(&poly))
		w.WriteAttribute(row, 0, z.code)
		w.WriteAttribute(row, 1, "HFO")
		w.WriteAttribute(row, 2, "HFO")
		w.WriteAttribute(row, 3, z.name)
		w.WriteAttribute(row, 4, z.lon)
		w.WriteAttribute(row, 5, z.lat)
	}
	w.Close()
	return path
}

func zipShapefile(t *testing.T, shpPath string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "zones.zip")
	out, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	base := shpPath[:len(shpPath)-len(".shp")]
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		f, err := os.Open(base + ext)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		entry, err := zw.Create(filepath.Base(base + ext))
		if err != nil {
			t.Fatalf("zip Create() error = %v", err)
		}
		if _, err := io.Copy(entry, f); err != nil {
			t.Fatalf("Copy() error = %v", err)
		}
		f.Close()
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close() error = %v", err)
	}
	return zipPath
}

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db, nil)
}

func provisionedStore(t *testing.T) *Store {
	t.Helper()
	s := newStore(t)
	n, err := s.Provision(context.Background(), writeShapefile(t, t.TempDir()))
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if n != len(testZones) {
		t.Fatalf("Provision() = %d zones, want %d", n, len(testZones))
	}
	return s
}

func TestProvision_Shapefile(t *testing.T) {
	s := provisionedStore(t)
	ctx := context.Background()

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}

	// A populated table is not loaded twice
	n, err := s.Provision(ctx, "/does/not/exist.shp")
	if err != nil {
		t.Fatalf("second Provision() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second Provision() = %d, want 0", n)
	}
}

func TestProvision_Zip(t *testing.T) {
	s := newStore(t)
	zipPath := zipShapefile(t, writeShapefile(t, t.TempDir()))

	n, err := s.Provision(context.Background(), zipPath)
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Provision() = %d, want 3", n)
	}
}

func TestProvision_URL(t *testing.T) {
	zipPath := zipShapefile(t, writeShapefile(t, t.TempDir()))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, zipPath)
	}))
	defer server.Close()

	s := newStore(t)
	n, err := s.Provision(context.Background(), server.URL+"/mz.zip")
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Provision() = %d, want 3", n)
	}
}

func TestProvision_MissingFile(t *testing.T) {
	s := newStore(t)
	if _, err := s.Provision(context.Background(), filepath.Join(t.TempDir(), "missing.shp")); err == nil {
		t.Error("Provision() expected error for missing shapefile, got nil")
	}
}

func TestNearbyZones(t *testing.T) {
	s := provisionedStore(t)

	tests := []struct {
		name       string
		lat        float64
		lon        float64
		maxDist    float64
		wantZones  int
		targetZone string
	}{
		{"north shore site", 21.65, -158.06, 50.0, 2, "PHZ115"},
		{"south shore site", 21.26, -157.80, 50.0, 2, "PHZ116"},
		{"too far", 21.65, -158.06, 1.0, 0, ""},
		{"find nothing", 0.0, 0.0, 100.0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zones, err := s.NearbyZones(context.Background(), tt.lat, tt.lon, tt.maxDist)
			if err != nil {
				t.Fatalf("NearbyZones() error = %v", err)
			}
			if len(zones) != tt.wantZones {
				t.Errorf("got %d zones, want %d", len(zones), tt.wantZones)
			}
			if tt.wantZones > 0 && zones[0].Code != tt.targetZone {
				t.Errorf("got zone %s, want %s", zones[0].Code, tt.targetZone)
			}
		})
	}
}

func TestNearestZone_SkipsNonHawaiian(t *testing.T) {
	s := provisionedStore(t)
	if _, err := s.NearestZone(context.Background(), 42.6, -70.5, 50); err != ErrNoZone {
		t.Errorf("NearestZone() error = %v, want ErrNoZone", err)
	}
}

func TestZoneByCode(t *testing.T) {
	s := provisionedStore(t)
	ctx := context.Background()

	zone, err := s.ZoneByCode(ctx, "PHZ116")
	if err != nil {
		t.Fatalf("ZoneByCode() error = %v", err)
	}
	if zone.Name != "Oahu South Shore Waters" {
		t.Errorf("ZoneByCode().Name = %q, want %q", zone.Name, "Oahu South Shore Waters")
	}

	if _, err := s.ZoneByCode(ctx, "PHZ999"); err == nil {
		t.Error("ZoneByCode('PHZ999') expected error, got nil")
	}
}

func TestAssignCoastZones(t *testing.T) {
	s := provisionedStore(t)

	cat, err := catalog.New([]models.Location{
		{ID: "north", Coast: models.CoastNorthShore, Coordinates: models.Coordinates{Lat: 21.65, Lon: -158.06}},
		{ID: "south", Coast: models.CoastSouthShore, Coordinates: models.Coordinates{Lat: 21.26, Lon: -157.80}},
		{ID: "windward", Coast: models.CoastWindward, Coordinates: models.Coordinates{Lat: 21.45, Lon: -157.80}},
	})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	cat.SetMarineZone(models.CoastWindward, "PHZ114")

	n, err := s.AssignCoastZones(context.Background(), cat, DefaultMaxDistanceMiles)
	if err != nil {
		t.Fatalf("AssignCoastZones() error = %v", err)
	}
	if n != 2 {
		t.Errorf("AssignCoastZones() = %d, want 2", n)
	}

	want := map[models.Coast]string{
		models.CoastNorthShore: "PHZ115",
		models.CoastSouthShore: "PHZ116",
		models.CoastWindward:   "PHZ114",
	}
	for coast, zone := range want {
		if got, _ := cat.MarineZone(coast); got != zone {
			t.Errorf("MarineZone(%s) = %q, want %q", coast, got, zone)
		}
	}
}

// pointFinder answers zone lookups from a table keyed by latitude
type pointFinder struct {
	zones map[float64]string
	calls int
}

func (f *pointFinder) LookupMarineZone(_ context.Context, lat, _ float64) (string, error) {
	f.calls++
	if zone, ok := f.zones[lat]; ok {
		return zone, nil
	}
	return "", errors.New("no marine zone found")
}

func TestAssignCoastZonesFrom(t *testing.T) {
	cat, err := catalog.New([]models.Location{
		{ID: "north", Coast: models.CoastNorthShore, Coordinates: models.Coordinates{Lat: 21.65, Lon: -158.06}},
		{ID: "south", Coast: models.CoastSouthShore, Coordinates: models.Coordinates{Lat: 21.26, Lon: -157.80}},
		{ID: "west", Coast: models.CoastWestSide, Coordinates: models.Coordinates{Lat: 21.40, Lon: -158.20}},
		{ID: "windward", Coast: models.CoastWindward, Coordinates: models.Coordinates{Lat: 21.45, Lon: -157.80}},
	})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	cat.SetMarineZone(models.CoastWindward, "PHZ114")

	finder := &pointFinder{zones: map[float64]string{
		21.65: "PHZ115",
		21.40: "ANZ250",
	}}

	n := AssignCoastZonesFrom(context.Background(), cat, finder, nil)
	if n != 1 {
		t.Errorf("AssignCoastZonesFrom() = %d, want 1", n)
	}
	if finder.calls != 3 {
		t.Errorf("lookups = %d, want 3 (configured coast skipped)", finder.calls)
	}

	want := map[models.Coast]string{
		models.CoastNorthShore: "PHZ115",
		models.CoastSouthShore: "",
		models.CoastWestSide:   "",
		models.CoastWindward:   "PHZ114",
	}
	for coast, zone := range want {
		if got, _ := cat.MarineZone(coast); got != zone {
			t.Errorf("MarineZone(%s) = %q, want %q", coast, got, zone)
		}
	}
}

func TestHaversineDistance(t *testing.T) {
	// Honolulu to Haleiwa is roughly 27 miles
	d := HaversineDistance(21.3069, -157.8583, 21.5928, -158.1034)
	if d < 25 || d > 29 {
		t.Errorf("HaversineDistance() = %.1f, want about 27", d)
	}
	if HaversineDistance(21.3, -157.8, 21.3, -157.8) != 0 {
		t.Error("HaversineDistance() of identical points should be 0")
	}
}
