// Package zonelookup maps dive coasts to NWS marine forecast zones using the
// NWS marine zone shapefile loaded into SQLite
package zonelookup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/ngmaloney/reefcast/internal/catalog"
	"github.com/ngmaloney/reefcast/internal/observability"
)

const (
	// DefaultMaxDistanceMiles bounds how far a zone centre may be from a coast
	DefaultMaxDistanceMiles = 50.0
	// hawaiiZonePrefix selects Hawaiian coastal waters zones
	hawaiiZonePrefix = "PHZ"
)

// ErrNoZone is returned when no zone lies within range
var ErrNoZone = errors.New("no marine zone in range")

// ZoneInfo represents a marine zone with its distance from a point
type ZoneInfo struct {
	Code     string
	Name     string
	Distance float64 // miles
}

// Store queries and provisions the marine_zones table
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New wraps an open database. logger may be nil.
func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = observability.Discard()
	}
	return &Store{db: db, logger: logger}
}

// HaversineDistance calculates distance in miles between two lat/lon points
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusMiles = 3959.0

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

// Count returns how many zones are loaded, 0 when the table does not exist
func (s *Store) Count(ctx context.Context) (int, error) {
	var tables int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='marine_zones'",
	).Scan(&tables)
	if err != nil {
		return 0, fmt.Errorf("checking for marine_zones table: %w", err)
	}
	if tables == 0 {
		return 0, nil
	}

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM marine_zones").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting zones: %w", err)
	}
	return n, nil
}

// NearbyZones finds zones whose centre lies within maxDistanceMiles, closest first
func (s *Store) NearbyZones(ctx context.Context, lat, lon, maxDistanceMiles float64) ([]ZoneInfo, error) {
	// Bounding box prefilter with a 50% margin; longitude degrees shrink with latitude
	latDelta := maxDistanceMiles / 69.0 * 1.5
	lonDelta := maxDistanceMiles / 55.0 * 1.5

	rows, err := s.db.QueryContext(ctx, `
		SELECT zone_code, zone_name, center_lat, center_lon
		FROM marine_zones
		WHERE center_lat BETWEEN ? AND ?
		  AND center_lon BETWEEN ? AND ?
	`, lat-latDelta, lat+latDelta, lon-lonDelta, lon+lonDelta)
	if err != nil {
		return nil, fmt.Errorf("querying zones: %w", err)
	}
	defer rows.Close()

	var zones []ZoneInfo
	for rows.Next() {
		var code, name string
		var centerLat, centerLon float64
		if err := rows.Scan(&code, &name, &centerLat, &centerLon); err != nil {
			continue
		}

		distance := HaversineDistance(lat, lon, centerLat, centerLon)
		if distance <= maxDistanceMiles {
			zones = append(zones, ZoneInfo{Code: code, Name: name, Distance: distance})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading zones: %w", err)
	}

	sort.Slice(zones, func(i, j int) bool {
		return zones[i].Distance < zones[j].Distance
	})
	return zones, nil
}

// NearestZone returns the closest Hawaiian coastal zone within maxDistanceMiles
func (s *Store) NearestZone(ctx context.Context, lat, lon, maxDistanceMiles float64) (ZoneInfo, error) {
	zones, err := s.NearbyZones(ctx, lat, lon, maxDistanceMiles)
	if err != nil {
		return ZoneInfo{}, err
	}
	for _, z := range zones {
		if strings.HasPrefix(z.Code, hawaiiZonePrefix) {
			return z, nil
		}
	}
	return ZoneInfo{}, ErrNoZone
}

// ZoneByCode retrieves a single zone. Distance is 0.
func (s *Store) ZoneByCode(ctx context.Context, zoneCode string) (*ZoneInfo, error) {
	var code, name string
	err := s.db.QueryRowContext(ctx,
		"SELECT zone_code, zone_name FROM marine_zones WHERE zone_code = ?",
		zoneCode,
	).Scan(&code, &name)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("zone code %s not found", zoneCode)
	}
	if err != nil {
		return nil, fmt.Errorf("querying zone by code: %w", err)
	}
	return &ZoneInfo{Code: code, Name: name}, nil
}

// AssignCoastZones gives every coast that has no configured zone the zone
// nearest its site centroid. Coasts with no zone in range are left unset.
// It returns how many coasts were assigned.
func (s *Store) AssignCoastZones(ctx context.Context, cat *catalog.Catalog, maxDistanceMiles float64) (int, error) {
	assigned := 0
	for _, coast := range cat.Coasts() {
		if _, ok := cat.MarineZone(coast); ok {
			continue
		}
		centre, ok := cat.Centroid(coast)
		if !ok {
			continue
		}

		zone, err := s.NearestZone(ctx, centre.Lat, centre.Lon, maxDistanceMiles)
		if errors.Is(err, ErrNoZone) {
			s.logger.Warn("no marine zone near coast", "coast", coast)
			continue
		}
		if err != nil {
			return assigned, fmt.Errorf("failed to look up zone for %s: %w", coast, err)
		}

		cat.SetMarineZone(coast, zone.Code)
		s.logger.Info("assigned marine zone", "coast", coast, "zone", zone.Code, "distance_mi", math.Round(zone.Distance*10)/10)
		assigned++
	}
	return assigned, nil
}

// PointZoneFinder resolves the forecast zone containing a point
type PointZoneFinder interface {
	LookupMarineZone(ctx context.Context, lat, lon float64) (string, error)
}

// AssignCoastZonesFrom asks finder for the zone at each unzoned coast's site
// centroid. Used when no shapefile is provisioned. Lookup failures leave the
// coast unset. It returns how many coasts were assigned.
func AssignCoastZonesFrom(ctx context.Context, cat *catalog.Catalog, finder PointZoneFinder, logger *slog.Logger) int {
	if logger == nil {
		logger = observability.Discard()
	}

	assigned := 0
	for _, coast := range cat.Coasts() {
		if _, ok := cat.MarineZone(coast); ok {
			continue
		}
		centre, ok := cat.Centroid(coast)
		if !ok {
			continue
		}

		zone, err := finder.LookupMarineZone(ctx, centre.Lat, centre.Lon)
		if err != nil {
			logger.Warn("marine zone lookup failed", "coast", coast, "error", err)
			continue
		}
		if !strings.HasPrefix(zone, hawaiiZonePrefix) {
			logger.Warn("ignoring non-Hawaiian marine zone", "coast", coast, "zone", zone)
			continue
		}

		cat.SetMarineZone(coast, zone)
		logger.Info("assigned marine zone", "coast", coast, "zone", zone)
		assigned++
	}
	return assigned
}
