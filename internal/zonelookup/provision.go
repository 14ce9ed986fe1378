package zonelookup

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonas-p/go-shp"
)

// MarineZonesURL is the NWS marine zones shapefile archive (updated quarterly)
const MarineZonesURL = "https://www.weather.gov/source/gis/Shapefiles/WSOM/mz18mr25.zip"

// DBF attribute columns in the NWS marine zone shapefile
const (
	fieldZoneCode = 0 // ID
	fieldZoneName = 3 // NAME
	fieldLon      = 4 // LON
	fieldLat      = 5 // LAT
)

const downloadTimeout = 2 * time.Minute

// Provision loads the marine_zones table from source, which may be a .shp
// file, a .zip archive holding one, or an http(s) URL of such an archive.
// An already populated table is left alone. It returns the zones loaded.
func (s *Store) Provision(ctx context.Context, source string) (int, error) {
	if n, err := s.Count(ctx); err != nil {
		return 0, err
	} else if n > 0 {
		return 0, nil
	}

	s.logger.Info("marine zones table empty, provisioning", "source", source)

	workDir, err := os.MkdirTemp("", "reefcast-zones-")
	if err != nil {
		return 0, fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	shapefilePath, err := s.localShapefile(ctx, source, workDir)
	if err != nil {
		return 0, err
	}

	n, err := s.load(ctx, shapefilePath)
	if err != nil {
		return 0, fmt.Errorf("building zone table: %w", err)
	}
	s.logger.Info("provisioned marine zones", "zones", n)
	return n, nil
}

// localShapefile resolves source to a .shp path on disk
func (s *Store) localShapefile(ctx context.Context, source, workDir string) (string, error) {
	archive := source
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		archive = filepath.Join(workDir, "zones.zip")
		s.logger.Info("downloading marine zones", "url", source)
		if err := downloadFile(ctx, archive, source); err != nil {
			return "", fmt.Errorf("downloading shapefile: %w", err)
		}
	}

	if !strings.EqualFold(filepath.Ext(archive), ".zip") {
		return archive, nil
	}

	if err := unzipFile(archive, workDir); err != nil {
		return "", fmt.Errorf("extracting shapefile: %w", err)
	}
	matches, err := filepath.Glob(filepath.Join(workDir, "*.shp"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no .shp file in %s", source)
	}
	return matches[0], nil
}

func downloadFile(ctx context.Context, path, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := (&http.Client{Timeout: downloadTimeout}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// unzipFile extracts a zip file to a destination directory
func unzipFile(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	root := filepath.Clean(dest) + string(os.PathSeparator)
	for _, f := range r.File {
		fpath := filepath.Join(dest, f.Name)
		if !strings.HasPrefix(fpath, root) {
			return fmt.Errorf("illegal file path: %s", fpath)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
			return err
		}
		if err := extractFile(f, fpath); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, path string) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(out, rc)
	return err
}

func (s *Store) ensureTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS marine_zones (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			zone_code TEXT NOT NULL,
			zone_name TEXT,
			geometry TEXT NOT NULL,
			bbox_min_lat REAL NOT NULL,
			bbox_max_lat REAL NOT NULL,
			bbox_min_lon REAL NOT NULL,
			bbox_max_lon REAL NOT NULL,
			center_lat REAL NOT NULL,
			center_lon REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_zones_code ON marine_zones(zone_code);
		CREATE INDEX IF NOT EXISTS idx_zones_center ON marine_zones(center_lat, center_lon);
	`)
	if err != nil {
		return fmt.Errorf("creating marine_zones table: %w", err)
	}
	return nil
}

// load inserts every polygon in the shapefile, keeping only the largest ring
// of multi-part zones
func (s *Store) load(ctx context.Context, shapefilePath string) (int, error) {
	shape, err := shp.Open(shapefilePath)
	if err != nil {
		return 0, fmt.Errorf("opening shapefile: %w", err)
	}
	defer shape.Close()

	if err := s.ensureTable(ctx); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	count := 0
	for shape.Next() {
		n, p := shape.Shape()

		polygon, ok := p.(*shp.Polygon)
		if !ok || len(polygon.Parts) == 0 {
			continue
		}

		zoneCode := strings.TrimSpace(shape.ReadAttribute(n, fieldZoneCode))
		zoneName := strings.TrimSpace(shape.ReadAttribute(n, fieldZoneName))
		centerLon, _ := strconv.ParseFloat(strings.TrimSpace(shape.ReadAttribute(n, fieldLon)), 64)
		centerLat, _ := strconv.ParseFloat(strings.TrimSpace(shape.ReadAttribute(n, fieldLat)), 64)

		geometryJSON, err := json.Marshal(largestRing(polygon))
		if err != nil {
			s.logger.Warn("failed to encode zone geometry", "zone", zoneCode, "error", err)
			continue
		}

		bbox := polygon.BBox()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO marine_zones (
				zone_code, zone_name, geometry,
				bbox_min_lat, bbox_max_lat, bbox_min_lon, bbox_max_lon,
				center_lat, center_lon
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, zoneCode, zoneName, string(geometryJSON),
			bbox.MinY, bbox.MaxY, bbox.MinX, bbox.MaxX,
			centerLat, centerLon)
		if err != nil {
			s.logger.Warn("failed to insert zone", "zone", zoneCode, "error", err)
			continue
		}

		count++
		if count%100 == 0 {
			s.logger.Debug("processed zones", "count", count)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing zones: %w", err)
	}
	return count, nil
}

func largestRing(polygon *shp.Polygon) [][]float64 {
	bounds := func(part int) (int, int) {
		start := int(polygon.Parts[part])
		end := len(polygon.Points)
		if part+1 < len(polygon.Parts) {
			end = int(polygon.Parts[part+1])
		}
		return start, end
	}

	largest, largestSize := 0, 0
	for part := range polygon.Parts {
		start, end := bounds(part)
		if end-start > largestSize {
			largest, largestSize = part, end-start
		}
	}

	start, end := bounds(largest)
	coords := make([][]float64, 0, end-start)
	for _, pt := range polygon.Points[start:end] {
		coords = append(coords, []float64{pt.X, pt.Y})
	}
	return coords
}
