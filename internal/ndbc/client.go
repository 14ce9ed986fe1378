// Package ndbc reads realtime wave observations from NDBC buoys around Oahu
package ndbc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ngmaloney/reefcast/internal/models"
)

const metersToFeet = 3.28084

// Buoy is a realtime station near Oahu
type Buoy struct {
	Station string
	Name    string
	Area    string
	Lat     float64
	Lon     float64
}

// OahuBuoys are the stations the catalog refers to
var OahuBuoys = map[string]Buoy{
	"waimea":       {Station: "51201", Name: "Waimea Bay", Area: "North Shore", Lat: 21.673, Lon: -158.116},
	"mokapu":       {Station: "51202", Name: "Mokapu Point", Area: "Windward/East", Lat: 21.417, Lon: -157.680},
	"kalaeloa":     {Station: "51212", Name: "Kalaeloa (Barbers Point)", Area: "South/West", Lat: 21.288, Lon: -158.124},
	"pearl_harbor": {Station: "51211", Name: "Pearl Harbor", Area: "South", Lat: 21.303, Lon: -157.959},
	"kaneohe":      {Station: "51207", Name: "Kaneohe Bay", Area: "Windward", Lat: 21.477, Lon: -157.788},
}

// BuoyForCoast returns the buoy that best represents a coast
func BuoyForCoast(coast models.Coast) Buoy {
	switch coast {
	case models.CoastWindward:
		return OahuBuoys["mokapu"]
	case models.CoastSouthShore, models.CoastSoutheast, models.CoastWestSide:
		return OahuBuoys["kalaeloa"]
	default:
		return OahuBuoys["waimea"]
	}
}

// Observation is the latest wave reading from a buoy. Nil fields were
// missing from the feed.
type Observation struct {
	Time             time.Time
	WaveHeightFt     *float64
	PeriodS          *float64
	MeanDirectionDeg *float64
	SwellDirection   string // compass point from the spectral feed, "" when missing
}

// SpectralRecord is one row of a .spec file (heights in metres)
type SpectralRecord struct {
	Time              time.Time
	WaveHeightM       *float64
	SwellHeightM      *float64
	SwellPeriodS      *float64
	WindWaveHeightM   *float64
	WindWavePeriodS   *float64
	SwellDirection    string
	WindWaveDirection string
	AveragePeriodS    *float64
	MeanDirectionDeg  *float64
}

// StandardRecord is one row of a standard meteorological .txt file
type StandardRecord struct {
	Time             time.Time
	WindDirectionDeg *float64
	WindSpeedMps     *float64
	GustSpeedMps     *float64
	WaveHeightM      *float64
	DominantPeriodS  *float64
	AveragePeriodS   *float64
	MeanDirectionDeg *float64
	PressureHpa      *float64
}

// Client fetches NDBC realtime2 text files
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new NDBC client. A nil httpClient uses a 15s timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    "https://www.ndbc.noaa.gov/data/realtime2",
		httpClient: httpClient,
	}
}

// GetCurrentConditions returns the newest observation for a station. The
// spectral feed is preferred for its swell period; the standard feed is the
// fallback. An observation with no height is returned when neither feed has
// rows.
func (c *Client) GetCurrentConditions(ctx context.Context, station string) (*Observation, error) {
	spectral, specErr := c.GetSpectralData(ctx, station)
	if specErr == nil && len(spectral) > 0 {
		latest := spectral[0]
		return &Observation{
			Time:             latest.Time,
			WaveHeightFt:     toFeet(latest.WaveHeightM),
			PeriodS:          latest.SwellPeriodS,
			MeanDirectionDeg: latest.MeanDirectionDeg,
			SwellDirection:   latest.SwellDirection,
		}, nil
	}

	standard, stdErr := c.GetStandardData(ctx, station)
	if stdErr == nil && len(standard) > 0 {
		latest := standard[0]
		return &Observation{
			Time:             latest.Time,
			WaveHeightFt:     toFeet(latest.WaveHeightM),
			PeriodS:          latest.DominantPeriodS,
			MeanDirectionDeg: latest.MeanDirectionDeg,
		}, nil
	}

	if specErr != nil && stdErr != nil {
		return nil, errors.Join(specErr, stdErr)
	}
	return &Observation{}, nil
}

// GetSpectralData fetches and parses {station}.spec, newest row first
func (c *Client) GetSpectralData(ctx context.Context, station string) ([]SpectralRecord, error) {
	body, err := c.fetch(ctx, station, "spec")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spectral data for %s: %w", station, err)
	}
	return parseSpectral(body), nil
}

// GetStandardData fetches and parses {station}.txt, newest row first
func (c *Client) GetStandardData(ctx context.Context, station string) ([]StandardRecord, error) {
	body, err := c.fetch(ctx, station, "txt")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch standard data for %s: %w", station, err)
	}
	return parseStandard(body), nil
}

func (c *Client) fetch(ctx context.Context, station, ext string) (string, error) {
	url := fmt.Sprintf("%s/%s.%s", c.baseURL, station, ext)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

// parseSpectral reads rows of
// YY MM DD hh mm WVHT SwH SwP WWH WWP SwD WWD STEEPNESS APD MWD
// after the two header lines
func parseSpectral(text string) []SpectralRecord {
	var records []SpectralRecord
	for _, parts := range dataRows(text, 15) {
		ts, ok := parseTimestamp(parts)
		if !ok {
			continue
		}
		records = append(records, SpectralRecord{
			Time:              ts,
			WaveHeightM:       safeFloat(parts[5]),
			SwellHeightM:      safeFloat(parts[6]),
			SwellPeriodS:      safeFloat(parts[7]),
			WindWaveHeightM:   safeFloat(parts[8]),
			WindWavePeriodS:   safeFloat(parts[9]),
			SwellDirection:    safeString(parts[10]),
			WindWaveDirection: safeString(parts[11]),
			AveragePeriodS:    safeFloat(parts[13]),
			MeanDirectionDeg:  safeFloat(parts[14]),
		})
	}
	return records
}

// parseStandard reads rows of
// YY MM DD hh mm WDIR WSPD GST WVHT DPD APD MWD PRES ...
// after the two header lines
func parseStandard(text string) []StandardRecord {
	var records []StandardRecord
	for _, parts := range dataRows(text, 13) {
		ts, ok := parseTimestamp(parts)
		if !ok {
			continue
		}
		records = append(records, StandardRecord{
			Time:             ts,
			WindDirectionDeg: safeFloat(parts[5]),
			WindSpeedMps:     safeFloat(parts[6]),
			GustSpeedMps:     safeFloat(parts[7]),
			WaveHeightM:      safeFloat(parts[8]),
			DominantPeriodS:  safeFloat(parts[9]),
			AveragePeriodS:   safeFloat(parts[10]),
			MeanDirectionDeg: safeFloat(parts[11]),
			PressureHpa:      safeFloat(parts[12]),
		})
	}
	return records
}

func dataRows(text string, minFields int) [][]string {
	var rows [][]string
	scanner := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for scanner.Scan() {
		line++
		if line <= 2 {
			continue // "#YY MM ..." and "#yr mo ..." headers
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < minFields {
			continue
		}
		rows = append(rows, parts)
	}
	return rows
}

func parseTimestamp(parts []string) (time.Time, bool) {
	nums := make([]int, 5)
	for i := range nums {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	year := nums[0]
	if year < 100 {
		year += 2000
	}
	return time.Date(year, time.Month(nums[1]), nums[2], nums[3], nums[4], 0, 0, time.UTC), true
}

// safeFloat returns nil for NDBC's missing-value markers
func safeFloat(v string) *float64 {
	switch v {
	case "MM", "999", "99.0", "9999", "99.00":
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func safeString(v string) string {
	if v == "MM" {
		return ""
	}
	return v
}

func toFeet(m *float64) *float64 {
	if m == nil {
		return nil
	}
	ft := *m * metersToFeet
	return &ft
}
