// Package pacioos reads the PacIOOS SWAN Oahu wave model from ERDDAP
package pacioos

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	metersToFeet = 3.28084

	// Model domain, longitudes in -180/180
	latMin, latMax = 21.2, 21.75
	lonMin, lonMax = -158.35, -157.6

	breakerThreshold = 3
	breakerCooldown  = 5 * time.Minute
)

var (
	// ErrOutOfDomain is returned for points the model does not cover
	ErrOutOfDomain = errors.New("location outside SWAN Oahu domain")
	// ErrCircuitOpen is returned while the breaker is refusing requests
	ErrCircuitOpen = errors.New("PacIOOS circuit open after repeated failures")
)

// Reading is one model time step at a point. Nil fields were NaN in the model output.
type Reading struct {
	Time         time.Time
	WaveHeightFt *float64
	PeriodS      *float64
	DirectionDeg *float64
}

// Client queries the swan_oahu griddap dataset
type Client struct {
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock

	mu       sync.Mutex
	failures int
	openedAt time.Time
}

// NewClient creates a new PacIOOS client. A nil httpClient uses a 10s timeout
// so a slow ERDDAP fails fast.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    "https://pae-paha.pacioos.hawaii.edu/erddap/griddap/swan_oahu",
		httpClient: httpClient,
		clock:      clockwork.NewRealClock(),
	}
}

// WithClock replaces the clock used for query windows and the breaker cooldown
func (c *Client) WithClock(clock clockwork.Clock) *Client {
	c.clock = clock
	return c
}

// InDomain reports whether the model covers a point
func InDomain(lat, lon float64) bool {
	return lat >= latMin && lat <= latMax && lon >= lonMin && lon <= lonMax
}

// GetCurrentConditions returns the first model step at or after the current hour.
// A reading without height is returned when the model has only NaN for the point.
func (c *Client) GetCurrentConditions(ctx context.Context, lat, lon float64) (*Reading, error) {
	readings, err := c.GetWaveData(ctx, lat, lon, 6)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return &Reading{}, nil
	}
	return &readings[0], nil
}

// GetWaveData returns hourly model output for the next hours
func (c *Client) GetWaveData(ctx context.Context, lat, lon float64, hours int) ([]Reading, error) {
	if !InDomain(lat, lon) {
		return nil, ErrOutOfDomain
	}
	if !c.allow() {
		return nil, ErrCircuitOpen
	}

	// Start on the hour so repeated queries share a URL (and a cache entry)
	start := c.clock.Now().UTC().Truncate(time.Hour)
	end := start.Add(time.Duration(hours) * time.Hour)
	requestURL := c.baseURL + ".csv?" + griddapQuery(start, end, lat, lon)

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("failed to fetch data from PacIOOS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.recordFailure()
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	c.recordSuccess()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return parseCSV(string(body)), nil
}

// griddapQuery selects shgt, mper and mdir at a single point.
// Format: variable[(start):1:(end)][(depth)][(lat)][(lon)]
func griddapQuery(start, end time.Time, lat, lon float64) string {
	lon360 := lon
	if lon360 < 0 {
		lon360 += 360
	}
	sel := fmt.Sprintf("[(%s):1:(%s)][(0.0):1:(0.0)][(%.4f):1:(%.4f)][(%.4f):1:(%.4f)]",
		start.Format("2006-01-02T15:04:05Z"), end.Format("2006-01-02T15:04:05Z"),
		lat, lat, lon360, lon360)
	return "shgt" + sel + ",mper" + sel + ",mdir" + sel
}

// parseCSV reads time,depth,latitude,longitude,shgt,mper,mdir rows after
// the column and units header rows. Rows with a NaN height are dropped.
func parseCSV(text string) []Reading {
	var readings []Reading
	scanner := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for scanner.Scan() {
		line++
		if line <= 2 {
			continue
		}
		parts := strings.Split(strings.TrimSpace(scanner.Text()), ",")
		if len(parts) < 6 {
			continue
		}

		height := parseValue(parts[4])
		if height == nil {
			continue
		}
		ft := *height * metersToFeet

		r := Reading{
			WaveHeightFt: &ft,
			PeriodS:      parseValue(parts[5]),
		}
		if len(parts) > 6 {
			r.DirectionDeg = parseValue(parts[6])
		}
		r.Time, _ = time.Parse(time.RFC3339, parts[0])
		readings = append(readings, r)
	}
	return readings
}

func parseValue(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// allow reports whether a request may go out. After the cooldown one trial
// request is let through; its outcome closes or re-opens the breaker.
func (c *Client) allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures < breakerThreshold {
		return true
	}
	if c.clock.Since(c.openedAt) >= breakerCooldown {
		c.openedAt = c.clock.Now()
		return true
	}
	return false
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if c.failures >= breakerThreshold {
		c.openedAt = c.clock.Now()
	}
}

func (c *Client) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = 0
}

// CircuitOpen reports whether requests are currently being refused
func (c *Client) CircuitOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures >= breakerThreshold && c.clock.Since(c.openedAt) < breakerCooldown
}
