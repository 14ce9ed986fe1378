package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ngmaloney/reefcast/internal/models"
)

const defaultUserAgent = "reefcast/1.0 (github.com/ngmaloney/reefcast)"

// gridTTL is how long a resolved grid point is reused. NWS grids move rarely.
const gridTTL = 24 * time.Hour

// NOAAWeatherClient implements WindClient and ZoneForecastClient using the NOAA Weather API
type NOAAWeatherClient struct {
	baseURL     string
	textBaseURL string
	httpClient  *http.Client
	userAgent   string

	grids *gocache.Cache // "lat,lon" -> *gridPoint
}

// NewWeatherClient creates a new NOAA weather client. A nil httpClient uses a 30s timeout.
func NewWeatherClient(httpClient *http.Client, userAgent string) *NOAAWeatherClient {
	return &NOAAWeatherClient{
		baseURL:     "https://api.weather.gov",
		textBaseURL: "https://tgftp.nws.noaa.gov/data/forecasts/marine",
		httpClient:  orDefaultClient(httpClient),
		userAgent:   userAgentOrDefault(userAgent),
		grids:       gocache.New(gridTTL, time.Hour),
	}
}

// GetHourlyWind retrieves the hourly wind forecast for a location
func (c *NOAAWeatherClient) GetHourlyWind(ctx context.Context, lat, lon float64) ([]models.WindReading, error) {
	grid, err := c.getGridPoint(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("failed to get grid point: %w", err)
	}

	forecastURL := fmt.Sprintf("%s/gridpoints/%s/%d,%d/forecast/hourly",
		c.baseURL, grid.GridID, grid.GridX, grid.GridY)

	req, err := http.NewRequestWithContext(ctx, "GET", forecastURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var forecastResp forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&forecastResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	readings := make([]models.WindReading, 0, len(forecastResp.Properties.Periods))
	for _, period := range forecastResp.Properties.Periods {
		start, _ := time.Parse(time.RFC3339, period.StartTime)
		readings = append(readings, models.WindReading{
			Time:          start,
			SpeedMph:      parseWindSpeed(period.WindSpeed),
			Direction:     period.WindDirection,
			ShortForecast: period.ShortForecast,
		})
	}

	return readings, nil
}

// parseWindSpeed reads the leading number of "10 mph" or "5 to 10 mph", 0 when absent
func parseWindSpeed(s string) float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return v
}

// getGridPoint gets the NOAA grid point for a lat/lon
func (c *NOAAWeatherClient) getGridPoint(ctx context.Context, lat, lon float64) (*gridPoint, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)

	if cached, ok := c.grids.Get(key); ok {
		return cached.(*gridPoint), nil
	}

	url := fmt.Sprintf("%s/points/%s", c.baseURL, key)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get grid point (status %d): %s", resp.StatusCode, string(body))
	}

	var pointResp pointResponse
	if err := json.NewDecoder(resp.Body).Decode(&pointResp); err != nil {
		return nil, err
	}
	if pointResp.Properties.GridID == "" {
		return nil, fmt.Errorf("invalid grid point response for %s", key)
	}

	grid := &gridPoint{
		GridID: pointResp.Properties.GridID,
		GridX:  pointResp.Properties.GridX,
		GridY:  pointResp.Properties.GridY,
	}

	c.grids.SetDefault(key, grid)

	return grid, nil
}

func userAgentOrDefault(ua string) string {
	if ua == "" {
		return defaultUserAgent
	}
	return ua
}

// Internal types for NOAA API responses

type gridPoint struct {
	GridID string
	GridX  int
	GridY  int
}

type pointResponse struct {
	Properties struct {
		GridID string `json:"gridId"`
		GridX  int    `json:"gridX"`
		GridY  int    `json:"gridY"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Periods []struct {
			Name          string `json:"name"`
			StartTime     string `json:"startTime"`
			EndTime       string `json:"endTime"`
			WindSpeed     string `json:"windSpeed"`
			WindDirection string `json:"windDirection"`
			ShortForecast string `json:"shortForecast"`
		} `json:"periods"`
	} `json:"properties"`
}
