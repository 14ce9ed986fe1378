package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ngmaloney/reefcast/internal/models"
)

// Oahu CO-OPS stations
const (
	StationHonolulu = "1612340"
	StationKaneohe  = "1612480"
)

// hawaiiTime is the zone CO-OPS uses for lst_ldt in Hawaii
var hawaiiTime = models.HawaiiTime

// StationForCoast returns the tide station used for a coast. Only the
// windward side has its own station; everything else reads Honolulu.
func StationForCoast(coast models.Coast) string {
	if coast == models.CoastWindward {
		return StationKaneohe
	}
	return StationHonolulu
}

// NOAATideClient implements TideClient using the NOAA CO-OPS API
type NOAATideClient struct {
	baseURL    string
	httpClient *http.Client
	location   *time.Location
}

// NewTideClient creates a new NOAA tide client. A nil httpClient uses a 30s timeout.
func NewTideClient(httpClient *http.Client) *NOAATideClient {
	return &NOAATideClient{
		baseURL:    "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter",
		httpClient: orDefaultClient(httpClient),
		location:   hawaiiTime,
	}
}

// GetTidePredictions retrieves tide predictions for a date range
func (c *NOAATideClient) GetTidePredictions(ctx context.Context, stationID string, startDate, endDate time.Time) (*models.TideData, error) {
	params := url.Values{}
	params.Add("begin_date", startDate.In(c.location).Format("20060102"))
	params.Add("end_date", endDate.In(c.location).Format("20060102"))
	params.Add("station", stationID)
	params.Add("product", "predictions")
	params.Add("datum", "MLLW")        // Mean Lower Low Water
	params.Add("time_zone", "lst_ldt") // Local standard/daylight time
	params.Add("interval", "hilo")     // High and low tides only
	params.Add("units", "english")     // Feet
	params.Add("format", "json")
	params.Add("application", "reefcast")

	requestURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tide data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var tideResp tideResponse
	if err := json.NewDecoder(resp.Body).Decode(&tideResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if tideResp.Error != nil {
		return nil, fmt.Errorf("CO-OPS API error: %s", tideResp.Error.Message)
	}

	tideData := &models.TideData{
		StationID:   stationID,
		StationName: tideResp.Metadata.Name,
		Events:      make([]models.TideEvent, 0, len(tideResp.Predictions)),
		UpdatedAt:   time.Now(),
	}

	for _, pred := range tideResp.Predictions {
		eventTime, err := time.ParseInLocation("2006-01-02 15:04", pred.Time, c.location)
		if err != nil {
			continue // Skip invalid times
		}

		tideType := models.TideLow
		if pred.Type == "H" {
			tideType = models.TideHigh
		}

		height, err := strconv.ParseFloat(pred.Height, 64)
		if err != nil {
			continue
		}

		tideData.Events = append(tideData.Events, models.TideEvent{
			Time:   eventTime,
			Type:   tideType,
			Height: height,
		})
	}

	return tideData, nil
}

// GetTideStatus fetches predictions around now and derives the current phase
// and the next high and low
func (c *NOAATideClient) GetTideStatus(ctx context.Context, stationID string, now time.Time) (*models.TideStatus, error) {
	data, err := c.GetTidePredictions(ctx, stationID, now, now.AddDate(0, 0, 2))
	if err != nil {
		return nil, err
	}
	status := data.StatusAt(now)
	if status == nil {
		return nil, fmt.Errorf("no upcoming tide events for station %s", stationID)
	}
	return status, nil
}

// GetLatestWaterLevel returns the most recent observed water level in feet
// above MLLW. Many stations only publish predictions, so callers should
// expect an error.
func (c *NOAATideClient) GetLatestWaterLevel(ctx context.Context, stationID string) (float64, error) {
	params := url.Values{}
	params.Add("date", "latest")
	params.Add("station", stationID)
	params.Add("product", "water_level")
	params.Add("datum", "MLLW")
	params.Add("time_zone", "lst_ldt")
	params.Add("units", "english")
	params.Add("format", "json")
	params.Add("application", "reefcast")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch water level: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var levelResp waterLevelResponse
	if err := json.NewDecoder(resp.Body).Decode(&levelResp); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if levelResp.Error != nil {
		return 0, fmt.Errorf("CO-OPS API error: %s", levelResp.Error.Message)
	}
	if len(levelResp.Data) == 0 {
		return 0, fmt.Errorf("no water level data for station %s", stationID)
	}

	level, err := strconv.ParseFloat(levelResp.Data[len(levelResp.Data)-1].Value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid water level %q: %w", levelResp.Data[len(levelResp.Data)-1].Value, err)
	}
	return level, nil
}

// Internal types for NOAA CO-OPS API responses

type tideResponse struct {
	Metadata struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Lat  string `json:"lat"`
		Lon  string `json:"lon"`
	} `json:"metadata"`
	Predictions []struct {
		Time   string `json:"t"`
		Height string `json:"v"`    // NOAA returns this as string
		Type   string `json:"type"` // "H" or "L"
	} `json:"predictions"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type waterLevelResponse struct {
	Data []struct {
		Time  string `json:"t"`
		Value string `json:"v"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
