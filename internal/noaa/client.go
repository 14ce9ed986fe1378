package noaa

import (
	"context"
	"net/http"
	"time"

	"github.com/ngmaloney/reefcast/internal/models"
)

const defaultTimeout = 30 * time.Second

// WindClient defines the interface for fetching gridpoint wind forecasts from NWS
type WindClient interface {
	// GetHourlyWind retrieves the hourly wind forecast for a location, soonest first
	GetHourlyWind(ctx context.Context, lat, lon float64) ([]models.WindReading, error)
}

// ZoneForecastClient defines the interface for fetching coastal waters forecasts
type ZoneForecastClient interface {
	// GetMarineForecastByZone retrieves the text forecast for a marine zone
	GetMarineForecastByZone(ctx context.Context, marineZone string) (*models.ZoneForecast, error)
}

// TideClient defines the interface for fetching tide data from NOAA CO-OPS
type TideClient interface {
	// GetTidePredictions retrieves high/low tide predictions for a date range
	GetTidePredictions(ctx context.Context, stationID string, startDate, endDate time.Time) (*models.TideData, error)
}

// AlertClient defines the interface for fetching NWS alerts
type AlertClient interface {
	// GetRegionAlerts retrieves active marine alerts for a state or area code
	GetRegionAlerts(ctx context.Context, area string) (*models.AlertData, error)
}

func orDefaultClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultTimeout}
}
