package assembler

import (
	"context"
	"time"

	"github.com/ngmaloney/reefcast/internal/cwb"
	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/ndbc"
	"github.com/ngmaloney/reefcast/internal/pacioos"
)

// BuoySource returns the latest observation for an NDBC station
type BuoySource interface {
	GetCurrentConditions(ctx context.Context, station string) (*ndbc.Observation, error)
}

// WaveModelSource returns the current wave model output at a point
type WaveModelSource interface {
	GetCurrentConditions(ctx context.Context, lat, lon float64) (*pacioos.Reading, error)
}

// WindSource returns the hourly wind forecast at a point, soonest first
type WindSource interface {
	GetHourlyWind(ctx context.Context, lat, lon float64) ([]models.WindReading, error)
}

// TideSource returns the tide phase at a station
type TideSource interface {
	GetTideStatus(ctx context.Context, stationID string, now time.Time) (*models.TideStatus, error)
	GetLatestWaterLevel(ctx context.Context, stationID string) (float64, error)
}

// DischargeSource returns the latest stream discharge for a gauge
type DischargeSource interface {
	GetCurrentDischarge(ctx context.Context, siteID string) (cfs float64, ok bool, err error)
}

// AlertSource returns active marine alerts for an area
type AlertSource interface {
	GetRegionAlerts(ctx context.Context, area string) (*models.AlertData, error)
}

// AdvisorySource returns the water quality advisories posted for Oahu
type AdvisorySource interface {
	GetOahuAdvisories(ctx context.Context) ([]cwb.Advisory, error)
}

// Providers are the upstream collaborators. A nil provider is skipped.
type Providers struct {
	Buoy       BuoySource
	WaveModel  WaveModelSource
	Wind       WindSource
	Tides      TideSource
	Discharge  DischargeSource
	Alerts     AlertSource
	Advisories AdvisorySource
}
