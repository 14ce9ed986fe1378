// Package digest rolls one ranking pass into a daily conditions report
package digest

import (
	"time"

	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/ranking"
)

// Wave heights that make a day flat or big across the whole island
const (
	flatDayMaxWaveFt = 2.0
	bigDayMinWaveFt  = 6.0
)

// Range is a min/max pair. Both are zero when no site reported a value.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TideInfo holds the next high and low tide for the report
type TideInfo struct {
	NextHigh *models.TideEvent `json:"next_high,omitempty"`
	NextLow  *models.TideEvent `json:"next_low,omitempty"`
}

// AlertInfo is one distinct marine alert
type AlertInfo struct {
	Kind          models.AlertKind `json:"type"`
	Event         string           `json:"event"`
	Headline      string           `json:"headline"`
	AffectedAreas []string         `json:"affected_areas,omitempty"`
}

// CoastSummary describes conditions along one coast
type CoastSummary struct {
	Coast               models.Coast             `json:"coast"`
	DisplayName         string                   `json:"display_name"`
	TopSites            []ranking.RankedLocation `json:"top_sites"`
	AverageWaveHeightFt *float64                 `json:"average_wave_height_ft"`
	DiveableCount       int                      `json:"diveable_count"`
	TotalCount          int                      `json:"total_count"`
}

// HasDiveableSites reports whether any site on the coast is diveable
func (c CoastSummary) HasDiveableSites() bool {
	return c.DiveableCount > 0
}

// Report is the complete output of one digest run. It is built once and
// not modified afterwards.
type Report struct {
	ID             string                   `json:"id"`
	GeneratedAt    time.Time                `json:"generated_at"`
	TotalSites     int                      `json:"total_sites"`
	DiveableSites  int                      `json:"diveable_sites"`
	BestCoast      string                   `json:"best_coast,omitempty"`
	TopSites       []ranking.RankedLocation `json:"top_sites"`
	CoastSummaries []CoastSummary           `json:"coast_summaries,omitempty"`
	TideInfo       *TideInfo                `json:"tide_info,omitempty"`
	Alerts         []AlertInfo              `json:"alerts,omitempty"`
	WaveRange      Range                    `json:"wave_range_ft"`
	WindRange      Range                    `json:"wind_range_mph"`
	APIStatuses    []APIStatus              `json:"api_statuses"`
	Outlook        []CoastOutlook           `json:"outlook,omitempty"`
	Errors         []string                 `json:"errors,omitempty"`

	// Ranked is every site scored in this run, best first
	Ranked []ranking.RankedLocation `json:"-"`
}

// HasDiveableSites reports whether any site was diveable
func (r *Report) HasDiveableSites() bool {
	return r.DiveableSites > 0
}

// IsFlatDay reports whether the largest wave anywhere was under 2ft
func (r *Report) IsFlatDay() bool {
	return r.WaveRange.Max < flatDayMaxWaveFt
}

// IsBigDay reports whether the largest wave anywhere was over 6ft
func (r *Report) IsBigDay() bool {
	return r.WaveRange.Max > bigDayMinWaveFt
}
