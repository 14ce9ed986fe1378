package models

import "time"

const knotsToMph = 1.15078

// WindData represents wind conditions in marine format
type WindData struct {
	Direction string  `json:"direction"` // e.g., "NE", "Variable"
	SpeedMin  float64 `json:"speed_min_kt"`
	SpeedMax  float64 `json:"speed_max_kt"`
	GustSpeed float64 `json:"gust_kt,omitempty"` // 0 if no gusts
	HasGust   bool    `json:"has_gust"`
	RawText   string  `json:"-"` // Original NWS wording
}

// UpperMph returns the top of the forecast wind range in mph
func (w WindData) UpperMph() float64 {
	return w.SpeedMax * knotsToMph
}

// WaveComponent represents a single wave/swell component
type WaveComponent struct {
	Direction string  `json:"direction"` // e.g., "N", "NW"
	Height    float64 `json:"height_ft"`
	Period    int     `json:"period_s"`
}

// SeaState represents overall sea conditions
type SeaState struct {
	HeightMin  float64         `json:"height_min_ft"`
	HeightMax  float64         `json:"height_max_ft"`
	Components []WaveComponent `json:"components,omitempty"` // Detailed wave breakdown
	RawText    string          `json:"-"`
}

// DominantPeriod returns the period of the tallest wave component, 0 when
// the forecast has no wave detail
func (s SeaState) DominantPeriod() int {
	var best WaveComponent
	for _, c := range s.Components {
		if c.Height > best.Height {
			best = c
		}
	}
	return best.Period
}

// MarineForecast is one period of a coastal waters forecast
type MarineForecast struct {
	PeriodName string   `json:"period"` // e.g., "TONIGHT", "SAT"
	Wind       WindData `json:"wind"`
	Seas       SeaState `json:"seas"`
	RawText    string   `json:"-"` // Full forecast text from NWS
}

// ZoneForecast contains all periods of a marine zone forecast
type ZoneForecast struct {
	Zone      string
	Periods   []MarineForecast
	UpdatedAt time.Time
}

// WindReading is the wind for one hour of a gridpoint forecast
type WindReading struct {
	Time          time.Time
	SpeedMph      float64
	Direction     string // compass point, e.g. "ENE"
	ShortForecast string
}
