package models

import "time"

// WaveSource identifies which upstream supplied the wave reading
type WaveSource string

const (
	WaveSourceBuoy    WaveSource = "buoy"
	WaveSourcePacIOOS WaveSource = "pacioos"
	WaveSourceNone    WaveSource = ""
)

// EnvironmentalSnapshot is everything known about one site's conditions at
// FetchedAt. Nil pointers mean the reading was unavailable.
type EnvironmentalSnapshot struct {
	WaveHeightFt      *float64   `json:"wave_height_ft"`
	WavePeriodS       *float64   `json:"wave_period_s"`
	SwellDirectionDeg *float64   `json:"swell_direction_deg"`
	WaveSource        WaveSource `json:"wave_source"`

	WindSpeedMph     *float64 `json:"wind_speed_mph"`
	WindDirectionDeg *float64 `json:"wind_direction_deg"` // direction the wind blows from

	TidePhase    TidePhase  `json:"tide_phase,omitempty"`
	WaterLevelFt *float64   `json:"water_level_ft"`
	NextHighTide *TideEvent `json:"next_high_tide,omitempty"`
	NextLowTide  *TideEvent `json:"next_low_tide,omitempty"`

	StreamDischargeCfs *float64 `json:"stream_discharge_cfs"`
	Rainfall48hIn      *float64 `json:"rainfall_48h_in"`
	Advisory           bool     `json:"advisory"`
	AdvisoryReason     string   `json:"advisory_reason,omitempty"`

	HighSurfWarning  bool    `json:"high_surf_warning"`
	HighSurfAdvisory bool    `json:"high_surf_advisory"`
	MarineAlerts     []Alert `json:"marine_alerts,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`
	Errors    []string  `json:"errors,omitempty"`
}

// AddError records a failed upstream fetch
func (s *EnvironmentalSnapshot) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// Float returns a pointer to v, for filling optional snapshot readings
func Float(v float64) *float64 {
	return &v
}
