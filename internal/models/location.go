package models

import "strings"

// DefaultMaxSafeWaveHeightFt is the wave height above which a site is unsafe
// when the site itself does not say otherwise.
const DefaultMaxSafeWaveHeightFt = 6.0

// Coast is a regional grouping of dive sites
type Coast string

const (
	CoastNorthShore Coast = "north_shore"
	CoastWestSide   Coast = "west_side"
	CoastSouthShore Coast = "south_shore"
	CoastSoutheast  Coast = "southeast"
	CoastWindward   Coast = "windward"
)

// DisplayName returns the human-readable coast name
func (c Coast) DisplayName() string {
	switch c {
	case CoastNorthShore:
		return "North Shore"
	case CoastWestSide:
		return "West Side"
	case CoastSouthShore:
		return "South Shore"
	case CoastSoutheast:
		return "Southeast"
	case CoastWindward:
		return "Windward"
	default:
		return string(c)
	}
}

// SkillLevel is the diver experience a site calls for
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

// Rank returns the ordinal of the skill level (beginner=0 .. expert=3).
// ok is false for labels outside the fixed scale.
func (s SkillLevel) Rank() (rank int, ok bool) {
	switch SkillLevel(strings.ToLower(string(s))) {
	case SkillBeginner:
		return 0, true
	case SkillIntermediate:
		return 1, true
	case SkillAdvanced:
		return 2, true
	case SkillExpert:
		return 3, true
	default:
		return 0, false
	}
}

// WithinCeiling reports whether a site at this level suits a diver whose
// ceiling is max. Unknown labels on either side are let through.
func (s SkillLevel) WithinCeiling(max SkillLevel) bool {
	siteRank, ok := s.Rank()
	if !ok {
		return true
	}
	maxRank, ok := max.Rank()
	if !ok {
		return true
	}
	return siteRank <= maxRank
}

// Coordinates is a WGS84 position
type Coordinates struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// DepthRange is the usable depth of a site in feet
type DepthRange struct {
	MinFt float64 `yaml:"min_ft" json:"min_ft"`
	MaxFt float64 `yaml:"max_ft" json:"max_ft"`
}

// Season is the window of months (1-12, inclusive) a site is usually diveable.
// A start month after the end month wraps across the new year.
type Season struct {
	StartMonth int `yaml:"start_month" json:"start_month"`
	EndMonth   int `yaml:"end_month" json:"end_month"`
}

// Contains reports whether month falls inside the season
func (s Season) Contains(month int) bool {
	if s.StartMonth <= s.EndMonth {
		return month >= s.StartMonth && month <= s.EndMonth
	}
	return month >= s.StartMonth || month <= s.EndMonth
}

// Regulations are the rules that apply at a site
type Regulations struct {
	MLCD         bool   `yaml:"mlcd" json:"mlcd"`                 // Marine Life Conservation District
	Spearfishing string `yaml:"spearfishing" json:"spearfishing"` // "allowed" or "prohibited"
	NightDiving  string `yaml:"night_diving" json:"night_diving"` // "allowed" or "prohibited"
	TakeRules    string `yaml:"take_rules" json:"take_rules,omitempty"`
}

// SwellExposure describes which way a site faces and how much swell it tolerates
type SwellExposure struct {
	Primary         string  `yaml:"primary" json:"primary"`                     // e.g., "N", "NW", "S"
	Secondary       string  `yaml:"secondary" json:"secondary,omitempty"`
	MaxSafeHeightFt float64 `yaml:"max_safe_height_ft" json:"max_safe_height_ft"` // 0 means use the default
}

// Location is a named dive site. Loaded once and treated as read-only.
type Location struct {
	ID                string        `yaml:"id" json:"id"`
	Name              string        `yaml:"name" json:"name"`
	Coast             Coast         `yaml:"-" json:"coast"`
	Coordinates       Coordinates   `yaml:"coordinates" json:"coordinates"`
	Depth             DepthRange    `yaml:"depth_range" json:"depth_range"`
	Season            Season        `yaml:"seasonal_window" json:"seasonal_window"`
	SkillLevel        SkillLevel    `yaml:"skill_level" json:"skill_level"`
	Regulations       Regulations   `yaml:"regulations" json:"regulations"`
	SwellExposure     SwellExposure `yaml:"swell_exposure" json:"swell_exposure"`
	OptimalTide       string        `yaml:"optimal_tide" json:"optimal_tide"` // "any", "high", "low"
	OptimalTime       string        `yaml:"optimal_time" json:"optimal_time,omitempty"`
	NearestBuoy       string        `yaml:"nearest_buoy" json:"nearest_buoy,omitempty"`
	NearestStreamgage string        `yaml:"nearest_streamgage" json:"nearest_streamgage,omitempty"`
	Notes             string        `yaml:"notes" json:"notes,omitempty"`
}

// InSeason reports whether the site is in season for the given month
func (l *Location) InSeason(month int) bool {
	return l.Season.Contains(month)
}

// AllowsSpearfishing reports whether spearfishing is explicitly allowed
func (l *Location) AllowsSpearfishing() bool {
	return strings.EqualFold(l.Regulations.Spearfishing, "allowed")
}

// AllowsNightDiving reports whether night diving is explicitly allowed
func (l *Location) AllowsNightDiving() bool {
	return strings.EqualFold(l.Regulations.NightDiving, "allowed")
}

// MaxSafeWaveHeight returns the site's wave height limit, falling back to
// DefaultMaxSafeWaveHeightFt
func (l *Location) MaxSafeWaveHeight() float64 {
	if l.SwellExposure.MaxSafeHeightFt > 0 {
		return l.SwellExposure.MaxSafeHeightFt
	}
	return DefaultMaxSafeWaveHeightFt
}

// TidePreference returns the normalized optimal tide, "any" when unset
func (l *Location) TidePreference() string {
	tide := strings.ToLower(strings.TrimSpace(l.OptimalTide))
	if tide == "" {
		return "any"
	}
	return tide
}
