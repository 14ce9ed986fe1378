// Package assemblertest provides in-memory providers for tests that need
// an assembler without network access
package assemblertest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ngmaloney/reefcast/internal/assembler"
	"github.com/ngmaloney/reefcast/internal/cwb"
	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/ndbc"
	"github.com/ngmaloney/reefcast/internal/pacioos"
)

// ErrUnavailable is the error fake providers return when told to fail
var ErrUnavailable = errors.New("service unavailable")

// Conditions is what the fakes report for one site
type Conditions struct {
	WaveHeightFt  float64
	WavePeriodS   float64
	WindMph       float64
	WindDirection string
	DischargeCfs  *float64
}

// Fakes implements every provider interface from canned data. Sites are
// keyed by buoy id for waves and by coordinates for wind and the wave model.
type Fakes struct {
	mu sync.Mutex

	Buoys  map[string]ndbc.Observation
	Model  map[[2]float64]pacioos.Reading
	Wind   map[[2]float64][]models.WindReading
	Tide   *models.TideStatus
	Level  *float64
	Gauges map[string]float64

	Alerts     []models.Alert
	Advisories []cwb.Advisory

	// Fail makes the named source ("buoy", "pacioos", "nws", "tides",
	// "usgs", "alerts", "cwb") return ErrUnavailable
	Fail map[string]bool

	// Calls counts requests per source
	Calls map[string]int
}

// New returns empty fakes
func New() *Fakes {
	return &Fakes{
		Buoys:  make(map[string]ndbc.Observation),
		Model:  make(map[[2]float64]pacioos.Reading),
		Wind:   make(map[[2]float64][]models.WindReading),
		Gauges: make(map[string]float64),
		Fail:   make(map[string]bool),
		Calls:  make(map[string]int),
	}
}

// Providers wires the fakes into an assembler.Providers
func (f *Fakes) Providers() assembler.Providers {
	return assembler.Providers{
		Buoy:       buoySource{f},
		WaveModel:  modelSource{f},
		Wind:       windSource{f},
		Tides:      tideSource{f},
		Discharge:  dischargeSource{f},
		Alerts:     alertSource{f},
		Advisories: advisorySource{f},
	}
}

// SetSite registers conditions for a location: a buoy observation when the
// site has a buoy, otherwise a wave model reading, plus hourly wind
func (f *Fakes) SetSite(loc *models.Location, c Conditions) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := [2]float64{loc.Coordinates.Lat, loc.Coordinates.Lon}
	height, period := c.WaveHeightFt, c.WavePeriodS
	if loc.NearestBuoy != "" {
		f.Buoys[loc.NearestBuoy] = ndbc.Observation{WaveHeightFt: &height, PeriodS: &period}
	} else {
		f.Model[key] = pacioos.Reading{WaveHeightFt: &height, PeriodS: &period}
	}
	f.Wind[key] = []models.WindReading{{SpeedMph: c.WindMph, Direction: c.WindDirection}}
	if c.DischargeCfs != nil && loc.NearestStreamgage != "" {
		f.Gauges[loc.NearestStreamgage] = *c.DischargeCfs
	}
}

// CallCount returns how many requests a source received
func (f *Fakes) CallCount(source string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[source]
}

func (f *Fakes) call(source string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[source]++
	if f.Fail[source] {
		return ErrUnavailable
	}
	return nil
}

type buoySource struct{ f *Fakes }

func (s buoySource) GetCurrentConditions(_ context.Context, station string) (*ndbc.Observation, error) {
	if err := s.f.call("buoy"); err != nil {
		return nil, err
	}
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	obs := s.f.Buoys[station]
	return &obs, nil
}

type modelSource struct{ f *Fakes }

func (s modelSource) GetCurrentConditions(_ context.Context, lat, lon float64) (*pacioos.Reading, error) {
	if err := s.f.call("pacioos"); err != nil {
		return nil, err
	}
	if !pacioos.InDomain(lat, lon) {
		return nil, pacioos.ErrOutOfDomain
	}
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	r := s.f.Model[[2]float64{lat, lon}]
	return &r, nil
}

type windSource struct{ f *Fakes }

func (s windSource) GetHourlyWind(_ context.Context, lat, lon float64) ([]models.WindReading, error) {
	if err := s.f.call("nws"); err != nil {
		return nil, err
	}
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	return s.f.Wind[[2]float64{lat, lon}], nil
}

type tideSource struct{ f *Fakes }

func (s tideSource) GetTideStatus(_ context.Context, _ string, _ time.Time) (*models.TideStatus, error) {
	if err := s.f.call("tides"); err != nil {
		return nil, err
	}
	if s.f.Tide == nil {
		return nil, errors.New("no upcoming tide events")
	}
	return s.f.Tide, nil
}

func (s tideSource) GetLatestWaterLevel(_ context.Context, _ string) (float64, error) {
	if s.f.Level == nil {
		return 0, errors.New("no water level data")
	}
	return *s.f.Level, nil
}

type dischargeSource struct{ f *Fakes }

func (s dischargeSource) GetCurrentDischarge(_ context.Context, siteID string) (float64, bool, error) {
	if err := s.f.call("usgs"); err != nil {
		return 0, false, err
	}
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	cfs, ok := s.f.Gauges[siteID]
	return cfs, ok, nil
}

type alertSource struct{ f *Fakes }

func (s alertSource) GetRegionAlerts(_ context.Context, _ string) (*models.AlertData, error) {
	if err := s.f.call("alerts"); err != nil {
		return nil, err
	}
	return &models.AlertData{Alerts: s.f.Alerts}, nil
}

type advisorySource struct{ f *Fakes }

func (s advisorySource) GetOahuAdvisories(_ context.Context) ([]cwb.Advisory, error) {
	if err := s.f.call("cwb"); err != nil {
		return nil, err
	}
	return s.f.Advisories, nil
}
