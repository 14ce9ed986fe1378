// Package assembler builds an EnvironmentalSnapshot for a dive site from the
// upstream data providers. Provider failures are recorded on the snapshot
// and never returned.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/ngmaloney/reefcast/internal/cache"
	"github.com/ngmaloney/reefcast/internal/cwb"
	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/noaa"
	"github.com/ngmaloney/reefcast/internal/observability"
	"github.com/ngmaloney/reefcast/internal/pacioos"
)

// DefaultAlertArea is the NWS area code alerts are fetched for
const DefaultAlertArea = "HI"

// Assembler pulls the latest reading from each provider into one snapshot
type Assembler struct {
	providers Providers
	alertArea string
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates an assembler. logger and metrics may be nil.
func New(providers Providers, logger *slog.Logger, metrics *observability.Metrics) *Assembler {
	if logger == nil {
		logger = observability.Discard()
	}
	return &Assembler{
		providers: providers,
		alertArea: DefaultAlertArea,
		clock:     clockwork.NewRealClock(),
		logger:    logger,
		metrics:   metrics,
	}
}

// WithClock replaces the clock that stamps FetchedAt
func (a *Assembler) WithClock(clock clockwork.Clock) *Assembler {
	a.clock = clock
	return a
}

// Assemble gathers conditions for loc. batch carries the region-wide alerts
// and advisories for the current pass; nil starts a fresh one.
func (a *Assembler) Assemble(ctx context.Context, batch *Batch, loc *models.Location) *models.EnvironmentalSnapshot {
	if batch == nil {
		batch = NewBatch()
	}

	snap := &models.EnvironmentalSnapshot{
		FetchedAt: a.clock.Now().In(models.HawaiiTime),
	}

	a.fetchWaves(ctx, loc, snap)
	a.fetchWind(ctx, loc, snap)
	a.fetchTide(ctx, loc, snap)
	a.fetchDischarge(ctx, loc, snap)
	a.fetchAlerts(ctx, batch, snap)
	a.fetchAdvisory(ctx, batch, loc, snap)

	return snap
}

// fetchWaves prefers a buoy observation and falls back to the wave model
func (a *Assembler) fetchWaves(ctx context.Context, loc *models.Location, snap *models.EnvironmentalSnapshot) {
	if loc.NearestBuoy != "" && a.providers.Buoy != nil {
		obs, err := a.providers.Buoy.GetCurrentConditions(ctx, loc.NearestBuoy)
		switch {
		case err != nil:
			a.fail(snap, loc, cache.SourceBuoy, "Buoy", err)
		case obs != nil && hasHeight(obs.WaveHeightFt):
			snap.WaveHeightFt = obs.WaveHeightFt
			snap.WavePeriodS = obs.PeriodS
			snap.SwellDirectionDeg = obs.MeanDirectionDeg
			snap.WaveSource = models.WaveSourceBuoy
			return
		}
	}

	if a.providers.WaveModel == nil {
		return
	}
	reading, err := a.providers.WaveModel.GetCurrentConditions(ctx, loc.Coordinates.Lat, loc.Coordinates.Lon)
	if err != nil {
		if errors.Is(err, pacioos.ErrOutOfDomain) {
			return
		}
		a.fail(snap, loc, cache.SourcePacIOOS, "PacIOOS", err)
		return
	}
	if reading != nil && hasHeight(reading.WaveHeightFt) {
		snap.WaveHeightFt = reading.WaveHeightFt
		snap.WavePeriodS = reading.PeriodS
		snap.SwellDirectionDeg = reading.DirectionDeg
		snap.WaveSource = models.WaveSourcePacIOOS
	}
}

// fetchWind takes the first hour of the gridpoint forecast as current wind
func (a *Assembler) fetchWind(ctx context.Context, loc *models.Location, snap *models.EnvironmentalSnapshot) {
	if a.providers.Wind == nil {
		return
	}
	readings, err := a.providers.Wind.GetHourlyWind(ctx, loc.Coordinates.Lat, loc.Coordinates.Lon)
	if err != nil {
		a.fail(snap, loc, cache.SourceNWS, "NWS", err)
		return
	}
	if len(readings) == 0 {
		return
	}

	current := readings[0]
	snap.WindSpeedMph = models.Float(current.SpeedMph)
	if deg, ok := models.CompassDegrees(current.Direction); ok {
		snap.WindDirectionDeg = models.Float(deg)
	}
}

func (a *Assembler) fetchTide(ctx context.Context, loc *models.Location, snap *models.EnvironmentalSnapshot) {
	if a.providers.Tides == nil {
		return
	}
	station := noaa.StationForCoast(loc.Coast)

	status, err := a.providers.Tides.GetTideStatus(ctx, station, snap.FetchedAt)
	if err == nil && status == nil {
		err = errors.New("no tide status")
	}
	if err != nil {
		a.fail(snap, loc, cache.SourceTides, "Tides", err)
		return
	}
	snap.TidePhase = status.Phase
	snap.NextHighTide = status.NextHigh
	snap.NextLowTide = status.NextLow

	// Prediction-only stations have no observed level
	if level, err := a.providers.Tides.GetLatestWaterLevel(ctx, station); err == nil {
		snap.WaterLevelFt = models.Float(level)
	} else {
		a.logger.Debug("water level unavailable", "station", station, "error", err)
	}
}

func (a *Assembler) fetchDischarge(ctx context.Context, loc *models.Location, snap *models.EnvironmentalSnapshot) {
	if loc.NearestStreamgage == "" || a.providers.Discharge == nil {
		return
	}
	cfs, ok, err := a.providers.Discharge.GetCurrentDischarge(ctx, loc.NearestStreamgage)
	if err != nil {
		a.fail(snap, loc, cache.SourceUSGS, "USGS", err)
		return
	}
	if ok {
		snap.StreamDischargeCfs = models.Float(cfs)
	}
}

func (a *Assembler) fetchAlerts(ctx context.Context, batch *Batch, snap *models.EnvironmentalSnapshot) {
	if a.providers.Alerts == nil {
		return
	}
	alerts, fresh, err := batch.marineAlerts(ctx, a.providers.Alerts, a.alertArea)
	if err != nil {
		if fresh {
			a.fail(snap, nil, cache.SourceAlerts, "Alerts", err)
		}
		return
	}

	snap.MarineAlerts = append([]models.Alert(nil), alerts...)
	for i := range snap.MarineAlerts {
		switch snap.MarineAlerts[i].Kind() {
		case models.AlertHighSurfWarning:
			snap.HighSurfWarning = true
		case models.AlertHighSurfAdvisory:
			snap.HighSurfAdvisory = true
		}
	}
}

func (a *Assembler) fetchAdvisory(ctx context.Context, batch *Batch, loc *models.Location, snap *models.EnvironmentalSnapshot) {
	if a.providers.Advisories == nil {
		return
	}
	advisories, fresh, err := batch.oahuAdvisories(ctx, a.providers.Advisories)
	if err != nil {
		if fresh {
			a.fail(snap, loc, cache.SourceCWB, "CWB", err)
		}
		return
	}

	if advisory, ok := cwb.Match(advisories, loc.Name); ok {
		snap.Advisory = true
		snap.AdvisoryReason = strings.TrimSpace(advisory.Reason)
	}
}

// fail records a provider error on the snapshot as "<Source> error: <err>"
func (a *Assembler) fail(snap *models.EnvironmentalSnapshot, loc *models.Location, source, label string, err error) {
	snap.AddError(fmt.Sprintf("%s error: %v", label, err))
	if a.metrics != nil {
		a.metrics.SourceErrors.WithLabelValues(source).Inc()
	}
	if loc != nil {
		a.logger.Warn("source fetch failed", "source", source, "site", loc.ID, "error", err)
	} else {
		a.logger.Warn("source fetch failed", "source", source, "error", err)
	}
}

func hasHeight(h *float64) bool {
	return h != nil && *h > 0
}
