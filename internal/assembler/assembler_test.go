package assembler_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/reefcast/internal/assembler"
	"github.com/ngmaloney/reefcast/internal/assembler/assemblertest"
	"github.com/ngmaloney/reefcast/internal/cwb"
	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/ndbc"
	"github.com/ngmaloney/reefcast/internal/observability"
	"github.com/ngmaloney/reefcast/internal/pacioos"
)

var evalTime = time.Date(2025, 7, 4, 7, 0, 0, 0, models.HawaiiTime)

func sharksCove() *models.Location {
	return &models.Location{
		ID:                "sharks_cove",
		Name:              "Sharks Cove",
		Coast:             models.CoastNorthShore,
		Coordinates:       models.Coordinates{Lat: 21.6509, Lon: -158.0630},
		NearestBuoy:       "51201",
		NearestStreamgage: "16330000",
	}
}

func kaneoheSandbar() *models.Location {
	return &models.Location{
		ID:          "kaneohe_sandbar",
		Name:        "Kaneohe Sandbar",
		Coast:       models.CoastWindward,
		Coordinates: models.Coordinates{Lat: 21.4650, Lon: -157.8100},
	}
}

func newAssembler(f *assemblertest.Fakes) *assembler.Assembler {
	return assembler.New(f.Providers(), observability.Discard(), nil).
		WithClock(clockwork.NewFakeClockAt(evalTime))
}

func TestAssemble_AllSources(t *testing.T) {
	f := assemblertest.New()
	loc := sharksCove()
	f.SetSite(loc, assemblertest.Conditions{
		WaveHeightFt: 1.5, WavePeriodS: 10, WindMph: 8, WindDirection: "SE",
		DischargeCfs: models.Float(3),
	})
	high := models.TideEvent{Time: evalTime.Add(2 * time.Hour), Type: models.TideHigh, Height: 1.8}
	f.Tide = &models.TideStatus{Phase: models.TideRising, NextHigh: &high}
	f.Level = models.Float(0.9)
	f.Alerts = []models.Alert{{Event: "High Surf Advisory", AreaDesc: "Oahu North Shore"}}

	snap := newAssembler(f).Assemble(context.Background(), nil, loc)

	require.NotNil(t, snap.WaveHeightFt)
	assert.Equal(t, 1.5, *snap.WaveHeightFt)
	assert.Equal(t, 10.0, *snap.WavePeriodS)
	assert.Equal(t, models.WaveSourceBuoy, snap.WaveSource)
	assert.Equal(t, 8.0, *snap.WindSpeedMph)
	assert.Equal(t, 135.0, *snap.WindDirectionDeg)
	assert.Equal(t, models.TideRising, snap.TidePhase)
	assert.Equal(t, &high, snap.NextHighTide)
	assert.Equal(t, 0.9, *snap.WaterLevelFt)
	assert.Equal(t, 3.0, *snap.StreamDischargeCfs)
	assert.True(t, snap.HighSurfAdvisory)
	assert.False(t, snap.HighSurfWarning)
	assert.Len(t, snap.MarineAlerts, 1)
	assert.False(t, snap.Advisory)
	assert.Empty(t, snap.Errors)
	assert.Equal(t, 7, snap.FetchedAt.Hour())
	assert.Equal(t, 0, f.CallCount("pacioos"), "buoy reading should short-circuit the model")
}

func TestAssemble_ModelFallback(t *testing.T) {
	f := assemblertest.New()
	loc := sharksCove()
	f.Fail["buoy"] = true
	f.Model[[2]float64{loc.Coordinates.Lat, loc.Coordinates.Lon}] = pacioos.Reading{
		WaveHeightFt: models.Float(2.2), PeriodS: models.Float(9), DirectionDeg: models.Float(315),
	}

	snap := newAssembler(f).Assemble(context.Background(), nil, loc)

	assert.Equal(t, models.WaveSourcePacIOOS, snap.WaveSource)
	assert.Equal(t, 2.2, *snap.WaveHeightFt)
	assert.Equal(t, 315.0, *snap.SwellDirectionDeg)
	assert.Contains(t, snap.Errors, "Buoy error: service unavailable")
}

func TestAssemble_ZeroBuoyHeightFallsThrough(t *testing.T) {
	f := assemblertest.New()
	loc := sharksCove()
	f.Buoys[loc.NearestBuoy] = ndbc.Observation{WaveHeightFt: models.Float(0)}
	f.Model[[2]float64{loc.Coordinates.Lat, loc.Coordinates.Lon}] = pacioos.Reading{WaveHeightFt: models.Float(1.1)}

	snap := newAssembler(f).Assemble(context.Background(), nil, loc)

	assert.Equal(t, models.WaveSourcePacIOOS, snap.WaveSource)
	assert.Equal(t, 1.1, *snap.WaveHeightFt)
}

func TestAssemble_OutOfDomainIsNotAnError(t *testing.T) {
	f := assemblertest.New()
	loc := kaneoheSandbar()
	loc.Coordinates = models.Coordinates{Lat: 19.7, Lon: -155.1}

	snap := newAssembler(f).Assemble(context.Background(), nil, loc)

	assert.Nil(t, snap.WaveHeightFt)
	assert.Equal(t, models.WaveSourceNone, snap.WaveSource)
	for _, e := range snap.Errors {
		assert.NotContains(t, e, "PacIOOS")
	}
}

func TestAssemble_FailuresBecomeErrorStrings(t *testing.T) {
	f := assemblertest.New()
	for _, source := range []string{"buoy", "pacioos", "nws", "tides", "usgs", "alerts", "cwb"} {
		f.Fail[source] = true
	}
	metrics := observability.NewMetricsForTesting()
	a := assembler.New(f.Providers(), observability.Discard(), metrics).
		WithClock(clockwork.NewFakeClockAt(evalTime))

	snap := a.Assemble(context.Background(), nil, sharksCove())

	assert.Equal(t, []string{
		"Buoy error: service unavailable",
		"PacIOOS error: service unavailable",
		"NWS error: service unavailable",
		"Tides error: service unavailable",
		"USGS error: service unavailable",
		"Alerts error: service unavailable",
		"CWB error: service unavailable",
	}, snap.Errors)
	assert.Nil(t, snap.WaveHeightFt)
	assert.Nil(t, snap.WindSpeedMph)
	assert.Empty(t, snap.TidePhase)
}

func TestAssemble_NoStreamgageSkipsUSGS(t *testing.T) {
	f := assemblertest.New()
	newAssembler(f).Assemble(context.Background(), nil, kaneoheSandbar())
	assert.Equal(t, 0, f.CallCount("usgs"))
}

func TestAssemble_UnknownWindDirection(t *testing.T) {
	f := assemblertest.New()
	loc := kaneoheSandbar()
	f.SetSite(loc, assemblertest.Conditions{WaveHeightFt: 1, WavePeriodS: 8, WindMph: 4, WindDirection: "Variable"})

	snap := newAssembler(f).Assemble(context.Background(), nil, loc)

	assert.Equal(t, 4.0, *snap.WindSpeedMph)
	assert.Nil(t, snap.WindDirectionDeg)
}

func TestAssemble_BatchFetchesRegionDataOnce(t *testing.T) {
	f := assemblertest.New()
	a := newAssembler(f)
	batch := assembler.NewBatch()

	a.Assemble(context.Background(), batch, sharksCove())
	a.Assemble(context.Background(), batch, kaneoheSandbar())

	assert.Equal(t, 1, f.CallCount("alerts"))
	assert.Equal(t, 1, f.CallCount("cwb"))

	a.Assemble(context.Background(), assembler.NewBatch(), sharksCove())
	assert.Equal(t, 2, f.CallCount("alerts"), "a new batch refetches")
}

func TestAssemble_BatchFailureReportedOnce(t *testing.T) {
	f := assemblertest.New()
	f.Fail["alerts"] = true
	a := newAssembler(f)
	batch := assembler.NewBatch()

	first := a.Assemble(context.Background(), batch, sharksCove())
	second := a.Assemble(context.Background(), batch, kaneoheSandbar())

	assert.Contains(t, first.Errors, "Alerts error: service unavailable")
	assert.NotContains(t, second.Errors, "Alerts error: service unavailable")
}

type emptyAlerts struct{}

func (emptyAlerts) GetRegionAlerts(context.Context, string) (*models.AlertData, error) {
	return nil, nil
}

func TestAssemble_BatchToleratesEmptyAlertResponse(t *testing.T) {
	f := assemblertest.New()
	providers := f.Providers()
	providers.Alerts = emptyAlerts{}
	a := assembler.New(providers, observability.Discard(), nil).
		WithClock(clockwork.NewFakeClockAt(evalTime))
	batch := assembler.NewBatch()

	first := a.Assemble(context.Background(), batch, sharksCove())
	second := a.Assemble(context.Background(), batch, kaneoheSandbar())

	assert.Empty(t, first.MarineAlerts)
	assert.Empty(t, second.MarineAlerts)
	assert.False(t, first.HighSurfAdvisory)
	assert.Empty(t, first.Errors)
}

func TestAssemble_Advisory(t *testing.T) {
	f := assemblertest.New()
	f.Advisories = []cwb.Advisory{
		{Beach: "Kaneohe Bay", Reason: " Brown water after heavy rain "},
		{Beach: "Kai", Reason: "test"},
	}
	a := newAssembler(f)
	batch := assembler.NewBatch()

	sandbar := a.Assemble(context.Background(), batch, kaneoheSandbar())
	assert.False(t, sandbar.Advisory, "Kaneohe Sandbar does not contain Kaneohe Bay")

	loc := kaneoheSandbar()
	loc.Name = "Kaneohe Bay"
	bay := a.Assemble(context.Background(), batch, loc)
	assert.True(t, bay.Advisory)
	assert.Equal(t, "Brown water after heavy rain", bay.AdvisoryReason)
}

func TestAssemble_HighSurfWarning(t *testing.T) {
	f := assemblertest.New()
	f.Alerts = []models.Alert{{Event: "High Surf Warning"}, {Event: "Small Craft Advisory"}}

	snap := newAssembler(f).Assemble(context.Background(), nil, sharksCove())

	assert.True(t, snap.HighSurfWarning)
	assert.False(t, snap.HighSurfAdvisory)
	assert.Len(t, snap.MarineAlerts, 2)
}
