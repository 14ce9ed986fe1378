package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/ranking"
	"github.com/ngmaloney/reefcast/internal/scoring"
)

const (
	// defaultSwellPeriodS stands in when the forecast text names no swell period
	defaultSwellPeriodS = 8
	// outlookHour is the local hour every forecast period is scored at
	outlookHour = 7
)

// OutlookDay is one forecast period scored for a coast's lead site
type OutlookDay struct {
	Period        string        `json:"period"`
	WaveHeightFt  float64       `json:"wave_height_ft"`
	WavePeriodS   int           `json:"wave_period_s"`
	WindMph       float64       `json:"wind_mph"`
	WindDirection string        `json:"wind_direction,omitempty"`
	Score         float64       `json:"score"`
	Grade         scoring.Grade `json:"grade"`
	Diveable      bool          `json:"diveable"`
}

// CoastOutlook is the multi-day view for one coast
type CoastOutlook struct {
	Coast       models.Coast `json:"coast"`
	DisplayName string       `json:"display_name"`
	Zone        string       `json:"zone"`
	SiteID      string       `json:"site_id"`
	Days        []OutlookDay `json:"days"`
}

// BestDay returns the highest scoring period, the earliest on ties
func (o CoastOutlook) BestDay() (OutlookDay, bool) {
	if len(o.Days) == 0 {
		return OutlookDay{}, false
	}
	best := o.Days[0]
	for _, d := range o.Days[1:] {
		if d.Score > best.Score {
			best = d
		}
	}
	return best, true
}

// buildOutlook scores the zone forecast of every coast that has a marine
// zone and at least one ranked site. Coasts whose forecast cannot be fetched
// are reported in errs and left out.
func (g *Generator) buildOutlook(ctx context.Context, ranked []ranking.RankedLocation, now time.Time) (outlook []CoastOutlook, errs []string) {
	cat := g.ranker.Catalog()

	for _, coast := range cat.Coasts() {
		zone, ok := cat.MarineZone(coast)
		if !ok {
			continue
		}
		lead := leadSite(ranked, coast)
		if lead == nil {
			continue
		}

		forecast, err := g.forecasts.GetMarineForecastByZone(ctx, zone)
		if err != nil {
			g.logger.Warn("failed to fetch zone forecast", "coast", coast, "zone", zone, "error", err)
			errs = append(errs, fmt.Sprintf("Outlook %s (%s): %v", coast.DisplayName(), zone, err))
			continue
		}

		co := CoastOutlook{
			Coast:       coast,
			DisplayName: coast.DisplayName(),
			Zone:        zone,
			SiteID:      lead.ID,
		}
		at := morningOf(now)
		for _, period := range forecast.Periods {
			co.Days = append(co.Days, scorePeriod(lead, period, at))
		}
		outlook = append(outlook, co)
	}

	return outlook, errs
}

// scorePeriod runs a forecast period through the scoring engine as if it
// were a snapshot taken at the given time
func scorePeriod(loc *models.Location, period models.MarineForecast, at time.Time) OutlookDay {
	day := OutlookDay{
		Period:        period.PeriodName,
		WaveHeightFt:  period.Seas.HeightMax,
		WindMph:       round1(period.Wind.UpperMph()),
		WindDirection: period.Wind.Direction,
	}

	snap := &models.EnvironmentalSnapshot{FetchedAt: at}

	if period.Seas.HeightMax > 0 {
		day.WavePeriodS = period.Seas.DominantPeriod()
		if day.WavePeriodS == 0 {
			day.WavePeriodS = defaultSwellPeriodS
		}
		snap.WaveHeightFt = models.Float(period.Seas.HeightMax)
		snap.WavePeriodS = models.Float(float64(day.WavePeriodS))
	}

	if period.Wind.SpeedMax > 0 || period.Wind.Direction != "" {
		snap.WindSpeedMph = models.Float(period.Wind.UpperMph())
		if deg, ok := models.CompassDegrees(period.Wind.Direction); ok {
			snap.WindDirectionDeg = models.Float(deg)
		}
	}

	result := scoring.Score(scoring.NewInput(loc, snap))
	day.Score = result.TotalScore
	day.Grade = result.Grade
	day.Diveable = result.Diveable
	return day
}

func leadSite(ranked []ranking.RankedLocation, coast models.Coast) *models.Location {
	for _, r := range ranked {
		if r.Location != nil && r.Location.Coast == coast {
			return r.Location
		}
	}
	return nil
}

func morningOf(t time.Time) time.Time {
	local := t.In(models.HawaiiTime)
	return time.Date(local.Year(), local.Month(), local.Day(), outlookHour, 0, 0, 0, models.HawaiiTime)
}
