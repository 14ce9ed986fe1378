package digest

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/noaa"
	"github.com/ngmaloney/reefcast/internal/observability"
	"github.com/ngmaloney/reefcast/internal/ranking"
)

const (
	// DefaultTopSites is how many sites lead the report
	DefaultTopSites = 5
	coastTopSites   = 3
)

// Options controls what a digest run covers
type Options struct {
	InSeasonOnly   bool // rank only the sites in season this month
	CoastBreakdown bool // build per-coast summaries and pick a best coast
}

// DefaultOptions is a seasonal run with the coast breakdown
func DefaultOptions() Options {
	return Options{InSeasonOnly: true, CoastBreakdown: true}
}

// Generator builds digest reports
type Generator struct {
	ranker    *ranking.Ranker
	forecasts noaa.ZoneForecastClient
	topSites  int
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewGenerator creates a generator. forecasts may be nil, which turns the
// multi-day outlook off.
func NewGenerator(ranker *ranking.Ranker, forecasts noaa.ZoneForecastClient, logger *slog.Logger, metrics *observability.Metrics) *Generator {
	if logger == nil {
		logger = observability.Discard()
	}
	return &Generator{
		ranker:    ranker,
		forecasts: forecasts,
		topSites:  DefaultTopSites,
		clock:     clockwork.NewRealClock(),
		logger:    logger,
		metrics:   metrics,
	}
}

// WithTopSites sets how many sites lead the report
func (g *Generator) WithTopSites(n int) *Generator {
	if n > 0 {
		g.topSites = n
	}
	return g
}

// WithClock replaces the clock used for timestamps
func (g *Generator) WithClock(clock clockwork.Clock) *Generator {
	g.clock = clock
	return g
}

// Generate runs one ranking pass and derives the report from it. It always
// returns a report; anything that goes wrong is listed in Report.Errors.
func (g *Generator) Generate(ctx context.Context, opts Options) (report *Report) {
	start := g.clock.Now()
	report = &Report{
		ID:          uuid.NewString(),
		GeneratedAt: start.In(models.HawaiiTime),
	}

	defer func() {
		if p := recover(); p != nil {
			g.logger.Error("digest generation failed", "report", report.ID, "error", p)
			report.Errors = append(report.Errors, fmt.Sprint(p))
		}
		if g.metrics != nil {
			g.metrics.DigestDuration.Observe(g.clock.Since(start).Seconds())
			g.metrics.DiveableSites.Set(float64(report.DiveableSites))
		}
	}()

	var ranked []ranking.RankedLocation
	if opts.InSeasonOnly {
		ranked = g.ranker.RankInSeason(ctx, ranking.RankOptions{})
	} else {
		ranked = g.ranker.RankAll(ctx, ranking.RankOptions{})
	}

	if len(ranked) == 0 {
		report.Errors = append(report.Errors, "No sites could be ranked")
		return report
	}

	report.Ranked = ranked
	report.TotalSites = len(ranked)
	for _, r := range ranked {
		if r.Diveable() {
			report.DiveableSites++
		}
	}
	report.TopSites = ranked[:min(g.topSites, len(ranked))]

	report.WaveRange = valueRange(ranked, func(s *models.EnvironmentalSnapshot) *float64 { return s.WaveHeightFt })
	report.WindRange = valueRange(ranked, func(s *models.EnvironmentalSnapshot) *float64 { return s.WindSpeedMph })
	report.Alerts = extractAlerts(ranked)
	report.TideInfo = extractTideInfo(ranked)

	if opts.CoastBreakdown {
		report.CoastSummaries = g.coastSummaries(ranked)
		report.BestCoast = bestCoast(report.CoastSummaries)
	}

	report.APIStatuses = collectAPIStatuses(ranked)

	if g.forecasts != nil {
		outlook, errs := g.buildOutlook(ctx, ranked, start)
		report.Outlook = outlook
		report.Errors = append(report.Errors, errs...)
	}

	g.logger.Info("digest generated",
		"report", report.ID,
		"sites", report.TotalSites,
		"diveable", report.DiveableSites,
		"best_coast", report.BestCoast,
		"errors", len(report.Errors),
	)
	return report
}

// valueRange returns the min and max of a snapshot reading, zero when no
// site has it
func valueRange(ranked []ranking.RankedLocation, field func(*models.EnvironmentalSnapshot) *float64) Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range ranked {
		if r.Snapshot == nil {
			continue
		}
		v := field(r.Snapshot)
		if v == nil {
			continue
		}
		lo = math.Min(lo, *v)
		hi = math.Max(hi, *v)
	}
	if math.IsInf(lo, 1) {
		return Range{}
	}
	return Range{Min: lo, Max: hi}
}

// extractAlerts lists each alert event once, first occurrence wins
func extractAlerts(ranked []ranking.RankedLocation) []AlertInfo {
	var alerts []AlertInfo
	seen := make(map[string]bool)

	for _, r := range ranked {
		if r.Snapshot == nil {
			continue
		}
		for _, a := range r.Snapshot.MarineAlerts {
			if a.Event == "" || seen[a.Event] {
				continue
			}
			seen[a.Event] = true

			headline := a.Headline
			if headline == "" {
				headline = a.Event
			}
			alerts = append(alerts, AlertInfo{
				Kind:          a.Kind(),
				Event:         a.Event,
				Headline:      headline,
				AffectedAreas: a.Areas(),
			})
		}
	}
	return alerts
}

// extractTideInfo takes the tides of the best ranked site that has any
func extractTideInfo(ranked []ranking.RankedLocation) *TideInfo {
	for _, r := range ranked {
		if r.Snapshot == nil {
			continue
		}
		if r.Snapshot.NextHighTide != nil || r.Snapshot.NextLowTide != nil {
			return &TideInfo{
				NextHigh: r.Snapshot.NextHighTide,
				NextLow:  r.Snapshot.NextLowTide,
			}
		}
	}
	return nil
}

// coastSummaries groups the ranking by coast in catalog order, then sorts the
// coasts by diveable count, most first
func (g *Generator) coastSummaries(ranked []ranking.RankedLocation) []CoastSummary {
	var summaries []CoastSummary

	for _, coast := range g.ranker.Catalog().Coasts() {
		var sites []ranking.RankedLocation
		for _, r := range ranked {
			if r.Location.Coast == coast {
				sites = append(sites, r)
			}
		}
		if len(sites) == 0 {
			continue
		}

		summary := CoastSummary{
			Coast:       coast,
			DisplayName: coast.DisplayName(),
			TopSites:    sites[:min(coastTopSites, len(sites))],
			TotalCount:  len(sites),
		}

		var total float64
		var withWaves int
		for _, s := range sites {
			if s.Diveable() {
				summary.DiveableCount++
			}
			if s.Snapshot != nil && s.Snapshot.WaveHeightFt != nil {
				total += *s.Snapshot.WaveHeightFt
				withWaves++
			}
		}
		if withWaves > 0 {
			summary.AverageWaveHeightFt = models.Float(total / float64(withWaves))
		}

		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].DiveableCount > summaries[j].DiveableCount
	})
	return summaries
}

// bestCoast names the coast with the most diveable sites, if any are
func bestCoast(summaries []CoastSummary) string {
	var best *CoastSummary
	for i := range summaries {
		if best == nil || summaries[i].DiveableCount > best.DiveableCount {
			best = &summaries[i]
		}
	}
	if best == nil || best.DiveableCount == 0 {
		return ""
	}
	return best.DisplayName
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
