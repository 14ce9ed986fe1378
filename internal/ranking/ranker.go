// Package ranking scores many dive sites against current conditions and
// orders them best first
package ranking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jonboulle/clockwork"

	"github.com/ngmaloney/reefcast/internal/assembler"
	"github.com/ngmaloney/reefcast/internal/catalog"
	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/observability"
	"github.com/ngmaloney/reefcast/internal/scoring"
)

// Defaults for coast and best-of queries
const (
	DefaultCoastTopN = 5
	DefaultBestCount = 5
)

// SnapshotAssembler builds the environmental snapshot for one location
type SnapshotAssembler interface {
	Assemble(ctx context.Context, batch *assembler.Batch, loc *models.Location) *models.EnvironmentalSnapshot
}

// RankedLocation pairs a site with its conditions and score. Rank is 1-based
// and only set by a batch ranking; a site scored alone has rank 0.
type RankedLocation struct {
	Location *models.Location              `json:"location"`
	Snapshot *models.EnvironmentalSnapshot `json:"conditions"`
	Result   scoring.Result                `json:"score"`
	Rank     int                           `json:"rank"`
}

// Diveable reports whether the site scored at least the diveable threshold
func (r RankedLocation) Diveable() bool {
	return r.Result.Diveable
}

// RankOptions filters and bounds a ranking
type RankOptions struct {
	MinScore float64 // drop results scoring below this
	TopN     int     // 0 keeps everything
}

// BestOptions narrows a best-sites query
type BestOptions struct {
	Count        int               // 0 means DefaultBestCount
	MaxSkill     models.SkillLevel // "" means no ceiling
	Spearfishing bool              // only sites that allow spearfishing
}

// Ranker applies the scoring engine across the catalog
type Ranker struct {
	catalog   *catalog.Catalog
	assembler SnapshotAssembler
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a ranker. logger and metrics may be nil.
func New(cat *catalog.Catalog, asm SnapshotAssembler, logger *slog.Logger, metrics *observability.Metrics) *Ranker {
	if logger == nil {
		logger = observability.Discard()
	}
	return &Ranker{
		catalog:   cat,
		assembler: asm,
		clock:     clockwork.NewRealClock(),
		logger:    logger,
		metrics:   metrics,
	}
}

// WithClock replaces the clock that decides the current season
func (r *Ranker) WithClock(clock clockwork.Clock) *Ranker {
	r.clock = clock
	return r
}

// Catalog returns the catalog the ranker draws candidates from
func (r *Ranker) Catalog() *catalog.Catalog {
	return r.catalog
}

// ScoreSite scores one location. A nil snapshot is assembled with a fresh
// batch. The returned rank is 0.
func (r *Ranker) ScoreSite(ctx context.Context, loc *models.Location, snap *models.EnvironmentalSnapshot) (RankedLocation, error) {
	return r.scoreSite(ctx, assembler.NewBatch(), loc, snap)
}

func (r *Ranker) scoreSite(ctx context.Context, batch *assembler.Batch, loc *models.Location, snap *models.EnvironmentalSnapshot) (ranked RankedLocation, err error) {
	if loc == nil {
		return RankedLocation{}, errors.New("location is required")
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic scoring %s: %v", loc.ID, p)
		}
	}()

	if snap == nil {
		if r.assembler == nil {
			return RankedLocation{}, errors.New("no assembler configured")
		}
		snap = r.assembler.Assemble(ctx, batch, loc)
	}

	return RankedLocation{
		Location: loc,
		Snapshot: snap,
		Result:   scoring.Score(scoring.NewInput(loc, snap)),
	}, nil
}

// Rank scores every location against one shared batch, drops results below
// MinScore, sorts best first (ties keep input order), assigns ranks from 1
// and truncates to TopN. A location that fails to score is logged and left
// out.
func (r *Ranker) Rank(ctx context.Context, locs []*models.Location, opts RankOptions) []RankedLocation {
	if r.metrics != nil {
		r.metrics.RankRuns.Inc()
	}

	batch := assembler.NewBatch()
	ranked := make([]RankedLocation, 0, len(locs))

	for _, loc := range locs {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("ranking cancelled", "scored", len(ranked), "error", err)
			break
		}

		result, err := r.scoreSite(ctx, batch, loc, nil)
		if err != nil {
			if r.metrics != nil {
				r.metrics.ScoringFailures.Inc()
			}
			id := ""
			if loc != nil {
				id = loc.ID
			}
			r.logger.Warn("failed to score site", "site", id, "error", err)
			continue
		}
		if r.metrics != nil {
			r.metrics.SitesScored.Inc()
		}

		if result.Result.TotalScore >= opts.MinScore {
			ranked = append(ranked, result)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.TotalScore > ranked[j].Result.TotalScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if opts.TopN > 0 && len(ranked) > opts.TopN {
		ranked = ranked[:opts.TopN]
	}
	return ranked
}

// RankInSeason ranks the sites in season this month
func (r *Ranker) RankInSeason(ctx context.Context, opts RankOptions) []RankedLocation {
	return r.Rank(ctx, r.catalog.InSeason(r.currentMonth()), opts)
}

// RankAll ranks every site in the catalog regardless of season
func (r *Ranker) RankAll(ctx context.Context, opts RankOptions) []RankedLocation {
	return r.Rank(ctx, r.catalog.All(), opts)
}

// RankCoast ranks one coast's sites. An explicit coast overrides seasonal
// scoping. topN <= 0 means DefaultCoastTopN.
func (r *Ranker) RankCoast(ctx context.Context, coast models.Coast, topN int) []RankedLocation {
	if topN <= 0 {
		topN = DefaultCoastTopN
	}
	return r.Rank(ctx, r.catalog.ByCoast(coast), RankOptions{TopN: topN})
}

// BestSites returns the top diveable in-season sites, optionally limited to a
// skill ceiling (unknown skill labels are kept) and to spearfishing sites
func (r *Ranker) BestSites(ctx context.Context, opts BestOptions) []RankedLocation {
	count := opts.Count
	if count <= 0 {
		count = DefaultBestCount
	}

	candidates := r.catalog.Filter(catalog.Filter{
		InSeasonMonth:    r.currentMonth(),
		MaxSkill:         opts.MaxSkill,
		SpearfishingOnly: opts.Spearfishing,
	})

	var best []RankedLocation
	for _, ranked := range r.Rank(ctx, candidates, RankOptions{}) {
		if !ranked.Diveable() {
			continue
		}
		best = append(best, ranked)
		if len(best) == count {
			break
		}
	}
	return best
}

func (r *Ranker) currentMonth() int {
	return int(r.clock.Now().In(models.HawaiiTime).Month())
}
