package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ngmaloney/reefcast/internal/assembler"
	"github.com/ngmaloney/reefcast/internal/cache"
	"github.com/ngmaloney/reefcast/internal/catalog"
	"github.com/ngmaloney/reefcast/internal/config"
	"github.com/ngmaloney/reefcast/internal/cwb"
	"github.com/ngmaloney/reefcast/internal/database"
	"github.com/ngmaloney/reefcast/internal/digest"
	"github.com/ngmaloney/reefcast/internal/httpapi"
	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/ndbc"
	"github.com/ngmaloney/reefcast/internal/noaa"
	"github.com/ngmaloney/reefcast/internal/observability"
	"github.com/ngmaloney/reefcast/internal/pacioos"
	"github.com/ngmaloney/reefcast/internal/publish"
	"github.com/ngmaloney/reefcast/internal/ranking"
	"github.com/ngmaloney/reefcast/internal/ui"
	"github.com/ngmaloney/reefcast/internal/usgs"
	"github.com/ngmaloney/reefcast/internal/zonelookup"
)

// options are the command-line switches. Everything else comes from the environment.
type options struct {
	format           string
	output           string
	allSites         bool
	noCoastBreakdown bool
	coast            string
	best             bool
	skill            string
	spearfishing     bool
	tui              bool
	serve            bool
	publish          bool
	verbose          bool
	dryRun           bool
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run() (int, error) {
	var opts options
	flag.StringVar(&opts.format, "format", "text", "Output format: text, sms or json")
	flag.StringVar(&opts.output, "output", "", "Write output to this file instead of stdout")
	flag.BoolVar(&opts.allSites, "all-sites", false, "Include sites outside their seasonal window")
	flag.BoolVar(&opts.noCoastBreakdown, "no-coast-breakdown", false, "Skip the per-coast summaries")
	flag.StringVar(&opts.coast, "coast", "", "Rank a single coast (north_shore, west_side, south_shore, southeast, windward)")
	flag.BoolVar(&opts.best, "best", false, "List the best diveable sites right now")
	flag.StringVar(&opts.skill, "skill", "", "With -best, the highest skill level to include")
	flag.BoolVar(&opts.spearfishing, "spearfishing", false, "With -best, only sites that allow spearfishing")
	flag.BoolVar(&opts.tui, "tui", false, "Browse the digest interactively")
	flag.BoolVar(&opts.serve, "serve", false, "Serve the HTTP API")
	flag.BoolVar(&opts.publish, "publish", false, "Publish the digest to Kafka")
	flag.BoolVar(&opts.verbose, "verbose", false, "Debug logging")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Build the digest but do not publish it")
	flag.Parse()

	switch opts.format {
	case "text", "sms", "json":
	default:
		return 1, fmt.Errorf("unknown format %q", opts.format)
	}
	if opts.skill != "" {
		if _, ok := models.SkillLevel(opts.skill).Rank(); !ok {
			return 1, fmt.Errorf("unknown skill level %q", opts.skill)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return 1, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return 1, err
	}
	logger.Debug("catalog loaded", "path", cfg.CatalogPath, "sites", cat.Count())

	db, err := openDatabase(cfg)
	if err != nil {
		return 1, err
	}
	if db != nil {
		defer db.Close()
	}

	var store *cache.Store
	if cfg.CacheEnabled && db != nil {
		store = cache.NewStore(db)
		if n, err := store.Purge(); err != nil {
			logger.Warn("cache purge failed", "error", err)
		} else if n > 0 {
			logger.Debug("purged expired cache entries", "count", n)
		}
	}

	httpClient := func(source string) *http.Client {
		return cache.NewClient(store, source, cfg.HTTPTimeout, metrics, logger)
	}

	weather := noaa.NewWeatherClient(httpClient(cache.SourceNWS), cfg.NWSUserAgent)

	if cfg.MarineZonesShapefile != "" && db != nil {
		assignZones(ctx, db, cat, cfg.MarineZonesShapefile, logger)
	} else {
		zonelookup.AssignCoastZonesFrom(ctx, cat, weather, logger)
	}
	asm := assembler.New(assembler.Providers{
		Buoy:       ndbc.NewClient(httpClient(cache.SourceBuoy)),
		WaveModel:  pacioos.NewClient(httpClient(cache.SourcePacIOOS)),
		Wind:       weather,
		Tides:      noaa.NewTideClient(httpClient(cache.SourceTides)),
		Discharge:  usgs.NewClient(httpClient(cache.SourceUSGS)),
		Alerts:     noaa.NewAlertClient(httpClient(cache.SourceAlerts), cfg.NWSUserAgent),
		Advisories: cwb.NewClient(httpClient(cache.SourceCWB)),
	}, logger, metrics)

	ranker := ranking.New(cat, asm, logger, metrics)
	gen := digest.NewGenerator(ranker, weather, logger, metrics).WithTopSites(cfg.TopSites)

	digestOpts := digest.Options{
		InSeasonOnly:   !opts.allSites,
		CoastBreakdown: !opts.noCoastBreakdown,
	}

	switch {
	case opts.serve:
		return serve(ctx, cfg, ranker, gen, logger)

	case opts.tui:
		p := tea.NewProgram(ui.NewModel(gen, digestOpts), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return 1, fmt.Errorf("running browser: %w", err)
		}
		return 0, nil

	case opts.coast != "":
		coast := models.Coast(strings.ToLower(opts.coast))
		ranked := ranker.RankCoast(ctx, coast, 0)
		if len(ranked) == 0 {
			return 1, fmt.Errorf("no sites on coast %q", opts.coast)
		}
		return 0, writeSites(opts, coast.DisplayName()+" Rankings", ranked)

	case opts.best:
		best := ranker.BestSites(ctx, ranking.BestOptions{
			Count:        cfg.TopSites,
			MaxSkill:     models.SkillLevel(opts.skill),
			Spearfishing: opts.spearfishing,
		})
		return 0, writeSites(opts, "Best Dive Sites Right Now", best)
	}

	report := gen.Generate(ctx, digestOpts)
	if err := writeReport(opts, report); err != nil {
		return 1, err
	}

	if opts.publish {
		if err := publishReport(ctx, cfg, opts.dryRun, report, logger, metrics); err != nil {
			return 1, err
		}
	}

	if report.DiveableSites == 0 && len(report.Errors) > 0 {
		return 1, nil
	}
	return 0, nil
}

// openDatabase opens the shared sqlite file when the cache or zone lookup needs it
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	if !cfg.CacheEnabled && cfg.MarineZonesShapefile == "" {
		return nil, nil
	}
	path := cfg.DBPath
	if path == "" {
		path = database.DBPath()
	}
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// assignZones provisions the marine zone table and fills in coasts the catalog
// left without a forecast zone. Failures only cost the outlook.
func assignZones(ctx context.Context, db *sql.DB, cat *catalog.Catalog, source string, logger *slog.Logger) {
	zones := zonelookup.New(db, logger)
	if source == "default" {
		source = zonelookup.MarineZonesURL
	}
	if _, err := zones.Provision(ctx, source); err != nil {
		logger.Warn("marine zone provisioning failed", "source", source, "error", err)
		return
	}
	n, err := zones.AssignCoastZones(ctx, cat, zonelookup.DefaultMaxDistanceMiles)
	if err != nil {
		logger.Warn("marine zone assignment failed", "error", err)
		return
	}
	logger.Debug("marine zones assigned", "coasts", n)
}

func serve(ctx context.Context, cfg *config.Config, ranker *ranking.Ranker, gen *digest.Generator, logger *slog.Logger) (int, error) {
	ready := &httpapi.Readiness{}
	srv := httpapi.NewServer(cfg.HTTPAddr, ready, ranker, gen, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	ready.SetReady(true)

	<-ctx.Done()
	logger.Info("shutting down")
	ready.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
		return 1, nil
	}
	logger.Info("shutdown complete")
	return 0, nil
}

func publishReport(ctx context.Context, cfg *config.Config, dryRun bool, report *digest.Report, logger *slog.Logger, metrics *observability.Metrics) error {
	if dryRun {
		msgs, err := publish.Messages(report)
		if err != nil {
			return err
		}
		logger.Info("dry run, not publishing", "report", report.ID, "messages", len(msgs))
		return nil
	}
	if !cfg.PublishEnabled() {
		return errors.New("-publish needs KAFKA_BROKERS")
	}

	pub := publish.NewPublisher(cfg, logger, metrics)
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}()
	return pub.Publish(ctx, report)
}
