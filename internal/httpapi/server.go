package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ngmaloney/reefcast/internal/catalog"
	"github.com/ngmaloney/reefcast/internal/digest"
	"github.com/ngmaloney/reefcast/internal/models"
	"github.com/ngmaloney/reefcast/internal/ranking"
)

// Ranker is the slice of the ranking engine the API serves
type Ranker interface {
	Catalog() *catalog.Catalog
	ScoreSite(ctx context.Context, loc *models.Location, snap *models.EnvironmentalSnapshot) (ranking.RankedLocation, error)
	RankInSeason(ctx context.Context, opts ranking.RankOptions) []ranking.RankedLocation
	RankCoast(ctx context.Context, coast models.Coast, topN int) []ranking.RankedLocation
	BestSites(ctx context.Context, opts ranking.BestOptions) []ranking.RankedLocation
}

// DigestGenerator builds a digest report
type DigestGenerator interface {
	Generate(ctx context.Context, opts digest.Options) *digest.Report
}

// Readiness is flipped once the service has loaded what it needs to answer requests
type Readiness struct {
	ready atomic.Bool
}

// SetReady marks the service ready or not ready
func (r *Readiness) SetReady(ready bool) {
	r.ready.Store(ready)
}

// CheckReadiness implements the /readyz probe
func (r *Readiness) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("catalog not loaded")
	}
	return nil
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the health, metrics and dive-conditions endpoints.
type Server struct {
	httpServer *http.Server
	ranker     Ranker
	digests    DigestGenerator
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the /api routes.
func NewServer(addr string, ready ReadinessChecker, ranker Ranker, digests DigestGenerator, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		ranker:  ranker,
		digests: digests,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/digest", s.handleDigest)
	mux.HandleFunc("GET /api/rank", s.handleRank)
	mux.HandleFunc("GET /api/best", s.handleBest)
	mux.HandleFunc("GET /api/sites/{id}", s.handleSite)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// sitesResponse wraps a ranked list
type sitesResponse struct {
	Count int                      `json:"count"`
	Sites []ranking.RankedLocation `json:"sites"`
}

func newSitesResponse(sites []ranking.RankedLocation) sitesResponse {
	if sites == nil {
		sites = []ranking.RankedLocation{}
	}
	return sitesResponse{Count: len(sites), Sites: sites}
}

// handleDigest serves GET /api/digest?all_sites=&coast_breakdown=
func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	opts := digest.DefaultOptions()
	q := r.URL.Query()

	allSites, err := boolParam(q.Get("all_sites"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid all_sites")
		return
	}
	breakdown, err := boolParam(q.Get("coast_breakdown"), opts.CoastBreakdown)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid coast_breakdown")
		return
	}
	opts.InSeasonOnly = !allSites
	opts.CoastBreakdown = breakdown

	report := s.digests.Generate(r.Context(), opts)
	writeJSON(w, http.StatusOK, report)
}

// handleRank serves GET /api/rank?coast=&top=. Without a coast it ranks
// every in-season site.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	top, err := intParam(q.Get("top"), 0)
	if err != nil || top < 0 {
		writeError(w, http.StatusBadRequest, "invalid top")
		return
	}

	coast := models.Coast(strings.ToLower(strings.TrimSpace(q.Get("coast"))))
	if coast == "" {
		ranked := s.ranker.RankInSeason(r.Context(), ranking.RankOptions{TopN: top})
		writeJSON(w, http.StatusOK, newSitesResponse(ranked))
		return
	}

	if !s.hasCoast(coast) {
		writeError(w, http.StatusNotFound, "unknown coast: "+string(coast))
		return
	}
	ranked := s.ranker.RankCoast(r.Context(), coast, top)
	writeJSON(w, http.StatusOK, newSitesResponse(ranked))
}

// handleBest serves GET /api/best?skill=&count=&spearfishing=
func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	count, err := intParam(q.Get("count"), ranking.DefaultBestCount)
	if err != nil || count <= 0 {
		writeError(w, http.StatusBadRequest, "invalid count")
		return
	}
	spear, err := boolParam(q.Get("spearfishing"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid spearfishing")
		return
	}
	skill := models.SkillLevel(strings.ToLower(strings.TrimSpace(q.Get("skill"))))
	if skill != "" {
		if _, ok := skill.Rank(); !ok {
			writeError(w, http.StatusBadRequest, "unknown skill level: "+string(skill))
			return
		}
	}

	best := s.ranker.BestSites(r.Context(), ranking.BestOptions{
		Count:        count,
		MaxSkill:     skill,
		Spearfishing: spear,
	})
	writeJSON(w, http.StatusOK, newSitesResponse(best))
}

// handleSite serves GET /api/sites/{id}: one site scored against live conditions
func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	loc, err := s.ranker.Catalog().Site(r.PathValue("id"))
	if errors.Is(err, catalog.ErrSiteNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ranked, err := s.ranker.ScoreSite(r.Context(), loc, nil)
	if err != nil {
		s.logger.Warn("site scoring failed", "site", loc.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "scoring failed")
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (s *Server) hasCoast(coast models.Coast) bool {
	for _, c := range s.ranker.Catalog().Coasts() {
		if c == coast {
			return true
		}
	}
	return false
}

func boolParam(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
