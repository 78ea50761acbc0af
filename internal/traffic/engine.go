// Package traffic estimates foot traffic around a point and scores the area as
// a site for a new food and beverage venue.
package traffic

import (
	"context"
	"fmt"
	"time"

	"site-traffic-workers/internal/common/errors"
	"site-traffic-workers/internal/common/logger"
	"site-traffic-workers/internal/common/metrics"
	"site-traffic-workers/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options bound every external call AnalyzeArea makes.
type Options struct {
	DirectoryTimeout     time.Duration
	CacheReadTimeout     time.Duration
	CacheWriteTimeout    time.Duration
	MaxConcurrentLookups int
	MaxVenues            int
	SortHint             string
	CategoryFilter       []string
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		DirectoryTimeout:     5 * time.Second,
		CacheReadTimeout:     500 * time.Millisecond,
		CacheWriteTimeout:    time.Second,
		MaxConcurrentLookups: 8,
		MaxVenues:            50,
		SortHint:             SortByPopularity,
		CategoryFilter:       []string{"restaurant", "cafe", "fast_food", "bar"},
	}
}

// Engine runs area analyses. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	directory VenueDirectory
	resolver  *Resolver
	cache     AnalysisCache
	logger    logger.Logger
	opts      Options
	now       func() time.Time
	newID     func() string
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the analysis id generator.
func WithIDGenerator(f func() string) EngineOption {
	return func(e *Engine) { e.newID = f }
}

// NewEngine wires an engine. cache may be nil to disable caching.
func NewEngine(directory VenueDirectory, resolver *Resolver, cache AnalysisCache, log logger.Logger, opts Options, extra ...EngineOption) *Engine {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if opts.MaxConcurrentLookups <= 0 {
		opts.MaxConcurrentLookups = 1
	}
	e := &Engine{
		directory: directory,
		resolver:  resolver,
		cache:     cache,
		logger:    log,
		opts:      opts,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
	for _, o := range extra {
		o(e)
	}
	return e
}

// AnalyzeArea returns a complete analysis for q. The only errors are an
// invalid query and an unreachable venue directory; provider and cache
// failures degrade silently.
func (e *Engine) AnalyzeArea(ctx context.Context, q models.AreaQuery) (*models.AreaAnalysis, error) {
	start := e.now()
	defer func() {
		metrics.AreaAnalysisDuration.Observe(time.Since(start).Seconds())
	}()

	if err := ValidateQuery(q); err != nil {
		metrics.AreaAnalyses.WithLabelValues("invalid").Inc()
		return nil, err
	}

	log := e.logger.WithFields(map[string]interface{}{
		"latitude":     q.Latitude,
		"longitude":    q.Longitude,
		"radiusMeters": q.RadiusMeters,
	})

	if cached, ok := e.readCache(ctx, q, log); ok {
		metrics.AreaAnalyses.WithLabelValues("cached").Inc()
		return cached, nil
	}

	venues, err := e.searchVenues(ctx, q)
	if err != nil {
		metrics.AreaAnalyses.WithLabelValues("directory_error").Inc()
		log.Error("Venue directory unavailable", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	var analysis *models.AreaAnalysis
	if len(venues) == 0 {
		analysis = EmptyAreaAnalysis(q)
		metrics.AreaAnalyses.WithLabelValues("empty_area").Inc()
	} else {
		resolved := e.resolveAll(ctx, venues)
		analysis = Aggregate(q, resolved)
		analysis.OpportunityScore = OpportunityScore(analysis)
		analysis.Insights = Insights(analysis)
		metrics.AreaAnalyses.WithLabelValues("computed").Inc()
	}

	generatedAt := e.now().UTC()
	analysis.ID = e.newID()
	analysis.GeneratedAt = generatedAt
	analysis.AnalysisDate = generatedAt.Format("2006-01-02")

	e.writeCache(ctx, q, analysis, log)

	log.Info("Area analysis completed", map[string]interface{}{
		"analysisId":       analysis.ID,
		"totalVenues":      analysis.TotalVenues,
		"opportunityScore": analysis.OpportunityScore,
		"confidenceLevel":  analysis.ConfidenceLevel,
		"estimatedData":    analysis.EstimatedData,
	})
	return analysis, nil
}

// ValidateQuery rejects queries no directory could answer.
func ValidateQuery(q models.AreaQuery) error {
	switch {
	case q.RadiusMeters <= 0:
		return errors.NewInvalidAreaQueryError(fmt.Sprintf("radiusMeters must be positive, got %d", q.RadiusMeters))
	case q.Latitude < -90 || q.Latitude > 90:
		return errors.NewInvalidAreaQueryError(fmt.Sprintf("latitude %v out of range", q.Latitude))
	case q.Longitude < -180 || q.Longitude > 180:
		return errors.NewInvalidAreaQueryError(fmt.Sprintf("longitude %v out of range", q.Longitude))
	}
	return nil
}

func (e *Engine) readCache(ctx context.Context, q models.AreaQuery, log logger.Logger) (*models.AreaAnalysis, bool) {
	if e.cache == nil {
		return nil, false
	}
	ctx, cancel := withOptionalTimeout(ctx, e.opts.CacheReadTimeout)
	defer cancel()

	a, ok, err := e.cache.Get(ctx, q)
	if err != nil {
		metrics.AnalysisCacheErrors.WithLabelValues("read").Inc()
		log.Warn("Analysis cache read failed, treating as miss", map[string]interface{}{
			"code":  string(errors.CodeOf(err)),
			"error": err.Error(),
		})
		return nil, false
	}
	return a, ok
}

// writeCache runs detached from the caller's cancellation so a finished
// analysis still gets stored, but never longer than CacheWriteTimeout.
func (e *Engine) writeCache(ctx context.Context, q models.AreaQuery, a *models.AreaAnalysis, log logger.Logger) {
	if e.cache == nil {
		return
	}
	ctx, cancel := withOptionalTimeout(context.WithoutCancel(ctx), e.opts.CacheWriteTimeout)
	defer cancel()

	if err := e.cache.Put(ctx, q, a); err != nil {
		metrics.AnalysisCacheErrors.WithLabelValues("write").Inc()
		log.Warn("Analysis cache write failed, result not persisted", map[string]interface{}{
			"analysisId": a.ID,
			"code":       string(errors.CodeOf(err)),
			"error":      err.Error(),
		})
	}
}

func (e *Engine) searchVenues(ctx context.Context, q models.AreaQuery) ([]models.Venue, error) {
	ctx, cancel := withOptionalTimeout(ctx, e.opts.DirectoryTimeout)
	defer cancel()

	venues, err := e.directory.Search(ctx, SearchRequest{
		Location:       models.Location{Latitude: q.Latitude, Longitude: q.Longitude},
		RadiusMeters:   q.RadiusMeters,
		CategoryFilter: e.opts.CategoryFilter,
		Limit:          e.opts.MaxVenues,
		SortHint:       e.opts.SortHint,
	})
	if err != nil {
		if stdErr, ok := errors.AsStandardError(err); ok && stdErr.Code == errors.ErrCodeVenueDirectoryUnavailable {
			return nil, stdErr
		}
		return nil, errors.NewVenueDirectoryUnavailableError("directory", err)
	}
	if e.opts.MaxVenues > 0 && len(venues) > e.opts.MaxVenues {
		venues = venues[:e.opts.MaxVenues]
	}
	return venues, nil
}

// resolveAll looks venues up concurrently and returns once every venue has
// stats. Lookups never fail, so the group only bounds concurrency.
func (e *Engine) resolveAll(ctx context.Context, venues []models.Venue) []ResolvedVenue {
	out := make([]ResolvedVenue, len(venues))

	var g errgroup.Group
	g.SetLimit(e.opts.MaxConcurrentLookups)
	for i := range venues {
		i := i
		g.Go(func() error {
			out[i] = ResolvedVenue{
				Venue: venues[i],
				Stats: e.resolver.Resolve(ctx, venues[i]),
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
