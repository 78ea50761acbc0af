package traffic

import (
	"context"
	"fmt"
	"time"

	"site-traffic-workers/internal/common/errors"
	"site-traffic-workers/internal/common/logger"
	"site-traffic-workers/internal/common/metrics"
	"site-traffic-workers/internal/models"
)

// Resolver returns measured stats when the provider has them and synthesized
// stats otherwise. Resolve has no error return.
type Resolver struct {
	provider    VisitStatisticsProvider
	synthesizer *Synthesizer
	timeout     time.Duration
	logger      logger.Logger
}

// NewResolver accepts a nil provider, in which case every venue is synthesized.
func NewResolver(provider VisitStatisticsProvider, synthesizer *Synthesizer, timeout time.Duration, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Resolver{
		provider:    provider,
		synthesizer: synthesizer,
		timeout:     timeout,
		logger:      log,
	}
}

func (r *Resolver) Resolve(ctx context.Context, v models.Venue) *models.VisitStats {
	if r.provider != nil {
		stats, err := r.fetch(ctx, v.ID)
		if err == nil {
			metrics.VisitStatsResolutions.WithLabelValues(string(models.ProvenanceMeasured)).Inc()
			return stats
		}
		stdErr := errors.NewVisitStatsUnavailableError(v.ID, err)
		r.logger.Debug("Visit stats unavailable, synthesizing", map[string]interface{}{
			"venueId": v.ID,
			"code":    string(stdErr.Code),
			"error":   err.Error(),
		})
	}

	metrics.VisitStatsResolutions.WithLabelValues(string(models.ProvenanceEstimated)).Inc()
	return r.synthesizer.Synthesize(v)
}

func (r *Resolver) fetch(ctx context.Context, venueID string) (stats *models.VisitStats, err error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// A misbehaving provider must not take the analysis down with it.
	defer func() {
		if rec := recover(); rec != nil {
			stats, err = nil, fmt.Errorf("provider panic: %v", rec)
		}
	}()

	stats, err = r.provider.GetStats(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if err := checkShape(stats); err != nil {
		return nil, err
	}

	stats.VenueID = venueID
	stats.Provenance = models.ProvenanceMeasured
	return stats, nil
}

// checkShape rejects provider payloads that break the 24h/7d invariants.
func checkShape(s *models.VisitStats) error {
	if s == nil {
		return fmt.Errorf("empty stats")
	}
	if len(s.HourlyDistribution) != 24 {
		return fmt.Errorf("hourly distribution has %d entries", len(s.HourlyDistribution))
	}
	seenHour := make(map[int]bool, 24)
	for _, e := range s.HourlyDistribution {
		if e.Hour < 0 || e.Hour > 23 || seenHour[e.Hour] {
			return fmt.Errorf("bad or duplicate hour %d", e.Hour)
		}
		seenHour[e.Hour] = true
	}
	if len(s.WeeklyPattern) != 7 {
		return fmt.Errorf("weekly pattern has %d entries", len(s.WeeklyPattern))
	}
	seenDay := make(map[string]bool, 7)
	for _, e := range s.WeeklyPattern {
		if seenDay[e.Weekday] {
			return fmt.Errorf("duplicate weekday %s", e.Weekday)
		}
		seenDay[e.Weekday] = true
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range", s.Confidence)
	}
	return nil
}
