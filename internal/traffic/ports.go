package traffic

import (
	"context"

	"site-traffic-workers/internal/models"
)

// Sort hints understood by directory adapters.
const (
	SortByPopularity = "popularity"
	SortByRating     = "rating"
	SortByDistance   = "distance"
)

// SearchRequest is what AnalyzeArea asks the venue directory for.
type SearchRequest struct {
	Location       models.Location
	RadiusMeters   int
	CategoryFilter []string
	Limit          int
	SortHint       string
}

// VenueDirectory lists venues around a point. An error means the directory is
// unreachable; an empty slice means the area has no venues.
type VenueDirectory interface {
	Search(ctx context.Context, req SearchRequest) ([]models.Venue, error)
}

// VisitStatisticsProvider returns measured statistics for one venue. Failing is
// the expected path whenever the account lacks entitlement or quota.
type VisitStatisticsProvider interface {
	GetStats(ctx context.Context, venueID string) (*models.VisitStats, error)
}

// AnalysisCache stores finished analyses. Implementations stamp an expiry on
// Put and treat an expired entry as a miss on Get. Hits come back with
// Cached set and CachedAt filled in.
type AnalysisCache interface {
	Get(ctx context.Context, q models.AreaQuery) (*models.AreaAnalysis, bool, error)
	Put(ctx context.Context, q models.AreaQuery, a *models.AreaAnalysis) error
	Delete(ctx context.Context, q models.AreaQuery) error
}
