// Package visitstats fetches measured per-venue visit statistics from an HTTP
// visit-analytics API.
package visitstats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"site-traffic-workers/internal/common/config"
	httpclient "site-traffic-workers/internal/common/http"
	"site-traffic-workers/internal/common/validation"
	"site-traffic-workers/internal/models"
)

// DefaultConfidence applies when the API omits a confidence value.
const DefaultConfidence = 0.95

// StatusError reports a non-200 answer. 402, 403 and 429 are the usual
// entitlement and quota refusals.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("visit stats API returned %d: %s", e.StatusCode, e.Body)
}

// Entitlement reports whether the account is not allowed to read the data.
func (e *StatusError) Entitlement() bool {
	return e.StatusCode == http.StatusPaymentRequired || e.StatusCode == http.StatusForbidden
}

type Provider struct {
	client  *httpclient.Client
	baseURL string
	schema  *validation.Schema
}

// New builds a provider from configuration.
func New(cfg config.VisitStatsConfig) *Provider {
	client := httpclient.NewClient(
		config.GetDuration(cfg.Timeout),
		httpclient.WithRateLimit(cfg.RequestsPerMinute, cfg.Burst),
		httpclient.WithHeader("X-API-Key", cfg.APIKey),
	)
	return NewWithClient(client, cfg.BaseURL)
}

func NewWithClient(client *httpclient.Client, baseURL string) *Provider {
	return &Provider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		schema:  validation.MustCompile(payloadSchema),
	}
}

type payload struct {
	VenueID            string                   `json:"venueId"`
	DailyVisitsTotal   int                      `json:"dailyVisitsTotal"`
	HourlyDistribution []models.HourlyEntry     `json:"hourlyDistribution"`
	WeeklyPattern      []models.WeeklyEntry     `json:"weeklyPattern"`
	Demographics       models.Demographics      `json:"demographics"`
	ComparisonDeltas   *models.ComparisonDeltas `json:"comparisonDeltas"`
	Confidence         *float64                 `json:"confidence"`
}

func (p *Provider) GetStats(ctx context.Context, venueID string) (*models.VisitStats, error) {
	endpoint := fmt.Sprintf("%s/venues/%s/visits", p.baseURL, url.PathEscape(venueID))

	status, body, err := p.client.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &StatusError{StatusCode: status, Body: truncate(string(body), 200)}
	}

	result, err := p.schema.ValidateBytes(body)
	if err != nil {
		return nil, fmt.Errorf("visit stats payload is not JSON: %w", err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("visit stats payload rejected: %s", strings.Join(result.GetErrorMessages(), "; "))
	}

	var pl payload
	if err := json.Unmarshal(body, &pl); err != nil {
		return nil, err
	}

	confidence := DefaultConfidence
	if pl.Confidence != nil {
		confidence = *pl.Confidence
	}

	return &models.VisitStats{
		VenueID:            venueID,
		Provenance:         models.ProvenanceMeasured,
		DailyVisitsTotal:   pl.DailyVisitsTotal,
		HourlyDistribution: pl.HourlyDistribution,
		WeeklyPattern:      pl.WeeklyPattern,
		Demographics:       pl.Demographics,
		ComparisonDeltas:   pl.ComparisonDeltas,
		Confidence:         confidence,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
