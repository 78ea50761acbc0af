package visitstats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"site-traffic-workers/internal/common/config"
	httpclient "site-traffic-workers/internal/common/http"
	"site-traffic-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func validPayload(confidence *float64) map[string]interface{} {
	hourly := make([]map[string]interface{}, 24)
	for h := range hourly {
		hourly[h] = map[string]interface{}{"hour": h, "visits": 10, "historicalAvgVisits": 9, "popularityScore": 40}
	}
	weekly := make([]map[string]interface{}, 7)
	for i, d := range weekdays {
		weekly[i] = map[string]interface{}{"weekday": d, "visits": 240, "avgVisitDurationMinutes": 45}
	}
	p := map[string]interface{}{
		"venueId":            "v1",
		"dailyVisitsTotal":   240,
		"hourlyDistribution": hourly,
		"weeklyPattern":      weekly,
		"demographics": map[string]interface{}{
			"ageGroups": []map[string]interface{}{{"range": "18-24", "percentage": 40}, {"range": "25-34", "percentage": 60}},
		},
		"comparisonDeltas": map[string]interface{}{"vsLastWeek": 0.12},
	}
	if confidence != nil {
		p["confidence"] = *confidence
	}
	return p
}

func serve(t *testing.T, status int, body interface{}, seen *http.Request) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = *r.Clone(context.Background())
		}
		w.WriteHeader(status)
		switch b := body.(type) {
		case string:
			_, _ = w.Write([]byte(b))
		default:
			_ = json.NewEncoder(w).Encode(b)
		}
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestGetStats_Measured(t *testing.T) {
	var seen http.Request
	base := serve(t, http.StatusOK, validPayload(nil), &seen)
	provider := New(config.VisitStatsConfig{BaseURL: base + "/", APIKey: "secret", Timeout: 1000})

	stats, err := provider.GetStats(context.Background(), "venue 1")

	require.NoError(t, err)
	assert.Equal(t, "/venues/venue%201/visits", seen.URL.EscapedPath())
	assert.Equal(t, "secret", seen.Header.Get("X-API-Key"))

	assert.Equal(t, "venue 1", stats.VenueID)
	assert.Equal(t, models.ProvenanceMeasured, stats.Provenance)
	assert.False(t, stats.Estimated())
	assert.Equal(t, 240, stats.DailyVisitsTotal)
	assert.Len(t, stats.HourlyDistribution, 24)
	assert.Len(t, stats.WeeklyPattern, 7)
	assert.Equal(t, DefaultConfidence, stats.Confidence)
	require.NotNil(t, stats.ComparisonDeltas)
	require.NotNil(t, stats.ComparisonDeltas.VsLastWeek)
	assert.Equal(t, 0.12, *stats.ComparisonDeltas.VsLastWeek)
	assert.Nil(t, stats.ComparisonDeltas.VsLastYear)
	assert.Len(t, stats.Demographics.AgeGroups, 2)
}

func TestGetStats_ReportedConfidence(t *testing.T) {
	c := 0.7
	base := serve(t, http.StatusOK, validPayload(&c), nil)

	stats, err := New(config.VisitStatsConfig{BaseURL: base}).GetStats(context.Background(), "v1")

	require.NoError(t, err)
	assert.Equal(t, 0.7, stats.Confidence)
}

func TestGetStats_Failures(t *testing.T) {
	short := validPayload(nil)
	short["hourlyDistribution"] = short["hourlyDistribution"].([]map[string]interface{})[:23]

	badDay := validPayload(nil)
	badDay["weeklyPattern"].([]map[string]interface{})[0]["weekday"] = "Funday"

	tests := []struct {
		name        string
		status      int
		body        interface{}
		entitlement bool
	}{
		{"payment required", http.StatusPaymentRequired, `{"error":"upgrade plan"}`, true},
		{"forbidden", http.StatusForbidden, `{"error":"no access"}`, true},
		{"quota", http.StatusTooManyRequests, `{"error":"slow down"}`, false},
		{"not json", http.StatusOK, `<html>`, false},
		{"23 hours", http.StatusOK, short, false},
		{"unknown weekday", http.StatusOK, badDay, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := serve(t, tt.status, tt.body, nil)

			stats, err := New(config.VisitStatsConfig{BaseURL: base}).GetStats(context.Background(), "v1")

			assert.Nil(t, stats)
			require.Error(t, err)
			if statusErr, ok := err.(*StatusError); ok {
				assert.Equal(t, tt.status, statusErr.StatusCode)
				assert.Equal(t, tt.entitlement, statusErr.Entitlement())
			} else {
				assert.Equal(t, http.StatusOK, tt.status)
			}
		})
	}
}

func TestGetStats_RateLimited(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(validPayload(nil))
	}))
	defer srv.Close()

	client := httpclient.NewClient(time.Second, httpclient.WithRateLimit(1, 1))
	provider := NewWithClient(client, srv.URL)

	_, err := provider.GetStats(context.Background(), "v1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = provider.GetStats(ctx, "v2")

	assert.Error(t, err, "second token is a minute away")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
