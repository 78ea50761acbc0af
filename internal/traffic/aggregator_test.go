package traffic

import (
	"testing"

	"site-traffic-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

// flatStats builds a 24h record with the given visits per hour.
func flatStats(provenance models.Provenance, visits map[int]int, popularity map[int]float64) *models.VisitStats {
	hourly := make([]models.HourlyEntry, 24)
	total := 0
	for h := range hourly {
		hourly[h] = models.HourlyEntry{Hour: h, Visits: visits[h], PopularityScore: popularity[h]}
		total += visits[h]
	}
	weekly := make([]models.WeeklyEntry, 7)
	for i, d := range Weekdays {
		weekly[i] = models.WeeklyEntry{Weekday: d, Visits: total}
	}
	return &models.VisitStats{
		Provenance:         provenance,
		DailyVisitsTotal:   total,
		HourlyDistribution: hourly,
		WeeklyPattern:      weekly,
	}
}

func TestCompetitionDensity(t *testing.T) {
	assert.InDelta(t, 3.18, CompetitionDensity(10, 1000), 0.01)
	assert.Equal(t, 3.18, CompetitionDensity(10, 1000))
	assert.Equal(t, 1.59, CompetitionDensity(5, 1000))
	assert.Equal(t, 12.73, CompetitionDensity(10, 500))
	assert.Equal(t, 0.0, CompetitionDensity(0, 1000))
}

func TestPeakHours_SortedAscending(t *testing.T) {
	hourly := flatStats(models.ProvenanceEstimated, map[int]int{20: 100, 8: 90, 12: 95, 13: 50}, nil).HourlyDistribution
	assert.Equal(t, []int{8, 12, 20}, PeakHours(hourly))
}

func TestPeakHours_TiesAndSparseDays(t *testing.T) {
	ties := flatStats(models.ProvenanceEstimated, map[int]int{5: 10, 6: 10, 7: 10, 8: 10}, nil).HourlyDistribution
	assert.Equal(t, []int{5, 6, 7}, PeakHours(ties))

	sparse := flatStats(models.ProvenanceEstimated, map[int]int{22: 4}, nil).HourlyDistribution
	assert.Equal(t, []int{22}, PeakHours(sparse))

	empty := flatStats(models.ProvenanceEstimated, nil, nil).HourlyDistribution
	assert.Empty(t, PeakHours(empty))
}

func TestAggregate_TotalsAndHourly(t *testing.T) {
	q := models.AreaQuery{Latitude: 13.7563, Longitude: 100.5018, RadiusMeters: 1000}
	a := flatStats(models.ProvenanceMeasured, map[int]int{12: 100, 19: 50}, map[int]float64{12: 80, 19: 40})
	b := flatStats(models.ProvenanceEstimated, map[int]int{12: 20, 8: 30}, map[int]float64{12: 20, 8: 60})

	analysis := Aggregate(q, []ResolvedVenue{{Stats: a}, {Stats: b}})

	assert.Equal(t, 2, analysis.TotalVenues)
	assert.Equal(t, 200, analysis.TotalDailyVisits)
	assert.Equal(t, 100, analysis.AverageDailyVisits)
	assert.True(t, analysis.EstimatedData)
	require.Len(t, analysis.HourlyDistribution, 24)

	assert.Equal(t, 120, analysis.HourlyDistribution[12].Visits)
	assert.Equal(t, 50.0, analysis.HourlyDistribution[12].PopularityScore)
	// only one venue reports popularity at 19h
	assert.Equal(t, 40.0, analysis.HourlyDistribution[19].PopularityScore)
	assert.Equal(t, 0.0, analysis.HourlyDistribution[3].PopularityScore)

	assert.Equal(t, []int{8, 12, 19}, analysis.PeakHours)
	assert.Equal(t, 0.64, analysis.CompetitionDensity)
	// 0.3 + 0.5*0.5 + 2/50*0.2
	assert.Equal(t, 0.56, analysis.ConfidenceLevel)
}

func TestAggregate_AllMeasuredIsNotEstimated(t *testing.T) {
	q := models.AreaQuery{Latitude: 1, Longitude: 1, RadiusMeters: 500}
	s := flatStats(models.ProvenanceMeasured, map[int]int{10: 10}, nil)

	analysis := Aggregate(q, []ResolvedVenue{{Stats: s}})
	assert.False(t, analysis.EstimatedData)
}

func TestAggregate_DemographicsOnlyAverageReportingVenues(t *testing.T) {
	q := models.AreaQuery{Latitude: 1, Longitude: 1, RadiusMeters: 1000}

	a := flatStats(models.ProvenanceEstimated, map[int]int{12: 1}, nil)
	a.Demographics = models.Demographics{
		AgeGroups: []models.AgeGroup{{Range: "18-24", Percentage: 40}, {Range: "25-34", Percentage: 60}},
		Gender:    &models.GenderSplit{Male: 50, Female: 48, Other: 2},
	}
	b := flatStats(models.ProvenanceEstimated, map[int]int{12: 1}, nil)
	b.Demographics = models.Demographics{
		AgeGroups: []models.AgeGroup{{Range: "18-24", Percentage: 20}},
	}

	profile := Aggregate(q, []ResolvedVenue{{Stats: a}, {Stats: b}}).DemographicProfile

	assert.Equal(t, []models.AgeGroup{
		{Range: "18-24", Percentage: 30},
		{Range: "25-34", Percentage: 60},
	}, profile.AgeGroups)
	require.NotNil(t, profile.Gender)
	assert.Equal(t, models.GenderSplit{Male: 50, Female: 48, Other: 2}, *profile.Gender)
}

func TestBuildTrends(t *testing.T) {
	a := flatStats(models.ProvenanceEstimated, nil, nil)
	a.ComparisonDeltas = &models.ComparisonDeltas{VsLastWeek: f64(0.12), VsLastYear: f64(-0.2)}
	b := flatStats(models.ProvenanceEstimated, nil, nil)
	b.ComparisonDeltas = &models.ComparisonDeltas{VsLastWeek: f64(0.08)}
	c := flatStats(models.ProvenanceMeasured, nil, nil)

	trends := BuildTrends([]ResolvedVenue{{Stats: a}, {Stats: b}, {Stats: c}})

	require.Len(t, trends, 2, "month has no reporting venue and is omitted")
	assert.Equal(t, "week", trends[0].Period)
	assert.Equal(t, 10.0, trends[0].GrowthRate)
	assert.Contains(t, trends[0].Description, "Moderate growth")

	assert.Equal(t, "year", trends[1].Period)
	assert.Equal(t, -20.0, trends[1].GrowthRate)
	assert.Contains(t, trends[1].Description, "Declining")
}

func TestGrowthBand(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{15, "Strong growth"},
		{10.1, "Strong growth"},
		{10, "Moderate growth"},
		{5, "Moderate growth"},
		{4.9, "Stable"},
		{0, "Stable"},
		{-4.9, "Stable"},
		{-5, "Slight decline"},
		{-10, "Slight decline"},
		{-10.1, "Declining"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GrowthBand(tt.pct), "pct=%v", tt.pct)
	}
}

func TestAreaConfidence(t *testing.T) {
	assert.Equal(t, 0.32, AreaConfidence(0, 5))
	assert.Equal(t, 0.82, AreaConfidence(5, 5))
	assert.Equal(t, 0.5, AreaConfidence(0, 100))
	assert.Equal(t, 0.9, AreaConfidence(50, 50))
}
