package traffic

import (
	"testing"

	"site-traffic-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateDailyVisits(t *testing.T) {
	tests := []struct {
		name       string
		popularity float64
		rating     float64
		want       int
	}{
		{"popular and well rated", 80, 4.5, 360},
		{"perfect venue", 100, 5, 500},
		{"mid venue", 60, 4.0, 240},
		{"floor applies", 10, 1, 20},
		{"no attributes", 0, 0, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateDailyVisits(tt.popularity, tt.rating))
		})
	}
}

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want VenueCategory
	}{
		{"coffee shop", []string{"Coffee Shop"}, CategoryCafe},
		{"cafe beats fast food", []string{"fast_food", "cafe"}, CategoryCafe},
		{"fast food", []string{"burger", "Fast Food"}, CategoryFastFood},
		{"fast food beats bar", []string{"sports bar", "fast-food"}, CategoryFastFood},
		{"nightlife", []string{"Nightlife Spot"}, CategoryBar},
		{"plain restaurant", []string{"thai", "restaurant"}, CategoryRestaurant},
		{"no tags", nil, CategoryRestaurant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveCategory(tt.tags))
		})
	}
}

func TestHourlyMultipliers_RoughlyOneDay(t *testing.T) {
	for _, c := range []VenueCategory{CategoryRestaurant, CategoryCafe, CategoryFastFood, CategoryBar} {
		t.Run(c.String(), func(t *testing.T) {
			m := HourlyMultipliers(c)
			var sum float64
			for _, v := range m {
				assert.GreaterOrEqual(t, v, baseHourlyMultiplier)
				sum += v
			}
			assert.InDelta(t, 1.0, sum, 0.05)
		})
	}

	bar := HourlyMultipliers(CategoryBar)
	assert.Equal(t, 0.10, bar[22])
	assert.Equal(t, 0.07, bar[1])
	assert.Equal(t, baseHourlyMultiplier, bar[10])
}

func TestHourlyCurve_Shape(t *testing.T) {
	j := NewSeededJitter(7).ForVenue("v1")

	for _, daily := range []int{20, 137, 360, 500} {
		curve := HourlyCurve(CategoryRestaurant, daily, j)
		require.Len(t, curve, 24)

		sum := 0
		for h, e := range curve {
			assert.Equal(t, h, e.Hour)
			assert.GreaterOrEqual(t, e.Visits, 0)
			assert.GreaterOrEqual(t, e.PopularityScore, 0.0)
			assert.LessOrEqual(t, e.PopularityScore, 100.0)
			sum += e.Visits
		}
		assert.Equal(t, daily, sum, "hourly visits must add up to the daily total")
	}
}

func TestHourlyCurve_PeaksFollowCategory(t *testing.T) {
	j := NewSeededJitter(99).ForVenue("v")

	restaurant := HourlyCurve(CategoryRestaurant, 1000, j)
	assert.Greater(t, restaurant[19].Visits, restaurant[4].Visits)
	assert.Greater(t, restaurant[12].Visits, restaurant[9].Visits)

	cafe := HourlyCurve(CategoryCafe, 1000, j)
	assert.Greater(t, cafe[8].Visits, cafe[20].Visits)

	bar := HourlyCurve(CategoryBar, 1000, j)
	assert.Greater(t, bar[22].Visits, bar[12].Visits)
	assert.Greater(t, bar[1].Visits, bar[6].Visits)
}

func TestSynthesize_Invariants(t *testing.T) {
	s := NewSynthesizer(NewSeededJitter(42))
	venue := models.Venue{
		ID:           "venue-1",
		CategoryTags: []string{"restaurant"},
		PriceTier:    2,
		Rating:       4.5,
		Popularity:   80,
		Verified:     true,
	}

	stats := s.Synthesize(venue)

	assert.True(t, stats.Estimated())
	assert.Equal(t, "venue-1", stats.VenueID)
	assert.Equal(t, 360, stats.DailyVisitsTotal)
	require.Len(t, stats.HourlyDistribution, 24)
	require.Len(t, stats.WeeklyPattern, 7)

	seen := map[string]bool{}
	for i, w := range stats.WeeklyPattern {
		assert.Equal(t, Weekdays[i], w.Weekday)
		assert.False(t, seen[w.Weekday])
		seen[w.Weekday] = true
		assert.Greater(t, w.Visits, 0)
		assert.InDelta(t, 60, w.AvgVisitDurationMinutes, 6.5)
	}

	// Saturday is the busiest day even with jitter.
	assert.Greater(t, stats.WeeklyPattern[5].Visits, stats.WeeklyPattern[0].Visits)

	require.NotNil(t, stats.ComparisonDeltas)
	assert.InDelta(t, 0, *stats.ComparisonDeltas.VsLastWeek, 0.2)
	assert.InDelta(t, 0, *stats.ComparisonDeltas.VsLastMonth, 0.3)
	assert.InDelta(t, 0, *stats.ComparisonDeltas.VsLastYear, 0.4)

	assert.Equal(t, 0.9, stats.Confidence)
}

func TestSynthesize_ReproducibleWithSeed(t *testing.T) {
	venue := models.Venue{ID: "abc", CategoryTags: []string{"cafe"}, Rating: 4, Popularity: 70}

	a := NewSynthesizer(NewSeededJitter(1234)).Synthesize(venue)
	b := NewSynthesizer(NewSeededJitter(1234)).Synthesize(venue)

	assert.Equal(t, a, b)
}

func TestSynthesisConfidence(t *testing.T) {
	tests := []struct {
		name  string
		venue models.Venue
		want  float64
	}{
		{"nothing known", models.Venue{ID: "x"}, 0.5},
		{"popularity and rating", models.Venue{Popularity: 50, Rating: 4}, 0.85},
		{"price tier and tags", models.Venue{PriceTier: 2, CategoryTags: []string{"cafe"}}, 0.65},
		{"everything is capped", models.Venue{Popularity: 50, Rating: 4, PriceTier: 2, Verified: true, CategoryTags: []string{"bar"}}, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SynthesisConfidence(tt.venue))
		})
	}
}

func TestAllocate(t *testing.T) {
	out := allocate([]float64{1, 1, 1}, 3, 10)
	assert.Equal(t, 10, out[0]+out[1]+out[2])
	assert.Equal(t, []int{4, 3, 3}, out)

	assert.Equal(t, []int{0, 0}, allocate([]float64{0, 0}, 0, 10))
}
