package traffic

import (
	"math"
	"sort"

	"site-traffic-workers/internal/models"
)

const (
	minDailyVisits       = 20
	maxDailyVisitsAtBest = 500
	hourlyJitter         = 0.20
	weeklyJitter         = 0.10
	maxSynthConfidence   = 0.9
)

// Weekdays in the order the weekly pattern is emitted.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

var weekdayMultipliers = []float64{0.8, 0.9, 0.9, 1.0, 1.2, 1.3, 1.1}

// Synthesizer builds estimated VisitStats from directory attributes alone.
type Synthesizer struct {
	jitter JitterSource
}

func NewSynthesizer(jitter JitterSource) *Synthesizer {
	if jitter == nil {
		jitter = NewRandomJitter()
	}
	return &Synthesizer{jitter: jitter}
}

// Synthesize never fails; every venue gets a full 24h and 7d shape.
func (s *Synthesizer) Synthesize(v models.Venue) *models.VisitStats {
	j := s.jitter.ForVenue(v.ID)
	category := ResolveCategory(v.CategoryTags)
	daily := EstimateDailyVisits(v.Popularity, v.Rating)

	return &models.VisitStats{
		VenueID:            v.ID,
		Provenance:         models.ProvenanceEstimated,
		DailyVisitsTotal:   daily,
		HourlyDistribution: HourlyCurve(category, daily, j),
		WeeklyPattern:      weeklyPattern(category, daily, j),
		Demographics:       EstimateDemographics(v.PriceTier, j),
		ComparisonDeltas:   syntheticDeltas(j),
		Confidence:         SynthesisConfidence(v),
	}
}

// EstimateDailyVisits scales a 500 visit ceiling by popularity and rating, floored at 20.
func EstimateDailyVisits(popularity, rating float64) int {
	est := int(math.Round(popularity / 100 * maxDailyVisitsAtBest * (rating / 5)))
	if est < minDailyVisits {
		return minDailyVisits
	}
	return est
}

// HourlyCurve spreads daily across 24 hours using the category table with
// per-hour jitter. The jittered weights are normalised and allocated by largest
// remainder so the hours add up to daily exactly.
func HourlyCurve(category VenueCategory, daily int, j Jitter) []models.HourlyEntry {
	base := HourlyMultipliers(category)

	var weights [24]float64
	var sum float64
	for h := range base {
		weights[h] = base[h] * spread(j, hourlyJitter)
		sum += weights[h]
	}

	visits := allocate(weights[:], sum, daily)

	entries := make([]models.HourlyEntry, 24)
	peakRef := float64(daily) * 0.15
	for h := 0; h < 24; h++ {
		pop := 0.0
		if peakRef > 0 {
			pop = math.Min(100, float64(visits[h])/peakRef*100)
		}
		entries[h] = models.HourlyEntry{
			Hour:                h,
			Visits:              visits[h],
			HistoricalAvgVisits: int(math.Round(float64(visits[h]) * uniform(j, 0.9, 1.1))),
			PopularityScore:     round2(pop),
		}
	}
	return entries
}

// allocate splits total proportionally to weights with largest-remainder rounding.
func allocate(weights []float64, sum float64, total int) []int {
	out := make([]int, len(weights))
	if sum <= 0 || total <= 0 {
		return out
	}

	type rem struct {
		idx  int
		frac float64
	}
	rems := make([]rem, len(weights))
	assigned := 0
	for i, w := range weights {
		exact := w / sum * float64(total)
		out[i] = int(math.Floor(exact))
		assigned += out[i]
		rems[i] = rem{i, exact - float64(out[i])}
	}

	sort.SliceStable(rems, func(a, b int) bool { return rems[a].frac > rems[b].frac })
	for k := 0; k < total-assigned; k++ {
		out[rems[k%len(rems)].idx]++
	}
	return out
}

func weeklyPattern(category VenueCategory, daily int, j Jitter) []models.WeeklyEntry {
	duration := avgVisitDuration(category)
	out := make([]models.WeeklyEntry, len(Weekdays))
	for i, day := range Weekdays {
		out[i] = models.WeeklyEntry{
			Weekday:                 day,
			Visits:                  int(math.Round(float64(daily) * weekdayMultipliers[i] * spread(j, weeklyJitter))),
			AvgVisitDurationMinutes: math.Round(duration * spread(j, weeklyJitter)),
		}
	}
	return out
}

// syntheticDeltas are noise, not trend. Bounds widen with the period.
func syntheticDeltas(j Jitter) *models.ComparisonDeltas {
	week := round4(uniform(j, -0.2, 0.2))
	month := round4(uniform(j, -0.3, 0.3))
	year := round4(uniform(j, -0.4, 0.4))
	return &models.ComparisonDeltas{VsLastWeek: &week, VsLastMonth: &month, VsLastYear: &year}
}

// SynthesisConfidence scores which attributes the directory actually supplied.
func SynthesisConfidence(v models.Venue) float64 {
	c := 0.5
	if v.Popularity > 0 {
		c += 0.2
	}
	if v.Rating > 0 {
		c += 0.15
	}
	if v.PriceTier > 0 {
		c += 0.1
	}
	if v.Verified {
		c += 0.1
	}
	if len(v.CategoryTags) > 0 {
		c += 0.05
	}
	return round2(math.Min(maxSynthConfidence, c))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
