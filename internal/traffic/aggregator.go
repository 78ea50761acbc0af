package traffic

import (
	"math"
	"sort"

	"site-traffic-workers/internal/models"
)

const (
	maxAreaConfidence = 0.9
	peakHourCount     = 3
)

// ResolvedVenue pairs a directory venue with its resolved statistics.
type ResolvedVenue struct {
	Venue models.Venue
	Stats *models.VisitStats
}

// Aggregate folds per-venue statistics into the area fields of an analysis.
// Score and insights are left for the scorer. Callers handle the empty case.
func Aggregate(q models.AreaQuery, resolved []ResolvedVenue) *models.AreaAnalysis {
	n := len(resolved)

	total := 0
	measured := 0
	estimated := false
	for _, rv := range resolved {
		total += rv.Stats.DailyVisitsTotal
		if rv.Stats.Estimated() {
			estimated = true
		} else {
			measured++
		}
	}

	avg := 0
	if n > 0 {
		avg = int(math.Round(float64(total) / float64(n)))
	}

	hourly := aggregateHourly(resolved)

	return &models.AreaAnalysis{
		Location:           models.Location{Latitude: q.Latitude, Longitude: q.Longitude},
		RadiusMeters:       q.RadiusMeters,
		TotalVenues:        n,
		AverageDailyVisits: avg,
		TotalDailyVisits:   total,
		PeakHours:          PeakHours(hourly),
		HourlyDistribution: hourly,
		DemographicProfile: aggregateDemographics(resolved),
		CompetitionDensity: CompetitionDensity(n, q.RadiusMeters),
		Trends:             BuildTrends(resolved),
		ConfidenceLevel:    AreaConfidence(measured, n),
		EstimatedData:      estimated,
	}
}

// aggregateHourly sums visits per hour and averages popularity over the venues
// that report a non-zero score for that hour.
func aggregateHourly(resolved []ResolvedVenue) []models.HourlyEntry {
	out := make([]models.HourlyEntry, 24)
	var popSum [24]float64
	var popCount [24]int

	for h := range out {
		out[h].Hour = h
	}
	for _, rv := range resolved {
		for _, e := range rv.Stats.HourlyDistribution {
			if e.Hour < 0 || e.Hour > 23 {
				continue
			}
			out[e.Hour].Visits += e.Visits
			out[e.Hour].HistoricalAvgVisits += e.HistoricalAvgVisits
			if e.PopularityScore != 0 {
				popSum[e.Hour] += e.PopularityScore
				popCount[e.Hour]++
			}
		}
	}
	for h := range out {
		if popCount[h] > 0 {
			out[h].PopularityScore = round2(popSum[h] / float64(popCount[h]))
		}
	}
	return out
}

// PeakHours picks the busiest hours (ties go to the earlier hour, empty hours
// never qualify) and returns them in chronological order.
func PeakHours(hourly []models.HourlyEntry) []int {
	candidates := make([]models.HourlyEntry, 0, len(hourly))
	for _, e := range hourly {
		if e.Visits > 0 {
			candidates = append(candidates, e)
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].Visits != candidates[b].Visits {
			return candidates[a].Visits > candidates[b].Visits
		}
		return candidates[a].Hour < candidates[b].Hour
	})

	if len(candidates) > peakHourCount {
		candidates = candidates[:peakHourCount]
	}
	peaks := make([]int, len(candidates))
	for i, e := range candidates {
		peaks[i] = e.Hour
	}
	sort.Ints(peaks)
	return peaks
}

// aggregateDemographics averages each age label over the venues that report
// it, so a venue without a label does not drag that label towards zero.
func aggregateDemographics(resolved []ResolvedVenue) models.Demographics {
	var order []string
	sums := make(map[string]float64)
	counts := make(map[string]int)

	var male, female, other float64
	genderCount := 0

	for _, rv := range resolved {
		d := rv.Stats.Demographics
		for _, g := range d.AgeGroups {
			if _, seen := counts[g.Range]; !seen {
				order = append(order, g.Range)
			}
			sums[g.Range] += g.Percentage
			counts[g.Range]++
		}
		if d.Gender != nil {
			male += d.Gender.Male
			female += d.Gender.Female
			other += d.Gender.Other
			genderCount++
		}
	}

	out := models.Demographics{AgeGroups: make([]models.AgeGroup, 0, len(order))}
	for _, r := range order {
		out.AgeGroups = append(out.AgeGroups, models.AgeGroup{
			Range:      r,
			Percentage: round2(sums[r] / float64(counts[r])),
		})
	}
	if genderCount > 0 {
		c := float64(genderCount)
		out.Gender = &models.GenderSplit{
			Male:   round2(male / c),
			Female: round2(female / c),
			Other:  round2(other / c),
		}
	}
	return out
}

// CompetitionDensity is venues per square kilometre, to 2 decimals.
func CompetitionDensity(venues, radiusMeters int) float64 {
	if venues == 0 || radiusMeters <= 0 {
		return 0
	}
	km := float64(radiusMeters) / 1000
	return round2(float64(venues) / (math.Pi * km * km))
}

// AreaConfidence rewards measured data and, up to 50 venues, sample size.
func AreaConfidence(realVenues, venues int) float64 {
	if venues == 0 {
		return emptyAreaConfidence
	}
	realFrac := float64(realVenues) / float64(venues)
	sample := math.Min(0.2, float64(venues)/50*0.2)
	return round2(math.Min(maxAreaConfidence, 0.3+0.5*realFrac+sample))
}
