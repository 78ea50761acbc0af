package traffic

import (
	"math"

	"site-traffic-workers/internal/models"
)

// EmptyAreaOpportunityScore is a product decision: an area with no competing
// venues is reported as a strong but low-confidence opportunity. It is not
// derived from data.
const EmptyAreaOpportunityScore = 95

const emptyAreaConfidence = 0.2

var emptyAreaInsights = []string{
	"No existing food and beverage establishments found in this area.",
	"First-mover advantage: there is no direct competition nearby.",
	"Validate local demand (foot traffic, residents, offices) before committing to this site.",
}

type hourWindow struct{ from, to int }

var (
	morningWindow = hourWindow{6, 10}
	lunchWindow   = hourWindow{11, 14}
	dinnerWindow  = hourWindow{17, 21}
)

const (
	youngShareThreshold  = 60.0
	matureShareThreshold = 40.0
)

// OpportunityScore combines traffic (max 40), low competition (max 40) and
// peak-hour spread (max 20) and clamps the result to [0, 100].
func OpportunityScore(a *models.AreaAnalysis) int {
	trafficScore := math.Min(100, float64(a.AverageDailyVisits)/200*40)
	competitionScore := math.Max(0, 40-a.CompetitionDensity*5)
	diversityScore := 20 * peakHourSpread(a.PeakHours)

	score := int(math.Round(trafficScore + competitionScore + diversityScore))
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

func peakHourSpread(peaks []int) float64 {
	if len(peaks) < 2 {
		return 0
	}
	lo, hi := peaks[0], peaks[0]
	for _, h := range peaks[1:] {
		if h < lo {
			lo = h
		}
		if h > hi {
			hi = h
		}
	}
	return math.Min(1, float64(hi-lo)/12)
}

// Insights evaluates every rule independently and keeps all that match, in
// traffic, competition, peak-hour, demographic order.
func Insights(a *models.AreaAnalysis) []string {
	var out []string

	switch avg := a.AverageDailyVisits; {
	case avg > 300:
		out = append(out, "High-traffic area with strong customer flow throughout the day.")
	case avg > 150:
		out = append(out, "Moderate traffic levels with steady customer activity.")
	default:
		out = append(out, "Lower traffic area; consider investing in marketing to drive visits.")
	}

	switch {
	case a.CompetitionDensity < 5:
		out = append(out, "Low competition density presents a market entry opportunity.")
	case a.CompetitionDensity > 15:
		out = append(out, "High competition density requires clear differentiation.")
	}

	morning := anyPeakIn(a.PeakHours, morningWindow)
	lunch := anyPeakIn(a.PeakHours, lunchWindow)
	dinner := anyPeakIn(a.PeakHours, dinnerWindow)
	switch {
	case morning && lunch && dinner:
		out = append(out, "Peaks at breakfast, lunch and dinner suggest an all-day dining opportunity.")
	case lunch && dinner && !morning:
		out = append(out, "Lunch and dinner peaks: standard restaurant hours are optimal.")
	case morning && !lunch && !dinner:
		out = append(out, "Morning-only peak: a breakfast or cafe concept may work well.")
	}

	if youngShare(a.DemographicProfile) > youngShareThreshold {
		out = append(out, "Young adult audience: trendy, social-media-friendly concepts fit this area.")
	}
	if matureShare(a.DemographicProfile) > matureShareThreshold {
		out = append(out, "Mature audience: focus on quality, service and comfort.")
	}
	return out
}

func anyPeakIn(peaks []int, w hourWindow) bool {
	for _, h := range peaks {
		if h >= w.from && h <= w.to {
			return true
		}
	}
	return false
}

// EmptyAreaAnalysis is returned when the directory finds nothing in the radius.
func EmptyAreaAnalysis(q models.AreaQuery) *models.AreaAnalysis {
	hourly := make([]models.HourlyEntry, 24)
	for h := range hourly {
		hourly[h].Hour = h
	}
	insights := make([]string, len(emptyAreaInsights))
	copy(insights, emptyAreaInsights)

	return &models.AreaAnalysis{
		Location:           models.Location{Latitude: q.Latitude, Longitude: q.Longitude},
		RadiusMeters:       q.RadiusMeters,
		PeakHours:          []int{},
		HourlyDistribution: hourly,
		DemographicProfile: models.Demographics{AgeGroups: []models.AgeGroup{}},
		CompetitionDensity: 0,
		OpportunityScore:   EmptyAreaOpportunityScore,
		Trends:             []models.Trend{},
		Insights:           insights,
		ConfidenceLevel:    emptyAreaConfidence,
		EstimatedData:      true,
		Sentinel:           true,
	}
}
