package traffic

import (
	"fmt"
	"math"

	"site-traffic-workers/internal/models"
)

type trendPeriod struct {
	name  string
	label string
	pick  func(*models.ComparisonDeltas) *float64
}

var trendPeriods = []trendPeriod{
	{"week", "last week", func(d *models.ComparisonDeltas) *float64 { return d.VsLastWeek }},
	{"month", "last month", func(d *models.ComparisonDeltas) *float64 { return d.VsLastMonth }},
	{"year", "last year", func(d *models.ComparisonDeltas) *float64 { return d.VsLastYear }},
}

// BuildTrends averages each period's delta over the venues that report it.
// Periods nobody reports are left out.
func BuildTrends(resolved []ResolvedVenue) []models.Trend {
	trends := make([]models.Trend, 0, len(trendPeriods))
	for _, p := range trendPeriods {
		var sum float64
		count := 0
		for _, rv := range resolved {
			if rv.Stats.ComparisonDeltas == nil {
				continue
			}
			if v := p.pick(rv.Stats.ComparisonDeltas); v != nil {
				sum += *v
				count++
			}
		}
		if count == 0 {
			continue
		}

		pct := math.Round(sum/float64(count)*1000) / 10
		trends = append(trends, models.Trend{
			Period:      p.name,
			GrowthRate:  pct,
			Description: fmt.Sprintf("%s vs %s (%+.1f%%)", GrowthBand(pct), p.label, pct),
		})
	}
	return trends
}

// GrowthBand classifies a percentage change.
func GrowthBand(pct float64) string {
	switch {
	case pct > 10:
		return "Strong growth"
	case pct >= 5:
		return "Moderate growth"
	case pct > -5:
		return "Stable"
	case pct >= -10:
		return "Slight decline"
	default:
		return "Declining"
	}
}
