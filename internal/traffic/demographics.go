package traffic

import (
	"math"
	"strconv"
	"strings"

	"site-traffic-workers/internal/models"
)

var ageRanges = []string{"18-24", "25-34", "35-44", "45-54", "55+"}

var (
	budgetAgeShares  = []float64{30, 35, 18, 10, 7}  // 18-34 = 65
	midAgeShares     = []float64{20, 30, 25, 15, 10} // balanced
	premiumAgeShares = []float64{10, 25, 28, 22, 15} // 35+ = 65
)

// EstimateDemographics derives an age and gender mix from the price tier.
// Tier 1 skews young, tier 3 and above skews mature, everything else
// (including an unknown tier 0) gets the balanced mix.
func EstimateDemographics(priceTier int, j Jitter) models.Demographics {
	shares := midAgeShares
	switch {
	case priceTier == 1:
		shares = budgetAgeShares
	case priceTier >= 3:
		shares = premiumAgeShares
	}

	groups := make([]models.AgeGroup, len(ageRanges))
	for i, r := range ageRanges {
		groups[i] = models.AgeGroup{Range: r, Percentage: shares[i]}
	}

	gender := estimateGender(j)
	return models.Demographics{AgeGroups: groups, Gender: &gender}
}

// estimateGender draws male/female in [45,55] and other in [0,2], then rescales
// male and female so the three add up to exactly 100. Other is kept as drawn.
func estimateGender(j Jitter) models.GenderSplit {
	male := float64(intBetween(j, 45, 55))
	female := float64(intBetween(j, 45, 55))
	other := float64(intBetween(j, 0, 2))

	remaining := 100 - other
	m := math.Round(male / (male + female) * remaining)
	return models.GenderSplit{
		Male:   m,
		Female: remaining - m,
		Other:  other,
	}
}

// ageBounds parses labels like "25-34" and "55+". ok is false for anything else.
func ageBounds(label string) (lo, hi int, ok bool) {
	if strings.HasSuffix(label, "+") {
		n, err := strconv.Atoi(strings.TrimSuffix(label, "+"))
		if err != nil {
			return 0, 0, false
		}
		return n, math.MaxInt32, true
	}
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return a, b, true
}

// youngShare is the 18-34 share of a profile.
func youngShare(d models.Demographics) float64 {
	var total float64
	for _, g := range d.AgeGroups {
		if lo, hi, ok := ageBounds(g.Range); ok && lo >= 18 && hi <= 34 {
			total += g.Percentage
		}
	}
	return total
}

// matureShare is the 35+ share of a profile.
func matureShare(d models.Demographics) float64 {
	var total float64
	for _, g := range d.AgeGroups {
		if lo, _, ok := ageBounds(g.Range); ok && lo >= 35 {
			total += g.Percentage
		}
	}
	return total
}
