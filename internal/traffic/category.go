package traffic

import "strings"

// VenueCategory drives the shape of a synthesized visit curve.
type VenueCategory int

const (
	CategoryRestaurant VenueCategory = iota
	CategoryCafe
	CategoryFastFood
	CategoryBar
)

func (c VenueCategory) String() string {
	switch c {
	case CategoryCafe:
		return "cafe"
	case CategoryFastFood:
		return "fast_food"
	case CategoryBar:
		return "bar"
	default:
		return "restaurant"
	}
}

const baseHourlyMultiplier = 0.02

type peakWindow struct {
	from, to   int // inclusive hours
	multiplier float64
}

type categoryProfile struct {
	keywords         []string
	peaks            []peakWindow
	avgVisitDuration float64 // minutes
}

// Checked in this order; the first category whose keyword appears in any tag wins.
var categoryPrecedence = []VenueCategory{CategoryCafe, CategoryFastFood, CategoryBar}

var categoryProfiles = map[VenueCategory]categoryProfile{
	CategoryCafe: {
		keywords: []string{"cafe", "café", "coffee"},
		peaks: []peakWindow{
			{7, 9, 0.12},
			{14, 16, 0.09},
		},
		avgVisitDuration: 35,
	},
	CategoryFastFood: {
		keywords: []string{"fast_food", "fast-food", "fast food", "fastfood"},
		peaks: []peakWindow{
			{11, 13, 0.11},
			{17, 19, 0.10},
		},
		avgVisitDuration: 20,
	},
	CategoryBar: {
		keywords: []string{"bar", "pub", "nightlife", "nightclub"},
		peaks: []peakWindow{
			{17, 19, 0.05},
			{20, 23, 0.10},
			{0, 2, 0.07},
		},
		avgVisitDuration: 90,
	},
	CategoryRestaurant: {
		peaks: []peakWindow{
			{11, 13, 0.09},
			{17, 20, 0.10},
		},
		avgVisitDuration: 60,
	},
}

// ResolveCategory matches tags by substring. Anything unmatched is a restaurant.
func ResolveCategory(tags []string) VenueCategory {
	lowered := make([]string, len(tags))
	for i, t := range tags {
		lowered[i] = strings.ToLower(t)
	}

	for _, cat := range categoryPrecedence {
		for _, kw := range categoryProfiles[cat].keywords {
			for _, tag := range lowered {
				if strings.Contains(tag, kw) {
					return cat
				}
			}
		}
	}
	return CategoryRestaurant
}

// HourlyMultipliers returns the 24 unjittered share-of-day weights for a category.
func HourlyMultipliers(c VenueCategory) [24]float64 {
	var out [24]float64
	for h := range out {
		out[h] = baseHourlyMultiplier
	}
	for _, w := range categoryProfiles[c].peaks {
		for h := w.from; h <= w.to; h++ {
			out[h] = w.multiplier
		}
	}
	return out
}

func avgVisitDuration(c VenueCategory) float64 {
	return categoryProfiles[c].avgVisitDuration
}
