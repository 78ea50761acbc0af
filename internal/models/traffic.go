package models

import "time"

// AreaQuery identifies the circle to analyse.
type AreaQuery struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radiusMeters"`
}

// Location is a point on the map.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Venue is a directory entry. PriceTier 0 means the directory does not know it.
type Venue struct {
	ID             string   `json:"id" db:"id"`
	Name           string   `json:"name" db:"name"`
	CategoryTags   []string `json:"categoryTags"`
	PriceTier      int      `json:"priceTier"`
	Rating         float64  `json:"rating"`
	Popularity     float64  `json:"popularity"`
	Verified       bool     `json:"verified"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	DistanceMeters float64  `json:"distanceMeters,omitempty"`
}

// Provenance tells whether visit statistics were measured or synthesized.
type Provenance string

const (
	ProvenanceMeasured  Provenance = "measured"
	ProvenanceEstimated Provenance = "estimated"
)

// HourlyEntry is one hour of a 24-hour visit curve.
type HourlyEntry struct {
	Hour                int     `json:"hour"`
	Visits              int     `json:"visits"`
	HistoricalAvgVisits int     `json:"historicalAvgVisits"`
	PopularityScore     float64 `json:"popularityScore"`
}

// WeeklyEntry is one weekday of a weekly visit pattern.
type WeeklyEntry struct {
	Weekday                 string  `json:"weekday"`
	Visits                  int     `json:"visits"`
	AvgVisitDurationMinutes float64 `json:"avgVisitDurationMinutes"`
}

// AgeGroup is the share of visitors within an age range label such as "25-34".
type AgeGroup struct {
	Range      string  `json:"range"`
	Percentage float64 `json:"percentage"`
}

// GenderSplit holds percentages that sum to 100.
type GenderSplit struct {
	Male   float64 `json:"male"`
	Female float64 `json:"female"`
	Other  float64 `json:"other"`
}

// Demographics describes the visitor mix.
type Demographics struct {
	AgeGroups []AgeGroup   `json:"ageGroups"`
	Gender    *GenderSplit `json:"gender,omitempty"`
}

// ComparisonDeltas are signed fractions, e.g. 0.12 means +12%.
type ComparisonDeltas struct {
	VsLastWeek  *float64 `json:"vsLastWeek,omitempty"`
	VsLastMonth *float64 `json:"vsLastMonth,omitempty"`
	VsLastYear  *float64 `json:"vsLastYear,omitempty"`
}

// VisitStats is the per-venue visit record.
type VisitStats struct {
	VenueID            string            `json:"venueId"`
	Provenance         Provenance        `json:"provenance"`
	DailyVisitsTotal   int               `json:"dailyVisitsTotal"`
	HourlyDistribution []HourlyEntry     `json:"hourlyDistribution"`
	WeeklyPattern      []WeeklyEntry     `json:"weeklyPattern"`
	Demographics       Demographics      `json:"demographics"`
	ComparisonDeltas   *ComparisonDeltas `json:"comparisonDeltas,omitempty"`
	Confidence         float64           `json:"confidence"`
}

// Estimated reports whether the record was synthesized.
func (s *VisitStats) Estimated() bool {
	return s.Provenance == ProvenanceEstimated
}

// Trend is a growth band for one comparison period.
type Trend struct {
	Period      string  `json:"period"`
	GrowthRate  float64 `json:"growthRate"`
	Description string  `json:"description"`
}

// AreaAnalysis is the result of one area analysis.
type AreaAnalysis struct {
	ID                 string        `json:"id"`
	Location           Location      `json:"location"`
	RadiusMeters       int           `json:"radiusMeters"`
	TotalVenues        int           `json:"totalVenues"`
	AverageDailyVisits int           `json:"averageDailyVisits"`
	TotalDailyVisits   int           `json:"totalDailyVisits"`
	PeakHours          []int         `json:"peakHours"`
	HourlyDistribution []HourlyEntry `json:"hourlyDistribution"`
	DemographicProfile Demographics  `json:"demographicProfile"`
	CompetitionDensity float64       `json:"competitionDensity"`
	OpportunityScore   int           `json:"opportunityScore"`
	Trends             []Trend       `json:"trends"`
	Insights           []string      `json:"insights"`
	ConfidenceLevel    float64       `json:"confidenceLevel"`
	EstimatedData      bool          `json:"estimatedData"`
	Sentinel           bool          `json:"sentinel"`
	AnalysisDate       string        `json:"analysisDate"`
	GeneratedAt        time.Time     `json:"generatedAt"`
	Cached             bool          `json:"cached"`
	CachedAt           *time.Time    `json:"cachedAt,omitempty"`
}
