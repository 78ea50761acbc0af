package analyzearea

import "site-traffic-workers/internal/models"

type Input struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radiusMeters"`
}

type Output struct {
	AreaAnalysis   *models.AreaAnalysis `json:"areaAnalysis"`
	AlertPublished bool                 `json:"opportunityAlertPublished"`
}

// OpportunityAlert is the SNS message body for a high-scoring area.
type OpportunityAlert struct {
	AnalysisID       string          `json:"analysisId"`
	Location         models.Location `json:"location"`
	RadiusMeters     int             `json:"radiusMeters"`
	OpportunityScore int             `json:"opportunityScore"`
	ConfidenceLevel  float64         `json:"confidenceLevel"`
	EstimatedData    bool            `json:"estimatedData"`
	TotalVenues      int             `json:"totalVenues"`
	PeakHours        []int           `json:"peakHours"`
	Insights         []string        `json:"insights"`
	AnalysisDate     string          `json:"analysisDate"`
}

const inputSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["latitude", "longitude", "radiusMeters"],
  "properties": {
    "latitude": {"type": "number", "minimum": -90, "maximum": 90},
    "longitude": {"type": "number", "minimum": -180, "maximum": 180},
    "radiusMeters": {"type": "integer", "minimum": 1}
  }
}`
