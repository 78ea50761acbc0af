package visitstats

const payloadSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["dailyVisitsTotal", "hourlyDistribution", "weeklyPattern"],
  "properties": {
    "venueId": {"type": "string"},
    "dailyVisitsTotal": {"type": "integer", "minimum": 0},
    "hourlyDistribution": {
      "type": "array",
      "minItems": 24,
      "maxItems": 24,
      "items": {
        "type": "object",
        "required": ["hour", "visits"],
        "properties": {
          "hour": {"type": "integer", "minimum": 0, "maximum": 23},
          "visits": {"type": "integer", "minimum": 0},
          "historicalAvgVisits": {"type": "integer", "minimum": 0},
          "popularityScore": {"type": "number", "minimum": 0, "maximum": 100}
        }
      }
    },
    "weeklyPattern": {
      "type": "array",
      "minItems": 7,
      "maxItems": 7,
      "items": {
        "type": "object",
        "required": ["weekday", "visits"],
        "properties": {
          "weekday": {"enum": ["Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"]},
          "visits": {"type": "integer", "minimum": 0},
          "avgVisitDurationMinutes": {"type": "number", "minimum": 0}
        }
      }
    },
    "demographics": {
      "type": "object",
      "properties": {
        "ageGroups": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["range", "percentage"],
            "properties": {
              "range": {"type": "string"},
              "percentage": {"type": "number", "minimum": 0, "maximum": 100}
            }
          }
        }
      }
    },
    "confidence": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`
