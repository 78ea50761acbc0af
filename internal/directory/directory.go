// Package directory implements venue directories backed by an Elasticsearch
// venue index or the public OpenStreetMap Overpass API.
package directory

import (
	"fmt"
	"sort"
	"strings"

	"site-traffic-workers/internal/common/config"
	"site-traffic-workers/internal/models"
	"site-traffic-workers/internal/traffic"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/golang/geo/s2"
)

// Mean Earth radius (IUGG).
const earthRadiusMeters = 6371008.8

// DefaultCategories is used when a request carries no category filter.
var DefaultCategories = []string{"restaurant", "cafe", "fast_food", "bar"}

// New returns the directory selected by cfg.Backend.
func New(cfg config.DirectoryConfig, es *elasticsearch.Client) (traffic.VenueDirectory, error) {
	switch cfg.Backend {
	case config.DirectoryBackendElasticsearch, "":
		if es == nil {
			return nil, fmt.Errorf("elasticsearch directory selected but no client configured")
		}
		return NewElasticsearch(es, cfg.Index), nil
	case config.DirectoryBackendOverpass:
		return NewOverpass(cfg.OverpassEndpoint, config.GetDuration(cfg.Timeout)), nil
	default:
		return nil, fmt.Errorf("unknown directory backend %q", cfg.Backend)
	}
}

// DistanceMeters is the great-circle distance between two points.
func DistanceMeters(a, b models.Location) float64 {
	pa := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	pb := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return pa.Distance(pb).Radians() * earthRadiusMeters
}

func categories(req traffic.SearchRequest) []string {
	if len(req.CategoryFilter) == 0 {
		return DefaultCategories
	}
	out := make([]string, 0, len(req.CategoryFilter))
	for _, c := range req.CategoryFilter {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// withinRadius fills DistanceMeters and drops venues outside the circle.
func withinRadius(req traffic.SearchRequest, venues []models.Venue) []models.Venue {
	out := venues[:0]
	for _, v := range venues {
		v.DistanceMeters = DistanceMeters(req.Location, models.Location{Latitude: v.Latitude, Longitude: v.Longitude})
		if v.DistanceMeters <= float64(req.RadiusMeters) {
			out = append(out, v)
		}
	}
	return out
}

// sortVenues orders venues by the hint; ties fall back to distance then id so
// the result is stable across calls.
func sortVenues(venues []models.Venue, hint string) {
	sort.SliceStable(venues, func(i, j int) bool {
		a, b := venues[i], venues[j]
		switch hint {
		case traffic.SortByPopularity:
			if a.Popularity != b.Popularity {
				return a.Popularity > b.Popularity
			}
		case traffic.SortByRating:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		}
		if a.DistanceMeters != b.DistanceMeters {
			return a.DistanceMeters < b.DistanceMeters
		}
		return a.ID < b.ID
	})
}

func limit(venues []models.Venue, n int) []models.Venue {
	if n > 0 && len(venues) > n {
		return venues[:n]
	}
	return venues
}
