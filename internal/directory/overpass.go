package directory

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"site-traffic-workers/internal/common/errors"
	"site-traffic-workers/internal/models"
	"site-traffic-workers/internal/traffic"

	"github.com/serjvanilla/go-overpass"
)

const (
	DefaultOverpassEndpoint = "https://overpass-api.de/api/interpreter"
	overpassParallelism     = 2
)

// Overpass queries OpenStreetMap amenities. OSM has no rating, popularity or
// price data, so those fields stay zero and synthesis treats them as unknown.
type Overpass struct {
	client  *overpass.Client
	timeout time.Duration
}

func NewOverpass(endpoint string, timeout time.Duration) *Overpass {
	if endpoint == "" {
		endpoint = DefaultOverpassEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := overpass.NewWithSettings(endpoint, overpassParallelism, &http.Client{Timeout: timeout})
	return &Overpass{client: &client, timeout: timeout}
}

type overpassOutcome struct {
	result overpass.Result
	err    error
}

func (o *Overpass) Search(ctx context.Context, req traffic.SearchRequest) ([]models.Venue, error) {
	query := buildOverpassQuery(req, o.timeout)

	// The client takes no context; the HTTP timeout bounds the goroutine.
	done := make(chan overpassOutcome, 1)
	go func() {
		res, err := o.client.Query(query)
		done <- overpassOutcome{result: res, err: err}
	}()

	var out overpassOutcome
	select {
	case <-ctx.Done():
		return nil, errors.NewVenueDirectoryUnavailableError("overpass", ctx.Err())
	case out = <-done:
	}
	if out.err != nil {
		return nil, errors.NewVenueDirectoryUnavailableError("overpass", out.err)
	}

	venues := overpassVenues(&out.result)
	venues = withinRadius(req, venues)
	sortVenues(venues, req.SortHint)
	return limit(venues, req.Limit), nil
}

func buildOverpassQuery(req traffic.SearchRequest, timeout time.Duration) string {
	amenity := "^(" + strings.Join(categories(req), "|") + ")$"
	around := fmt.Sprintf("around:%d,%.6f,%.6f", req.RadiusMeters, req.Location.Latitude, req.Location.Longitude)
	seconds := int(timeout.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	return fmt.Sprintf(`[out:json][timeout:%d];
(
	node["amenity"~"%s"](%s);
	way["amenity"~"%s"](%s);
);
out body;
>;
out skel qt;`, seconds, amenity, around, amenity, around)
}

// overpassVenues keeps tagged amenities. Member nodes pulled in by ">" carry
// no tags and are skipped; ways are placed at the centroid of their nodes.
func overpassVenues(result *overpass.Result) []models.Venue {
	venues := make([]models.Venue, 0, len(result.Nodes)+len(result.Ways))

	for _, node := range result.Nodes {
		if node == nil || node.Tags["amenity"] == "" {
			continue
		}
		venues = append(venues, osmVenue(fmt.Sprintf("osm:node:%d", node.ID), node.Tags, node.Lat, node.Lon))
	}

	for _, way := range result.Ways {
		if way == nil || way.Tags["amenity"] == "" {
			continue
		}
		var lat, lon float64
		count := 0
		for _, n := range way.Nodes {
			if n == nil {
				continue
			}
			lat += n.Lat
			lon += n.Lon
			count++
		}
		if count == 0 {
			continue
		}
		venues = append(venues, osmVenue(fmt.Sprintf("osm:way:%d", way.ID), way.Tags, lat/float64(count), lon/float64(count)))
	}
	return venues
}

func osmVenue(id string, tags map[string]string, lat, lon float64) models.Venue {
	categoryTags := []string{tags["amenity"]}
	for _, c := range strings.Split(tags["cuisine"], ";") {
		if c = strings.TrimSpace(c); c != "" {
			categoryTags = append(categoryTags, c)
		}
	}

	name := tags["name"]
	if name == "" {
		name = id
	}

	return models.Venue{
		ID:           id,
		Name:         name,
		CategoryTags: categoryTags,
		Latitude:     lat,
		Longitude:    lon,
	}
}
