package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"site-traffic-workers/internal/common/errors"
	"site-traffic-workers/internal/models"
	"site-traffic-workers/internal/traffic"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const defaultVenueIndex = "venues"

// Elasticsearch searches a venue index with a geo_point "location" field.
type Elasticsearch struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearch(client *elasticsearch.Client, index string) *Elasticsearch {
	if index == "" {
		index = defaultVenueIndex
	}
	return &Elasticsearch{client: client, index: index}
}

type venueDocument struct {
	VenueID    string   `json:"venue_id"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	PriceTier  int      `json:"price_tier"`
	Rating     float64  `json:"rating"`
	Popularity float64  `json:"popularity"`
	Verified   bool     `json:"verified"`
	Location   struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string        `json:"_id"`
			Source venueDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *Elasticsearch) Search(ctx context.Context, req traffic.SearchRequest) ([]models.Venue, error) {
	body, err := json.Marshal(buildSearchQuery(req))
	if err != nil {
		return nil, errors.NewVenueDirectoryUnavailableError("elasticsearch", err)
	}

	searchReq := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(body),
	}
	res, err := searchReq.Do(ctx, e.client)
	if err != nil {
		return nil, errors.NewVenueDirectoryUnavailableError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewVenueDirectoryUnavailableError("elasticsearch", fmt.Errorf("search failed: %s", res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewVenueDirectoryUnavailableError("elasticsearch", err)
	}

	venues := make([]models.Venue, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		doc := hit.Source
		id := doc.VenueID
		if id == "" {
			id = hit.ID
		}
		venues = append(venues, models.Venue{
			ID:           id,
			Name:         doc.Name,
			CategoryTags: doc.Categories,
			PriceTier:    doc.PriceTier,
			Rating:       doc.Rating,
			Popularity:   doc.Popularity,
			Verified:     doc.Verified,
			Latitude:     doc.Location.Lat,
			Longitude:    doc.Location.Lon,
		})
	}

	venues = withinRadius(req, venues)
	sortVenues(venues, req.SortHint)
	return limit(venues, req.Limit), nil
}

func buildSearchQuery(req traffic.SearchRequest) map[string]interface{} {
	point := map[string]interface{}{
		"lat": req.Location.Latitude,
		"lon": req.Location.Longitude,
	}

	filter := []interface{}{
		map[string]interface{}{
			"geo_distance": map[string]interface{}{
				"distance": fmt.Sprintf("%dm", req.RadiusMeters),
				"location": point,
			},
		},
		map[string]interface{}{
			"terms": map[string]interface{}{"category_keys": categories(req)},
		},
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filter},
		},
		"sort": sortClause(req.SortHint, point),
	}
	if req.Limit > 0 {
		query["size"] = req.Limit
	}
	return query
}

func sortClause(hint string, point map[string]interface{}) []interface{} {
	byDistance := map[string]interface{}{
		"_geo_distance": map[string]interface{}{
			"location": point,
			"order":    "asc",
			"unit":     "m",
		},
	}
	switch hint {
	case traffic.SortByRating:
		return []interface{}{map[string]interface{}{"rating": "desc"}, byDistance}
	case traffic.SortByDistance:
		return []interface{}{byDistance}
	default:
		return []interface{}{map[string]interface{}{"popularity": "desc"}, byDistance}
	}
}
