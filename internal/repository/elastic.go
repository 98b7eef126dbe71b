package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"geosearch-api/internal/models"

	"github.com/olivere/elastic/v7"
	"github.com/rs/zerolog/log"
)

// restaurantMapping declares location as a geo_point so geo_distance queries work.
const restaurantMapping = `{
	"mappings": {
		"properties": {
			"id":          {"type": "keyword"},
			"name":        {"type": "text"},
			"address":     {"type": "text"},
			"type":        {"type": "keyword"},
			"description": {"type": "text"},
			"lat":         {"type": "double"},
			"lng":         {"type": "double"},
			"location":    {"type": "geo_point"}
		}
	}
}`

// ElasticRepository runs spatial searches against an Elasticsearch index.
type ElasticRepository struct {
	client *elastic.Client
	index  string
}

type elasticDoc struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Location    string  `json:"location"`
}

// NewElasticClient connects to a single Elasticsearch node without sniffing,
// which keeps the client usable behind Docker networking.
func NewElasticClient(url string, options ...elastic.ClientOptionFunc) (*elastic.Client, error) {
	opts := append([]elastic.ClientOptionFunc{elastic.SetURL(url), elastic.SetSniff(false)}, options...)
	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to create elastic client: %w", err)
	}
	return client, nil
}

// NewElasticRepository creates a repository over index.
func NewElasticRepository(client *elastic.Client, index string) *ElasticRepository {
	return &ElasticRepository{client: client, index: index}
}

// Search runs SearchRestaurants and encodes the result as a response envelope.
func (r *ElasticRepository) Search(ctx context.Context, q models.SpatialQuery) (*models.Envelope, error) {
	result, err := r.SearchRestaurants(ctx, q)
	if err != nil {
		return nil, err
	}
	return models.EnvelopeOf(result)
}

// SearchRestaurants filters by geo_distance around the point and sorts by arc distance ascending.
func (r *ElasticRepository) SearchRestaurants(ctx context.Context, q models.SpatialQuery) (*models.ResultSet, error) {
	filter := elastic.NewGeoDistanceQuery("location").
		Lat(q.Latitude).
		Lon(q.Longitude).
		Distance(FormatCoord(q.RadiusKm) + "km")

	res, err := r.client.Search().
		Index(r.index).
		Query(elastic.NewBoolQuery().Must(elastic.NewMatchAllQuery()).Filter(filter)).
		SortBy(elastic.NewGeoDistanceSort("location").
			Point(q.Latitude, q.Longitude).
			Asc().
			Unit("km").
			DistanceType("arc")).
		Size(MaxResults).
		TrackScores(true).
		TrackTotalHits(true).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: elastic search failed: %w", err)
	}

	result := &models.ResultSet{
		NumFound: int(res.TotalHits()),
		Docs:     []models.Restaurant{},
	}
	if res.Hits == nil {
		return result, nil
	}
	result.MaxScore = res.Hits.MaxScore

	for _, hit := range res.Hits.Hits {
		var doc elasticDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("repository: failed to decode hit %s: %w", hit.Id, err)
		}
		rest := models.Restaurant{
			ID:          doc.ID,
			Name:        doc.Name,
			Address:     doc.Address,
			Type:        doc.Type,
			Description: doc.Description,
			Lat:         doc.Lat,
			Lng:         doc.Lng,
			Location:    doc.Location,
		}
		if rest.ID == "" {
			rest.ID = hit.Id
		}
		if hit.Score != nil {
			rest.Score = *hit.Score
		}
		result.Docs = append(result.Docs, rest)
	}
	return result, nil
}

// EnsureIndex creates the index with the restaurant mapping if it does not exist.
func (r *ElasticRepository) EnsureIndex(ctx context.Context) error {
	exists, err := r.client.IndexExists(r.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to check index %s: %w", r.index, err)
	}
	if exists {
		log.Debug().Str("index", r.index).Msg("index already exists")
		return nil
	}

	created, err := r.client.CreateIndex(r.index).BodyString(restaurantMapping).Do(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to create index %s: %w", r.index, err)
	}
	if !created.Acknowledged {
		log.Warn().Str("index", r.index).Msg("create index was not acknowledged")
	}
	return nil
}

// Ping checks that the cluster answers on the configured URL.
func (r *ElasticRepository) Ping(ctx context.Context) error {
	if _, err := r.client.ClusterHealth().Index(r.index).Do(ctx); err != nil {
		return fmt.Errorf("repository: elastic health check failed: %w", err)
	}
	return nil
}

// DeleteAll removes every document from the index.
func (r *ElasticRepository) DeleteAll(ctx context.Context) error {
	_, err := r.client.DeleteByQuery(r.index).
		Query(elastic.NewMatchAllQuery()).
		Refresh("true").
		Do(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to clear index %s: %w", r.index, err)
	}
	return nil
}

// BulkIndex writes restaurants in one bulk request and refreshes the index.
func (r *ElasticRepository) BulkIndex(ctx context.Context, restaurants []models.Restaurant) error {
	if len(restaurants) == 0 {
		return nil
	}

	bulk := r.client.Bulk().Refresh("true")
	for _, rest := range restaurants {
		doc := elasticDoc{
			ID:          rest.ID,
			Name:        rest.Name,
			Address:     rest.Address,
			Type:        rest.Type,
			Description: rest.Description,
			Lat:         rest.Lat,
			Lng:         rest.Lng,
			Location:    LocationString(rest.Lat, rest.Lng),
		}
		bulk.Add(elastic.NewBulkIndexRequest().Index(r.index).Id(rest.ID).Doc(doc))
	}

	res, err := bulk.Do(ctx)
	if err != nil {
		return fmt.Errorf("repository: bulk index failed: %w", err)
	}
	if failed := res.Failed(); len(failed) > 0 {
		for _, item := range failed {
			if item.Error != nil {
				log.Error().Str("id", item.Id).Str("reason", item.Error.Reason).Msg("bulk item failed")
			}
		}
		return fmt.Errorf("repository: %d of %d documents failed to index", len(failed), len(restaurants))
	}
	return nil
}
