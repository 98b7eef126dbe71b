// Package seed loads restaurant documents into a search backend.
package seed

import (
	"context"
	"fmt"
	"time"

	"geosearch-api/internal/models"
	"geosearch-api/internal/retry"

	"github.com/rs/zerolog/log"
)

// Store is a search backend that can be reset and filled with restaurants.
type Store interface {
	WaitReady(ctx context.Context) error
	Clear(ctx context.Context) error
	Index(ctx context.Context, restaurants []models.Restaurant) error
}

// Run waits for the store, clears it and indexes restaurants.
func Run(ctx context.Context, store Store, restaurants []models.Restaurant) error {
	log.Info().Msg("waiting for search backend to come online")
	if err := store.WaitReady(ctx); err != nil {
		return fmt.Errorf("seed: backend not ready: %w", err)
	}
	log.Info().Msg("search backend is online")

	log.Info().Msg("clearing existing data")
	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("seed: failed to clear backend: %w", err)
	}

	log.Info().Int("count", len(restaurants)).Msg("loading restaurants")
	if err := store.Index(ctx, restaurants); err != nil {
		return fmt.Errorf("seed: failed to index restaurants: %w", err)
	}

	log.Info().Int("count", len(restaurants)).Msg("sample data loaded")
	return nil
}

// SolrCore is the subset of the Solr repository the seeder drives.
type SolrCore interface {
	Ping(ctx context.Context) error
	DeleteAll(ctx context.Context) error
	Add(ctx context.Context, rest models.Restaurant) error
}

// SolrStore seeds a Solr core one document at a time, retrying updates the core
// rejects while it is still loading.
type SolrStore struct {
	core         SolrCore
	policy       retry.Policy
	pollInterval time.Duration
	transient    func(error) bool
}

// NewSolrStore wraps core. transient decides which update errors are retried.
func NewSolrStore(core SolrCore, policy retry.Policy, pollInterval time.Duration, transient func(error) bool) *SolrStore {
	if transient == nil {
		transient = func(error) bool { return false }
	}
	return &SolrStore{core: core, policy: policy, pollInterval: pollInterval, transient: transient}
}

// WaitReady polls the core's ping handler until it reports OK.
func (s *SolrStore) WaitReady(ctx context.Context) error {
	return retry.WaitUntil(ctx, s.pollInterval, func(ctx context.Context) error {
		err := s.core.Ping(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("core not online yet")
		}
		return err
	})
}

// Clear deletes every document.
func (s *SolrStore) Clear(ctx context.Context) error {
	return retry.Do(ctx, s.policy, "delete *:*", s.markTransient(s.core.DeleteAll))
}

// Index adds restaurants one by one so a failure names the document it stopped at.
func (s *SolrStore) Index(ctx context.Context, restaurants []models.Restaurant) error {
	for _, rest := range restaurants {
		rest := rest
		add := func(ctx context.Context) error { return s.core.Add(ctx, rest) }
		if err := retry.Do(ctx, s.policy, "add "+rest.ID, s.markTransient(add)); err != nil {
			return err
		}
		log.Info().Str("id", rest.ID).Str("name", rest.Name).Msg("added")
	}
	return nil
}

func (s *SolrStore) markTransient(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && s.transient(err) {
			return retry.Transient(err)
		}
		return err
	}
}

// ElasticIndex is the subset of the Elasticsearch repository the seeder drives.
type ElasticIndex interface {
	Ping(ctx context.Context) error
	EnsureIndex(ctx context.Context) error
	DeleteAll(ctx context.Context) error
	BulkIndex(ctx context.Context, restaurants []models.Restaurant) error
}

// ElasticStore seeds an Elasticsearch index with a single bulk request.
type ElasticStore struct {
	index        ElasticIndex
	pollInterval time.Duration
}

// NewElasticStore wraps index.
func NewElasticStore(index ElasticIndex, pollInterval time.Duration) *ElasticStore {
	return &ElasticStore{index: index, pollInterval: pollInterval}
}

// WaitReady polls cluster health, then creates the index if needed.
func (s *ElasticStore) WaitReady(ctx context.Context) error {
	if err := retry.WaitUntil(ctx, s.pollInterval, s.index.Ping); err != nil {
		return err
	}
	return s.index.EnsureIndex(ctx)
}

// Clear deletes every document in the index.
func (s *ElasticStore) Clear(ctx context.Context) error {
	return s.index.DeleteAll(ctx)
}

// Index bulk-indexes restaurants.
func (s *ElasticStore) Index(ctx context.Context, restaurants []models.Restaurant) error {
	return s.index.BulkIndex(ctx, restaurants)
}

// PostGISTable is the subset of the PostGIS repository the seeder drives.
type PostGISTable interface {
	Ping(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	DeleteAll(ctx context.Context) error
	InsertRestaurants(ctx context.Context, restaurants []models.Restaurant) error
	Count(ctx context.Context) (int, error)
}

// PostGISStore seeds the restaurants table.
type PostGISStore struct {
	table        PostGISTable
	pollInterval time.Duration
}

// NewPostGISStore wraps table.
func NewPostGISStore(table PostGISTable, pollInterval time.Duration) *PostGISStore {
	return &PostGISStore{table: table, pollInterval: pollInterval}
}

// WaitReady waits for the database, then creates the schema.
func (s *PostGISStore) WaitReady(ctx context.Context) error {
	if err := retry.WaitUntil(ctx, s.pollInterval, s.table.Ping); err != nil {
		return err
	}
	return s.table.EnsureSchema(ctx)
}

// Clear truncates the table.
func (s *PostGISStore) Clear(ctx context.Context) error {
	return s.table.DeleteAll(ctx)
}

// Index inserts restaurants and verifies the row count afterwards.
func (s *PostGISStore) Index(ctx context.Context, restaurants []models.Restaurant) error {
	if err := s.table.InsertRestaurants(ctx, restaurants); err != nil {
		return err
	}

	count, err := s.table.Count(ctx)
	if err != nil {
		return err
	}
	if count != len(restaurants) {
		return fmt.Errorf("seed: record count mismatch: expected %d, got %d", len(restaurants), count)
	}
	return nil
}
