package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"geosearch-api/internal/metrics"
	"geosearch-api/internal/models"

	"github.com/rs/zerolog/log"
)

// DefaultRadiusKm is used when a search omits the radius.
const DefaultRadiusKm = 5.0

// SearchService translates point-and-radius searches into backend spatial queries
type SearchService struct {
	repo    SearchRepository
	backend string
	timeout time.Duration
}

// SearchRepository is a search backend able to run a spatial query
type SearchRepository interface {
	Search(ctx context.Context, q models.SpatialQuery) (*models.Envelope, error)
}

// NewSearchService creates a search service. backend names the repository in logs and metrics;
// a zero timeout leaves the deadline to the transport.
func NewSearchService(repo SearchRepository, backend string, timeout time.Duration) *SearchService {
	return &SearchService{repo: repo, backend: backend, timeout: timeout}
}

// BuildQuery validates a request and applies the default radius.
func BuildQuery(req models.SearchRequest) (models.SpatialQuery, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return models.SpatialQuery{}, models.ErrMissingParameter
	}

	q := models.SpatialQuery{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		RadiusKm:  DefaultRadiusKm,
	}
	if req.RadiusKm != nil {
		q.RadiusKm = *req.RadiusKm
	}

	if !isFinite(q.Latitude) || q.Latitude < -90 || q.Latitude > 90 {
		return models.SpatialQuery{}, fmt.Errorf("%w: latitude must be between -90 and 90", models.ErrInvalidParameter)
	}
	if !isFinite(q.Longitude) || q.Longitude < -180 || q.Longitude > 180 {
		return models.SpatialQuery{}, fmt.Errorf("%w: longitude must be between -180 and 180", models.ErrInvalidParameter)
	}
	if !isFinite(q.RadiusKm) || q.RadiusKm <= 0 {
		return models.SpatialQuery{}, fmt.Errorf("%w: radius must be a positive number", models.ErrInvalidParameter)
	}
	return q, nil
}

// Search runs the spatial query and returns the backend's result set unchanged.
// Backend failures are logged and returned as *models.SearchFailedError.
func (s *SearchService) Search(ctx context.Context, req models.SearchRequest) (*models.Envelope, error) {
	q, err := BuildQuery(req)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.repo.Search(ctx, q)
	elapsed := time.Since(start)

	if err != nil {
		metrics.ObserveSearch(s.backend, "error", elapsed, 0)
		log.Error().
			Err(err).
			Str("backend", s.backend).
			Float64("lat", q.Latitude).
			Float64("lon", q.Longitude).
			Float64("radius_km", q.RadiusKm).
			Msg("error during search")
		return nil, &models.SearchFailedError{Err: err}
	}

	if result == nil {
		if result, err = models.EnvelopeOf(nil); err != nil {
			return nil, &models.SearchFailedError{Err: err}
		}
	}

	metrics.ObserveSearch(s.backend, "ok", elapsed, result.Returned)
	log.Debug().
		Str("backend", s.backend).
		Int("num_found", result.NumFound).
		Int("returned", result.Returned).
		Dur("elapsed", elapsed).
		Msg("search completed")
	return result, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
