package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"geosearch-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	msgMissingParameters = "Missing required parameters: lat and lon"
	msgInvalidParameters = "Invalid search parameters"
	msgSearchFailed      = "Error performing search"
)

// SearchHandler handles spatial restaurant searches
type SearchHandler struct {
	service SearchService
}

// SearchService interface for dependency injection
type SearchService interface {
	Search(context.Context, models.SearchRequest) (*models.Envelope, error)
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{service: svc}
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Search handles GET /api/search requests
//
//	@Summary		Search restaurants near a point
//	@Description	Returns restaurants within radius kilometres of (lat, lon), nearest first.
//	@Tags			search
//	@Produce		json
//	@Param			lat		query		number	true	"Latitude"
//	@Param			lon		query		number	true	"Longitude"
//	@Param			radius	query		number	false	"Radius in kilometres"	default(5)
//	@Success		200		{object}	models.ResultSet
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	req, err := parseSearchRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidParameters, Details: err.Error()})
		return
	}

	result, err := h.service.Search(c.Request.Context(), req)
	if err != nil {
		writeSearchError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", result.Raw)
}

func writeSearchError(c *gin.Context, err error) {
	var failed *models.SearchFailedError
	switch {
	case errors.Is(err, models.ErrMissingParameter):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgMissingParameters})
	case errors.Is(err, models.ErrInvalidParameter):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidParameters, Details: err.Error()})
	case errors.As(err, &failed):
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgSearchFailed, Details: failed.Cause()})
	default:
		log.Error().Err(err).Msg("unexpected search error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgSearchFailed, Details: err.Error()})
	}
}

// parseSearchRequest reads lat, lon and radius. Absent or empty values stay nil
// so the service decides what is missing; present values must be numbers.
func parseSearchRequest(c *gin.Context) (models.SearchRequest, error) {
	var req models.SearchRequest
	var err error

	if req.Latitude, err = optionalFloat(c, "lat"); err != nil {
		return req, err
	}
	if req.Longitude, err = optionalFloat(c, "lon"); err != nil {
		return req, err
	}
	if req.RadiusKm, err = optionalFloat(c, "radius"); err != nil {
		return req, err
	}
	return req, nil
}

func optionalFloat(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.New("invalid " + key + " format")
	}
	return &v, nil
}
