// Package client calls the restaurant search API over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"geosearch-api/internal/models"

	"github.com/rs/zerolog/log"
)

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d: %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client is a search API client.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.client = c
	}
}

// New creates a client for the API at baseURL, e.g. http://localhost:3000.
// No timeout is set; use WithHTTPClient or a context deadline to bound requests.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// searchEnvelope is the API response with documents left undecoded.
type searchEnvelope struct {
	NumFound int                          `json:"numFound"`
	Start    int                          `json:"start"`
	MaxScore *float64                     `json:"maxScore"`
	Docs     []map[string]json.RawMessage `json:"docs"`
}

// Search calls GET /api/search. Documents that cannot be read as restaurants
// are logged and left out of Docs; NumFound is reported as the API sent it.
func (c *Client) Search(ctx context.Context, lat, lon, radiusKm float64) (*models.ResultSet, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("radius", strconv.FormatFloat(radiusKm, 'f', -1, 64))

	var body searchEnvelope
	if err := c.get(ctx, "/api/search", params, &body); err != nil {
		return nil, err
	}

	result := &models.ResultSet{
		NumFound: body.NumFound,
		Start:    body.Start,
		MaxScore: body.MaxScore,
		Docs:     make([]models.Restaurant, 0, len(body.Docs)),
	}
	for i, raw := range body.Docs {
		doc, err := decodeDoc(raw)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping unreadable search result")
			continue
		}
		result.Docs = append(result.Docs, doc)
	}
	return result, nil
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", nil, &body); err != nil {
		return err
	}
	if body.Status != "ok" {
		return fmt.Errorf("client: unhealthy status %q", body.Status)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, v interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("client: decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Details = payload.Details
	}
	return apiErr
}
