package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"geosearch-api/internal/models"
)

// solrFieldList is the fixed field list requested for every search.
const solrFieldList = "id,name,address,type,description,lat,lng,location,[explain],score"

// MaxResults is the page size asked of every backend, large enough that a
// radius search returns all of its matches in one response.
const MaxResults = 1000

// StatusError is returned when a backend answers with a non-2xx HTTP status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status code %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.Message)
}

// SolrRepository queries and updates a single Solr core over its HTTP API.
type SolrRepository struct {
	coreURL string
	client  *http.Client
}

// NewSolrRepository creates a repository for the core at coreURL,
// e.g. http://solr:8983/solr/restaurants. A nil client means http.DefaultClient.
func NewSolrRepository(coreURL string, client *http.Client) *SolrRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &SolrRepository{coreURL: strings.TrimRight(coreURL, "/"), client: client}
}

// FormatCoord formats a coordinate or distance the same way everywhere it is embedded in a query.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildSolrParams translates a spatial query into Solr select parameters:
// a geofilt filter on the location field and an ascending geodist sort from the same point.
func BuildSolrParams(q models.SpatialQuery) url.Values {
	lat := FormatCoord(q.Latitude)
	lon := FormatCoord(q.Longitude)
	d := FormatCoord(q.RadiusKm)

	params := url.Values{}
	params.Set("q", "*:*")
	params.Set("fq", fmt.Sprintf("{!geofilt sfield=location pt=%s,%s d=%s}", lat, lon, d))
	params.Set("sort", fmt.Sprintf("geodist(location,%s,%s) asc", lat, lon))
	params.Set("fl", solrFieldList)
	params.Set("rows", strconv.Itoa(MaxResults))
	params.Set("wt", "json")
	return params
}

type solrSelectResponse struct {
	Response json.RawMessage `json:"response"`
}

type solrErrorResponse struct {
	Error struct {
		Msg string `json:"msg"`
	} `json:"error"`
}

// Search runs a geofilt query and returns the response object as Solr produced it.
// Documents and their fields are not interpreted.
func (r *SolrRepository) Search(ctx context.Context, q models.SpatialQuery) (*models.Envelope, error) {
	endpoint := r.coreURL + "/select?" + BuildSolrParams(q).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to build solr request: %w", err)
	}

	var body solrSelectResponse
	if err := r.do(req, &body); err != nil {
		return nil, fmt.Errorf("repository: solr select failed: %w", err)
	}
	if len(body.Response) == 0 || string(body.Response) == "null" {
		return nil, errors.New("repository: solr select returned no response object")
	}

	env, err := models.NewEnvelope(body.Response)
	if err != nil {
		return nil, fmt.Errorf("repository: solr select: %w", err)
	}
	return env, nil
}

// Ping checks the core's admin ping handler and fails unless it reports OK.
func (r *SolrRepository) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.coreURL+"/admin/ping?wt=json", nil)
	if err != nil {
		return fmt.Errorf("repository: failed to build solr ping: %w", err)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := r.do(req, &body); err != nil {
		return fmt.Errorf("repository: solr ping failed: %w", err)
	}
	if body.Status != "OK" {
		return fmt.Errorf("repository: solr core status %q", body.Status)
	}
	return nil
}

// DeleteAll removes every document from the core and commits.
func (r *SolrRepository) DeleteAll(ctx context.Context) error {
	cmd := map[string]interface{}{"delete": map[string]string{"query": "*:*"}}
	if err := r.update(ctx, cmd); err != nil {
		return fmt.Errorf("repository: solr delete failed: %w", err)
	}
	return nil
}

// Add indexes one restaurant and commits. The location field is derived from lat and lng.
func (r *SolrRepository) Add(ctx context.Context, rest models.Restaurant) error {
	doc := map[string]interface{}{
		"id":          rest.ID,
		"name":        rest.Name,
		"address":     rest.Address,
		"type":        rest.Type,
		"description": rest.Description,
		"lat":         rest.Lat,
		"lng":         rest.Lng,
		"location":    LocationString(rest.Lat, rest.Lng),
	}
	cmd := map[string]interface{}{"add": map[string]interface{}{"doc": doc}}
	if err := r.update(ctx, cmd); err != nil {
		return fmt.Errorf("repository: solr add %s failed: %w", rest.ID, err)
	}
	return nil
}

// LocationString builds the "lat,lng" value stored in the spatial field.
func LocationString(lat, lng float64) string {
	return FormatCoord(lat) + "," + FormatCoord(lng)
}

func (r *SolrRepository) update(ctx context.Context, cmd interface{}) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.coreURL+"/update?commit=true", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return r.do(req, nil)
}

func (r *SolrRepository) do(req *http.Request, out interface{}) error {
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var solrErr solrErrorResponse
		msg := ""
		if json.Unmarshal(data, &solrErr) == nil {
			msg = solrErr.Error.Msg
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// IsUnavailable reports whether err carries an HTTP 503, which a core returns while it is still loading.
func IsUnavailable(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusServiceUnavailable
}
