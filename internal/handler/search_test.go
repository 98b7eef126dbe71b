package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"geosearch-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSearchService is a mock implementation of the SearchService interface
type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, req models.SearchRequest) (*models.Envelope, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*models.Envelope)
	return result, args.Error(1)
}

func ptr(v float64) *float64 { return &v }

func envelope(t *testing.T, raw string) *models.Envelope {
	t.Helper()
	env, err := models.NewEnvelope([]byte(raw))
	require.NoError(t, err)
	return env
}

func TestSearchHandler_Search(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		rawQuery       string
		expectedReq    *models.SearchRequest
		mockResult     *models.Envelope
		mockError      error
		expectedStatus int
		expectedBody   interface{}
	}{
		{
			name:           "missing lat and lon",
			rawQuery:       "radius=5",
			expectedReq:    &models.SearchRequest{RadiusKm: ptr(5)},
			mockError:      models.ErrMissingParameter,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "Missing required parameters: lat and lon"},
		},
		{
			name:           "empty lon counts as missing",
			rawQuery:       "lat=40.7128&lon=",
			expectedReq:    &models.SearchRequest{Latitude: ptr(40.7128)},
			mockError:      models.ErrMissingParameter,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "Missing required parameters: lat and lon"},
		},
		{
			name:           "non numeric latitude",
			rawQuery:       "lat=north&lon=-74.006",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "Invalid search parameters", "details": "invalid lat format"},
		},
		{
			name:           "successful search with results",
			rawQuery:       "lat=40.7128&lon=-74.0060&radius=5",
			expectedReq:    &models.SearchRequest{Latitude: ptr(40.7128), Longitude: ptr(-74.006), RadiusKm: ptr(5)},
			mockResult:     envelope(t, `{"numFound":1,"start":0,"numFoundExact":true,"docs":[{"id":"rest1","name":"The Italian Kitchen","lat":40.7128,"lng":-74.006}]}`),
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"numFound":      float64(1),
				"start":         float64(0),
				"numFoundExact": true,
				"docs": []interface{}{
					map[string]interface{}{
						"id":   "rest1",
						"name": "The Italian Kitchen",
						"lat":  40.7128,
						"lng":  -74.006,
					},
				},
			},
		},
		{
			name:           "successful search with no results",
			rawQuery:       "lat=1&lon=1",
			expectedReq:    &models.SearchRequest{Latitude: ptr(1), Longitude: ptr(1)},
			mockResult:     envelope(t, `{"numFound":0,"start":0,"docs":[]}`),
			expectedStatus: http.StatusOK,
			expectedBody:   map[string]interface{}{"numFound": float64(0), "start": float64(0), "docs": []interface{}{}},
		},
		{
			name:           "service error",
			rawQuery:       "lat=40.7128&lon=-74.0060",
			expectedReq:    &models.SearchRequest{Latitude: ptr(40.7128), Longitude: ptr(-74.006)},
			mockError:      &models.SearchFailedError{Err: assert.AnError},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   map[string]interface{}{"error": "Error performing search", "details": assert.AnError.Error()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockSvc := new(MockSearchService)
			handler := NewSearchHandler(mockSvc)

			if tt.expectedReq != nil {
				mockSvc.On("Search", mock.Anything, *tt.expectedReq).Return(tt.mockResult, tt.mockError)
			}

			// Create request
			req := httptest.NewRequest(http.MethodGet, "/api/search?"+tt.rawQuery, nil)
			w := httptest.NewRecorder()

			// Create Gin context
			c, _ := gin.CreateTestContext(w)
			c.Request = req

			// Execute
			handler.Search(c)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)

			var actualBody interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &actualBody))
			assert.Equal(t, tt.expectedBody, actualBody)

			if tt.expectedReq != nil {
				mockSvc.AssertExpectations(t)
			} else {
				mockSvc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	Health(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.False(t, body.Timestamp.IsZero())
}
