package mapsync

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"geosearch-api/internal/models"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSearchClient is a mock implementation of the SearchClient interface
type MockSearchClient struct {
	mock.Mock
}

func (m *MockSearchClient) Search(ctx context.Context, lat, lon, radiusKm float64) (*models.ResultSet, error) {
	args := m.Called(ctx, lat, lon, radiusKm)
	result, _ := args.Get(0).(*models.ResultSet)
	return result, args.Error(1)
}

func restaurants(ids ...string) *models.ResultSet {
	docs := make([]models.Restaurant, 0, len(ids))
	for i, id := range ids {
		docs = append(docs, models.Restaurant{
			ID:      id,
			Name:    "Restaurant " + id,
			Address: id + " Main St",
			Type:    "Italian",
			Lat:     40.7128 + float64(i)*0.001,
			Lng:     -74.006,
		})
	}
	return &models.ResultSet{NumFound: len(docs), Docs: docs}
}

func newTestSynchronizer(client SearchClient, locator Locator) (*Synchronizer, *Headless) {
	surface := NewHeadless()
	s := New(Config{
		Surface:  surface,
		List:     surface,
		Notifier: surface,
		Form:     surface,
		Client:   client,
		Locator:  locator,
	})
	return s, surface
}

func TestNew_SetsInitialView(t *testing.T) {
	_, surface := newTestSynchronizer(new(MockSearchClient), nil)

	center, zoom := surface.View()
	assert.Equal(t, DefaultCenter, center)
	assert.Equal(t, DefaultZoom, zoom)
}

func TestRunSearch_MarkersMatchListOneToOne(t *testing.T) {
	client := new(MockSearchClient)
	client.On("Search", mock.Anything, 40.7128, -74.006, 5.0).Return(restaurants("rest1", "rest4", "rest5"), nil)

	s, surface := newTestSynchronizer(client, nil)
	result, err := s.RunSearch(context.Background(), 40.7128, -74.006, 5)
	require.NoError(t, err)
	require.Len(t, result.Docs, 3)

	markers := surface.Markers()
	entries, summary := surface.List()
	assert.Len(t, markers, 3)
	assert.Len(t, entries, 3)
	assert.Equal(t, "3 restaurants found", summary)

	markerIDs := make(map[string]int)
	for _, m := range markers {
		markerIDs[m.ID]++
		assert.Equal(t, KindRestaurant, m.Kind)
	}
	entryIDs := make(map[string]int)
	for _, e := range entries {
		entryIDs[e.ID]++
	}
	assert.Equal(t, markerIDs, entryIDs)
	for id, n := range markerIDs {
		assert.Equal(t, 1, n, "id %s", id)
	}

	// list order follows the result set
	assert.Equal(t, []string{"rest1", "rest4", "rest5"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})

	snap := s.Snapshot()
	assert.Len(t, snap.Markers, 3)
	assert.Equal(t, entries, snap.Entries)
	client.AssertExpectations(t)
}

func TestRunSearch_MarkerPopupAndPosition(t *testing.T) {
	client := new(MockSearchClient)
	client.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&models.ResultSet{
		NumFound: 1,
		Docs: []models.Restaurant{{
			ID: "rest1", Name: "The Italian Kitchen", Address: "123 Main St, New York, NY",
			Type: "Italian", Lat: 40.7128, Lng: -74.006,
		}},
	}, nil)

	s, surface := newTestSynchronizer(client, nil)
	_, err := s.RunSearch(context.Background(), 40.7128, -74.006, 5)
	require.NoError(t, err)

	markers := surface.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, orb.Point{-74.006, 40.7128}, markers[0].Position)
	assert.Equal(t, Popup{Title: "The Italian Kitchen", Address: "123 Main St, New York, NY", Category: "Italian"}, markers[0].Popup)
	assert.Equal(t, "1 restaurant found", s.Snapshot().Summary)
}

func TestRunSearch_CircleAndView(t *testing.T) {
	client := new(MockSearchClient)
	client.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(restaurants("rest1"), nil)

	s, surface := newTestSynchronizer(client, nil)
	_, err := s.RunSearch(context.Background(), 40.7, -74.0, 2.5)
	require.NoError(t, err)

	circles := surface.Circles()
	require.Len(t, circles, 1)
	assert.Equal(t, orb.Point{-74.0, 40.7}, circles[0].Center)
	assert.Equal(t, 2500.0, circles[0].RadiusMeters)

	center, zoom := surface.View()
	assert.Equal(t, orb.Point{-74.0, 40.7}, center)
	assert.Equal(t, 14, zoom)

	snap := s.Snapshot()
	require.NotNil(t, snap.Viewport.SearchCircle)
	assert.Equal(t, circles[0], *snap.Viewport.SearchCircle)
	assert.Equal(t, 14, snap.Viewport.Zoom)
}

func TestRunSearch_SecondSearchReplacesEverything(t *testing.T) {
	client := new(MockSearchClient)
	client.On("Search", mock.Anything, 40.7128, -74.006, 5.0).Return(restaurants("rest1", "rest2", "rest3"), nil)
	client.On("Search", mock.Anything, 40.73, -73.99, 1.0).Return(restaurants("rest12"), nil)

	s, surface := newTestSynchronizer(client, nil)
	_, err := s.RunSearch(context.Background(), 40.7128, -74.006, 5)
	require.NoError(t, err)
	_, err = s.RunSearch(context.Background(), 40.73, -73.99, 1)
	require.NoError(t, err)

	markers := surface.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, "rest12", markers[0].ID)

	circles := surface.Circles()
	require.Len(t, circles, 1)
	assert.Equal(t, 1000.0, circles[0].RadiusMeters)

	_, zoom := surface.View()
	assert.Equal(t, 15, zoom)

	assert.False(t, s.SelectResult("rest1"), "markers from the first search must be gone")
}

func TestRunSearch_ZeroResults(t *testing.T) {
	client := new(MockSearchClient)
	client.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&models.ResultSet{Docs: []models.Restaurant{}}, nil)

	s, surface := newTestSynchronizer(client, nil)
	_, err := s.RunSearch(context.Background(), 10, 10, 3)
	require.NoError(t, err)

	assert.Empty(t, surface.Markers())
	assert.Len(t, surface.Circles(), 1)
	entries, summary := surface.List()
	assert.Empty(t, entries)
	assert.Equal(t, "No restaurants found", summary)
	assert.Empty(t, surface.Alerts())
	assert.Empty(t, s.Snapshot().Markers)
}

func TestRunSearch_InvalidInput(t *testing.T) {
	tests := []struct {
		name               string
		lat, lon, radiusKm float64
	}{
		{name: "nan latitude", lat: math.NaN(), lon: -74, radiusKm: 5},
		{name: "infinite longitude", lat: 40, lon: math.Inf(1), radiusKm: 5},
		{name: "nan radius", lat: 40, lon: -74, radiusKm: math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockSearchClient)
			s, surface := newTestSynchronizer(client, nil)

			_, err := s.RunSearch(context.Background(), tt.lat, tt.lon, tt.radiusKm)

			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, []string{MsgInvalidInput}, surface.Alerts())
			client.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRunSearch_FailureLeavesStateUntouched(t *testing.T) {
	client := new(MockSearchClient)
	client.On("Search", mock.Anything, 40.7128, -74.006, 5.0).Return(restaurants("rest1", "rest2"), nil)
	client.On("Search", mock.Anything, 1.0, 1.0, 1.0).Return(nil, errors.New("Error performing search"))

	s, surface := newTestSynchronizer(client, nil)
	_, err := s.RunSearch(context.Background(), 40.7128, -74.006, 5)
	require.NoError(t, err)
	before := s.Snapshot()
	beforeMarkers := surface.Markers()

	_, err = s.RunSearch(context.Background(), 1, 1, 1)
	require.Error(t, err)

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, beforeMarkers, surface.Markers())
	assert.Equal(t, []string{MsgSearchFailed}, surface.Alerts())
}

func TestSelectResult(t *testing.T) {
	client := new(MockSearchClient)
	client.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(restaurants("rest1", "rest2"), nil)

	s, surface := newTestSynchronizer(client, nil)
	_, err := s.RunSearch(context.Background(), 40.7128, -74.006, 20)
	require.NoError(t, err)

	require.True(t, s.SelectResult("rest2"))

	opened, ok := surface.OpenedMarker()
	require.True(t, ok)
	assert.Equal(t, "rest2", opened.ID)

	center, zoom := surface.View()
	assert.Equal(t, opened.Position, center)
	assert.Equal(t, DefaultZoom, zoom)
}

func TestSelectResult_UnknownIDIsNoOp(t *testing.T) {
	client := new(MockSearchClient)
	client.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(restaurants("rest1"), nil)

	s, surface := newTestSynchronizer(client, nil)
	_, err := s.RunSearch(context.Background(), 40.7128, -74.006, 20)
	require.NoError(t, err)

	before := s.Snapshot()
	centerBefore, zoomBefore := surface.View()

	assert.False(t, s.SelectResult("rest99"))

	assert.Equal(t, before, s.Snapshot())
	center, zoom := surface.View()
	assert.Equal(t, centerBefore, center)
	assert.Equal(t, zoomBefore, zoom)
	_, opened := surface.OpenedMarker()
	assert.False(t, opened)
	assert.Empty(t, surface.Alerts())
}

func TestUseCurrentLocation(t *testing.T) {
	here := orb.Point{-73.9857, 40.748817}
	client := new(MockSearchClient)
	client.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(restaurants("rest1"), nil)

	s, surface := newTestSynchronizer(client, FixedLocator{Position: &here})

	pos, err := s.UseCurrentLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, here, pos)

	lat, lon := surface.Inputs()
	assert.Equal(t, "40.748817", lat)
	assert.Equal(t, "-73.985700", lon)

	center, zoom := surface.View()
	assert.Equal(t, here, center)
	assert.Equal(t, DefaultZoom, zoom)

	markers := surface.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, KindCurrentLocation, markers[0].Kind)
	assert.Equal(t, CurrentLocationTitle, markers[0].Popup.Title)

	// the next search clears the location marker with the rest
	_, err = s.RunSearch(context.Background(), here.Lat(), here.Lon(), 5)
	require.NoError(t, err)
	for _, m := range surface.Markers() {
		assert.Equal(t, KindRestaurant, m.Kind)
	}
	assert.Empty(t, s.Snapshot().LocationMarkers)
}

func TestUseCurrentLocation_Failures(t *testing.T) {
	tests := []struct {
		name        string
		locator     Locator
		expectedErr error
		expectedMsg string
	}{
		{name: "no locator", locator: nil, expectedErr: ErrGeolocationUnavailable, expectedMsg: MsgGeolocationUnsupported},
		{name: "permission denied", locator: FixedLocator{Denied: true}, expectedErr: ErrGeolocationDenied, expectedMsg: MsgLocationFailed},
		{name: "no fix", locator: FixedLocator{}, expectedErr: ErrGeolocationUnavailable, expectedMsg: MsgLocationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockSearchClient)
			client.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(restaurants("rest1"), nil)

			s, surface := newTestSynchronizer(client, tt.locator)
			_, err := s.RunSearch(context.Background(), 40.7128, -74.006, 5)
			require.NoError(t, err)
			before := s.Snapshot()

			_, err = s.UseCurrentLocation(context.Background())

			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, []string{tt.expectedMsg}, surface.Alerts())
			assert.Equal(t, before, s.Snapshot())
			assert.Len(t, surface.Markers(), 1)
		})
	}
}

// blockingClient holds each search until its release channel is closed.
type blockingClient struct {
	mu      sync.Mutex
	release map[float64]chan struct{}
	results map[float64]*models.ResultSet
	started chan float64
}

func (c *blockingClient) Search(ctx context.Context, lat, lon, radiusKm float64) (*models.ResultSet, error) {
	c.mu.Lock()
	ch := c.release[radiusKm]
	res := c.results[radiusKm]
	c.mu.Unlock()

	c.started <- radiusKm
	<-ch
	return res, nil
}

func TestRunSearch_StaleResponseIsDiscarded(t *testing.T) {
	client := &blockingClient{
		release: map[float64]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})},
		results: map[float64]*models.ResultSet{1: restaurants("old1", "old2"), 2: restaurants("new1")},
		started: make(chan float64, 2),
	}
	s, surface := newTestSynchronizer(client, nil)

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.RunSearch(context.Background(), 40.7, -74.0, 1)
		firstErr <- err
	}()
	require.Equal(t, 1.0, <-client.started)

	secondErr := make(chan error, 1)
	go func() {
		_, err := s.RunSearch(context.Background(), 40.7, -74.0, 2)
		secondErr <- err
	}()
	require.Equal(t, 2.0, <-client.started)

	// the newer search lands first, the older one afterwards
	close(client.release[2])
	require.NoError(t, <-secondErr)
	close(client.release[1])
	assert.ErrorIs(t, <-firstErr, ErrSuperseded)

	markers := surface.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, "new1", markers[0].ID)
	assert.Empty(t, surface.Alerts())
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "No restaurants found", Summary(0))
	assert.Equal(t, "1 restaurant found", Summary(1))
	assert.Equal(t, "12 restaurants found", Summary(12))
}

func TestCircle(t *testing.T) {
	c := Circle{Center: orb.Point{-74.006, 40.7128}, RadiusMeters: 5000}

	assert.True(t, c.Contains(orb.Point{-74.016, 40.7178}))
	assert.False(t, c.Contains(orb.Point{-73.9, 40.8}))

	b := c.Bound()
	assert.True(t, b.Contains(c.Center))
	assert.Less(t, b.Min.Lat(), c.Center.Lat())
	assert.Greater(t, b.Max.Lon(), c.Center.Lon())
}
