// Package mapsync keeps a map's restaurant markers, search circle, viewport and
// result list consistent with the most recent search.
package mapsync

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"

	"geosearch-api/internal/models"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

// User-facing messages.
const (
	MsgInvalidInput           = "Please enter valid numbers for latitude, longitude, and radius"
	MsgSearchFailed           = "Error performing search. Please try again."
	MsgGeolocationUnsupported = "Geolocation is not supported by your browser"
	MsgLocationFailed         = "Unable to retrieve your location. Please enter coordinates manually."
	MsgNoResults              = "No restaurants found"
	CurrentLocationTitle      = "Your Current Location"
)

var (
	// ErrInvalidInput is returned when a search input is not a finite number.
	ErrInvalidInput = errors.New("mapsync: latitude, longitude and radius must be finite numbers")
	// ErrSuperseded is returned when a newer search was issued before this one completed.
	ErrSuperseded = errors.New("mapsync: search superseded by a newer one")
	// ErrGeolocationUnavailable is returned when no position source exists or it cannot produce a fix.
	ErrGeolocationUnavailable = errors.New("mapsync: geolocation unavailable")
	// ErrGeolocationDenied is returned when the user refused access to their position.
	ErrGeolocationDenied = errors.New("mapsync: geolocation permission denied")
)

// DefaultCenter is lower Manhattan, where the sample restaurants are.
var DefaultCenter = orb.Point{-74.0060, 40.7128}

// Marker is a marker the synchronizer placed on the surface.
type Marker struct {
	ID       string
	Handle   Handle
	Position orb.Point
	Popup    Popup
	Kind     MarkerKind
}

// Viewport is the map view as last set by the synchronizer.
type Viewport struct {
	Center       orb.Point
	Zoom         int
	SearchCircle *Circle
}

// Snapshot is a copy of the synchronizer state.
type Snapshot struct {
	Markers         []Marker
	LocationMarkers []Marker
	Viewport        Viewport
	Entries         []ListEntry
	Summary         string
}

// Config wires a Synchronizer to its collaborators. Form and Locator are optional.
type Config struct {
	Surface  Surface
	List     ResultList
	Notifier Notifier
	Form     Form
	Client   SearchClient
	Locator  Locator

	// InitialCenter defaults to DefaultCenter and InitialZoom to DefaultZoom.
	InitialCenter *orb.Point
	InitialZoom   int
}

// Synchronizer owns the map state. It is safe for concurrent use; when searches
// overlap only the most recently issued one is applied.
type Synchronizer struct {
	surface  Surface
	list     ResultList
	notifier Notifier
	form     Form
	client   SearchClient
	locator  Locator

	mu        sync.Mutex
	issued    uint64
	markers   []Marker
	byID      map[string]int
	locations []Marker
	circle    Handle
	viewport  Viewport
	entries   []ListEntry
	summary   string
}

// New creates a Synchronizer and sets the initial view on the surface.
func New(cfg Config) *Synchronizer {
	center := DefaultCenter
	if cfg.InitialCenter != nil {
		center = *cfg.InitialCenter
	}
	zoom := cfg.InitialZoom
	if zoom == 0 {
		zoom = DefaultZoom
	}

	s := &Synchronizer{
		surface:  cfg.Surface,
		list:     cfg.List,
		notifier: cfg.Notifier,
		form:     cfg.Form,
		client:   cfg.Client,
		locator:  cfg.Locator,
		byID:     make(map[string]int),
		viewport: Viewport{Center: center, Zoom: zoom},
	}
	s.surface.SetView(center, zoom)
	return s
}

// RunSearch searches around (lat, lon) and, on success, replaces every marker,
// the search circle, the view and the result list in one step. On failure the
// previous state is left as it was and the user is alerted.
func (s *Synchronizer) RunSearch(ctx context.Context, lat, lon, radiusKm float64) (*models.ResultSet, error) {
	if !finite(lat) || !finite(lon) || !finite(radiusKm) {
		s.notifier.Alert(MsgInvalidInput)
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	result, err := s.client.Search(ctx, lat, lon, radiusKm)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issued {
		log.Debug().Uint64("seq", seq).Uint64("latest", s.issued).Msg("discarding superseded search response")
		return nil, ErrSuperseded
	}

	if err != nil {
		log.Error().Err(err).Msg("error during search")
		s.notifier.Alert(MsgSearchFailed)
		return nil, fmt.Errorf("mapsync: search failed: %w", err)
	}
	if result == nil {
		result = &models.ResultSet{}
	}

	s.apply(orb.Point{lon, lat}, radiusKm, result.Docs)
	return result, nil
}

func (s *Synchronizer) apply(center orb.Point, radiusKm float64, docs []models.Restaurant) {
	s.clearMarkers()

	s.markers = make([]Marker, 0, len(docs))
	s.byID = make(map[string]int, len(docs))
	for _, doc := range docs {
		spec := MarkerSpec{
			ID:       doc.ID,
			Position: orb.Point{doc.Lng, doc.Lat},
			Popup:    Popup{Title: doc.Name, Address: doc.Address, Category: doc.Type},
			Kind:     KindRestaurant,
		}
		h := s.surface.AddMarker(spec)
		if _, dup := s.byID[doc.ID]; !dup {
			s.byID[doc.ID] = len(s.markers)
		}
		s.markers = append(s.markers, Marker{
			ID:       spec.ID,
			Handle:   h,
			Position: spec.Position,
			Popup:    spec.Popup,
			Kind:     spec.Kind,
		})
	}

	if s.circle != 0 {
		s.surface.RemoveLayer(s.circle)
	}
	circle := Circle{Center: center, RadiusMeters: radiusKm * 1000}
	s.circle = s.surface.DrawCircle(circle)

	zoom := ZoomForRadius(radiusKm)
	s.surface.SetView(center, zoom)
	s.viewport = Viewport{Center: center, Zoom: zoom, SearchCircle: &circle}

	s.entries = make([]ListEntry, 0, len(docs))
	for _, doc := range docs {
		s.entries = append(s.entries, ListEntry{ID: doc.ID, Name: doc.Name, Address: doc.Address})
	}
	s.summary = Summary(len(docs))
	s.list.Render(s.entries, s.summary)
}

// clearMarkers removes restaurant and current-location markers alike.
func (s *Synchronizer) clearMarkers() {
	for _, m := range s.markers {
		s.surface.RemoveLayer(m.Handle)
	}
	for _, m := range s.locations {
		s.surface.RemoveLayer(m.Handle)
	}
	s.markers = nil
	s.locations = nil
	s.byID = make(map[string]int)
}

// SelectResult opens the popup of the marker tagged id and centres the view on it.
// An id that is not on the map, e.g. a click on a list from an older search, is ignored.
// It reports whether a marker was found.
func (s *Synchronizer) SelectResult(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return false
	}

	m := s.markers[i]
	s.surface.OpenPopup(m.Handle)
	s.surface.SetView(m.Position, DefaultZoom)
	s.viewport.Center = m.Position
	s.viewport.Zoom = DefaultZoom
	return true
}

// UseCurrentLocation asks the locator for the device position, fills the form
// with it, centres the view there and drops a current-location marker.
// The marker is removed by the next successful search like any other.
func (s *Synchronizer) UseCurrentLocation(ctx context.Context) (orb.Point, error) {
	if s.locator == nil {
		s.notifier.Alert(MsgGeolocationUnsupported)
		return orb.Point{}, ErrGeolocationUnavailable
	}

	pos, err := s.locator.CurrentPosition(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error getting location")
		s.notifier.Alert(MsgLocationFailed)
		return orb.Point{}, fmt.Errorf("mapsync: current position: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.form != nil {
		s.form.SetCoordinates(
			strconv.FormatFloat(pos.Lat(), 'f', 6, 64),
			strconv.FormatFloat(pos.Lon(), 'f', 6, 64),
		)
	}

	s.surface.SetView(pos, DefaultZoom)
	s.viewport.Center = pos
	s.viewport.Zoom = DefaultZoom

	spec := MarkerSpec{
		Position: pos,
		Popup:    Popup{Title: CurrentLocationTitle},
		Kind:     KindCurrentLocation,
	}
	h := s.surface.AddMarker(spec)
	s.locations = append(s.locations, Marker{Handle: h, Position: pos, Popup: spec.Popup, Kind: spec.Kind})
	return pos, nil
}

// Snapshot returns a copy of the current state.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Markers:         append([]Marker(nil), s.markers...),
		LocationMarkers: append([]Marker(nil), s.locations...),
		Viewport:        s.viewport,
		Entries:         append([]ListEntry(nil), s.entries...),
		Summary:         s.summary,
	}
	if s.viewport.SearchCircle != nil {
		c := *s.viewport.SearchCircle
		snap.Viewport.SearchCircle = &c
	}
	return snap
}

// Summary is the result-count line shown above the list.
func Summary(count int) string {
	switch count {
	case 0:
		return MsgNoResults
	case 1:
		return "1 restaurant found"
	default:
		return strconv.Itoa(count) + " restaurants found"
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
