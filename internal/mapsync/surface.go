package mapsync

import (
	"context"

	"geosearch-api/internal/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Handle identifies a layer on a Surface. Zero is never a valid handle.
type Handle uint64

// MarkerKind distinguishes restaurant markers from the current-location marker.
type MarkerKind int

const (
	KindRestaurant MarkerKind = iota
	KindCurrentLocation
)

func (k MarkerKind) String() string {
	switch k {
	case KindRestaurant:
		return "restaurant"
	case KindCurrentLocation:
		return "current-location"
	default:
		return "unknown"
	}
}

// Popup is the summary shown when a marker is opened.
type Popup struct {
	Title    string
	Address  string
	Category string
}

// MarkerSpec describes a marker to draw. Position is (lon, lat).
type MarkerSpec struct {
	ID       string
	Position orb.Point
	Popup    Popup
	Kind     MarkerKind
}

// Circle is the search radius indicator.
type Circle struct {
	Center       orb.Point
	RadiusMeters float64
}

// Bound returns the bounding box that contains the circle.
func (c Circle) Bound() orb.Bound {
	return geo.NewBoundAroundPoint(c.Center, c.RadiusMeters)
}

// Contains reports whether p lies inside the circle.
func (c Circle) Contains(p orb.Point) bool {
	return geo.DistanceHaversine(c.Center, p) <= c.RadiusMeters
}

// Surface is the map rendering target.
type Surface interface {
	AddMarker(spec MarkerSpec) Handle
	DrawCircle(c Circle) Handle
	RemoveLayer(h Handle)
	SetView(center orb.Point, zoom int)
	OpenPopup(h Handle)
}

// ListEntry is one row of the result list, tagged with the restaurant ID its marker carries.
type ListEntry struct {
	ID      string
	Name    string
	Address string
}

// ResultList is the panel listing search results.
type ResultList interface {
	Render(entries []ListEntry, summary string)
}

// Notifier shows blocking messages to the user.
type Notifier interface {
	Alert(message string)
}

// Form holds the coordinate inputs of the search form.
type Form interface {
	SetCoordinates(lat, lon string)
}

// Locator resolves the device's current position. Implementations return
// ErrGeolocationDenied or ErrGeolocationUnavailable on failure.
type Locator interface {
	CurrentPosition(ctx context.Context) (orb.Point, error)
}

// SearchClient runs a restaurant search against the API.
type SearchClient interface {
	Search(ctx context.Context, lat, lon, radiusKm float64) (*models.ResultSet, error)
}
