package mapsync

// DefaultZoom is used for the initial view, a selected result and the current location.
const DefaultZoom = 13

// zoomSteps maps an upper radius bound in kilometres to a zoom level.
// Bounds are inclusive: a radius exactly on a bound takes the closer zoom.
var zoomSteps = []struct {
	maxRadiusKm float64
	zoom        int
}{
	{1, 15},
	{3, 14},
	{7, 13},
	{15, 12},
	{30, 11},
}

const minSearchZoom = 10

// ZoomForRadius picks a zoom level that keeps a search circle of radiusKm in view.
// Smaller radii give higher zoom levels.
func ZoomForRadius(radiusKm float64) int {
	for _, step := range zoomSteps {
		if radiusKm <= step.maxRadiusKm {
			return step.zoom
		}
	}
	return minSearchZoom
}
