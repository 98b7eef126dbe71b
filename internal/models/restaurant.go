package models

// Restaurant is a single search hit as stored in the search backend.
// Location holds the combined "lat,lng" string the spatial filter runs against.
type Restaurant struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Location    string  `json:"location,omitempty"`
	Explain     string  `json:"[explain],omitempty"`
	Score       float64 `json:"score"`
}

// ResultSet is the typed form of a search response envelope.
// Docs are ordered ascending by distance from the query point.
type ResultSet struct {
	NumFound int          `json:"numFound"`
	Start    int          `json:"start"`
	MaxScore *float64     `json:"maxScore,omitempty"`
	Docs     []Restaurant `json:"docs"`
}

// SearchRequest is a point-and-radius query as submitted by a caller.
// A nil field means the parameter was not supplied.
type SearchRequest struct {
	Latitude  *float64
	Longitude *float64
	RadiusKm  *float64
}

// SpatialQuery is a validated SearchRequest ready to be translated
// into a backend-specific filter and sort.
type SpatialQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}
