package domain

// Minimal GeoJSON view models. These are produced for and consumed by the
// Leaflet front end; coordinates are [lon, lat] per RFC 7946.

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// NewFeatureCollection returns an empty collection; Features is non-nil so an
// empty result marshals as [] rather than null.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: []Feature{},
	}
}

// NewLineString builds a LineString feature from [lon, lat] pairs.
func NewLineString(coords [][2]float64, props map[string]interface{}) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "LineString", Coordinates: coords},
		Properties: props,
	}
}

// NewPolygon builds a single-ring Polygon feature.
func NewPolygon(ring [][2]float64, props map[string]interface{}) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "Polygon", Coordinates: [][][2]float64{ring}},
		Properties: props,
	}
}
