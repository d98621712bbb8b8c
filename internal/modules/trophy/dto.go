package trophy

import "trophyangler/internal/domain"

// NearbyQuery is a radius search around a point.
type NearbyQuery struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
	Limit    int
}

type NearbyResponse struct {
	Items []domain.Trophy `json:"items"`
	Count int             `json:"count"`
}

type ListResponse struct {
	Items []domain.Trophy `json:"items"`
	Count int             `json:"count"`
}

// Limits bound the page sizes callers may ask for.
type Limits struct {
	SearchDefault int
	SearchMax     int
	ListDefault   int
	ListMax       int
}

func DefaultLimits() Limits {
	return Limits{SearchDefault: 50, SearchMax: 500, ListDefault: 20, ListMax: 100}
}
