package location

import (
	"context"
	"errors"

	"github.com/routevox/trip-planner/pkg/geo"
)

// ErrNoResults is returned when a provider answers successfully but has no
// candidates for the query.
var ErrNoResults = errors.New("no results for query")

// SourceResult is a single normalized candidate from any provider.
type SourceResult struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
	DisplayName      string
	PlaceID          string
}

// ValidationResult is the normalized outcome of an address validation call.
// Found is false when the validator answered but could not geocode the
// address at all.
type ValidationResult struct {
	SourceResult
	Found                 bool
	AddressComplete       bool
	UnconfirmedComponents []string
}

// NearbyPlace is one ranked result of a nearest-by-keyword search.
type NearbyPlace struct {
	SourceResult
	DistanceKm float64 `json:"distance_km"`
	Rating     float64 `json:"rating,omitempty"`
	OpenNow    *bool   `json:"open_now,omitempty"`
}

// PlacesSearcher finds named places by free-text query.
type PlacesSearcher interface {
	TextSearch(ctx context.Context, query string, bias *geo.Point) (*SourceResult, error)
}

// AddressValidator checks a postal address for completeness and geocodes it.
type AddressValidator interface {
	ValidateAddress(ctx context.Context, address, regionCode string) (*ValidationResult, error)
}

// Geocoder converts free text into coordinate candidates, most relevant
// first.
type Geocoder interface {
	Geocode(ctx context.Context, query string, bias *geo.Point) ([]SourceResult, error)
}

// NearbySearcher ranks places matching a keyword by distance from a point.
type NearbySearcher interface {
	NearestByKeyword(ctx context.Context, keyword string, at geo.Point, limit int) ([]NearbyPlace, error)
}
