package routing

import "github.com/routevox/trip-planner/pkg/geo"

// Stop is one point in an assembled route, in travel order.
type Stop struct {
	Name             string  `json:"name"`
	Original         string  `json:"original,omitempty"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceID          string  `json:"place_id,omitempty"`
	Source           string  `json:"source,omitempty"`
	IsViaWaypoint    bool    `json:"is_via_waypoint,omitempty"`
}

// Step is one maneuver within a leg.
type Step struct {
	Instruction     string    `json:"instruction,omitempty"`
	DistanceMeters  int       `json:"distance_meters"`
	DurationSeconds int       `json:"duration_seconds"`
	StartLocation   geo.Point `json:"start_location"`
	EndLocation     geo.Point `json:"end_location"`
}

// Leg is the travel between two consecutive stops.
type Leg struct {
	StartAddress    string `json:"start_address,omitempty"`
	EndAddress      string `json:"end_address,omitempty"`
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
	Steps           []Step `json:"steps,omitempty"`
}

// Bounds is the viewport enclosing the whole route.
type Bounds struct {
	Northeast geo.Point `json:"northeast"`
	Southwest geo.Point `json:"southwest"`
}

// Route is a computed route normalized from either backend response shape.
type Route struct {
	Stops           []Stop      `json:"stops"`
	Legs            []Leg       `json:"legs"`
	OverviewPath    []geo.Point `json:"-"`
	EncodedPolyline string      `json:"encoded_polyline"`
	Bounds          Bounds      `json:"bounds"`
	DistanceMeters  int         `json:"distance_meters"`
	DurationSeconds int         `json:"duration_seconds"`
	Summary         string      `json:"summary,omitempty"`
}
