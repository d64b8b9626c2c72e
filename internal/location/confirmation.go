package location

import "fmt"

// DisplayStop is one batch entry rendered in a confirmation dialog. Stops
// resolved before the ambiguous one carry their coordinates; later stops
// carry only the normalized description.
type DisplayStop struct {
	Original          string   `json:"original"`
	Name              string   `json:"name,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
	FormattedAddress  string   `json:"formatted_address,omitempty"`
	IsViaWaypoint     bool     `json:"is_via_waypoint,omitempty"`
	Resolved          bool     `json:"resolved"`
	NeedsConfirmation bool     `json:"needs_confirmation,omitempty"`
}

// ConfirmationRequiredError signals that resolution produced conflicting
// interpretations and the user must pick one. It is a recoverable outcome,
// not a provider failure.
type ConfirmationRequiredError struct {
	StopIndex    int           `json:"failing_stop_index"`
	Reason       string        `json:"reason"`
	Stops        []DisplayStop `json:"stops,omitempty"`
	Alternatives []Alternative `json:"alternatives"`
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("confirmation required for stop %d: %s", e.StopIndex, e.Reason)
}
