package location

import "fmt"

// Source identifiers carried on resolved locations and alternatives.
const (
	SourcePlaces            = "places"
	SourceAddressValidation = "address_validation"
	SourceGeocoding         = "geocoding"
	SourceClient            = "client"
)

// Resolved is the accepted interpretation of a Descriptor.
type Resolved struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceID          string  `json:"place_id,omitempty"`
	DisplayName      string  `json:"display_name,omitempty"`
	Source           string  `json:"source"`
	Confidence       float64 `json:"confidence"`

	// UnconfirmedComponents lists address parts the validator could not
	// confirm. Present only on validation-sourced results.
	UnconfirmedComponents []string `json:"unconfirmed_components,omitempty"`

	// SimilarityNote is set when the accepted result shares few tokens with
	// the original phrase. Informational only; it never blocks acceptance.
	SimilarityNote string `json:"similarity_note,omitempty"`
}

// Alternative is a candidate interpretation offered to the user when
// resolution needs confirmation.
type Alternative struct {
	Source           string  `json:"source"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	DisplayName      string  `json:"display_name,omitempty"`
	PlaceID          string  `json:"place_id,omitempty"`

	// DistanceWarningKm is set when the candidate sits farther from the
	// search bias than the guard allows.
	DistanceWarningKm float64 `json:"distance_warning_km,omitempty"`
}

func (a Alternative) dedupeKey() string {
	return fmt.Sprintf("%.6f|%.6f|%s", a.Latitude, a.Longitude, a.FormattedAddress)
}

// DedupeAlternatives drops candidates with identical coordinates and
// formatted address, keeping first occurrence order.
func DedupeAlternatives(alts []Alternative) []Alternative {
	seen := make(map[string]struct{}, len(alts))
	out := make([]Alternative, 0, len(alts))
	for _, alt := range alts {
		key := alt.dedupeKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, alt)
	}
	return out
}
