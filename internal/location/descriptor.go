package location

import (
	"encoding/json"
	"strings"
)

// Kind classifies a spoken location description.
type Kind string

const (
	KindFullAddress Kind = "full_address"
	KindLandmark    Kind = "landmark"
	KindPartial     Kind = "partial"
	KindRelative    Kind = "relative"
)

// Components holds the parsed pieces of a location description as produced
// by the upstream speech extraction step. Every field is optional.
type Components struct {
	StreetNumber string `json:"street_number,omitempty"`
	StreetName   string `json:"street_name,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Landmark     string `json:"landmark,omitempty"`
	BusinessName string `json:"business_name,omitempty"`
}

// Descriptor is one location description within a routing request.
// It accepts two JSON forms: the legacy bare string ("40 Wyckoff Ave") and
// the structured object emitted by the speech extraction step.
type Descriptor struct {
	Original        string      `json:"original"`
	Kind            Kind        `json:"kind,omitempty" validate:"omitempty,descriptor_kind"`
	Components      *Components `json:"parsed_components,omitempty"`
	SearchQueryHint string      `json:"search_query_hint,omitempty"`
	Confidence      float64     `json:"confidence,omitempty"`
	IsViaWaypoint   bool        `json:"is_via_waypoint,omitempty"`

	// Display label; optional, falls back to Original.
	Name string `json:"name,omitempty"`

	// Pre-resolved coordinates. When both are present the descriptor skips
	// resolution entirely.
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// UnmarshalJSON accepts both the legacy plain-string form and the
// structured object form.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Descriptor{Original: s}
		return nil
	}

	type alias Descriptor
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*d = Descriptor(a)
	return nil
}

// Valid reports whether k is empty or one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case "", KindFullAddress, KindLandmark, KindPartial, KindRelative:
		return true
	}
	return false
}

// IsResolved reports whether the descriptor already carries coordinates.
func (d *Descriptor) IsResolved() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// HasRegionContext reports whether the user supplied explicit geographic
// context. Descriptors with context are exempt from the distance guard.
func (d *Descriptor) HasRegionContext() bool {
	if d.Components == nil {
		return false
	}
	return d.Components.City != "" || d.Components.State != "" || d.Components.Country != ""
}

// HasNamedPlace reports whether a business or landmark name was parsed out.
func (d *Descriptor) HasNamedPlace() bool {
	if d.Components == nil {
		return false
	}
	return d.Components.BusinessName != "" || d.Components.Landmark != ""
}

// DisplayLabel returns the label shown to the user for this descriptor.
func (d *Descriptor) DisplayLabel() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Original
}
