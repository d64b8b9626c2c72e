package location

// Strategy names which providers the engine consults for a descriptor.
type Strategy string

const (
	// StrategyPlacesPrimary trusts the places text search, with geocoding
	// running alongside as a cross-check.
	StrategyPlacesPrimary Strategy = "places_primary"

	// StrategyAddressValidation validates a complete postal address, with
	// geocoding as the cross-check.
	StrategyAddressValidation Strategy = "address_validation"

	// StrategyGeocodingOnly uses only the geocoder. Via waypoints take this
	// path because they get snapped onto the route afterwards.
	StrategyGeocodingOnly Strategy = "geocoding_only"

	// StrategyHybrid fans out to places and geocoding with neither side
	// trusted outright.
	StrategyHybrid Strategy = "hybrid"
)

// SelectStrategy picks the resolution strategy for a descriptor.
func SelectStrategy(d *Descriptor) Strategy {
	named := d.Kind == KindLandmark || d.HasNamedPlace()

	switch {
	case d.IsViaWaypoint && named:
		return StrategyGeocodingOnly
	case named:
		return StrategyPlacesPrimary
	case d.Kind == KindFullAddress:
		return StrategyAddressValidation
	default:
		return StrategyHybrid
	}
}
