package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectStrategy_LandmarkUsesPlaces(t *testing.T) {
	// Arrange
	d := &Descriptor{Original: "Yankee Stadium", Kind: KindLandmark}

	// Act & Assert
	assert.Equal(t, StrategyPlacesPrimary, SelectStrategy(d))
}

func TestSelectStrategy_BusinessNameUsesPlaces(t *testing.T) {
	// Arrange
	d := &Descriptor{
		Original:   "the Walmart on route 1",
		Kind:       KindPartial,
		Components: &Components{BusinessName: "Walmart"},
	}

	// Act & Assert
	assert.Equal(t, StrategyPlacesPrimary, SelectStrategy(d))
}

func TestSelectStrategy_ViaLandmarkUsesGeocodingOnly(t *testing.T) {
	// Arrange
	d := &Descriptor{
		Original:      "past the George Washington Bridge",
		Kind:          KindLandmark,
		IsViaWaypoint: true,
	}

	// Act & Assert
	assert.Equal(t, StrategyGeocodingOnly, SelectStrategy(d))
}

func TestSelectStrategy_ViaBusinessNameUsesGeocodingOnly(t *testing.T) {
	// Arrange
	d := &Descriptor{
		Original:      "by the Ikea",
		Kind:          KindPartial,
		IsViaWaypoint: true,
		Components:    &Components{BusinessName: "Ikea"},
	}

	// Act & Assert
	assert.Equal(t, StrategyGeocodingOnly, SelectStrategy(d))
}

func TestSelectStrategy_FullAddressUsesValidation(t *testing.T) {
	// Arrange
	d := &Descriptor{
		Original: "40 Wyckoff Ave, Brooklyn, NY",
		Kind:     KindFullAddress,
	}

	// Act & Assert
	assert.Equal(t, StrategyAddressValidation, SelectStrategy(d))
}

func TestSelectStrategy_ViaFullAddressKeepsValidation(t *testing.T) {
	// Arrange: only named places get rerouted for via waypoints
	d := &Descriptor{
		Original:      "40 Wyckoff Ave, Brooklyn, NY",
		Kind:          KindFullAddress,
		IsViaWaypoint: true,
	}

	// Act & Assert
	assert.Equal(t, StrategyAddressValidation, SelectStrategy(d))
}

func TestSelectStrategy_PartialDefaultsToHybrid(t *testing.T) {
	// Arrange
	d := &Descriptor{Original: "main street by the park", Kind: KindPartial}

	// Act & Assert
	assert.Equal(t, StrategyHybrid, SelectStrategy(d))
}

func TestSelectStrategy_LegacyStringDefaultsToHybrid(t *testing.T) {
	// Arrange: legacy plain strings have no kind at all
	d := &Descriptor{Original: "grand central"}

	// Act & Assert
	assert.Equal(t, StrategyHybrid, SelectStrategy(d))
}
