package routing

import (
	"testing"

	"github.com/routevox/trip-planner/pkg/geo"
	"github.com/stretchr/testify/assert"
)

func TestDecodePolyline_KnownVector(t *testing.T) {
	// Act
	points := DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")

	// Assert
	assert.Len(t, points, 3)
	assert.InDelta(t, 38.5, points[0].Lat, 1e-5)
	assert.InDelta(t, -120.2, points[0].Lng, 1e-5)
	assert.InDelta(t, 40.7, points[1].Lat, 1e-5)
	assert.InDelta(t, -120.95, points[1].Lng, 1e-5)
	assert.InDelta(t, 43.252, points[2].Lat, 1e-5)
	assert.InDelta(t, -126.453, points[2].Lng, 1e-5)
}

func TestEncodePolyline_KnownVector(t *testing.T) {
	// Arrange
	points := []geo.Point{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}

	// Act & Assert
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", EncodePolyline(points))
}

func TestPolyline_RoundTrip(t *testing.T) {
	// Arrange
	original := []geo.Point{
		{Lat: 40.7128, Lng: -74.0060},
		{Lat: 40.7306, Lng: -73.9866},
		{Lat: 40.7484, Lng: -73.9857},
		{Lat: -33.8688, Lng: 151.2093},
	}

	// Act
	decoded := DecodePolyline(EncodePolyline(original))

	// Assert
	assert.Len(t, decoded, len(original))
	for i := range original {
		assert.InDelta(t, original[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, original[i].Lng, decoded[i].Lng, 1e-5)
	}
}

func TestDecodePolyline_Empty(t *testing.T) {
	assert.Empty(t, DecodePolyline(""))
}

func TestDecodePolyline_TruncatedInputKeepsPrefix(t *testing.T) {
	// Arrange: a valid single point plus a dangling half-value
	encoded := EncodePolyline([]geo.Point{{Lat: 38.5, Lng: -120.2}}) + "_"

	// Act
	points := DecodePolyline(encoded)

	// Assert
	assert.Len(t, points, 1)
	assert.InDelta(t, 38.5, points[0].Lat, 1e-5)
}
