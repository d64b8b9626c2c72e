package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_KnownDistance(t *testing.T) {
	// New York City to Philadelphia is roughly 130 km
	distance := Haversine(40.7128, -74.0060, 39.9526, -75.1652)

	assert.InDelta(t, 130.0, distance, 5.0)
}

func TestHaversine_SamePoint(t *testing.T) {
	distance := Haversine(40.7128, -74.0060, 40.7128, -74.0060)

	assert.Equal(t, 0.0, distance)
}

func TestMidpoint(t *testing.T) {
	mid := Midpoint(Point{Lat: 40.0, Lng: -74.0}, Point{Lat: 42.0, Lng: -72.0})

	assert.Equal(t, 41.0, mid.Lat)
	assert.Equal(t, -73.0, mid.Lng)
}

func TestClosestPointOnPath_ProjectsOntoSegment(t *testing.T) {
	path := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 10},
	}

	snapped, distSq := ClosestPointOnPath(Point{Lat: 1, Lng: 5}, path)

	assert.InDelta(t, 0.0, snapped.Lat, 1e-9)
	assert.InDelta(t, 5.0, snapped.Lng, 1e-9)
	assert.InDelta(t, 1.0, distSq, 1e-9)
}

func TestClosestPointOnPath_ClampsToEndpoint(t *testing.T) {
	path := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 10},
	}

	snapped, _ := ClosestPointOnPath(Point{Lat: 2, Lng: 15}, path)

	assert.InDelta(t, 0.0, snapped.Lat, 1e-9)
	assert.InDelta(t, 10.0, snapped.Lng, 1e-9)
}

func TestClosestPointOnPath_EmptyPath(t *testing.T) {
	p := Point{Lat: 1, Lng: 2}

	snapped, distSq := ClosestPointOnPath(p, nil)

	assert.Equal(t, p, snapped)
	assert.Equal(t, 0.0, distSq)
}
