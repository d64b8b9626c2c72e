package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/routevox/trip-planner/pkg/geo"
	"github.com/stretchr/testify/assert"
)

// testPolyline covers roughly downtown to midtown Manhattan.
var testPolyline = EncodePolyline([]geo.Point{
	{Lat: 40.7128, Lng: -74.0060},
	{Lat: 40.7306, Lng: -73.9866},
	{Lat: 40.7484, Lng: -73.9857},
})

func directionsStyleResponse() map[string]interface{} {
	return map[string]interface{}{
		"status": "OK",
		"routes": []map[string]interface{}{
			{
				"summary": "Broadway",
				"overview_polyline": map[string]string{"points": testPolyline},
				"bounds": map[string]interface{}{
					"northeast": map[string]float64{"lat": 40.7484, "lng": -73.9857},
					"southwest": map[string]float64{"lat": 40.7128, "lng": -74.0060},
				},
				"legs": []map[string]interface{}{
					{
						"start_address": "Downtown",
						"end_address":   "Midtown",
						"distance":      map[string]int{"value": 5400},
						"duration":      map[string]int{"value": 780},
						"steps": []map[string]interface{}{
							{
								"html_instructions": "Head north on Broadway",
								"distance":          map[string]int{"value": 5400},
								"duration":          map[string]int{"value": 780},
								"start_location":    map[string]float64{"lat": 40.7128, "lng": -74.0060},
								"end_location":      map[string]float64{"lat": 40.7484, "lng": -73.9857},
							},
						},
					},
				},
			},
		},
	}
}

func routesStyleResponse() map[string]interface{} {
	return map[string]interface{}{
		"routes": []map[string]interface{}{
			{
				"description":    "Broadway",
				"distanceMeters": 5400,
				"duration":       "780s",
				"polyline":       map[string]string{"encodedPolyline": testPolyline},
				"viewport": map[string]interface{}{
					"low":  map[string]float64{"latitude": 40.7128, "longitude": -74.0060},
					"high": map[string]float64{"latitude": 40.7484, "longitude": -73.9857},
				},
				"legs": []map[string]interface{}{
					{
						"distanceMeters": 5400,
						"duration":       "780s",
						"steps": []map[string]interface{}{
							{
								"distanceMeters": 5400,
								"staticDuration": "780s",
								"navigationInstruction": map[string]string{
									"instructions": "Head north on Broadway",
								},
								"startLocation": map[string]interface{}{
									"latLng": map[string]float64{"latitude": 40.7128, "longitude": -74.0060},
								},
								"endLocation": map[string]interface{}{
									"latLng": map[string]float64{"latitude": 40.7484, "longitude": -73.9857},
								},
							},
						},
					},
				},
			},
		},
	}
}

var testWaypoints = []Waypoint{
	{Point: geo.Point{Lat: 40.7128, Lng: -74.0060}},
	{Point: geo.Point{Lat: 40.7484, Lng: -73.9857}},
}

func TestGoogleRouter_BothBackendsNormalizeIdentically(t *testing.T) {
	// Arrange
	legacySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json", r.URL.Path)
		json.NewEncoder(w).Encode(directionsStyleResponse())
	}))
	defer legacySrv.Close()

	modernSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/directions/v2:computeRoutes", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		json.NewEncoder(w).Encode(routesStyleResponse())
	}))
	defer modernSrv.Close()

	legacy := NewGoogleRouter("test-key", legacySrv.URL, modernSrv.URL, false)
	modern := NewGoogleRouter("test-key", legacySrv.URL, modernSrv.URL, true)

	// Act
	fromLegacy, err1 := legacy.ComputeRoute(context.Background(), testWaypoints)
	fromModern, err2 := modern.ComputeRoute(context.Background(), testWaypoints)

	// Assert
	assert.NoError(t, err1)
	assert.NoError(t, err2)

	assert.Equal(t, fromLegacy.DistanceMeters, fromModern.DistanceMeters)
	assert.Equal(t, fromLegacy.DurationSeconds, fromModern.DurationSeconds)
	assert.Equal(t, fromLegacy.EncodedPolyline, fromModern.EncodedPolyline)
	assert.Equal(t, fromLegacy.Summary, fromModern.Summary)
	assert.Equal(t, fromLegacy.Bounds, fromModern.Bounds)
	assert.Len(t, fromModern.Legs, 1)
	assert.Equal(t, fromLegacy.Legs[0].DistanceMeters, fromModern.Legs[0].DistanceMeters)
	assert.Equal(t, fromLegacy.Legs[0].Steps[0].Instruction, fromModern.Legs[0].Steps[0].Instruction)
}

func TestGoogleRouter_ViaWaypointsGetViaPrefix(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("waypoints"), "via:")
		json.NewEncoder(w).Encode(directionsStyleResponse())
	}))
	defer srv.Close()

	router := NewGoogleRouter("test-key", srv.URL, srv.URL, false)
	waypoints := []Waypoint{
		{Point: geo.Point{Lat: 40.7128, Lng: -74.0060}},
		{Point: geo.Point{Lat: 40.7306, Lng: -73.9866}, Via: true},
		{Point: geo.Point{Lat: 40.7484, Lng: -73.9857}},
	}

	// Act
	_, err := router.ComputeRoute(context.Background(), waypoints)

	// Assert
	assert.NoError(t, err)
}

func TestGoogleRouter_ZeroResultsIsErrNoRoutes(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ZERO_RESULTS"})
	}))
	defer srv.Close()

	router := NewGoogleRouter("test-key", srv.URL, srv.URL, false)

	// Act
	_, err := router.ComputeRoute(context.Background(), testWaypoints)

	// Assert
	assert.ErrorIs(t, err, ErrNoRoutes)
}

func TestGoogleRouter_TooFewWaypoints(t *testing.T) {
	// Arrange
	router := NewGoogleRouter("test-key", "http://unused", "http://unused", false)

	// Act
	_, err := router.ComputeRoute(context.Background(), testWaypoints[:1])

	// Assert
	assert.Error(t, err)
}

func TestParseDurationSeconds(t *testing.T) {
	assert.Equal(t, 780, parseDurationSeconds("780s"))
	assert.Equal(t, 3, parseDurationSeconds("3.6s"))
	assert.Equal(t, 0, parseDurationSeconds(""))
	assert.Equal(t, 0, parseDurationSeconds("bogus"))
}
