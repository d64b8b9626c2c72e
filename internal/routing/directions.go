package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/routevox/trip-planner/pkg/common"
	"github.com/routevox/trip-planner/pkg/geo"
	"github.com/routevox/trip-planner/pkg/logger"
	"github.com/routevox/trip-planner/pkg/resilience"
	"go.uber.org/zap"
)

// ErrNoRoutes is returned when the routing backend answered but found no
// drivable route through the given points.
var ErrNoRoutes = errors.New("no route found")

// Waypoint is one coordinate the route must pass through. Via waypoints
// shape the path without splitting it into separate legs.
type Waypoint struct {
	geo.Point
	Via bool
}

// RouteComputer computes a drivable route through ordered waypoints.
type RouteComputer interface {
	ComputeRoute(ctx context.Context, waypoints []Waypoint) (*Route, error)
}

// GoogleRouter calls either the legacy directions endpoint or the newer
// routes endpoint and normalizes both response shapes into one Route.
type GoogleRouter struct {
	apiKey     string
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker

	directionsBaseURL string
	routesBaseURL     string
	preferRoutesAPI   bool
	retryConfig       resilience.RetryConfig
}

func NewGoogleRouter(apiKey, directionsBaseURL, routesBaseURL string, preferRoutesAPI bool) *GoogleRouter {
	return &GoogleRouter{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		directionsBaseURL: directionsBaseURL,
		routesBaseURL:     routesBaseURL,
		preferRoutesAPI:   preferRoutesAPI,
		retryConfig:       resilience.DefaultRetryConfig(),
	}
}

// SetCircuitBreaker enables circuit breaker protection for external API calls.
func (g *GoogleRouter) SetCircuitBreaker(cb *resilience.CircuitBreaker) {
	g.breaker = cb
}

// ComputeRoute routes through the waypoints in order.
func (g *GoogleRouter) ComputeRoute(ctx context.Context, waypoints []Waypoint) (*Route, error) {
	if len(waypoints) < 2 {
		return nil, common.NewBadRequestError("at least two waypoints are required", nil)
	}
	if g.preferRoutesAPI {
		return g.computeViaRoutesAPI(ctx, waypoints)
	}
	return g.computeViaDirections(ctx, waypoints)
}

// computeViaDirections calls the legacy snake_case endpoint.
func (g *GoogleRouter) computeViaDirections(ctx context.Context, waypoints []Waypoint) (*Route, error) {
	origin := waypoints[0]
	dest := waypoints[len(waypoints)-1]

	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destination", fmt.Sprintf("%f,%f", dest.Lat, dest.Lng))
	params.Set("key", g.apiKey)
	params.Set("mode", "driving")

	if len(waypoints) > 2 {
		parts := make([]string, 0, len(waypoints)-2)
		for _, wp := range waypoints[1 : len(waypoints)-1] {
			coord := fmt.Sprintf("%f,%f", wp.Lat, wp.Lng)
			if wp.Via {
				coord = "via:" + coord
			}
			parts = append(parts, coord)
		}
		params.Set("waypoints", strings.Join(parts, "|"))
	}

	reqURL := fmt.Sprintf("%s/json?%s", g.directionsBaseURL, params.Encode())
	body, err := g.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Status string `json:"status"`
		Routes []struct {
			Summary string `json:"summary"`
			Legs    []struct {
				StartAddress string `json:"start_address"`
				EndAddress   string `json:"end_address"`
				Distance     struct {
					Value int `json:"value"`
				} `json:"distance"`
				Duration struct {
					Value int `json:"value"`
				} `json:"duration"`
				Steps []struct {
					HTMLInstructions string `json:"html_instructions"`
					Distance         struct {
						Value int `json:"value"`
					} `json:"distance"`
					Duration struct {
						Value int `json:"value"`
					} `json:"duration"`
					StartLocation struct {
						Lat float64 `json:"lat"`
						Lng float64 `json:"lng"`
					} `json:"start_location"`
					EndLocation struct {
						Lat float64 `json:"lat"`
						Lng float64 `json:"lng"`
					} `json:"end_location"`
				} `json:"steps"`
			} `json:"legs"`
			OverviewPolyline struct {
				Points string `json:"points"`
			} `json:"overview_polyline"`
			Bounds struct {
				Northeast struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"northeast"`
				Southwest struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"southwest"`
			} `json:"bounds"`
		} `json:"routes"`
		ErrorMessage string `json:"error_message"`
	}

	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, common.NewInternalServerError("failed to parse directions response")
	}

	if apiResp.Status == "ZERO_RESULTS" || (apiResp.Status == "OK" && len(apiResp.Routes) == 0) {
		return nil, ErrNoRoutes
	}
	if apiResp.Status != "OK" {
		logger.WarnContext(ctx, "directions API error", zap.String("status", apiResp.Status), zap.String("error", apiResp.ErrorMessage))
		return nil, common.NewUpstreamError(fmt.Sprintf("directions API error: %s", apiResp.Status), nil)
	}

	best := apiResp.Routes[0]
	route := &Route{
		Summary:         best.Summary,
		EncodedPolyline: best.OverviewPolyline.Points,
		OverviewPath:    DecodePolyline(best.OverviewPolyline.Points),
		Bounds: Bounds{
			Northeast: geo.Point{Lat: best.Bounds.Northeast.Lat, Lng: best.Bounds.Northeast.Lng},
			Southwest: geo.Point{Lat: best.Bounds.Southwest.Lat, Lng: best.Bounds.Southwest.Lng},
		},
	}

	for _, l := range best.Legs {
		leg := Leg{
			StartAddress:    l.StartAddress,
			EndAddress:      l.EndAddress,
			DistanceMeters:  l.Distance.Value,
			DurationSeconds: l.Duration.Value,
		}
		for _, s := range l.Steps {
			leg.Steps = append(leg.Steps, Step{
				Instruction:     s.HTMLInstructions,
				DistanceMeters:  s.Distance.Value,
				DurationSeconds: s.Duration.Value,
				StartLocation:   geo.Point{Lat: s.StartLocation.Lat, Lng: s.StartLocation.Lng},
				EndLocation:     geo.Point{Lat: s.EndLocation.Lat, Lng: s.EndLocation.Lng},
			})
		}
		route.Legs = append(route.Legs, leg)
		route.DistanceMeters += leg.DistanceMeters
		route.DurationSeconds += leg.DurationSeconds
	}

	return route, nil
}

// computeViaRoutesAPI calls the newer camelCase endpoint. Durations arrive
// as strings like "1234s".
func (g *GoogleRouter) computeViaRoutesAPI(ctx context.Context, waypoints []Waypoint) (*Route, error) {
	type latLng struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	type apiWaypoint struct {
		Location struct {
			LatLng latLng `json:"latLng"`
		} `json:"location"`
		Via bool `json:"via,omitempty"`
	}

	makeWaypoint := func(wp Waypoint) apiWaypoint {
		var w apiWaypoint
		w.Location.LatLng = latLng{Latitude: wp.Lat, Longitude: wp.Lng}
		w.Via = wp.Via
		return w
	}

	payload := map[string]interface{}{
		"origin":      makeWaypoint(waypoints[0]),
		"destination": makeWaypoint(waypoints[len(waypoints)-1]),
		"travelMode":  "DRIVE",
	}
	if len(waypoints) > 2 {
		intermediates := make([]apiWaypoint, 0, len(waypoints)-2)
		for _, wp := range waypoints[1 : len(waypoints)-1] {
			intermediates = append(intermediates, makeWaypoint(wp))
		}
		payload["intermediates"] = intermediates
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, common.NewInternalErrorWithError("failed to encode routes request", err)
	}

	reqURL := fmt.Sprintf("%s/directions/v2:computeRoutes", g.routesBaseURL)
	respBody, err := g.doRequest(ctx, http.MethodPost, reqURL, body)
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Routes []struct {
			DistanceMeters int    `json:"distanceMeters"`
			Duration       string `json:"duration"`
			Description    string `json:"description"`
			Polyline       struct {
				EncodedPolyline string `json:"encodedPolyline"`
			} `json:"polyline"`
			Viewport struct {
				Low  latLng `json:"low"`
				High latLng `json:"high"`
			} `json:"viewport"`
			Legs []struct {
				DistanceMeters int    `json:"distanceMeters"`
				Duration       string `json:"duration"`
				Steps          []struct {
					DistanceMeters        int    `json:"distanceMeters"`
					StaticDuration        string `json:"staticDuration"`
					NavigationInstruction struct {
						Instructions string `json:"instructions"`
					} `json:"navigationInstruction"`
					StartLocation struct {
						LatLng latLng `json:"latLng"`
					} `json:"startLocation"`
					EndLocation struct {
						LatLng latLng `json:"latLng"`
					} `json:"endLocation"`
				} `json:"steps"`
			} `json:"legs"`
		} `json:"routes"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, common.NewInternalServerError("failed to parse routes response")
	}

	if apiResp.Error != nil {
		logger.WarnContext(ctx, "routes API error",
			zap.String("status", apiResp.Error.Status),
			zap.String("error", apiResp.Error.Message))
		return nil, common.NewUpstreamError(fmt.Sprintf("routes API error: %s", apiResp.Error.Status), nil)
	}
	if len(apiResp.Routes) == 0 {
		return nil, ErrNoRoutes
	}

	best := apiResp.Routes[0]
	route := &Route{
		Summary:         best.Description,
		EncodedPolyline: best.Polyline.EncodedPolyline,
		OverviewPath:    DecodePolyline(best.Polyline.EncodedPolyline),
		DistanceMeters:  best.DistanceMeters,
		DurationSeconds: parseDurationSeconds(best.Duration),
		Bounds: Bounds{
			Northeast: geo.Point{Lat: best.Viewport.High.Latitude, Lng: best.Viewport.High.Longitude},
			Southwest: geo.Point{Lat: best.Viewport.Low.Latitude, Lng: best.Viewport.Low.Longitude},
		},
	}

	for _, l := range best.Legs {
		leg := Leg{
			DistanceMeters:  l.DistanceMeters,
			DurationSeconds: parseDurationSeconds(l.Duration),
		}
		for _, s := range l.Steps {
			leg.Steps = append(leg.Steps, Step{
				Instruction:     s.NavigationInstruction.Instructions,
				DistanceMeters:  s.DistanceMeters,
				DurationSeconds: parseDurationSeconds(s.StaticDuration),
				StartLocation:   geo.Point{Lat: s.StartLocation.LatLng.Latitude, Lng: s.StartLocation.LatLng.Longitude},
				EndLocation:     geo.Point{Lat: s.EndLocation.LatLng.Latitude, Lng: s.EndLocation.LatLng.Longitude},
			})
		}
		route.Legs = append(route.Legs, leg)
	}

	return route, nil
}

// parseDurationSeconds reads protobuf-style durations such as "1234s".
func parseDurationSeconds(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(s), "s")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(v)
}

func (g *GoogleRouter) doRequest(ctx context.Context, method, reqURL string, body []byte) ([]byte, error) {
	attempt := func(ctx context.Context) (interface{}, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
		if err != nil {
			return nil, err
		}
		if method == http.MethodPost {
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Goog-Api-Key", g.apiKey)
			req.Header.Set("X-Goog-FieldMask", "routes.distanceMeters,routes.duration,routes.polyline,routes.legs,routes.viewport,routes.description")
		}
		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resilience.IsRetryableHTTPStatus(resp.StatusCode) {
			return nil, fmt.Errorf("routing backend returned status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	call := func(ctx context.Context) (interface{}, error) {
		return resilience.RetryWithName(ctx, g.retryConfig, attempt, "routing-backend")
	}

	if g.breaker != nil {
		result, err := g.breaker.Execute(ctx, call)
		if err != nil {
			return nil, common.NewUpstreamError("routing backend circuit open or request failed", err)
		}
		return result.([]byte), nil
	}

	result, err := call(ctx)
	if err != nil {
		return nil, common.NewUpstreamError("routing backend request failed", err)
	}
	return result.([]byte), nil
}
