package routing

import (
	"context"
	"errors"

	"github.com/routevox/trip-planner/internal/location"
	"github.com/routevox/trip-planner/pkg/common"
	"github.com/routevox/trip-planner/pkg/geo"
	"github.com/routevox/trip-planner/pkg/logger"
	"go.uber.org/zap"
)

// Resolver resolves a single location descriptor against an optional bias
// point.
type Resolver interface {
	Resolve(ctx context.Context, d *location.Descriptor, bias *geo.Point) (*location.Resolved, error)
}

// Assembler turns an ordered batch of location descriptors into a computed
// route.
type Assembler struct {
	resolver Resolver
	router   RouteComputer
}

func NewAssembler(resolver Resolver, router RouteComputer) *Assembler {
	return &Assembler{
		resolver: resolver,
		router:   router,
	}
}

// Request is one route-assembly call. UserLocation and RouteMidpoint anchor
// the resolution bias; either may be nil.
type Request struct {
	Stops         []*location.Descriptor
	UserLocation  *geo.Point
	RouteMidpoint *geo.Point
}

// Assemble resolves every stop in order and routes through them. Stops are
// resolved sequentially so each resolved stop can bias the next one. On an
// ambiguous stop the whole batch is returned for display and nothing is
// routed.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Route, error) {
	if err := validateBatch(req.Stops); err != nil {
		return nil, err
	}

	resolved := make([]*location.Resolved, len(req.Stops))
	for i, d := range req.Stops {
		bias := a.biasFor(req, resolved[:i])

		r, err := a.resolver.Resolve(ctx, d, bias)
		if err != nil {
			var confirm *location.ConfirmationRequiredError
			if errors.As(err, &confirm) {
				confirm.StopIndex = i
				confirm.Stops = displayBatch(req.Stops, resolved, i)
				return nil, confirm
			}
			return nil, err
		}
		resolved[i] = r
	}

	stops := make([]Stop, len(req.Stops))
	waypoints := make([]Waypoint, len(req.Stops))
	for i, r := range resolved {
		d := req.Stops[i]
		stops[i] = Stop{
			Name:             displayName(d, r),
			Original:         d.Original,
			Latitude:         r.Latitude,
			Longitude:        r.Longitude,
			FormattedAddress: r.FormattedAddress,
			PlaceID:          r.PlaceID,
			Source:           r.Source,
			IsViaWaypoint:    d.IsViaWaypoint,
		}
		waypoints[i] = Waypoint{
			Point: geo.Point{Lat: r.Latitude, Lng: r.Longitude},
			Via:   d.IsViaWaypoint,
		}
	}

	route, err := a.router.ComputeRoute(ctx, waypoints)
	if err != nil {
		if errors.Is(err, ErrNoRoutes) {
			logger.WarnContext(ctx, "no drivable route through resolved stops", zap.Int("stops", len(stops)))
			return nil, common.NewUpstreamError("no drivable route found through the requested stops", err)
		}
		return nil, err
	}

	snapViaStops(stops, req.Stops, route.OverviewPath)

	route.Stops = stops
	return route, nil
}

// validateBatch rejects batches that cannot form a route: fewer than two
// real stops, or a via waypoint at either end.
func validateBatch(stops []*location.Descriptor) error {
	nonVia := 0
	for _, d := range stops {
		if d == nil {
			return common.NewBadRequestError("stop entries must not be null", nil)
		}
		if !d.Kind.Valid() {
			return common.NewBadRequestError("unknown location kind", nil)
		}
		if !d.IsViaWaypoint {
			nonVia++
		}
	}
	if nonVia < 2 {
		return common.NewBadRequestError("a route needs at least two stops that are not via waypoints", nil)
	}
	if stops[0].IsViaWaypoint || stops[len(stops)-1].IsViaWaypoint {
		return common.NewBadRequestError("a via waypoint cannot be the first or last stop", nil)
	}
	return nil
}

// biasFor picks the resolution anchor: an explicit route midpoint wins,
// then the user's location, then a midpoint derived from pre-resolved
// endpoints, then the most recently resolved stop.
func (a *Assembler) biasFor(req Request, resolvedSoFar []*location.Resolved) *geo.Point {
	if req.RouteMidpoint != nil {
		return req.RouteMidpoint
	}
	if req.UserLocation != nil {
		return req.UserLocation
	}
	if first, last := req.Stops[0], req.Stops[len(req.Stops)-1]; first.IsResolved() && last.IsResolved() {
		mid := geo.Midpoint(
			geo.Point{Lat: *first.Latitude, Lng: *first.Longitude},
			geo.Point{Lat: *last.Latitude, Lng: *last.Longitude},
		)
		return &mid
	}
	for i := len(resolvedSoFar) - 1; i >= 0; i-- {
		if r := resolvedSoFar[i]; r != nil {
			return &geo.Point{Lat: r.Latitude, Lng: r.Longitude}
		}
	}
	return nil
}

// displayBatch renders the whole batch for a confirmation dialog: stops
// before the ambiguous one carry their coordinates, the ambiguous one is
// flagged, later stops stay unresolved.
func displayBatch(stops []*location.Descriptor, resolved []*location.Resolved, failingIndex int) []location.DisplayStop {
	out := make([]location.DisplayStop, len(stops))
	for i, d := range stops {
		ds := location.DisplayStop{
			Original:      d.Original,
			Name:          d.DisplayLabel(),
			IsViaWaypoint: d.IsViaWaypoint,
		}
		switch {
		case i < failingIndex && resolved[i] != nil:
			r := resolved[i]
			lat, lng := r.Latitude, r.Longitude
			ds.Latitude = &lat
			ds.Longitude = &lng
			ds.FormattedAddress = r.FormattedAddress
			ds.Resolved = true
		case i == failingIndex:
			ds.NeedsConfirmation = true
		}
		out[i] = ds
	}
	return out
}

// snapViaStops moves each via waypoint onto the nearest point of the route
// polyline and restores the phrase the user actually said, so the display
// never claims a street address the driver will not visit.
func snapViaStops(stops []Stop, descriptors []*location.Descriptor, path []geo.Point) {
	if len(path) == 0 {
		return
	}
	for i := range stops {
		if !stops[i].IsViaWaypoint {
			continue
		}
		snapped, _ := geo.ClosestPointOnPath(geo.Point{Lat: stops[i].Latitude, Lng: stops[i].Longitude}, path)
		stops[i].Latitude = snapped.Lat
		stops[i].Longitude = snapped.Lng
		stops[i].Name = descriptors[i].DisplayLabel()
		stops[i].FormattedAddress = ""
	}
}

func displayName(d *location.Descriptor, r *location.Resolved) string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return d.DisplayLabel()
}
