// Package geometry implements RouteGeometry: attaching street-following
// polyline geometry to routes, with a straight-line haversine fallback on
// any backend failure, using the same fetch-with-cache-and-retry shape as
// internal/matrixsvc but targeted at a route endpoint instead of a matrix
// endpoint.
package geometry

import (
	"context"

	"fleetroute/internal/cachekey"
	"fleetroute/internal/domain"
	"fleetroute/internal/geoutil"
	"fleetroute/internal/obs"
	"fleetroute/internal/ports"
)

// Service attaches geometry to routes.
type Service struct {
	backend          ports.RoutingBackend
	cache            ports.GeometryCacheStore
	profile          string
	fallbackSpeedKPH float64
}

// New builds a RouteGeometry service.
func New(backend ports.RoutingBackend, cache ports.GeometryCacheStore, profile string, fallbackSpeedKPH float64) *Service {
	if fallbackSpeedKPH <= 0 {
		fallbackSpeedKPH = 50
	}
	return &Service{backend: backend, cache: cache, profile: profile, fallbackSpeedKPH: fallbackSpeedKPH}
}

// coordLookup resolves a client id to its coordinate, supplied by the caller
// (Orchestrator knows the repaired coordinate set; this package stays
// domain-agnostic about where coordinates come from).
type coordLookup func(clientID int) (domain.Coordinates, bool)

// Attach computes geometry for one route and returns a copy with Geometry
// populated. Routes with fewer than 2 stops short-circuit with an empty,
// valid (zero-length) geometry.
func (s *Service) Attach(ctx context.Context, route domain.Route, lookup coordLookup) domain.Route {
	const op = "geometry.Attach"
	defer obs.Time(ctx, op)(nil)

	if len(route.ClientIDs) < 2 {
		route.Geometry = domain.GeometryResult{Valid: true}
		return route
	}

	pts := make([]cachekey.Point, 0, len(route.ClientIDs))
	coords := make([]domain.Coordinates, 0, len(route.ClientIDs))
	for _, id := range route.ClientIDs {
		c, ok := lookup(id)
		if !ok {
			route.Geometry = s.straightLine(route, nil)
			return route
		}
		pts = append(pts, cachekey.Point{Lon: c.Lon, Lat: c.Lat})
		coords = append(coords, c)
	}
	key := cachekey.ForPoints(pts, s.profile)

	if g, ok, err := s.cache.Get(ctx, key, 0); err == nil && ok {
		route.Geometry = g
		return route
	}

	g := s.fetchOrFallback(ctx, route, coords)
	_ = s.cache.Put(ctx, key, g)
	route.Geometry = g
	return route
}

func (s *Service) fetchOrFallback(ctx context.Context, route domain.Route, coords []domain.Coordinates) domain.GeometryResult {
	bp := make([]ports.MatrixPoint, len(coords))
	for i, c := range coords {
		bp[i] = ports.MatrixPoint{Lon: c.Lon, Lat: c.Lat}
	}

	res, err := s.backend.Route(ctx, bp, s.profile)
	if err != nil || res.Code != "Ok" {
		return s.straightLine(route, coords)
	}

	legs := make([]domain.RouteLeg, len(res.Legs))
	for i, l := range res.Legs {
		from, to := 0, 0
		if i < len(route.ClientIDs)-1 {
			from, to = route.ClientIDs[i], route.ClientIDs[i+1]
		}
		legs[i] = domain.RouteLeg{FromID: from, ToID: to, DistanceM: l.DistanceM, DurationS: l.DurationS}
	}

	return domain.GeometryResult{
		Valid:     true,
		Polyline:  res.Polyline,
		DistanceM: res.DistanceM,
		DurationS: res.DurationS,
		Legs:      legs,
	}
}

// straightLine builds the fallback: leg-wise haversine distances and a
// fallbackSpeedKPH (default 50 km/h) time estimate.
func (s *Service) straightLine(route domain.Route, coords []domain.Coordinates) domain.GeometryResult {
	legs := make([]domain.RouteLeg, 0, len(route.ClientIDs)-1)
	var totalM, totalS float64
	for i := 0; i+1 < len(coords); i++ {
		d := geoutil.HaversineMeters(coords[i].Lon, coords[i].Lat, coords[i+1].Lon, coords[i+1].Lat)
		dur := geoutil.DurationSecondsAtSpeed(d, s.fallbackSpeedKPH)
		legs = append(legs, domain.RouteLeg{
			FromID: route.ClientIDs[i], ToID: route.ClientIDs[i+1],
			DistanceM: d, DurationS: dur,
		})
		totalM += d
		totalS += dur
	}
	return domain.GeometryResult{Valid: false, DistanceM: totalM, DurationS: totalS, Legs: legs}
}

// Batch attaches geometry to every route; routes with fewer than 2 stops
// are handled per-route by Attach's own short-circuit.
func (s *Service) Batch(ctx context.Context, routes []domain.Route, lookup coordLookup) []domain.Route {
	out := make([]domain.Route, len(routes))
	for i, r := range routes {
		out[i] = s.Attach(ctx, r, lookup)
	}
	return out
}
