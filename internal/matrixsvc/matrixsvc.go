// Package matrixsvc implements MatrixService: pairwise travel time/distance
// matrices with persistent content-addressed caching and haversine
// fallback: cache-hit/miss resolution, a backend call with retry, and a
// fallback path on backend failure.
package matrixsvc

import (
	"context"
	"strconv"
	"time"

	"fleetroute/internal/cachekey"
	"fleetroute/internal/domain"
	"fleetroute/internal/geoutil"
	"fleetroute/internal/obs"
	"fleetroute/internal/ports"
	"fleetroute/internal/rerr"
)

// Service produces Matrix values for ordered point lists, on top of a
// RoutingBackend and a persistent cache store.
type Service struct {
	backend ports.RoutingBackend
	cache   ports.MatrixCacheStore
	ttl     time.Duration
	maxN    int
}

// New builds a MatrixService. maxN is the caller's configured ceiling (200
// for TSP, 300 for VRP); ttl bounds how long a cache entry remains valid
// before lazy eviction on access.
func New(backend ports.RoutingBackend, cache ports.MatrixCacheStore, ttl time.Duration, maxN int) *Service {
	return &Service{backend: backend, cache: cache, ttl: ttl, maxN: maxN}
}

// BackendStatus is the result of TestBackend.
type BackendStatus struct {
	Connected bool
	Message   string
}

// TestBackend reports backend connectivity (spec: test_backend()).
func (s *Service) TestBackend(ctx context.Context) BackendStatus {
	ok, msg := s.backend.Health(ctx)
	return BackendStatus{Connected: ok, Message: msg}
}

// Get produces a Matrix for the given ordered points under profile. N==0
// returns an empty-valid matrix; N>maxN fails with MatrixTooLarge.
func (s *Service) Get(ctx context.Context, points []domain.MatrixPoint, profile string, useCache bool) (domain.Matrix, error) {
	const op = "matrixsvc.Get"
	defer obs.Time(ctx, op)(nil)

	n := len(points)
	if n == 0 {
		return domain.NewMatrix(0), nil
	}
	if n > s.maxN {
		return domain.Matrix{}, rerr.New(rerr.KindMatrixTooLarge, op, "point count exceeds configured ceiling")
	}

	key := ""
	if useCache {
		key = cacheKeyFor(points, profile)
		if m, ok, err := s.cache.Get(ctx, key, s.ttl); err == nil && ok {
			m.FromCache = true
			return m, nil
		}
	}

	m, err := s.fetchFromBackend(ctx, points, profile)
	if err != nil {
		// BackendUnavailable is non-fatal: fall all the way back to haversine.
		m = s.haversineMatrix(points)
		m.Fallback = true
	}

	if useCache {
		_ = s.cache.Put(ctx, key, m)
	}
	return m, nil
}

func cacheKeyFor(points []domain.MatrixPoint, profile string) string {
	pts := make([]cachekey.Point, len(points))
	for i, p := range points {
		pts[i] = cachekey.Point{Lon: p.Lon, Lat: p.Lat}
	}
	return cachekey.ForPoints(pts, profile)
}

func (s *Service) fetchFromBackend(ctx context.Context, points []domain.MatrixPoint, profile string) (domain.Matrix, error) {
	const op = "matrixsvc.fetchFromBackend"

	bp := make([]ports.MatrixPoint, len(points))
	for i, p := range points {
		bp[i] = ports.MatrixPoint{ID: strconv.Itoa(p.ID), Lon: p.Lon, Lat: p.Lat}
	}

	res, err := s.backend.Matrix(ctx, bp, profile)
	if err != nil {
		return domain.Matrix{}, rerr.Wrap(rerr.KindBackendUnavailable, op, "backend matrix call failed", err)
	}
	if res.Code != "Ok" {
		return domain.Matrix{}, rerr.New(rerr.KindBackendUnavailable, op, "backend returned non-Ok code "+res.Code)
	}

	n := len(points)
	m := domain.NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			cell := res.Cells[i][j]
			if cell.DistanceM == nil || cell.DurationS == nil {
				dm := geoutil.HaversineMeters(points[i].Lon, points[i].Lat, points[j].Lon, points[j].Lat)
				m.DistanceM[i][j] = dm
				m.DurationS[i][j] = geoutil.DurationSecondsAtSpeed(dm, 30)
				continue
			}
			m.DistanceM[i][j] = *cell.DistanceM
			m.DurationS[i][j] = *cell.DurationS
		}
	}
	return m, nil
}

// matrixFallbackSpeedKPH is the assumed travel speed (distance / 30 km/h)
// used to derive a duration from a haversine distance when the routing
// backend is unavailable, distinct from RouteGeometry's 50 km/h
// straight-line estimate.
const matrixFallbackSpeedKPH = 30

func (s *Service) haversineMatrix(points []domain.MatrixPoint) domain.Matrix {
	n := len(points)
	m := domain.NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dm := geoutil.HaversineMeters(points[i].Lon, points[i].Lat, points[j].Lon, points[j].Lat)
			m.DistanceM[i][j] = dm
			m.DurationS[i][j] = geoutil.DurationSecondsAtSpeed(dm, matrixFallbackSpeedKPH)
		}
	}
	return m
}
