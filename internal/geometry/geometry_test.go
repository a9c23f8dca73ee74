package geometry

import (
	"context"
	"testing"
	"time"

	"fleetroute/internal/domain"
	"fleetroute/internal/ports"
)

type failingBackend struct{}

func (failingBackend) Matrix(ctx context.Context, points []ports.MatrixPoint, profile string) (ports.MatrixResult, error) {
	return ports.MatrixResult{}, nil
}
func (failingBackend) Route(ctx context.Context, points []ports.MatrixPoint, profile string) (ports.RouteResult, error) {
	return ports.RouteResult{Code: "Error"}, nil
}
func (failingBackend) Health(ctx context.Context) (bool, string) { return false, "down" }

type memGeoCache struct {
	m map[string]domain.GeometryResult
}

func newMemGeoCache() *memGeoCache { return &memGeoCache{m: map[string]domain.GeometryResult{}} }

func (c *memGeoCache) Get(ctx context.Context, key string, ttl time.Duration) (domain.GeometryResult, bool, error) {
	g, ok := c.m[key]
	return g, ok, nil
}
func (c *memGeoCache) Put(ctx context.Context, key string, g domain.GeometryResult) error {
	c.m[key] = g
	return nil
}

func TestAttachFallsBackOnBackendFailure(t *testing.T) {
	svc := New(failingBackend{}, newMemGeoCache(), "car", 50)

	route := domain.Route{VehicleID: 1, ClientIDs: []int{1, 2}}
	lookup := func(id int) (domain.Coordinates, bool) {
		switch id {
		case 1:
			return domain.Coordinates{Lon: -76.5320, Lat: 3.4516}, true
		case 2:
			return domain.Coordinates{Lon: -76.5330, Lat: 3.4526}, true
		}
		return domain.Coordinates{}, false
	}

	out := svc.Attach(context.Background(), route, lookup)
	if out.Geometry.Valid {
		t.Fatal("expected geometry_valid=false on backend failure")
	}
	if out.Geometry.DistanceM <= 0 {
		t.Errorf("expected positive fallback distance, got %v", out.Geometry.DistanceM)
	}
	if len(out.Geometry.Legs) != 1 {
		t.Errorf("expected 1 leg for 2 stops, got %d", len(out.Geometry.Legs))
	}
}

func TestAttachShortCircuitsSingleStop(t *testing.T) {
	svc := New(failingBackend{}, newMemGeoCache(), "car", 50)
	route := domain.Route{VehicleID: 1, ClientIDs: []int{1}}
	out := svc.Attach(context.Background(), route, func(int) (domain.Coordinates, bool) { return domain.Coordinates{}, true })
	if !out.Geometry.Valid {
		t.Error("expected short-circuit geometry to be marked valid")
	}
}
