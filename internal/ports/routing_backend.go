// Package ports defines the abstract boundaries the core depends on: the
// external routing backend (matrix + route endpoints) and the client
// record repository.
package ports

import "context"

// MatrixPoint is one (id, lon, lat) input to a backend matrix call.
type MatrixPoint struct {
	ID  string
	Lon float64
	Lat float64
}

// MatrixCell is a single backend-reported distance/duration pair. Either
// field is nil when the backend could not compute that cell; callers must
// back-fill nil cells with a haversine fallback before trusting the result.
type MatrixCell struct {
	DurationS *float64
	DistanceM *float64
}

// MatrixResult is the raw backend response for one matrix(points, profile)
// call: NxN cells in request order, plus a backend status code. Code != "Ok"
// means the caller must reject the entire result and fall back.
type MatrixResult struct {
	Cells [][]MatrixCell
	Code  string
}

// RouteLegResult is one leg of a backend route response.
type RouteLegResult struct {
	DistanceM float64
	DurationS float64
}

// RouteResult is the raw backend response for one route(coords, profile)
// call.
type RouteResult struct {
	Code      string
	Polyline  string
	DistanceM float64
	DurationS float64
	Legs      []RouteLegResult
}

// RoutingBackend is the abstract external routing service the core depends
// on for pairwise travel times/distances and per-trip polylines.
type RoutingBackend interface {
	// Matrix returns pairwise durations/distances for the given ordered
	// points under the named profile.
	Matrix(ctx context.Context, points []MatrixPoint, profile string) (MatrixResult, error)
	// Route returns a full-overview driving route through the given ordered
	// coordinates, encoded as a polyline, under the named profile.
	Route(ctx context.Context, points []MatrixPoint, profile string) (RouteResult, error)
	// Health reports backend connectivity.
	Health(ctx context.Context) (connected bool, message string)
}
