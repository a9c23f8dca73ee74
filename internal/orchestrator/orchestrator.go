// Package orchestrator pipelines the core components into the two user
// workflows this system exposes: Locate & Partition, and Solve. Each
// composes repository access, the domain algorithms, and response shaping
// into one call, the same way a handler composes a request end to end:
// repair/partition for the first workflow, matrix/solve/geometry/artifacts
// for the second.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"fleetroute/internal/artifacts"
	"fleetroute/internal/config"
	"fleetroute/internal/domain"
	"fleetroute/internal/geo"
	"fleetroute/internal/geometry"
	"fleetroute/internal/matrixsvc"
	"fleetroute/internal/partition"
	"fleetroute/internal/ports"
	"fleetroute/internal/repair"
	"fleetroute/internal/rerr"
	"fleetroute/internal/tspsolve"
	"fleetroute/internal/vrpsolve"
)

// Orchestrator wires the core components together behind the two workflows.
type Orchestrator struct {
	cfg       config.Config
	matrix    *matrixsvc.Service
	geometry  *geometry.Service
	artifacts *artifacts.Writer
}

// New builds an Orchestrator from a config and the external ports it needs.
func New(cfg config.Config, backend ports.RoutingBackend, matrixCache ports.MatrixCacheStore, geometryCache ports.GeometryCacheStore) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		matrix:    matrixsvc.New(backend, matrixCache, cfg.CacheTTL, cfg.MatrixMaxPointsVRP),
		geometry:  geometry.New(backend, geometryCache, cfg.BackendProfile, cfg.FallbackSpeedKPH),
		artifacts: artifacts.New(cfg.ArtifactsRoot),
	}
}

// LocateAndPartitionRequest is the input to the first workflow: raw client
// pool, event history, operating perimeter, and partition shape.
type LocateAndPartitionRequest struct {
	Clients      []domain.Client
	Events       []domain.Event
	PerimeterRaw []byte // GeoJSON FeatureCollection, WGS84
	FleetStart   domain.Coordinates
	Days         int
	TargetPerDay int
	Seed         int64
	WeekTag      string
	Now          time.Time
}

// LocateAndPartitionResult is the first workflow's output.
type LocateAndPartitionResult struct {
	Week            domain.Week
	Repaired        []domain.RepairedClient
	WeekTagReplaced bool
}

// LocateAndPartition repairs client coordinates against the perimeter,
// drops clients outside it, and partitions the survivors into daily
// shortlists. The week tag is normalized to its canonical form at this
// boundary.
func (o *Orchestrator) LocateAndPartition(ctx context.Context, req LocateAndPartitionRequest) (LocateAndPartitionResult, error) {
	const op = "orchestrator.LocateAndPartition"

	polys, err := geo.ParseFeatureCollection(req.PerimeterRaw)
	if err != nil {
		return LocateAndPartitionResult{}, rerr.Wrap(rerr.KindInvalidGeometry, op, "parse perimeter", err)
	}
	perimeter, err := geo.Build(polys)
	if err != nil {
		return LocateAndPartitionResult{}, rerr.Wrap(rerr.KindInvalidGeometry, op, "build perimeter", err)
	}

	repaired, err := repair.Repair(req.Clients, req.Events, perimeter)
	if err != nil {
		return LocateAndPartitionResult{}, rerr.Wrap(rerr.KindInvalidInput, op, "repair coordinates", err)
	}

	inside := make([]domain.Client, 0, len(repaired))
	for _, rc := range repaired {
		if !rc.HasFinal || !rc.InPerimeterFinal {
			continue
		}
		c := rc.Client
		c.Coords = rc.FinalCoords()
		inside = append(inside, c)
	}

	week := partition.Run(partition.Request{
		Clients:      inside,
		FleetStart:   req.FleetStart,
		Days:         req.Days,
		TargetPerDay: req.TargetPerDay,
		Seed:         req.Seed,
	})

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	tag, replaced := domain.NormalizeWeekTag(req.WeekTag, now)
	week.Tag = tag

	if err := o.artifacts.WriteShortlists(week, tag); err != nil {
		return LocateAndPartitionResult{}, rerr.Wrap(rerr.KindIOError, op, "write shortlists", err)
	}
	if err := o.artifacts.WriteLatest(tag); err != nil {
		return LocateAndPartitionResult{}, rerr.Wrap(rerr.KindIOError, op, "write latest pointer", err)
	}

	return LocateAndPartitionResult{Week: week, Repaired: repaired, WeekTagReplaced: replaced}, nil
}

// SolveRequest is the input to the second workflow: a single day's
// shortlist plus the fleet available to serve it.
type SolveRequest struct {
	Day             domain.Shortlist
	Vehicles        []domain.Vehicle
	WeekTag         string
	UseCache        bool
	IncludeArrivals bool
}

// ResolveShortlist reads back the persisted shortlist for (weekTag, day) and
// narrows it to the requested client ids, so the Solve HTTP boundary can
// accept client ids alone and have them resolved server-side against the
// partitioned week. An empty ids slice means "the whole persisted day". A
// requested id absent from the persisted shortlist is a hard InvalidInput
// failure rather than a silent drop.
func (o *Orchestrator) ResolveShortlist(weekTag string, day int, ids []int) (domain.Shortlist, error) {
	const op = "orchestrator.ResolveShortlist"

	persisted, err := o.artifacts.ReadShortlist(weekTag, day)
	if err != nil {
		return domain.Shortlist{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(ids) == 0 {
		return domain.Shortlist{Day: day, Clients: persisted}, nil
	}

	byID := make(map[int]domain.Client, len(persisted))
	for _, c := range persisted {
		byID[c.ClientID] = c
	}
	clients := make([]domain.Client, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return domain.Shortlist{}, rerr.New(rerr.KindInvalidInput, op, fmt.Sprintf("client_id %d not present in persisted shortlist for week=%s day=%d", id, weekTag, day))
		}
		clients = append(clients, c)
	}
	return domain.Shortlist{Day: day, Clients: clients}, nil
}

// SolveResult is the second workflow's output: the solved routes with
// geometry attached.
type SolveResult struct {
	Solution domain.Solution
	Matrix   domain.Matrix
}

// Solve computes a matrix for the day's stops, dispatches to TSPSolver
// (single vehicle) or VRPSolver (multiple vehicles), attaches route
// geometry, and persists the result. A single-vehicle day always goes
// through the open-path TSP solver rather than VRP's insertion heuristic,
// since with one vehicle there is no assignment decision left to make.
func (o *Orchestrator) Solve(ctx context.Context, req SolveRequest) (SolveResult, error) {
	const op = "orchestrator.Solve"

	if len(req.Vehicles) == 0 {
		return SolveResult{}, rerr.New(rerr.KindInvalidInput, op, "no vehicles supplied")
	}

	stopCoords := make(map[int]domain.Coordinates, len(req.Day.Clients))
	points := make([]domain.MatrixPoint, 0, len(req.Day.Clients)+1)
	for _, c := range req.Day.Clients {
		stopCoords[c.ClientID] = c.Coords
		points = append(points, domain.MatrixPoint{ID: c.ClientID, Lon: c.Coords.Lon, Lat: c.Coords.Lat})
	}

	mat, err := o.matrix.Get(ctx, points, o.cfg.BackendProfile, req.UseCache)
	if err != nil {
		return SolveResult{}, fmt.Errorf("%s: get matrix: %w", op, err)
	}

	var sol domain.Solution
	if len(req.Vehicles) == 1 {
		sol, err = o.solveSingleVehicle(mat, req.Day, req.Vehicles[0], req.IncludeArrivals)
	} else {
		sol, err = o.solveFleet(mat, req.Day, req.Vehicles, req.IncludeArrivals)
	}
	if err != nil {
		return SolveResult{}, err
	}

	lookup := func(id int) (domain.Coordinates, bool) {
		c, ok := stopCoords[id]
		return c, ok
	}
	sol.Routes = o.geometry.Batch(ctx, sol.Routes, lookup)

	if err := o.artifacts.WriteSolution(sol, req.WeekTag, req.Day.Day, stopCoords); err != nil {
		return SolveResult{}, rerr.Wrap(rerr.KindIOError, op, "write solution", err)
	}

	return SolveResult{Solution: sol, Matrix: mat}, nil
}

func (o *Orchestrator) solveSingleVehicle(mat domain.Matrix, day domain.Shortlist, v domain.Vehicle, includeArrivals bool) (domain.Solution, error) {
	const op = "orchestrator.solveSingleVehicle"

	ids := day.ClientIDs()
	if len(ids) > o.cfg.MatrixMaxPointsTSP {
		return domain.Solution{}, rerr.New(rerr.KindMatrixTooLarge, op, "point count exceeds configured TSP ceiling")
	}
	res, err := tspsolve.Solve(tspsolve.Input{
		IDs:         ids,
		DurationS:   mat.DurationS,
		DistanceM:   mat.DistanceM,
		Metric:      tspsolve.MetricDuration,
		TimeLimit:   o.cfg.TSPTimeLimit,
		MatrixSource: matrixSourceLabel(mat),
	})
	if err != nil {
		return domain.Solution{}, fmt.Errorf("%s: %w", op, err)
	}
	if !res.Success {
		if len(ids) <= 1 {
			return domain.Solution{Status: "empty"}, nil
		}
		return domain.Solution{}, rerr.New(rerr.KindSolverInfeasible, op, res.Status)
	}

	if v.ServiceMinute == 0 {
		v.ServiceMinute = o.cfg.DefaultServiceMinutes
	}
	route := routeFromTSP(v, res, mat, day, includeArrivals)
	served := len(route.ClientIDs)
	total := len(ids)
	unserved := []int{}
	if served < total {
		servedSet := make(map[int]bool, served)
		for _, id := range route.ClientIDs {
			servedSet[id] = true
		}
		for _, id := range ids {
			if !servedSet[id] {
				unserved = append(unserved, id)
			}
		}
	}

	servedPct := 0.0
	if total > 0 {
		servedPct = 100 * float64(served) / float64(total)
	}

	return domain.Solution{
		Routes:      []domain.Route{route},
		UnservedIDs: unserved,
		ServedPct:   servedPct,
		KMTotal:     route.DistanceKM,
		MinTotal:    route.DurationMinutes,
		Status:      "ok",
	}, nil
}

func routeFromTSP(v domain.Vehicle, res tspsolve.Result, mat domain.Matrix, day domain.Shortlist, includeArrivals bool) domain.Route {
	idxByID := make(map[int]int, len(day.Clients))
	for i, c := range day.Clients {
		idxByID[c.ClientID] = i
	}

	legs := make([]domain.RouteLeg, 0, len(res.OrderIDs))
	var distM, durS float64
	for i := 0; i+1 < len(res.OrderIDs); i++ {
		from, to := res.OrderIDs[i], res.OrderIDs[i+1]
		fi, ti := idxByID[from], idxByID[to]
		d := mat.DistanceM[fi][ti]
		s := mat.DurationS[fi][ti]
		legs = append(legs, domain.RouteLeg{FromID: from, ToID: to, DistanceM: d, DurationS: s})
		distM += d
		durS += s
	}

	serviceMin := v.ServiceMinute
	durS += serviceMin * 60 * float64(len(res.OrderIDs))

	route := domain.Route{
		VehicleID:       v.VehicleID,
		ClientIDs:       res.OrderIDs,
		DistanceKM:      distM / 1000,
		DurationMinutes: durS / 60,
		Legs:            legs,
	}
	if includeArrivals {
		route.Arrivals = domain.BuildArrivals(res.OrderIDs, legs, func(int) float64 { return serviceMin * 60 })
	}
	return route
}

func (o *Orchestrator) solveFleet(mat domain.Matrix, day domain.Shortlist, vehicles []domain.Vehicle, includeArrivals bool) (domain.Solution, error) {
	const op = "orchestrator.solveFleet"

	stops := make([]vrpsolve.Stop, len(day.Clients))
	for i, c := range day.Clients {
		stops[i] = vrpsolve.Stop{ClientID: c.ClientID, ServiceMinute: 0}
	}
	specs := make([]vrpsolve.VehicleSpec, len(vehicles))
	for i, v := range vehicles {
		specs[i] = vrpsolve.VehicleSpec{VehicleID: v.VehicleID, MaxStops: v.MaxStops}
	}

	startID := 0
	if len(day.Clients) > 0 {
		startID = day.Clients[0].ClientID
	}

	sol, err := vrpsolve.Solve(vrpsolve.Input{
		Stops:                 stops,
		Vehicles:              specs,
		DurationS:             mat.DurationS,
		DistanceM:             mat.DistanceM,
		Alpha:                 o.cfg.CostAlpha,
		Beta:                  o.cfg.CostBeta,
		UnservedPenalty:       o.cfg.UnservedPenalty,
		BalanceEnabled:        o.cfg.BalanceEnabled,
		DefaultServiceMinutes: o.cfg.DefaultServiceMinutes,
		StartID:               startID,
		TimeLimit:             o.cfg.VRPTimeLimit,
		IncludeArrivals:       includeArrivals,
	})
	if err != nil {
		return domain.Solution{}, fmt.Errorf("%s: %w", op, err)
	}
	return sol, nil
}

// BackendStatus reports whether the configured routing backend is
// currently reachable, for a liveness check exposed over HTTP.
func (o *Orchestrator) BackendStatus(ctx context.Context) matrixsvc.BackendStatus {
	if o.cfg.HealthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.HealthTimeout)
		defer cancel()
	}
	return o.matrix.TestBackend(ctx)
}

func matrixSourceLabel(m domain.Matrix) string {
	if m.Fallback {
		return "haversine_fallback"
	}
	if m.FromCache {
		return "cache"
	}
	return "backend"
}
