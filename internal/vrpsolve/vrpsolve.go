// Package vrpsolve implements VRPSolver: open multi-vehicle routing with
// per-vehicle stop caps and an unserved-stop penalty. Grounded on
// original_source/vrp/solver/or_tools_openvrp.py (solve_open_vrp): the same
// virtual source/sink cost model (free start/end, s_v->t_v sentinel,
// virtual-virtual infinite), the same combined objective
// alpha*time + beta*distance/100, and the same KPI formulas.
//
// No Go CP-SAT/OR-Tools binding is available, so the joint assignment and
// ordering search the original delegates to OR-Tools is replaced here by a
// deterministic cheapest-insertion construction heuristic over the
// virtual-node cost model, followed by per-vehicle ordering delegated to
// tspsolve: reusing the dummy-node open-path solver rather than
// reimplementing tour construction, since the virtual nodes' own
// free-start/free-end semantics (s_v->real=0, real->t_v=0) match exactly
// what the open-path TSP solver already assumes.
package vrpsolve

import (
	"math"
	"sort"
	"time"

	"fleetroute/internal/domain"
	"fleetroute/internal/rerr"
	"fleetroute/internal/tspsolve"
)

// sentinel is the "very large but finite" cost of the s_v->t_v edge in the
// virtual-node model. assignStops does not read it: the disjunction that
// edge models is applied through Input.UnservedPenalty instead.
const sentinel = 1e12

// Stop is one VRP candidate location.
type Stop struct {
	ClientID      int
	ServiceMinute float64 // 0 means "use DefaultServiceMinutes"
}

// VehicleSpec is one vehicle's capacity constraint for the solve.
type VehicleSpec struct {
	VehicleID int
	MaxStops  int
}

// Input is one VRP solve request.
type Input struct {
	Stops     []Stop
	Vehicles  []VehicleSpec
	DurationS [][]float64 // NxN over Stops, in Stops order
	DistanceM [][]float64

	Alpha           float64
	Beta            float64
	UnservedPenalty float64
	BalanceEnabled  bool

	DefaultServiceMinutes float64
	StartID               int // 0 means "no pinning requested"
	TimeLimit             time.Duration
	IncludeArrivals       bool
}

// Solve assigns stops to vehicles and orders each vehicle's route.
func Solve(in Input) (domain.Solution, error) {
	const op = "vrpsolve.Solve"
	n := len(in.Stops)
	if n == 0 {
		return emptySolution(in.Vehicles), nil
	}
	if len(in.Vehicles) == 0 {
		return domain.Solution{}, rerr.New(rerr.KindInvalidInput, op, "no vehicles supplied")
	}

	combined := combinedCost(in.DurationS, in.DistanceM, in.Alpha, in.Beta, n)
	assign := assignStops(in, combined)

	routes := make([]domain.Route, 0, len(in.Vehicles))
	var unserved []int
	for _, v := range in.Vehicles {
		idxs := assign[v.VehicleID]
		if len(idxs) == 0 {
			continue
		}
		route, err := orderVehicleRoute(in, v, idxs, combined)
		if err != nil {
			// A vehicle whose assigned stop set cannot be ordered leaves its
			// stops unserved rather than failing the whole solve.
			for _, idx := range idxs {
				unserved = append(unserved, in.Stops[idx].ClientID)
			}
			continue
		}
		routes = append(routes, route)
	}

	assignedSet := make(map[int]bool)
	for _, r := range routes {
		for _, id := range r.ClientIDs {
			assignedSet[id] = true
		}
	}
	for _, s := range in.Stops {
		if !assignedSet[s.ClientID] {
			found := false
			for _, u := range unserved {
				if u == s.ClientID {
					found = true
					break
				}
			}
			if !found {
				unserved = append(unserved, s.ClientID)
			}
		}
	}

	sort.Slice(routes, func(i, j int) bool { return routes[i].VehicleID < routes[j].VehicleID })

	sol := buildSolution(routes, unserved, n)
	return sol, nil
}

func emptySolution(vehicles []VehicleSpec) domain.Solution {
	return domain.Solution{Status: "empty"}
}

// combinedCost builds the per-arc objective α·time + β·distance/100.
func combinedCost(dur, dist [][]float64, alpha, beta float64, n int) [][]float64 {
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			out[i][j] = alpha*dur[i][j] + beta*(dist[i][j]/100)
		}
	}
	return out
}

// assignStops runs a deterministic cheapest-insertion construction: stops
// are considered in ascending client-id order; each goes to whichever
// vehicle-with-room offers the cheapest insertion (free ends for an empty
// route, cheapest-arc insertion into an existing route otherwise). This
// mirrors the virtual graph's s_v->real=0/real->t_v=0 edges: inserting into
// an empty route costs exactly 0, same as the original's free-start model.
// When UnservedPenalty is positive, a stop whose cheapest insertion costs at
// least as much as the penalty is left unserved even though a vehicle had
// room for it, modeling the s_v->t_v sentinel edge's disjunction trade-off.
func assignStops(in Input, combined [][]float64) map[int][]int {
	order := make([]int, len(in.Stops))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return in.Stops[order[a]].ClientID < in.Stops[order[b]].ClientID })

	routeIdxs := make(map[int][]int, len(in.Vehicles))
	for _, v := range in.Vehicles {
		routeIdxs[v.VehicleID] = nil
	}

	for _, stopIdx := range order {
		bestVID, bestPos, bestCost, found := -1, 0, math.Inf(1), false
		for _, v := range in.Vehicles {
			cur := routeIdxs[v.VehicleID]
			if len(cur) >= v.MaxStops {
				continue
			}
			cost, pos := cheapestInsertion(cur, stopIdx, combined)
			if in.BalanceEnabled {
				cost += balancePenalty(len(cur))
			}
			if !found || cost < bestCost || (cost == bestCost && v.VehicleID < bestVID) {
				bestVID, bestPos, bestCost, found = v.VehicleID, pos, cost, true
			}
		}
		if !found {
			continue // no vehicle has room; stop stays unserved
		}
		if in.UnservedPenalty > 0 && bestCost >= in.UnservedPenalty {
			continue // cheapest insertion costs at least as much as leaving the stop unserved
		}
		cur := routeIdxs[bestVID]
		cur = append(cur, 0)
		copy(cur[bestPos+1:], cur[bestPos:])
		cur[bestPos] = stopIdx
		routeIdxs[bestVID] = cur
	}
	return routeIdxs
}

// cheapestInsertion returns the marginal cost and position of inserting
// stopIdx into route (a slice of stop indices forming an open path with
// free ends, so inserting at either end is free of a "closing" term).
func cheapestInsertion(route []int, stopIdx int, combined [][]float64) (float64, int) {
	if len(route) == 0 {
		return 0, 0
	}
	best, bestPos := math.Inf(1), 0
	// Try inserting before the first, between each pair, and after the last.
	first := combined[stopIdx][route[0]]
	if first < best {
		best, bestPos = first, 0
	}
	for i := 0; i < len(route)-1; i++ {
		a, b := route[i], route[i+1]
		delta := combined[a][stopIdx] + combined[stopIdx][b] - combined[a][b]
		if delta < best {
			best, bestPos = delta, i+1
		}
	}
	last := combined[route[len(route)-1]][stopIdx]
	if last < best {
		best, bestPos = last, len(route)
	}
	return best, bestPos
}

// balancePenalty is a soft term discouraging routes from growing unevenly;
// it grows with the square of the current load, nudging insertion toward
// the least-loaded feasible vehicle when costs are close.
func balancePenalty(currentLoad int) float64 {
	return 0.01 * float64(currentLoad*currentLoad)
}

func orderVehicleRoute(in Input, v VehicleSpec, idxs []int, combined [][]float64) (domain.Route, error) {
	ids := make([]int, len(idxs))
	dur := make([][]float64, len(idxs))
	dist := make([][]float64, len(idxs))
	for a, ia := range idxs {
		ids[a] = in.Stops[ia].ClientID
		dur[a] = make([]float64, len(idxs))
		dist[a] = make([]float64, len(idxs))
		for b, ib := range idxs {
			if a == b {
				continue
			}
			dur[a][b] = in.DurationS[ia][ib]
			dist[a][b] = in.DistanceM[ia][ib]
		}
	}

	res, err := tspsolve.Solve(tspsolve.Input{
		IDs: ids, DurationS: dur, DistanceM: dist,
		Metric: tspsolve.MetricDuration, TimeLimit: in.TimeLimit,
	})
	if err != nil {
		if len(ids) == 1 {
			return singleStopRoute(in, v, ids[0]), nil
		}
		return domain.Route{}, err
	}

	order := res.OrderIDs
	if in.StartID != 0 {
		order = rotateToStart(order, in.StartID)
	}

	return buildRoute(in, v, order), nil
}

func singleStopRoute(in Input, v VehicleSpec, clientID int) domain.Route {
	return buildRoute(in, v, []int{clientID})
}

// rotateToStart rotates order so startID is first, if present; otherwise
// order is returned unchanged. Rotation preserves the ordered set.
func rotateToStart(order []int, startID int) []int {
	pos := -1
	for i, id := range order {
		if id == startID {
			pos = i
			break
		}
	}
	if pos <= 0 {
		return order
	}
	out := make([]int, len(order))
	copy(out, order[pos:])
	copy(out[len(order)-pos:], order[:pos])
	return out
}

func buildRoute(in Input, v VehicleSpec, order []int) domain.Route {
	idOf := make(map[int]int, len(in.Stops))
	svcOf := make(map[int]float64, len(in.Stops))
	for i, s := range in.Stops {
		idOf[s.ClientID] = i
		svcOf[s.ClientID] = s.ServiceMinute
	}

	var legs []domain.RouteLeg
	var kmTotal, minTotal float64
	for i := 0; i < len(order); i++ {
		svc := svcOf[order[i]]
		if svc == 0 {
			svc = in.DefaultServiceMinutes
		}
		minTotal += svc
		if i == 0 {
			continue
		}
		a, b := idOf[order[i-1]], idOf[order[i]]
		dm := in.DistanceM[a][b]
		ds := in.DurationS[a][b]
		legs = append(legs, domain.RouteLeg{FromID: order[i-1], ToID: order[i], DistanceM: dm, DurationS: ds})
		kmTotal += dm / 1000.0
		minTotal += ds / 60.0
	}

	route := domain.Route{
		VehicleID:       v.VehicleID,
		ClientIDs:       order,
		DistanceKM:      kmTotal,
		DurationMinutes: minTotal,
		Legs:            legs,
	}
	if in.IncludeArrivals {
		route.Arrivals = domain.BuildArrivals(order, legs, func(clientID int) float64 {
			svc := svcOf[clientID]
			if svc == 0 {
				svc = in.DefaultServiceMinutes
			}
			return svc * 60
		})
	}
	return route
}

func buildSolution(routes []domain.Route, unserved []int, total int) domain.Solution {
	served := total - len(unserved)
	var kmTotal, minTotal float64
	counts := make([]float64, 0, len(routes))
	for _, r := range routes {
		kmTotal += r.DistanceKM
		minTotal += r.DurationMinutes
		counts = append(counts, float64(len(r.ClientIDs)))
	}

	return domain.Solution{
		Routes:          routes,
		UnservedIDs:     unserved,
		ServedPct:       100 * float64(served) / float64(total),
		KMTotal:         kmTotal,
		MinTotal:        minTotal,
		BalanceStdStops: stdDev(counts),
		Status:          "ok",
	}
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}
