package vrpsolve

import (
	"testing"
)

func line5Matrices() (dur, dist [][]float64) {
	// 5 stops on a line, unit spacing: arc cost increases with |i-j|.
	n := 5
	dur = make([][]float64, n)
	dist = make([][]float64, n)
	for i := 0; i < n; i++ {
		dur[i] = make([]float64, n)
		dist[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := float64(i - j)
			if d < 0 {
				d = -d
			}
			dur[i][j] = d * 60
			dist[i][j] = d * 1000
		}
	}
	return
}

func TestSolveCapacityShortfall(t *testing.T) {
	dur, dist := line5Matrices()
	stops := []Stop{{ClientID: 1}, {ClientID: 2}, {ClientID: 3}, {ClientID: 4}, {ClientID: 5}}

	sol, err := Solve(Input{
		Stops:                 stops,
		Vehicles:              []VehicleSpec{{VehicleID: 1, MaxStops: 3}},
		DurationS:             dur,
		DistanceM:             dist,
		Alpha:                 1,
		Beta:                  0,
		UnservedPenalty:       100000,
		DefaultServiceMinutes: 8,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	served := 0
	for _, r := range sol.Routes {
		served += len(r.ClientIDs)
	}
	if served != 3 {
		t.Errorf("served = %d, want 3", served)
	}
	if len(sol.UnservedIDs) != 2 {
		t.Errorf("unserved = %d, want 2", len(sol.UnservedIDs))
	}
	if sol.ServedPct != 60.0 {
		t.Errorf("ServedPct = %v, want 60.0", sol.ServedPct)
	}
}

func TestSolveEmptyStopsReturnsEmptySolution(t *testing.T) {
	sol, err := Solve(Input{Vehicles: []VehicleSpec{{VehicleID: 1, MaxStops: 3}}})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != "empty" {
		t.Errorf("Status = %q, want empty", sol.Status)
	}
}

func TestSolveNoVehiclesIsInvalidInput(t *testing.T) {
	stops := []Stop{{ClientID: 1}}
	_, err := Solve(Input{Stops: stops, DurationS: [][]float64{{0}}, DistanceM: [][]float64{{0}}})
	if err == nil {
		t.Fatal("expected error when no vehicles are supplied")
	}
}

func TestSolveEveryClientServedOrUnservedExactlyOnce(t *testing.T) {
	dur, dist := line5Matrices()
	stops := []Stop{{ClientID: 1}, {ClientID: 2}, {ClientID: 3}, {ClientID: 4}, {ClientID: 5}}

	sol, err := Solve(Input{
		Stops:     stops,
		Vehicles:  []VehicleSpec{{VehicleID: 1, MaxStops: 3}, {VehicleID: 2, MaxStops: 3}},
		DurationS: dur,
		DistanceM: dist,
		Alpha:     0.7,
		Beta:      0.3,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	seen := make(map[int]bool)
	for _, r := range sol.Routes {
		for _, id := range r.ClientIDs {
			if seen[id] {
				t.Errorf("client %d served more than once", id)
			}
			seen[id] = true
		}
	}
	for _, id := range sol.UnservedIDs {
		if seen[id] {
			t.Errorf("client %d is both served and unserved", id)
		}
		seen[id] = true
	}
	if len(seen) != len(stops) {
		t.Errorf("expected all %d clients accounted for, got %d", len(stops), len(seen))
	}
}
