package tspsolve

import (
	"testing"
	"time"

	"fleetroute/internal/geoutil"
)

func squareCoords() (ids []int, lon, lat []float64) {
	ids = []int{1, 2, 3, 4}
	lon = []float64{-76.5320, -76.5330, -76.5330, -76.5320}
	lat = []float64{3.4516, 3.4516, 3.4526, 3.4526}
	return
}

func buildMatrices(lon, lat []float64) (dur, dist [][]float64) {
	n := len(lon)
	dur = make([][]float64, n)
	dist = make([][]float64, n)
	for i := range dur {
		dur[i] = make([]float64, n)
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := geoutil.HaversineMeters(lon[i], lat[i], lon[j], lat[j])
			dist[i][j] = d
			dur[i][j] = geoutil.DurationSecondsAtSpeed(d, 30)
		}
	}
	return
}

func TestSolveEmptyInput(t *testing.T) {
	_, err := Solve(Input{})
	if err == nil {
		t.Fatal("expected EmptyInput error")
	}
}

func TestSolveTrivialSinglePoint(t *testing.T) {
	res, err := Solve(Input{IDs: []int{42}, DurationS: [][]float64{{0}}, DistanceM: [][]float64{{0}}})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !res.Success || res.StartID != 42 || res.EndID != 42 || res.TotalCost != 0 {
		t.Errorf("unexpected trivial result: %+v", res)
	}
}

func TestSolveTrivialSquare(t *testing.T) {
	ids, lon, lat := squareCoords()
	dur, dist := buildMatrices(lon, lat)

	res, err := Solve(Input{
		IDs: ids, DurationS: dur, DistanceM: dist,
		Metric: MetricDuration, TimeLimit: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success")
	}
	if len(res.OrderIDs) != 4 {
		t.Fatalf("expected 4 ids in order, got %d", len(res.OrderIDs))
	}
	seen := make(map[int]bool)
	for _, id := range res.OrderIDs {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Errorf("id %d missing from solved order", id)
		}
	}
	if res.StartID == res.EndID {
		t.Errorf("expected distinct start/end for an open path on 4 points, got both %d", res.StartID)
	}
	if res.TotalCost <= 0 {
		t.Errorf("expected positive total cost, got %v", res.TotalCost)
	}
}
