package partition

import (
	"testing"

	"fleetroute/internal/domain"
)

func makeClients(n int) []domain.Client {
	out := make([]domain.Client, n)
	for i := 0; i < n; i++ {
		out[i] = domain.Client{
			ClientID: i + 1,
			Coords:   domain.Coordinates{Lon: -76.5 + float64(i)*0.001, Lat: 3.45 + float64(i)*0.001},
		}
	}
	return out
}

func TestRunDisjointnessAndCounts(t *testing.T) {
	week := Run(Request{
		Clients:      makeClients(100),
		FleetStart:   domain.Coordinates{Lon: -76.5, Lat: 3.45},
		Days:         5,
		TargetPerDay: 10,
	})

	if len(week.Days) != 5 {
		t.Fatalf("expected 5 days, got %d", len(week.Days))
	}
	seen := make(map[int]bool)
	for _, day := range week.Days {
		if len(day.Clients) != 10 {
			t.Errorf("day %d has %d clients, want 10", day.Day, len(day.Clients))
		}
		for _, c := range day.Clients {
			if seen[c.ClientID] {
				t.Errorf("client %d appears in more than one day", c.ClientID)
			}
			seen[c.ClientID] = true
		}
	}
	if len(seen) != 50 {
		t.Errorf("expected 50 distinct clients scheduled, got %d", len(seen))
	}
	if week.Leftover != 50 {
		t.Errorf("leftover = %d, want 50", week.Leftover)
	}
}

func TestRunDeterministicGivenSameInput(t *testing.T) {
	req := Request{Clients: makeClients(30), FleetStart: domain.Coordinates{Lon: -76.5, Lat: 3.45}, Days: 3, TargetPerDay: 5}
	w1 := Run(req)
	w2 := Run(req)
	for d := range w1.Days {
		ids1 := w1.Days[d].ClientIDs()
		ids2 := w2.Days[d].ClientIDs()
		if len(ids1) != len(ids2) {
			t.Fatalf("day %d length mismatch", d)
		}
		for i := range ids1 {
			if ids1[i] != ids2[i] {
				t.Errorf("day %d position %d: %d != %d", d, i, ids1[i], ids2[i])
			}
		}
	}
}
