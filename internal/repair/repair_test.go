package repair

import (
	"testing"
	"time"

	"fleetroute/internal/domain"
	"fleetroute/internal/geo"
)

func perimeterSquare(t *testing.T) *geo.Perimeter {
	t.Helper()
	poly := geo.Polygon{Rings: []geo.Ring{{Points: []geo.Point{
		{Lon: -76.5330, Lat: 3.4516},
		{Lon: -76.5320, Lat: 3.4516},
		{Lon: -76.5320, Lat: 3.4526},
		{Lon: -76.5330, Lat: 3.4526},
	}}}}
	per, err := geo.Build([]geo.Polygon{poly})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return per
}

func TestRepairInsideOutScenario(t *testing.T) {
	per := perimeterSquare(t)
	clients := []domain.Client{{ClientID: 1, Coords: domain.Coordinates{Lon: 0, Lat: 0}}}
	events := []domain.Event{
		{ClientID: 1, Timestamp: time.Now(), Coords: domain.Coordinates{Lon: -76.5321, Lat: 3.4517}},
	}

	out, err := Repair(clients, events, per)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out))
	}
	r := out[0]
	if r.CoordSource != domain.SourceEvent1 {
		t.Errorf("CoordSource = %v, want event_1", r.CoordSource)
	}
	if !r.InPerimeterFinal {
		t.Errorf("expected InPerimeterFinal=true")
	}
	if r.LonFinal != -76.5321 || r.LatFinal != 3.4517 {
		t.Errorf("final coords = (%v,%v), want (-76.5321,3.4517)", r.LonFinal, r.LatFinal)
	}
}

func TestRepairNonCandidateKeepsOriginal(t *testing.T) {
	per := perimeterSquare(t)
	clients := []domain.Client{{ClientID: 2, Coords: domain.Coordinates{Lon: -76.5325, Lat: 3.4521}}}

	out, err := Repair(clients, nil, per)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if out[0].CoordSource != domain.SourceOriginal {
		t.Errorf("CoordSource = %v, want original", out[0].CoordSource)
	}
}

func TestRepairNoValidCandidateYieldsNone(t *testing.T) {
	per := perimeterSquare(t)
	clients := []domain.Client{{ClientID: 3, Coords: domain.Coordinates{Lon: 0, Lat: 0}}}
	events := []domain.Event{
		{ClientID: 3, Timestamp: time.Now(), Coords: domain.Coordinates{Lon: 10, Lat: 10}},
	}

	out, err := Repair(clients, events, per)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if out[0].CoordSource != domain.SourceNone {
		t.Errorf("CoordSource = %v, want none", out[0].CoordSource)
	}
	if out[0].HasFinal {
		t.Errorf("expected HasFinal=false")
	}
}

func TestRepairPreferNewerEvent(t *testing.T) {
	per := perimeterSquare(t)
	clients := []domain.Client{{ClientID: 4, Coords: domain.Coordinates{Lon: 0, Lat: 0}}}
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	events := []domain.Event{
		{ClientID: 4, Timestamp: older, Coords: domain.Coordinates{Lon: -76.5322, Lat: 3.4518}},
		{ClientID: 4, Timestamp: newer, Coords: domain.Coordinates{Lon: -76.5321, Lat: 3.4517}},
	}

	out, err := Repair(clients, events, per)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if out[0].CoordSource != domain.SourceEvent1 {
		t.Errorf("CoordSource = %v, want event_1 (newest)", out[0].CoordSource)
	}
	if out[0].LonFinal != -76.5321 {
		t.Errorf("expected newer event coords to win")
	}
}
