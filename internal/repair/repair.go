// Package repair implements CoordRepair: deciding a final (lon,lat) for each
// client and whether it lies in the operating perimeter, using up to the two
// most recent client events as repair candidates: resolve a coordinate,
// fall back to an older candidate if it doesn't validate against the
// perimeter.
package repair

import (
	"sort"

	"fleetroute/internal/domain"
	"fleetroute/internal/geo"
	"fleetroute/internal/rerr"
)

// Repair computes a RepairedClient for every client, using perimeter to
// decide in/out and events to source repair candidates. Never fails for a
// per-client issue; only a nil perimeter is fatal.
func Repair(clients []domain.Client, events []domain.Event, perimeter *geo.Perimeter) ([]domain.RepairedClient, error) {
	const op = "repair.Repair"
	if perimeter == nil {
		return nil, rerr.New(rerr.KindInvalidGeometry, op, "perimeter is required")
	}

	byClient := groupEventsByClient(events)

	out := make([]domain.RepairedClient, 0, len(clients))
	for _, c := range clients {
		out = append(out, repairOne(c, byClient[c.ClientID], perimeter))
	}
	return out, nil
}

// groupEventsByClient buckets events per client, sorted newest-first, and
// keeps at most the two most recent per client (the contract only ever
// consults up to two candidates).
func groupEventsByClient(events []domain.Event) map[int][]domain.Event {
	byClient := make(map[int][]domain.Event)
	for _, e := range events {
		byClient[e.ClientID] = append(byClient[e.ClientID], e)
	}
	for id, evs := range byClient {
		sort.Slice(evs, func(i, j int) bool { return evs[i].Timestamp.After(evs[j].Timestamp) })
		if len(evs) > 2 {
			evs = evs[:2]
		}
		byClient[id] = evs
	}
	return byClient
}

func repairOne(c domain.Client, events []domain.Event, perimeter *geo.Perimeter) domain.RepairedClient {
	originalValid := coerceValid(c.Coords)
	inOriginal := originalValid && perimeter.Contains(geo.Point{Lon: c.Coords.Lon, Lat: c.Coords.Lat})

	isCandidate := !originalValid || !inOriginal
	if !isCandidate {
		return domain.RepairedClient{
			Client:           c,
			LonFinal:         c.Coords.Lon,
			LatFinal:         c.Coords.Lat,
			HasFinal:         true,
			InPerimeterFinal: true,
			CoordSource:      domain.SourceOriginal,
		}
	}

	sources := []domain.CoordSource{domain.SourceEvent1, domain.SourceEvent2}
	for i, ev := range events {
		if i >= 2 {
			break
		}
		if !coerceValid(ev.Coords) {
			continue
		}
		if !perimeter.Contains(geo.Point{Lon: ev.Coords.Lon, Lat: ev.Coords.Lat}) {
			continue
		}
		return domain.RepairedClient{
			Client:           c,
			LonFinal:         ev.Coords.Lon,
			LatFinal:         ev.Coords.Lat,
			HasFinal:         true,
			InPerimeterFinal: true,
			CoordSource:      sources[i],
		}
	}

	return domain.RepairedClient{
		Client:           c,
		HasFinal:         false,
		InPerimeterFinal: false,
		CoordSource:      domain.SourceNone,
	}
}

// coerceValid treats non-numeric (already excluded by Go's static typing),
// null/zero, and out-of-range coordinates as missing, per the algorithm.
func coerceValid(c domain.Coordinates) bool {
	return c.Valid()
}
