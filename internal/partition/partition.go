// Package partition implements WeeklyPartitioner: a greedy nearest-neighbor
// per-day shortlist builder, grounded on original_source/vrp/selection/semana.py's
// build_weekly_shortlists loop (remaining-pool map, cursor update,
// deterministic tie-break).
package partition

import (
	"sort"

	"fleetroute/internal/domain"
	"fleetroute/internal/geoutil"
)

// Request parameters for one partitioner run.
type Request struct {
	Clients      []domain.Client
	FleetStart   domain.Coordinates
	Days         int
	TargetPerDay int
	// Seed is preserved for API compatibility but governs nothing beyond
	// tie-break determinism: tie-breaking is always by ascending client id.
	Seed int64
}

// Run builds N per-day shortlists by greedy nearest-neighbor, deduplicating
// clients by id and leaving any overflow as Week.Leftover.
func Run(req Request) domain.Week {
	pool := dedupByID(req.Clients)
	sort.Slice(pool, func(i, j int) bool { return pool[i].ClientID < pool[j].ClientID })

	used := make(map[int]bool, len(pool))
	days := make([]domain.Shortlist, 0, req.Days)

	for d := 1; d <= req.Days; d++ {
		cursor := req.FleetStart
		var picked []domain.Client

		for len(picked) < req.TargetPerDay {
			next, ok := nearest(cursor, pool, used)
			if !ok {
				break
			}
			picked = append(picked, next)
			used[next.ClientID] = true
			cursor = next.Coords
		}

		days = append(days, domain.Shortlist{
			Day:      d,
			Clients:  picked,
			Centroid: centroidOf(picked, req.FleetStart),
		})
	}

	leftover := 0
	for _, c := range pool {
		if !used[c.ClientID] {
			leftover++
		}
	}

	return domain.Week{Days: days, Leftover: leftover}
}

func dedupByID(clients []domain.Client) []domain.Client {
	seen := make(map[int]bool, len(clients))
	out := make([]domain.Client, 0, len(clients))
	for _, c := range clients {
		if seen[c.ClientID] {
			continue
		}
		seen[c.ClientID] = true
		out = append(out, c)
	}
	return out
}

// nearest finds the unused client in pool closest (haversine) to cursor,
// tie-breaking by ascending client id.
func nearest(cursor domain.Coordinates, pool []domain.Client, used map[int]bool) (domain.Client, bool) {
	var (
		best      domain.Client
		bestDist  float64
		found     bool
	)
	for _, c := range pool {
		if used[c.ClientID] {
			continue
		}
		d := geoutil.HaversineMeters(cursor.Lon, cursor.Lat, c.Coords.Lon, c.Coords.Lat)
		if !found || d < bestDist || (d == bestDist && c.ClientID < best.ClientID) {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}

func centroidOf(clients []domain.Client, fallback domain.Coordinates) domain.Coordinates {
	if len(clients) == 0 {
		return fallback
	}
	var sumLon, sumLat float64
	for _, c := range clients {
		sumLon += c.Coords.Lon
		sumLat += c.Coords.Lat
	}
	n := float64(len(clients))
	return domain.Coordinates{Lon: sumLon / n, Lat: sumLat / n}
}
