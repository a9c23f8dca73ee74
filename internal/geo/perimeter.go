// Package geo implements the operating-perimeter geometry: polygon union
// from GeoJSON input and point-in-polygon containment tests. There is no
// pure-Go GEOS/GeoJSON geometry library in reach here (see DESIGN.md), so
// the union and point-in-polygon primitives are implemented directly:
// ray casting per ring with even-odd fill, plus a bounding-box prefilter
// that gives most contains() calls an O(1) short-circuit.
package geo

import "fleetroute/internal/rerr"

// Point is a WGS84 decimal-degree coordinate pair, kept separate from
// domain.Coordinates so this package has no dependency on the domain model.
type Point struct {
	Lon float64
	Lat float64
}

// Ring is a closed polygon ring (first == last point is not required by the
// caller; Contains treats the ring as implicitly closed).
type Ring struct {
	Points []Point
}

// Polygon is an outer ring plus zero or more hole rings (rings[1:]).
type Polygon struct {
	Rings []Ring
}

// bbox is an axis-aligned bounding box used to short-circuit contains tests.
type bbox struct {
	minLon, minLat, maxLon, maxLat float64
}

func (b bbox) contains(p Point) bool {
	return p.Lon >= b.minLon && p.Lon <= b.maxLon && p.Lat >= b.minLat && p.Lat <= b.maxLat
}

func boundsOf(poly Polygon) bbox {
	b := bbox{minLon: 1e18, minLat: 1e18, maxLon: -1e18, maxLat: -1e18}
	for _, ring := range poly.Rings {
		for _, p := range ring.Points {
			if p.Lon < b.minLon {
				b.minLon = p.Lon
			}
			if p.Lon > b.maxLon {
				b.maxLon = p.Lon
			}
			if p.Lat < b.minLat {
				b.minLat = p.Lat
			}
			if p.Lat > b.maxLat {
				b.maxLat = p.Lat
			}
		}
	}
	return b
}

// Perimeter is the prepared, indexed operating-area geometry: the union of
// all input polygons (each kept as a separate component, since a true
// geometric union is unnecessary when contains() just needs "is the point
// in ANY component"), each with a precomputed bounding box.
type Perimeter struct {
	polygons []Polygon
	boxes    []bbox
	box      bbox // union bounding box, for a single cheap outer rejection
}

// Build unions all features of a parsed GeoJSON polygon collection and
// prepares it for fast Contains queries. The "zero-width buffer" healing
// step from the original pipeline is realized here as boundary-inclusive
// ray casting (a point exactly on an edge counts as inside), which is the
// only observable effect a zero-width buffer has on a contains predicate.
func Build(polys []Polygon) (*Perimeter, error) {
	const op = "geo.Build"
	if len(polys) == 0 {
		return nil, rerr.New(rerr.KindInvalidGeometry, op, "no polygons to union")
	}
	p := &Perimeter{polygons: polys, boxes: make([]bbox, len(polys))}
	p.box = bbox{minLon: 1e18, minLat: 1e18, maxLon: -1e18, maxLat: -1e18}
	for i, poly := range polys {
		if len(poly.Rings) == 0 || len(poly.Rings[0].Points) < 3 {
			return nil, rerr.New(rerr.KindInvalidGeometry, op, "polygon outer ring has fewer than 3 points")
		}
		b := boundsOf(poly)
		p.boxes[i] = b
		if b.minLon < p.box.minLon {
			p.box.minLon = b.minLon
		}
		if b.maxLon > p.box.maxLon {
			p.box.maxLon = b.maxLon
		}
		if b.minLat < p.box.minLat {
			p.box.minLat = b.minLat
		}
		if b.maxLat > p.box.maxLat {
			p.box.maxLat = b.maxLat
		}
	}
	return p, nil
}

// Contains reports whether point lies inside or on the boundary of the
// perimeter (closed containment, per the data model).
func (p *Perimeter) Contains(point Point) bool {
	if !p.box.contains(point) {
		return false
	}
	for i, poly := range p.polygons {
		if !p.boxes[i].contains(point) {
			continue
		}
		if polygonContains(poly, point) {
			return true
		}
	}
	return false
}

// polygonContains applies even-odd ray casting against the outer ring, then
// subtracts any hole the point falls inside.
func polygonContains(poly Polygon, point Point) bool {
	if len(poly.Rings) == 0 {
		return false
	}
	if !ringContains(poly.Rings[0], point) {
		return false
	}
	for _, hole := range poly.Rings[1:] {
		if ringContains(hole, point) {
			return false
		}
	}
	return true
}

// ringContains is a standard even-odd ray-casting test, closed: a point
// exactly on an edge is treated as inside.
func ringContains(ring Ring, point Point) bool {
	n := len(ring.Points)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		a, b := ring.Points[i], ring.Points[j]
		if onSegment(a, b, point) {
			return true
		}
		if (a.Lat > point.Lat) != (b.Lat > point.Lat) {
			xIntersect := a.Lon + (point.Lat-a.Lat)*(b.Lon-a.Lon)/(b.Lat-a.Lat)
			if point.Lon < xIntersect {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// onSegment reports whether point lies on the closed segment a-b, within a
// small epsilon to absorb floating point noise (the "zero-width buffer"
// heals exactly this class of boundary gap).
func onSegment(a, b, point Point) bool {
	const eps = 1e-9
	crossProduct := (point.Lat-a.Lat)*(b.Lon-a.Lon) - (point.Lon-a.Lon)*(b.Lat-a.Lat)
	if crossProduct < -eps || crossProduct > eps {
		return false
	}
	if point.Lon < minF(a.Lon, b.Lon)-eps || point.Lon > maxF(a.Lon, b.Lon)+eps {
		return false
	}
	if point.Lat < minF(a.Lat, b.Lat)-eps || point.Lat > maxF(a.Lat, b.Lat)+eps {
		return false
	}
	return true
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
