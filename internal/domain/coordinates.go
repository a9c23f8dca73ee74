package domain

// Coordinates are immutable WGS84 decimal-degree geographic coordinates.
type Coordinates struct {
	Lon float64
	Lat float64
}

// CoordsToList returns coordinates as [lon, lat] for wire/API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Valid reports whether c is a structurally plausible WGS84 point: neither
// axis exceeds its physical range, and the point is not the (0,0) sentinel
// upstream feeds use to mean "missing".
func (c Coordinates) Valid() bool {
	if c.Lon == 0 && c.Lat == 0 {
		return false
	}
	if c.Lat < -90 || c.Lat > 90 {
		return false
	}
	if c.Lon < -180 || c.Lon > 180 {
		return false
	}
	return true
}
