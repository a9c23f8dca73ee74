package domain

// Matrix is a pair of NxN float tables: travel duration (seconds) and travel
// distance (meters), indexed in the same point order they were requested in.
// Diagonal is exactly zero; no cell is null/NaN (nulls are back-filled by
// haversine fallback before a Matrix is ever returned to a caller).
type Matrix struct {
	N          int
	DurationS  [][]float64
	DistanceM  [][]float64
	FromCache  bool
	Fallback   bool // true if the whole matrix came from the haversine fallback; per-cell back-fills of null backend values do not set it
}

// NewMatrix allocates an NxN zero matrix.
func NewMatrix(n int) Matrix {
	d := make([][]float64, n)
	m := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		m[i] = make([]float64, n)
	}
	return Matrix{N: n, DurationS: d, DistanceM: m}
}

// MatrixPoint is one (id, lon, lat) input to MatrixService.
type MatrixPoint struct {
	ID  int
	Lon float64
	Lat float64
}
