// Package cachekey computes the stable, order-sensitive content-addressed
// hash shared by MatrixService and RouteGeometry's caches: a hash of the
// rounded (6 decimal places) coordinate sequence, plus an optional suffix
// (backend profile name). Grounded on the original's hashlib-based
// content-addressed cache (vrp/utils/cache.py).
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// round6 rounds to 6 decimal places, matching the data model's MatrixKey
// rounding rule.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// Point is the minimal (lon,lat) shape this package hashes.
type Point struct {
	Lon float64
	Lat float64
}

// ForPoints computes the order-sensitive content-addressed key for a
// coordinate sequence plus a suffix (e.g. backend profile name).
func ForPoints(points []Point, suffix string) string {
	var b strings.Builder
	for _, p := range points {
		fmt.Fprintf(&b, "%.6f,%.6f;", round6(p.Lon), round6(p.Lat))
	}
	b.WriteString("|")
	b.WriteString(suffix)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
