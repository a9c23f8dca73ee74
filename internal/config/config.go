// Package config holds the explicit configuration passed to every service
// constructor in this module. There are no package-level globals or ambient
// env reads outside cmd/*/main.go: main loads .env (via godotenv) and
// environment variables once, builds a Config, and threads it through.
package config

import "time"

// Config collects every tunable the core needs. Zero value is not meaningful;
// use Default() and override fields explicitly.
type Config struct {
	// BackendBaseURL is the routing backend's HTTP base URL (matrix + route endpoints).
	BackendBaseURL string
	// BackendAPIKey authenticates against the routing backend, when required.
	BackendAPIKey string
	// BackendProfile selects the routing profile (e.g. "car").
	BackendProfile string

	// CacheDSN is the DSN for the persistent content-addressed cache
	// (Postgres connection string, or a sqlite file path prefixed "sqlite:").
	CacheDSN string
	// CacheTTL is how long a matrix/geometry cache entry remains valid.
	CacheTTL time.Duration

	// MatrixMaxPointsTSP/VRP cap N for the respective solver, per spec.
	MatrixMaxPointsTSP int
	MatrixMaxPointsVRP int

	// TSPTimeLimit/VRPTimeLimit bound solver wall-clock time.
	TSPTimeLimit time.Duration
	VRPTimeLimit time.Duration

	// CostAlpha/CostBeta weight time vs. distance in the VRP objective.
	CostAlpha float64
	CostBeta  float64
	// UnservedPenalty is the fixed cost of leaving a stop unserved.
	UnservedPenalty float64
	// BalanceEnabled turns on the soft stop-count variance penalty.
	BalanceEnabled bool

	// DefaultServiceMinutes is the per-stop service time used when a stop
	// carries no explicit service_min metadata.
	DefaultServiceMinutes float64

	// FallbackSpeedKPH is the assumed travel speed for RouteGeometry's
	// straight-line fallback. The matrix fallback uses its own fixed 30 km/h.
	FallbackSpeedKPH float64

	// HTTPTimeout bounds matrix/geometry HTTP calls; HealthTimeout bounds
	// backend health checks.
	HTTPTimeout   time.Duration
	HealthTimeout time.Duration

	// ArtifactsRoot is the filesystem root for week-tagged exports.
	ArtifactsRoot string
}

// Default returns production-sane defaults: 24h cache TTL, 0.7/0.3 cost
// weights, and the other tunables this system runs with out of the box.
func Default() Config {
	return Config{
		BackendProfile:        "car",
		CacheTTL:              24 * time.Hour,
		MatrixMaxPointsTSP:    200,
		MatrixMaxPointsVRP:    300,
		TSPTimeLimit:          10 * time.Second,
		VRPTimeLimit:          60 * time.Second,
		CostAlpha:             0.7,
		CostBeta:              0.3,
		UnservedPenalty:       100_000,
		BalanceEnabled:        false,
		DefaultServiceMinutes: 8,
		FallbackSpeedKPH:      50,
		HTTPTimeout:           30 * time.Second,
		HealthTimeout:         5 * time.Second,
		ArtifactsRoot:         "./artifacts",
	}
}
