package repositories

import (
	"database/sql"
	"fmt"
)

// InitPostgresSchema creates the Postgres-dialect tables backing a
// production deployment: the client/event repository tables (mirroring
// schema.go's SQLite shape) plus the matrix/geometry content-addressed
// cache tables that internal/adapters/cache's SQLMatrixStore/
// SQLGeometryStore read and write. Run once by cmd/dbtool against
// DATABASE_URL; cmd/server's embedded SQLite path uses InitSchema instead.
func InitPostgresSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			client_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			zone TEXT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 0,
			lon DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS client_events (
			client_id INTEGER NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_client_events_client_ts
			ON client_events(client_id, ts DESC)`,
		`CREATE TABLE IF NOT EXISTS matrix_cache (
			cache_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS geometry_cache (
			cache_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}
	return nil
}
