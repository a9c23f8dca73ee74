// Package db opens the Postgres connection pool backing cmd/dbtool and any
// Postgres-dialect adapter (internal/adapters/cache, internal/adapters/repositories).
package db

import (
	"database/sql"
	"fmt"
	"time"
)

// Open opens and pings a Postgres connection pool sized for the matrix/
// geometry cache and client-repository workloads this module runs.
func Open(databaseURL string) (*sql.DB, error) {
	const op = "db.Open"

	conn, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: open postgres database: %w", op, err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(30 * time.Minute)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("%s: verify postgres connection: %w", op, err)
	}

	return conn, nil
}
