// Package repositories implements the persistence-backed ports.ClientRepository
// against SQLite and Postgres: explicit CREATE TABLE IF NOT EXISTS statements
// run inside one transaction at startup, plus an idempotent JSON seed load
// for SQLite.
package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
)

// InitSchema creates the clients and client_events tables if absent.
func InitSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			client_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			zone TEXT NOT NULL,
			priority INTEGER NOT NULL DEFAULT 0,
			lon REAL NOT NULL,
			lat REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS client_events (
			client_id INTEGER NOT NULL,
			ts TEXT NOT NULL,
			lon REAL NOT NULL,
			lat REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_client_events_client_ts
			ON client_events(client_id, ts DESC)`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}
	return nil
}

// clientSeed mirrors one row of the seed JSON document.
type clientSeed struct {
	ClientID int     `json:"client_id"`
	Name     string  `json:"name"`
	Zone     string  `json:"zone"`
	Priority int     `json:"priority"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
}

// SeedFromJSON populates the clients table from a JSON array document.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed clients: read %q: %w", jsonPath, err)
	}

	var rows []clientSeed
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fmt.Errorf("seed clients: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed clients: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO clients (client_id, name, zone, priority, lon, lat)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("seed clients: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if r.ClientID <= 0 {
			return fmt.Errorf("seed clients: invalid client_id %d", r.ClientID)
		}
		if _, err := stmt.Exec(r.ClientID, r.Name, r.Zone, r.Priority, r.Lon, r.Lat); err != nil {
			return fmt.Errorf("seed clients: insert client_id=%d: %w", r.ClientID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed clients: commit tx: %w", err)
	}
	return nil
}
