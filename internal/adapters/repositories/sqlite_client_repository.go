package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleetroute/internal/domain"
)

// SQLiteClientRepository implements ports.ClientRepository against the
// clients/client_events tables, using the same query-scan-append shape as
// the rest of this repo's SQLite-backed adapters.
type SQLiteClientRepository struct{ DB *sql.DB }

// NewSQLiteClientRepository builds a repository bound to db.
func NewSQLiteClientRepository(db *sql.DB) *SQLiteClientRepository {
	return &SQLiteClientRepository{DB: db}
}

// ListClients implements ports.ClientRepository.
func (s *SQLiteClientRepository) ListClients(ctx context.Context) ([]domain.Client, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite client repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT client_id, name, zone, priority, lon, lat
		FROM clients
		ORDER BY client_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list clients: query clients table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Client, 0, 64)
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ClientID, &c.Name, &c.Zone, &c.Priority, &c.Coords.Lon, &c.Coords.Lat); err != nil {
			return nil, fmt.Errorf("list clients: scan row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clients: row iteration: %w", err)
	}
	return out, nil
}

// ListEvents implements ports.ClientRepository.
func (s *SQLiteClientRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite client repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT client_id, ts, lon, lat
		FROM client_events
		ORDER BY client_id, ts DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list events: query client_events table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Event, 0, 64)
	for rows.Next() {
		var e domain.Event
		var ts string
		if err := rows.Scan(&e.ClientID, &ts, &e.Coords.Lon, &e.Coords.Lat); err != nil {
			return nil, fmt.Errorf("list events: scan row: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("list events: parse timestamp %q: %w", ts, err)
		}
		e.Timestamp = parsed
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: row iteration: %w", err)
	}
	return out, nil
}
