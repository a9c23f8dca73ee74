package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleetroute/internal/domain"
)

// PostgresClientRepository implements ports.ClientRepository against the
// clients/client_events tables in a Postgres database (see
// InitPostgresSchema), mirroring SQLiteClientRepository's query shape but
// reading ts as TIMESTAMPTZ rather than parsing an RFC3339 string.
type PostgresClientRepository struct{ DB *sql.DB }

// NewPostgresClientRepository builds a repository bound to db.
func NewPostgresClientRepository(db *sql.DB) *PostgresClientRepository {
	return &PostgresClientRepository{DB: db}
}

// ListClients implements ports.ClientRepository.
func (p *PostgresClientRepository) ListClients(ctx context.Context) ([]domain.Client, error) {
	if p.DB == nil {
		return nil, errors.New("postgres client repository: DB is nil")
	}

	rows, err := p.DB.QueryContext(ctx, `
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
func (p *PostgresClientRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	if p.DB == nil {
		return nil, errors.New("postgres client repository: DB is nil")
	}

	rows, err := p.DB.QueryContext(ctx, `
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
		var ts time.Time
		if err := rows.Scan(&e.ClientID, &ts, &e.Coords.Lon, &e.Coords.Lat); err != nil {
			return nil, fmt.Errorf("list events: scan row: %w", err)
		}
		e.Timestamp = ts
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: row iteration: %w", err)
	}
	return out, nil
}
