// Package cache implements the persistent content-addressed caches behind
// MatrixService and RouteGeometry, in two SQL dialects: Postgres ($N
// placeholders, ON CONFLICT DO UPDATE) and SQLite (? placeholders, INSERT
// OR REPLACE). Both sit behind the same single-key content-addressed JSON
// blob store shape that MatrixService/RouteGeometry need.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fleetroute/internal/domain"
	"fleetroute/internal/obs"
)

type sqlBlobStore struct {
	db    *sql.DB
	table string
}

func (s *sqlBlobStore) getRaw(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	const op = "cache.sqlBlobStore.getRaw"
	defer obs.Time(ctx, op)(nil)

	q := fmt.Sprintf(`SELECT payload, created_at FROM %s WHERE cache_key = $1`, s.table)
	row := s.db.QueryRowContext(ctx, q, key)

	var payload string
	var createdAt time.Time
	if err := row.Scan(&payload, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%s: query %s: %w", op, s.table, err)
	}
	if ttl > 0 && time.Since(createdAt) > ttl {
		return "", false, nil // lazily expired; caller will recompute and overwrite
	}
	return payload, true, nil
}

func (s *sqlBlobStore) putRaw(ctx context.Context, key string, payload string) error {
	const op = "cache.sqlBlobStore.putRaw"

	q := fmt.Sprintf(`
		INSERT INTO %s (cache_key, payload, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (cache_key) DO UPDATE
		SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at
	`, s.table)
	if _, err := s.db.ExecContext(ctx, q, key, payload); err != nil {
		return fmt.Errorf("%s: exec %s: %w", op, s.table, err)
	}
	return nil
}

// SQLMatrixStore is a Postgres-backed ports.MatrixCacheStore.
type SQLMatrixStore struct{ b sqlBlobStore }

// NewSQLMatrixStore builds a Postgres-backed MatrixCacheStore.
func NewSQLMatrixStore(db *sql.DB) *SQLMatrixStore {
	return &SQLMatrixStore{b: sqlBlobStore{db: db, table: "matrix_cache"}}
}

// Get implements ports.MatrixCacheStore.
func (s *SQLMatrixStore) Get(ctx context.Context, key string, ttl time.Duration) (domain.Matrix, bool, error) {
	raw, ok, err := s.b.getRaw(ctx, key, ttl)
	if err != nil || !ok {
		return domain.Matrix{}, false, err
	}
	var m domain.Matrix
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return domain.Matrix{}, false, fmt.Errorf("cache.SQLMatrixStore.Get: unmarshal matrix: %w", err)
	}
	m.FromCache = true
	return m, true, nil
}

// Put implements ports.MatrixCacheStore.
func (s *SQLMatrixStore) Put(ctx context.Context, key string, m domain.Matrix) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("cache.SQLMatrixStore.Put: marshal matrix: %w", err)
	}
	return s.b.putRaw(ctx, key, string(raw))
}

// SQLGeometryStore is a Postgres-backed ports.GeometryCacheStore.
type SQLGeometryStore struct{ b sqlBlobStore }

// NewSQLGeometryStore builds a Postgres-backed GeometryCacheStore.
func NewSQLGeometryStore(db *sql.DB) *SQLGeometryStore {
	return &SQLGeometryStore{b: sqlBlobStore{db: db, table: "geometry_cache"}}
}

// Get implements ports.GeometryCacheStore.
func (s *SQLGeometryStore) Get(ctx context.Context, key string, ttl time.Duration) (domain.GeometryResult, bool, error) {
	raw, ok, err := s.b.getRaw(ctx, key, ttl)
	if err != nil || !ok {
		return domain.GeometryResult{}, false, err
	}
	var g domain.GeometryResult
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return domain.GeometryResult{}, false, fmt.Errorf("cache.SQLGeometryStore.Get: unmarshal geometry: %w", err)
	}
	return g, true, nil
}

// Put implements ports.GeometryCacheStore.
func (s *SQLGeometryStore) Put(ctx context.Context, key string, g domain.GeometryResult) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("cache.SQLGeometryStore.Put: marshal geometry: %w", err)
	}
	return s.b.putRaw(ctx, key, string(raw))
}
