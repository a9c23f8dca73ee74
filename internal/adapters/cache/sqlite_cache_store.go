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

type sqliteBlobStore struct {
	db    *sql.DB
	table string
}

func (s *sqliteBlobStore) getRaw(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	const op = "cache.sqliteBlobStore.getRaw"
	defer obs.Time(ctx, op)(nil)

	q := fmt.Sprintf(`SELECT payload, created_at FROM %s WHERE cache_key = ?`, s.table)
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
		return "", false, nil
	}
	return payload, true, nil
}

func (s *sqliteBlobStore) putRaw(ctx context.Context, key string, payload string) error {
	const op = "cache.sqliteBlobStore.putRaw"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer tx.Rollback()

	q := fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, payload, created_at) VALUES (?, ?, ?)`, s.table)
	if _, err := tx.ExecContext(ctx, q, key, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("%s: exec %s: %w", op, s.table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

// SQLiteMatrixStore is a SQLite-backed ports.MatrixCacheStore, used by the
// single-node cmd/server deployment in place of Postgres.
type SQLiteMatrixStore struct{ b sqliteBlobStore }

// NewSQLiteMatrixStore builds a SQLite-backed MatrixCacheStore.
func NewSQLiteMatrixStore(db *sql.DB) *SQLiteMatrixStore {
	return &SQLiteMatrixStore{b: sqliteBlobStore{db: db, table: "matrix_cache"}}
}

// Get implements ports.MatrixCacheStore.
func (s *SQLiteMatrixStore) Get(ctx context.Context, key string, ttl time.Duration) (domain.Matrix, bool, error) {
	raw, ok, err := s.b.getRaw(ctx, key, ttl)
	if err != nil || !ok {
		return domain.Matrix{}, false, err
	}
	var m domain.Matrix
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return domain.Matrix{}, false, fmt.Errorf("cache.SQLiteMatrixStore.Get: unmarshal matrix: %w", err)
	}
	m.FromCache = true
	return m, true, nil
}

// Put implements ports.MatrixCacheStore.
func (s *SQLiteMatrixStore) Put(ctx context.Context, key string, m domain.Matrix) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("cache.SQLiteMatrixStore.Put: marshal matrix: %w", err)
	}
	return s.b.putRaw(ctx, key, string(raw))
}

// SQLiteGeometryStore is a SQLite-backed ports.GeometryCacheStore.
type SQLiteGeometryStore struct{ b sqliteBlobStore }

// NewSQLiteGeometryStore builds a SQLite-backed GeometryCacheStore.
func NewSQLiteGeometryStore(db *sql.DB) *SQLiteGeometryStore {
	return &SQLiteGeometryStore{b: sqliteBlobStore{db: db, table: "geometry_cache"}}
}

// Get implements ports.GeometryCacheStore.
func (s *SQLiteGeometryStore) Get(ctx context.Context, key string, ttl time.Duration) (domain.GeometryResult, bool, error) {
	raw, ok, err := s.b.getRaw(ctx, key, ttl)
	if err != nil || !ok {
		return domain.GeometryResult{}, false, err
	}
	var g domain.GeometryResult
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return domain.GeometryResult{}, false, fmt.Errorf("cache.SQLiteGeometryStore.Get: unmarshal geometry: %w", err)
	}
	return g, true, nil
}

// Put implements ports.GeometryCacheStore.
func (s *SQLiteGeometryStore) Put(ctx context.Context, key string, g domain.GeometryResult) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("cache.SQLiteGeometryStore.Put: marshal geometry: %w", err)
	}
	return s.b.putRaw(ctx, key, string(raw))
}

// InitSchema creates the matrix_cache and geometry_cache tables if absent,
// run once at startup ahead of any cache read/write.
func InitSchema(ctx context.Context, db *sql.DB) error {
	const op = "cache.InitSchema"
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS matrix_cache (
			cache_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS geometry_cache (
			cache_key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
