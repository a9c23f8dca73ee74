package ports

import (
	"context"
	"time"

	"fleetroute/internal/domain"
)

// ClientRepository is the boundary for retrieving Client/Event records from
// a data source. ctx is threaded through every method uniformly, since all
// of these calls may hit a database or network store.
type ClientRepository interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// MatrixCacheStore is the persistence boundary for MatrixService's
// content-addressed cache. ttl governs lazy eviction: an entry older than
// ttl is treated as a miss by Get (and may be purged by the implementation).
type MatrixCacheStore interface {
	Get(ctx context.Context, key string, ttl time.Duration) (domain.Matrix, bool, error)
	Put(ctx context.Context, key string, m domain.Matrix) error
}

// GeometryCacheStore is the persistence boundary for RouteGeometry's cache.
type GeometryCacheStore interface {
	Get(ctx context.Context, key string, ttl time.Duration) (domain.GeometryResult, bool, error)
	Put(ctx context.Context, key string, g domain.GeometryResult) error
}
