package rate

import "context"

// Repository persists daily snapshots. Implementations hold no business logic;
// Store overwrites any record already kept under the same cache key.
type Repository interface {
	Store(ctx context.Context, record CachedRecord) error
	GetLatest(ctx context.Context, key string) (*CachedRecord, error)
	Exists(ctx context.Context, key string) (bool, error)
	HealthCheck(ctx context.Context) error
}

// Source retrieves a fresh snapshot from the remote publisher.
type Source interface {
	FetchSnapshot(ctx context.Context) (Snapshot, error)
}
