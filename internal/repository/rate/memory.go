package rate

import (
	"context"
	"maps"
	"slices"
	"sync"

	domain "github.com/ahmethakanbesel/ecb-exchange/internal/rate"
)

var _ domain.Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps one record per cache key for the life of the process.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]domain.CachedRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]domain.CachedRecord)}
}

func (m *MemoryRepository) Store(_ context.Context, record domain.CachedRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.CacheKey] = clone(record)
	return nil
}

func (m *MemoryRepository) GetLatest(_ context.Context, key string) (*domain.CachedRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[key]
	if !ok {
		return nil, nil
	}
	cp := clone(record)
	return &cp, nil
}

func (m *MemoryRepository) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[key]
	return ok, nil
}

func (m *MemoryRepository) HealthCheck(_ context.Context) error {
	return nil
}

// clone detaches a record from caller-owned slices and maps.
func clone(record domain.CachedRecord) domain.CachedRecord {
	record.Snapshot.Rates = slices.Clone(record.Snapshot.Rates)
	record.Metadata = maps.Clone(record.Metadata)
	return record
}
