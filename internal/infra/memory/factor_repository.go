package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"esg-assessment-service/internal/domain"
)

// FactorLoader fetches the emission-factor table from a backing store.
type FactorLoader interface {
	LoadTable(ctx context.Context) ([]domain.FactorEntry, error)
}

// FactorRepository caches the reference table with TTL. The table is
// read-only session data; expiry only exists to pick up out-of-band reloads.
type FactorRepository struct {
	loader FactorLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.RWMutex
	table     []domain.FactorEntry
	expiresAt time.Time
}

func NewFactorRepository(loader FactorLoader, ttl time.Duration) *FactorRepository {
	return &FactorRepository{loader: loader, ttl: ttl, clock: time.Now}
}

func (r *FactorRepository) GetTable(ctx context.Context) ([]domain.FactorEntry, error) {
	now := r.clock()

	r.mu.RLock()
	if r.table != nil && r.expiresAt.After(now) {
		table := r.table
		r.mu.RUnlock()
		return table, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("factors", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.table != nil && r.expiresAt.After(now) {
			table := r.table
			r.mu.RUnlock()
			return table, nil
		}
		r.mu.RUnlock()

		table, err := r.loader.LoadTable(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.table = table
		r.expiresAt = now.Add(r.ttl)
		r.mu.Unlock()
		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.FactorEntry), nil
}

// StaticFactorLoader serves a fixed table (useful for tests/demos).
type StaticFactorLoader struct {
	table []domain.FactorEntry
}

func NewStaticFactorLoader(table []domain.FactorEntry) *StaticFactorLoader {
	return &StaticFactorLoader{table: table}
}

func (l *StaticFactorLoader) LoadTable(_ context.Context) ([]domain.FactorEntry, error) {
	if len(l.table) == 0 {
		return nil, domain.Errorf(domain.KindEmptyResult, "factor table is empty")
	}
	return l.table, nil
}
