package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"esg-assessment-service/internal/domain"
	"esg-assessment-service/internal/infra/memory"
)

const factorTableKey = "emission:factors:table"

// FactorRepository caches the emission-factor table in Redis as a single
// JSON blob and falls back to a loader on cache miss. The table is small
// (hundreds of rows) and always read whole, so a blob beats per-row fields.
type FactorRepository struct {
	client *redis.Client
	loader memory.FactorLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewFactorRepository(client *redis.Client, loader memory.FactorLoader, ttl time.Duration) *FactorRepository {
	return &FactorRepository{client: client, loader: loader, ttl: ttl}
}

func (r *FactorRepository) GetTable(ctx context.Context) ([]domain.FactorEntry, error) {
	if table, ok := r.fromCache(ctx); ok {
		return table, nil
	}

	result, err, _ := r.sf.Do(factorTableKey, func() (interface{}, error) {
		if table, ok := r.fromCache(ctx); ok {
			return table, nil
		}

		table, err := r.loader.LoadTable(ctx)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(table)
		if err != nil {
			return nil, err
		}
		_ = r.client.Set(ctx, factorTableKey, raw, r.ttl).Err()

		return table, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.FactorEntry), nil
}

func (r *FactorRepository) fromCache(ctx context.Context) ([]domain.FactorEntry, bool) {
	raw, err := r.client.Get(ctx, factorTableKey).Bytes()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	var table []domain.FactorEntry
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, false
	}
	return table, true
}
