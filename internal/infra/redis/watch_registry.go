package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"esg-assessment-service/internal/app"
)

// WatchRegistry is a Redis-aware implementation of app.WatchRegistry.
// Notes:
//   - It keeps a local in-memory map of watches to reuse the in-process
//     broadcast logic.
//   - Redis marks watch liveness (and could be extended to route
//     cross-instance pub/sub for multi-node dashboards).
type WatchRegistry struct {
	client  *redis.Client
	ttl     time.Duration
	mu      sync.RWMutex
	watches map[string]*app.Watch
}

func NewWatchRegistry(client *redis.Client, ttl time.Duration) *WatchRegistry {
	return &WatchRegistry{
		client:  client,
		ttl:     ttl,
		watches: make(map[string]*app.Watch),
	}
}

func (r *WatchRegistry) GetOrCreate(companyID string) *app.Watch {
	r.mu.Lock()
	defer r.mu.Unlock()
	if watch, ok := r.watches[companyID]; ok {
		return watch
	}
	watch := app.NewWatch(companyID)
	r.watches[companyID] = watch
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), r.key(companyID), "1", r.ttl).Err()
	return watch
}

func (r *WatchRegistry) Get(companyID string) (*app.Watch, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	watch, ok := r.watches[companyID]
	return watch, ok
}

func (r *WatchRegistry) DeleteIfEmpty(companyID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	watch, ok := r.watches[companyID]
	if !ok {
		return
	}
	if watch.IsEmpty() {
		delete(r.watches, companyID)
		_ = r.client.Del(context.Background(), r.key(companyID)).Err()
	}
}

func (r *WatchRegistry) key(companyID string) string {
	return "assessment:watch:" + companyID
}
