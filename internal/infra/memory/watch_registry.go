package memory

import (
	"sync"

	"esg-assessment-service/internal/app"
)

// WatchRegistry is an in-memory implementation of app.WatchRegistry.
type WatchRegistry struct {
	mu      sync.RWMutex
	watches map[string]*app.Watch
}

func NewWatchRegistry() *WatchRegistry {
	return &WatchRegistry{
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
	}
}
