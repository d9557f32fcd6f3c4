package app

import (
	"sync"
	"time"

	"esg-assessment-service/internal/domain"
)

// Watch fans scored results out to the dashboard subscribers of one company.
type Watch struct {
	companyID   string
	createdAt   time.Time
	now         func() time.Time
	mu          sync.RWMutex
	latest      *domain.AssessmentResult
	subscribers map[chan domain.AssessmentResult]struct{}
}

// NewWatch is exported for infrastructure layers that need to seed watches.
func NewWatch(companyID string) *Watch {
	return newWatchWithClock(companyID, time.Now)
}

// NewWatchWithClock is test-only for deterministic timestamps.
func NewWatchWithClock(companyID string, now func() time.Time) *Watch {
	return newWatchWithClock(companyID, now)
}

func newWatchWithClock(companyID string, now func() time.Time) *Watch {
	return &Watch{
		companyID:   companyID,
		createdAt:   now(),
		now:         now,
		subscribers: make(map[chan domain.AssessmentResult]struct{}),
	}
}

func (w *Watch) subscribe() (<-chan domain.AssessmentResult, func()) {
	ch := make(chan domain.AssessmentResult, 8)

	w.mu.Lock()
	w.subscribers[ch] = struct{}{}
	latest := w.latest
	w.mu.Unlock()

	if latest != nil {
		ch <- *latest
	}

	cancel := func() {
		w.mu.Lock()
		if _, ok := w.subscribers[ch]; ok {
			delete(w.subscribers, ch)
			close(ch)
		}
		w.mu.Unlock()
	}
	return ch, cancel
}

func (w *Watch) publish(result domain.AssessmentResult) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.latest = &result
	for ch := range w.subscribers {
		select {
		case ch <- result:
		default:
			// Slow subscribers drop the stale update so broadcast never blocks.
			select {
			case <-ch:
			default:
			}
			ch <- result
		}
	}
}

// IsEmpty reports whether the watch has no subscribers.
func (w *Watch) IsEmpty() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subscribers) == 0
}
