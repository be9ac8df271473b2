package realtime

import (
	"sync"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

const defaultFeedSize = 10

// Feed is a bounded activity list, newest first.
type Feed struct {
	mu    sync.RWMutex
	size  int
	items []domain.ActivityEvent
}

// NewFeed returns a feed keeping at most size entries. Non-positive sizes use
// the default of 10.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = defaultFeedSize
	}
	return &Feed{size: size}
}

// Add puts e at the front, dropping the oldest entry when full.
func (f *Feed) Add(e domain.ActivityEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	keep := min(len(f.items), f.size-1)
	items := make([]domain.ActivityEvent, 0, keep+1)
	items = append(items, e)
	f.items = append(items, f.items[:keep]...)
}

// Items returns a copy of the entries, newest first.
func (f *Feed) Items() []domain.ActivityEvent {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.ActivityEvent, len(f.items))
	copy(out, f.items)
	return out
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}
