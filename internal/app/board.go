// Package app keeps the panel's shared task snapshot fresh and builds the
// dashboard view from it.
package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
)

// TaskSource is the part of the gateway the board reads from.
type TaskSource interface {
	ListTasks(ctx context.Context, filter domain.TaskFilter) (ports.Result[[]domain.Task], error)
}

// Snapshot is the latest task listing known to the panel.
type Snapshot struct {
	Tasks               []domain.Task
	Backend             domain.Backend
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// Stale reports whether the snapshot is older than maxAge or was never
// filled.
func (s Snapshot) Stale(now time.Time, maxAge time.Duration) bool {
	return s.LastUpdated.IsZero() || now.Sub(s.LastUpdated) > maxAge
}

// Board holds the shared task snapshot refreshed by the poller and read by
// the dashboard.
type Board struct {
	source TaskSource
	now    func() time.Time

	// refreshMu serialises refreshes so concurrent readers share one fetch.
	refreshMu sync.Mutex
	mu        sync.RWMutex
	snapshot  Snapshot
	// dirty forces the next Fresh to refetch after a local mutation.
	dirty atomic.Bool
}

func NewBoard(source TaskSource) *Board {
	return &Board{source: source, now: time.Now}
}

// Refresh fetches the task list. On error the previous tasks are kept and
// the failure is recorded.
func (b *Board) Refresh(ctx context.Context) error {
	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()
	return b.refreshLocked(ctx)
}

// refreshLocked clears dirty before fetching so an Invalidate landing during
// the fetch survives it.
func (b *Board) refreshLocked(ctx context.Context) error {
	wasDirty := b.dirty.Swap(false)
	res, err := b.source.ListTasks(ctx, domain.TaskFilter{})
	b.update(res, err)
	if err != nil {
		if wasDirty {
			b.dirty.Store(true)
		}
		return fmt.Errorf("refresh board: %w", err)
	}
	return nil
}

// Fresh returns a snapshot no older than maxAge, refreshing first when
// needed. A failed refresh still returns the previous data.
func (b *Board) Fresh(ctx context.Context, maxAge time.Duration) Snapshot {
	if !b.stale(maxAge) {
		return b.Snapshot()
	}
	b.refreshMu.Lock()
	if b.stale(maxAge) {
		_ = b.refreshLocked(ctx)
	}
	b.refreshMu.Unlock()
	return b.Snapshot()
}

// Invalidate marks the snapshot out of date without discarding it.
func (b *Board) Invalidate() {
	b.dirty.Store(true)
}

func (b *Board) stale(maxAge time.Duration) bool {
	return b.dirty.Load() || b.Snapshot().Stale(b.now(), maxAge)
}

// Title returns the title of task id from the snapshot, or "" when unknown.
func (b *Board) Title(id int64) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, t := range b.snapshot.Tasks {
		if t.ID == id {
			return t.Title
		}
	}
	return ""
}

func (b *Board) update(res ports.Result[[]domain.Task], err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.snapshot.LastError = err
		b.snapshot.LastUpdated = b.now()
		b.snapshot.ConsecutiveFailures++
		return
	}
	b.snapshot.Tasks = cloneTasks(res.Value)
	b.snapshot.Backend = res.Backend
	b.snapshot.LastError = nil
	b.snapshot.LastUpdated = b.now()
	b.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := b.snapshot
	snap.Tasks = cloneTasks(b.snapshot.Tasks)
	return snap
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	if len(tasks) == 0 {
		return nil
	}
	dup := make([]domain.Task, len(tasks))
	copy(dup, tasks)
	return dup
}
