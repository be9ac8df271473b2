// Package localstore is the fallback persistence for the users and tasks
// collections. Each collection is a JSON array held in one key-value slot.
// A missing or unreadable slot is replaced by the seed; parse failures are
// never surfaced to callers.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
)

const (
	KeyUsers = "users"
	KeyTasks = "tasks"
)

// Read returns the collection stored under name. When the slot is empty or
// holds anything other than a JSON array, seed is written in its place and
// returned.
func Read[T any](ctx context.Context, kv ports.KeyValueStore, log zerolog.Logger, name string, seed []T) ([]T, error) {
	raw, found, err := kv.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if found {
		var items []T
		if err := json.Unmarshal(raw, &items); err == nil && items != nil {
			return items, nil
		}
		log.Warn().Str("collection", name).Msg("stored collection unreadable, reseeding")
	}

	initial := append([]T(nil), seed...)
	if initial == nil {
		initial = []T{}
	}
	if err := Write(ctx, kv, name, initial); err != nil {
		return nil, err
	}
	return initial, nil
}

// Write serialises data and stores it under name, replacing whatever was there.
func Write[T any](ctx context.Context, kv ports.KeyValueStore, name string, data []T) error {
	if data == nil {
		data = []T{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := kv.Set(ctx, name, raw); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Collections implements ports.CollectionStore over a key-value store.
type Collections struct {
	kv   ports.KeyValueStore
	seed Seed
	log  zerolog.Logger
}

var _ ports.CollectionStore = (*Collections)(nil)

// NewCollections wires the users/tasks collections to kv, seeding from seed.
func NewCollections(kv ports.KeyValueStore, seed Seed, log zerolog.Logger) *Collections {
	return &Collections{kv: kv, seed: seed, log: log}
}

func (c *Collections) Users(ctx context.Context) ([]domain.UserRecord, error) {
	return Read(ctx, c.kv, c.log, KeyUsers, c.seed.Users)
}

func (c *Collections) SaveUsers(ctx context.Context, users []domain.UserRecord) error {
	return Write(ctx, c.kv, KeyUsers, users)
}

func (c *Collections) Tasks(ctx context.Context) ([]domain.Task, error) {
	return Read(ctx, c.kv, c.log, KeyTasks, c.seed.Tasks)
}

func (c *Collections) SaveTasks(ctx context.Context, tasks []domain.Task) error {
	return Write(ctx, c.kv, KeyTasks, tasks)
}
