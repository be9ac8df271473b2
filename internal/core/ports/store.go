package ports

import (
	"context"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

// KeyValueStore is a durable slot store addressed by key. Get reports
// found=false when the key has never been written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// CollectionStore is the local fallback for the users and tasks collections.
// Reads seed the collection on first use; writes replace it wholesale.
type CollectionStore interface {
	Users(ctx context.Context) ([]domain.UserRecord, error)
	SaveUsers(ctx context.Context, users []domain.UserRecord) error
	Tasks(ctx context.Context) ([]domain.Task, error)
	SaveTasks(ctx context.Context, tasks []domain.Task) error
}
