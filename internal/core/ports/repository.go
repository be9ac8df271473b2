package ports

import (
	"context"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

// TaskRepository persists tasks for the REST endpoint.
type TaskRepository interface {
	List(ctx context.Context) ([]domain.Task, error)
	// Get returns the task with id or domain.ErrTaskNotFound.
	Get(ctx context.Context, id int64) (*domain.Task, error)
	Insert(ctx context.Context, task domain.Task) error
	// Update applies patch to the task with id and returns the stored result.
	Update(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)
	// Delete removes the task with id, reporting whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)
}

// UserRepository persists user records for the REST endpoint.
type UserRepository interface {
	List(ctx context.Context) ([]domain.UserRecord, error)
	Insert(ctx context.Context, user domain.UserRecord) error
}
