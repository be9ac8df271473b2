package ports

import (
	"context"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

// RecordService defines the collection operations served by the task API.
// Records are stored as posted; fields the caller leaves empty get defaults.
type RecordService interface {
	ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	CreateTask(ctx context.Context, task domain.Task) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)
	// DeleteTask reports whether a task with id existed.
	DeleteTask(ctx context.Context, id int64) (bool, error)

	ListUsers(ctx context.Context) ([]domain.UserRecord, error)
	CreateUser(ctx context.Context, user domain.UserRecord) (*domain.UserRecord, error)
}
