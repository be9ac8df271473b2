package ports

import (
	"context"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

// RemoteClient talks to the REST endpoint that is authoritative while it is
// reachable. Every failure wraps domain.ErrRemoteUnavailable.
type RemoteClient interface {
	Ping(ctx context.Context) error
	ListUsers(ctx context.Context) ([]domain.UserRecord, error)
	CreateUser(ctx context.Context, user domain.UserRecord) (*domain.UserRecord, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, task domain.Task) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}
