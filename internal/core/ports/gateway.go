package ports

import (
	"context"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

// Result carries a gateway value together with the backend that produced it.
type Result[T any] struct {
	Value   T
	Backend domain.Backend
}

// DeleteResult reports a deletion. Deleting an absent id is not an error;
// Existed is false in that case.
type DeleteResult struct {
	Existed bool
	Backend domain.Backend
}

// CreateTaskInput carries the caller-supplied fields of a new task. Status is
// not accepted: new tasks always start pending.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	AssignedTo  int64
	DueDate     string
}

// Gateway mediates between the remote endpoint and the local collections.
type Gateway interface {
	Available() bool
	Probe(ctx context.Context) bool

	ListTasks(ctx context.Context, filter domain.TaskFilter) (Result[[]domain.Task], error)
	CreateTask(ctx context.Context, actor *domain.User, input CreateTaskInput) (Result[domain.Task], error)
	UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (Result[domain.Task], error)
	DeleteTask(ctx context.Context, id int64) (DeleteResult, error)

	ListUsers(ctx context.Context) (Result[[]domain.User], error)
	Authenticate(ctx context.Context, email, password string) (Result[domain.User], error)
	RegisterUser(ctx context.Context, email, password, name string) (Result[domain.User], error)
}
