package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
	"github.com/taskpanel/taskpanel/internal/metrics"
	"github.com/taskpanel/taskpanel/internal/pkg/password"
)

// GatewayOptions tunes gateway policy.
type GatewayOptions struct {
	// AssignToCreator forces new tasks onto the creating user regardless of
	// the requested assignee.
	AssignToCreator bool
	// Now overrides the clock; defaults to time.Now.
	Now func() time.Time
}

// Gateway routes every collection operation to the remote endpoint while it
// is reachable and to the local collections otherwise. The first remote
// failure switches the gateway to local until Probe succeeds.
type Gateway struct {
	remote ports.RemoteClient
	local  ports.CollectionStore
	log    zerolog.Logger

	available       atomic.Bool
	assignToCreator bool
	now             func() time.Time

	// localMu serialises read-modify-write cycles on the local collections.
	localMu sync.Mutex
	ids     idSource
}

var _ ports.Gateway = (*Gateway)(nil)

// NewGateway returns a Gateway that starts out preferring the remote endpoint.
func NewGateway(remote ports.RemoteClient, local ports.CollectionStore, log zerolog.Logger, opts GatewayOptions) *Gateway {
	g := &Gateway{
		remote:          remote,
		local:           local,
		log:             log,
		assignToCreator: opts.AssignToCreator,
		now:             opts.Now,
	}
	if g.now == nil {
		g.now = time.Now
	}
	g.setAvailable(true)
	return g
}

// Available reports whether the next call will try the remote endpoint.
func (g *Gateway) Available() bool {
	return g.available.Load()
}

// Probe checks the remote endpoint once and records the outcome. It is the
// only way the gateway returns to the remote after a failure.
func (g *Gateway) Probe(ctx context.Context) bool {
	err := g.remote.Ping(ctx)
	g.setAvailable(err == nil)
	if err != nil {
		g.log.Info().Err(err).Msg("remote endpoint not available, using local storage")
		return false
	}
	g.log.Info().Msg("remote endpoint available")
	return true
}

func (g *Gateway) setAvailable(up bool) {
	g.available.Store(up)
	if up {
		metrics.RemoteAvailable.Set(1)
	} else {
		metrics.RemoteAvailable.Set(0)
	}
}

// serve runs remoteFn when the remote is preferred and falls back to localFn
// within the same call when it fails with domain.ErrRemoteUnavailable. Other
// errors from remoteFn are answers from a reachable remote and are returned
// as is.
func serve[T any](ctx context.Context, g *Gateway, op string, remoteFn, localFn func(context.Context) (T, error)) (ports.Result[T], error) {
	start := time.Now()
	defer func() {
		metrics.GatewayDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	if g.Available() {
		v, err := remoteFn(ctx)
		switch {
		case err == nil:
			metrics.GatewayCallsTotal.WithLabelValues(op, string(domain.BackendRemote)).Inc()
			return ports.Result[T]{Value: v, Backend: domain.BackendRemote}, nil
		case !errors.Is(err, domain.ErrRemoteUnavailable):
			return ports.Result[T]{Backend: domain.BackendRemote}, err
		}
		g.setAvailable(false)
		metrics.RemoteFailuresTotal.WithLabelValues(op).Inc()
		g.log.Warn().Err(err).Str("op", op).Msg("remote call failed, falling back to local storage")
	}

	v, err := localFn(ctx)
	if err != nil {
		return ports.Result[T]{Backend: domain.BackendLocal}, err
	}
	metrics.GatewayCallsTotal.WithLabelValues(op, string(domain.BackendLocal)).Inc()
	return ports.Result[T]{Value: v, Backend: domain.BackendLocal}, nil
}

// clock returns the current time at the precision records are stored with.
func (g *Gateway) clock() time.Time {
	return g.now().UTC().Truncate(time.Millisecond)
}

// ── Tasks ────────────────────────────────────────────────────────────────────

func (g *Gateway) ListTasks(ctx context.Context, filter domain.TaskFilter) (ports.Result[[]domain.Task], error) {
	res, err := serve(ctx, g, "list_tasks", g.remote.ListTasks, g.local.Tasks)
	if err != nil {
		return res, fmt.Errorf("list tasks: %w", err)
	}
	res.Value = domain.FilterTasks(res.Value, filter)
	return res, nil
}

// CreateTask stores a new pending task. The id is time based and strictly
// increasing; createdAt and updatedAt are equal.
func (g *Gateway) CreateTask(ctx context.Context, actor *domain.User, in ports.CreateTaskInput) (ports.Result[domain.Task], error) {
	now := g.clock()

	createdBy := int64(1)
	if actor != nil && actor.ID != 0 {
		createdBy = actor.ID
	}
	assignedTo := in.AssignedTo
	if assignedTo == 0 || g.assignToCreator {
		assignedTo = createdBy
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	task := domain.Task{
		ID:          g.ids.next(now),
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusPending,
		Priority:    priority,
		AssignedTo:  assignedTo,
		CreatedBy:   createdBy,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := serve(ctx, g, "create_task",
		func(ctx context.Context) (domain.Task, error) {
			created, err := g.remote.CreateTask(ctx, task)
			if err != nil {
				return domain.Task{}, err
			}
			return *created, nil
		},
		func(ctx context.Context) (domain.Task, error) {
			g.localMu.Lock()
			defer g.localMu.Unlock()
			tasks, err := g.local.Tasks(ctx)
			if err != nil {
				return domain.Task{}, err
			}
			if err := g.local.SaveTasks(ctx, append(tasks, task)); err != nil {
				return domain.Task{}, err
			}
			return task, nil
		})
	if err != nil {
		return res, fmt.Errorf("create task: %w", err)
	}
	g.log.Info().Int64("task_id", res.Value.ID).Str("backend", string(res.Backend)).Msg("task created")
	return res, nil
}

// UpdateTask merges patch onto the task with id and refreshes updatedAt.
func (g *Gateway) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (ports.Result[domain.Task], error) {
	patch.UpdatedAt = g.clock()

	res, err := serve(ctx, g, "update_task",
		func(ctx context.Context) (domain.Task, error) {
			updated, err := g.remote.UpdateTask(ctx, id, patch)
			if err != nil {
				return domain.Task{}, err
			}
			return *updated, nil
		},
		func(ctx context.Context) (domain.Task, error) {
			g.localMu.Lock()
			defer g.localMu.Unlock()
			tasks, err := g.local.Tasks(ctx)
			if err != nil {
				return domain.Task{}, err
			}
			for i := range tasks {
				if tasks[i].ID != id {
					continue
				}
				p := patch
				if !p.UpdatedAt.After(tasks[i].UpdatedAt) {
					p.UpdatedAt = tasks[i].UpdatedAt.Add(time.Millisecond)
				}
				tasks[i] = p.Apply(tasks[i])
				if err := g.local.SaveTasks(ctx, tasks); err != nil {
					return domain.Task{}, err
				}
				return tasks[i], nil
			}
			return domain.Task{}, domain.ErrTaskNotFound
		})
	if err != nil {
		return res, fmt.Errorf("update task %d: %w", id, err)
	}
	return res, nil
}

// DeleteTask removes the task with id. A missing id is not an error; the
// result reports Existed=false and the collection is left unchanged.
func (g *Gateway) DeleteTask(ctx context.Context, id int64) (ports.DeleteResult, error) {
	res, err := serve(ctx, g, "delete_task",
		func(ctx context.Context) (bool, error) {
			if err := g.remote.DeleteTask(ctx, id); err != nil {
				return false, err
			}
			return true, nil
		},
		func(ctx context.Context) (bool, error) {
			g.localMu.Lock()
			defer g.localMu.Unlock()
			tasks, err := g.local.Tasks(ctx)
			if err != nil {
				return false, err
			}
			kept := make([]domain.Task, 0, len(tasks))
			for _, t := range tasks {
				if t.ID != id {
					kept = append(kept, t)
				}
			}
			if err := g.local.SaveTasks(ctx, kept); err != nil {
				return false, err
			}
			return len(kept) != len(tasks), nil
		})
	if err != nil {
		return ports.DeleteResult{Backend: res.Backend}, fmt.Errorf("delete task %d: %w", id, err)
	}
	return ports.DeleteResult{Existed: res.Value, Backend: res.Backend}, nil
}

// ── Users ────────────────────────────────────────────────────────────────────

// ListUsers returns every user without passwords.
func (g *Gateway) ListUsers(ctx context.Context) (ports.Result[[]domain.User], error) {
	res, err := serve(ctx, g, "list_users", g.remote.ListUsers, g.local.Users)
	if err != nil {
		return ports.Result[[]domain.User]{Backend: res.Backend}, fmt.Errorf("list users: %w", err)
	}
	return ports.Result[[]domain.User]{Value: domain.PublicUsers(res.Value), Backend: res.Backend}, nil
}

// Authenticate finds the user matching email and password.
func (g *Gateway) Authenticate(ctx context.Context, email, pass string) (ports.Result[domain.User], error) {
	email = strings.TrimSpace(email)
	if email == "" || pass == "" {
		return ports.Result[domain.User]{}, domain.ErrInvalidCredentials
	}
	match := func(users []domain.UserRecord) (domain.User, error) {
		for _, u := range users {
			if strings.EqualFold(u.Email, email) && password.Match(u.Password, pass) {
				return u.Public(), nil
			}
		}
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return serve(ctx, g, "authenticate",
		func(ctx context.Context) (domain.User, error) {
			users, err := g.remote.ListUsers(ctx)
			if err != nil {
				return domain.User{}, err
			}
			return match(users)
		},
		func(ctx context.Context) (domain.User, error) {
			users, err := g.local.Users(ctx)
			if err != nil {
				return domain.User{}, err
			}
			return match(users)
		})
}

// RegisterUser creates a user with the "user" role. Emails are unique
// case-insensitively.
func (g *Gateway) RegisterUser(ctx context.Context, email, pass, name string) (ports.Result[domain.User], error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || pass == "" || name == "" {
		return ports.Result[domain.User]{}, domain.ErrInvalidCredentials
	}
	hash, err := password.Hash(pass)
	if err != nil {
		return ports.Result[domain.User]{}, fmt.Errorf("register user: %w", err)
	}
	now := g.clock()
	record := domain.UserRecord{
		ID:        g.ids.next(now),
		Email:     email,
		Password:  hash,
		Name:      name,
		Role:      domain.RoleUser,
		Avatar:    avatarFor(name),
		CreatedAt: now,
	}
	exists := func(users []domain.UserRecord) bool {
		for _, u := range users {
			if strings.EqualFold(u.Email, email) {
				return true
			}
		}
		return false
	}

	res, err := serve(ctx, g, "register_user",
		func(ctx context.Context) (domain.User, error) {
			users, err := g.remote.ListUsers(ctx)
			if err != nil {
				return domain.User{}, err
			}
			if exists(users) {
				return domain.User{}, domain.ErrUserExists
			}
			created, err := g.remote.CreateUser(ctx, record)
			if err != nil {
				return domain.User{}, err
			}
			return created.Public(), nil
		},
		func(ctx context.Context) (domain.User, error) {
			g.localMu.Lock()
			defer g.localMu.Unlock()
			users, err := g.local.Users(ctx)
			if err != nil {
				return domain.User{}, err
			}
			if exists(users) {
				return domain.User{}, domain.ErrUserExists
			}
			if err := g.local.SaveUsers(ctx, append(users, record)); err != nil {
				return domain.User{}, err
			}
			return record.Public(), nil
		})
	if err != nil {
		return res, fmt.Errorf("register user: %w", err)
	}
	return res, nil
}

func avatarFor(name string) string {
	return "/placeholder.svg?height=40&width=40&query=" + url.QueryEscape(name+" avatar")
}

// idSource issues time-based ids that never repeat within the process.
type idSource struct {
	mu   sync.Mutex
	last int64
}

func (s *idSource) next(now time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := now.UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
