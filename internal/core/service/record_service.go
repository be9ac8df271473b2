package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
	"github.com/taskpanel/taskpanel/internal/metrics"
)

// RecordService backs the task API collections with repositories.
type RecordService struct {
	tasks  ports.TaskRepository
	users  ports.UserRepository
	logger zerolog.Logger
	now    func() time.Time
	ids    idSource
}

var _ ports.RecordService = (*RecordService)(nil)

func NewRecordService(tasks ports.TaskRepository, users ports.UserRepository, logger zerolog.Logger) *RecordService {
	return &RecordService{tasks: tasks, users: users, logger: logger, now: time.Now}
}

func (s *RecordService) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *RecordService) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return domain.FilterTasks(tasks, filter), nil
}

// CreateTask stores task. A zero id is replaced with a time-based one; empty
// status, priority and timestamps get their defaults.
func (s *RecordService) CreateTask(ctx context.Context, task domain.Task) (*domain.Task, error) {
	now := s.clock()
	if task.ID == 0 {
		task.ID = s.ids.next(now)
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = task.CreatedAt
	}

	if err := s.tasks.Insert(ctx, task); err != nil {
		s.logger.Error().Err(err).Msg("failed to create task")
		return nil, err
	}
	metrics.TasksCreatedTotal.WithLabelValues(string(task.Priority)).Inc()
	s.logger.Info().Int64("task_id", task.ID).Int64("created_by", task.CreatedBy).Msg("task created")
	return &task, nil
}

// UpdateTask applies patch. When the patch carries no timestamp the current
// time is used; a timestamp not after the stored one is moved 1ms past it.
func (s *RecordService) UpdateTask(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	current, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = s.clock()
	}
	if !patch.UpdatedAt.After(current.UpdatedAt) {
		patch.UpdatedAt = current.UpdatedAt.Add(time.Millisecond)
	}
	task, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	s.logger.Info().Int64("task_id", id).Msg("task updated")
	return task, nil
}

func (s *RecordService) DeleteTask(ctx context.Context, id int64) (bool, error) {
	existed, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete task %d: %w", id, err)
	}
	s.logger.Info().Int64("task_id", id).Bool("existed", existed).Msg("task deleted")
	return existed, nil
}

func (s *RecordService) ListUsers(ctx context.Context) ([]domain.UserRecord, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CreateUser stores user. Emails are unique case-insensitively.
func (s *RecordService) CreateUser(ctx context.Context, user domain.UserRecord) (*domain.UserRecord, error) {
	existing, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	for _, u := range existing {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, domain.ErrUserExists
		}
	}

	now := s.clock()
	if user.ID == 0 {
		user.ID = s.ids.next(now)
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if err := s.users.Insert(ctx, user); err != nil {
		s.logger.Error().Err(err).Msg("failed to create user")
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return &user, nil
}
