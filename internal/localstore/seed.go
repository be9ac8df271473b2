package localstore

import (
	"fmt"
	"os"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/pkg/password"
)

// Seed is the initial content written to an empty collection.
type Seed struct {
	Users []domain.UserRecord
	Tasks []domain.Task
}

const defaultAvatar = "/placeholder.svg?height=40&width=40"

var defaultSeed = sync.OnceValues(func() (Seed, error) {
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return epoch.AddDate(0, 0, d-1) }

	s := Seed{
		Users: []domain.UserRecord{
			{ID: 1, Email: "admin@example.com", Password: "admin123", Name: "Admin User", Role: domain.RoleAdmin, Avatar: defaultAvatar, CreatedAt: epoch},
			{ID: 2, Email: "user@example.com", Password: "user123", Name: "Regular User", Role: domain.RoleUser, Avatar: defaultAvatar, CreatedAt: epoch},
		},
		Tasks: []domain.Task{
			{
				ID: 1, Title: "Setup Project Architecture",
				Description: "Initialize the project structure and configure development environment",
				Status:      domain.StatusCompleted, Priority: domain.PriorityHigh,
				AssignedTo: 1, CreatedBy: 1, DueDate: "2024-01-15T00:00:00.000Z",
				CreatedAt: day(1), UpdatedAt: day(10),
			},
			{
				ID: 2, Title: "Implement Authentication",
				Description: "Create login and registration functionality with JWT tokens",
				Status:      domain.StatusInProgress, Priority: domain.PriorityHigh,
				AssignedTo: 2, CreatedBy: 1, DueDate: "2024-01-20T00:00:00.000Z",
				CreatedAt: day(5), UpdatedAt: day(12),
			},
			{
				ID: 3, Title: "Design Task Dashboard",
				Description: "Create responsive dashboard for task management",
				Status:      domain.StatusPending, Priority: domain.PriorityMedium,
				AssignedTo: 2, CreatedBy: 1, DueDate: "2024-01-25T00:00:00.000Z",
				CreatedAt: day(8), UpdatedAt: day(8),
			},
		},
	}
	if err := hashPasswords(s.Users); err != nil {
		return Seed{}, err
	}
	return s, nil
})

// DefaultSeed returns the built-in demo users and tasks with hashed passwords.
func DefaultSeed() (Seed, error) {
	s, err := defaultSeed()
	if err != nil {
		return Seed{}, err
	}
	return Seed{
		Users: append([]domain.UserRecord(nil), s.Users...),
		Tasks: append([]domain.Task(nil), s.Tasks...),
	}, nil
}

type seedFile struct {
	Users []struct {
		ID        int64     `toml:"id"`
		Email     string    `toml:"email"`
		Password  string    `toml:"password"`
		Name      string    `toml:"name"`
		Role      string    `toml:"role"`
		Avatar    string    `toml:"avatar"`
		CreatedAt time.Time `toml:"created_at"`
	} `toml:"users"`
	Tasks []struct {
		ID          int64     `toml:"id"`
		Title       string    `toml:"title"`
		Description string    `toml:"description"`
		Status      string    `toml:"status"`
		Priority    string    `toml:"priority"`
		AssignedTo  int64     `toml:"assigned_to"`
		CreatedBy   int64     `toml:"created_by"`
		DueDate     string    `toml:"due_date"`
		CreatedAt   time.Time `toml:"created_at"`
		UpdatedAt   time.Time `toml:"updated_at"`
	} `toml:"tasks"`
}

// LoadSeed reads a TOML seed file. An empty path yields DefaultSeed.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed decodes TOML seed content.
func ParseSeed(raw []byte) (Seed, error) {
	var f seedFile
	if err := toml.Unmarshal(raw, &f); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}

	s := Seed{
		Users: make([]domain.UserRecord, 0, len(f.Users)),
		Tasks: make([]domain.Task, 0, len(f.Tasks)),
	}
	for _, u := range f.Users {
		role := u.Role
		if role == "" {
			role = domain.RoleUser
		}
		if !domain.ValidRole(role) {
			return Seed{}, fmt.Errorf("parse seed: user %d: unknown role %q", u.ID, u.Role)
		}
		s.Users = append(s.Users, domain.UserRecord{
			ID: u.ID, Email: u.Email, Password: u.Password, Name: u.Name,
			Role: role, Avatar: u.Avatar, CreatedAt: u.CreatedAt.UTC(),
		})
	}
	for _, t := range f.Tasks {
		status := domain.TaskStatus(t.Status)
		if status == "" {
			status = domain.StatusPending
		}
		updated := t.UpdatedAt
		if updated.IsZero() {
			updated = t.CreatedAt
		}
		s.Tasks = append(s.Tasks, domain.Task{
			ID: t.ID, Title: t.Title, Description: t.Description,
			Status: status, Priority: domain.TaskPriority(t.Priority),
			AssignedTo: t.AssignedTo, CreatedBy: t.CreatedBy, DueDate: t.DueDate,
			CreatedAt: t.CreatedAt.UTC(), UpdatedAt: updated.UTC(),
		})
	}
	if err := hashPasswords(s.Users); err != nil {
		return Seed{}, err
	}
	return s, nil
}

func hashPasswords(users []domain.UserRecord) error {
	for i := range users {
		if users[i].Password == "" || password.IsHash(users[i].Password) {
			continue
		}
		h, err := password.Hash(users[i].Password)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		users[i].Password = h
	}
	return nil
}
