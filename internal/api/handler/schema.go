package handler

import (
	"time"

	"github.com/taskpanel/taskpanel/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Panel: auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type sessionResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

// --- Panel: tasks ---

type createTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	AssignedTo  int64  `json:"assignedTo"  validate:"gte=0"`
	DueDate     string `json:"dueDate"     validate:"omitempty,datetime=2006-01-02"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Status      *string `json:"status"      validate:"omitempty,oneof=pending in-progress completed"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	AssignedTo  *int64  `json:"assignedTo"  validate:"omitempty,gt=0"`
	DueDate     *string `json:"dueDate"     validate:"omitempty"`
}

type deleteResponse struct {
	Success bool `json:"success"`
	Existed bool `json:"existed"`
}

type activityResponse struct {
	Connected bool                   `json:"connected"`
	Items     []domain.ActivityEvent `json:"items"`
}

type probeResponse struct {
	Available bool           `json:"available"`
	Backend   domain.Backend `json:"backend"`
}

// --- Task API records ---

type userRecordRequest struct {
	ID        int64     `json:"id"        validate:"gte=0"`
	Email     string    `json:"email"     validate:"required,email"`
	Password  string    `json:"password"  validate:"required"`
	Name      string    `json:"name"      validate:"required"`
	Role      string    `json:"role"      validate:"omitempty,oneof=admin user"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

type taskRecordRequest struct {
	ID          int64     `json:"id"          validate:"gte=0"`
	Title       string    `json:"title"       validate:"required"`
	Description string    `json:"description"`
	Status      string    `json:"status"      validate:"omitempty,oneof=pending in-progress completed"`
	Priority    string    `json:"priority"    validate:"omitempty,oneof=low medium high"`
	AssignedTo  int64     `json:"assignedTo"`
	CreatedBy   int64     `json:"createdBy"`
	DueDate     string    `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type taskRecordPatchRequest struct {
	updateTaskRequest
	UpdatedAt *time.Time `json:"updatedAt"`
}
