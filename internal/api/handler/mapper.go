package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
)

func toCreateTaskInput(req createTaskRequest) ports.CreateTaskInput {
	return ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	}
}

func toTaskPatch(req updateTaskRequest) domain.TaskPatch {
	p := domain.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		p.Status = &s
	}
	if req.Priority != nil {
		pr := domain.TaskPriority(*req.Priority)
		p.Priority = &pr
	}
	return p
}

func toTaskRecord(req taskRecordRequest) domain.Task {
	return domain.Task{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		AssignedTo:  req.AssignedTo,
		CreatedBy:   req.CreatedBy,
		DueDate:     req.DueDate,
		CreatedAt:   req.CreatedAt,
		UpdatedAt:   req.UpdatedAt,
	}
}

func toUserRecord(req userRecordRequest) domain.UserRecord {
	return domain.UserRecord{
		ID:        req.ID,
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Role:      req.Role,
		Avatar:    req.Avatar,
		CreatedAt: req.CreatedAt,
	}
}

// parseTaskFilter reads the list filters from the query string. "me" is
// accepted for assignedTo when self is known.
func parseTaskFilter(c echo.Context, self int64) (domain.TaskFilter, error) {
	f := domain.TaskFilter{Search: c.QueryParam("search")}
	if f.Search == "" {
		f.Search = c.QueryParam("q")
	}

	switch s := domain.TaskStatus(c.QueryParam("status")); s {
	case "", domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted:
		f.Status = s
	default:
		return f, echo.NewHTTPError(http.StatusBadRequest, "status must be one of: pending in-progress completed")
	}

	switch p := domain.TaskPriority(c.QueryParam("priority")); p {
	case "", domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
		f.Priority = p
	default:
		return f, echo.NewHTTPError(http.StatusBadRequest, "priority must be one of: low medium high")
	}

	switch raw := c.QueryParam("assignedTo"); {
	case raw == "":
	case raw == "me" && self != 0:
		f.AssignedTo = self
	default:
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, echo.NewHTTPError(http.StatusBadRequest, "assignedTo must be a positive integer")
		}
		f.AssignedTo = id
	}
	return f, nil
}

func parseTaskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}
	return id, nil
}
