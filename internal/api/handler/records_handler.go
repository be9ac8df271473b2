package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
)

// RecordsHandler serves the task API's raw collections in the shape the
// panel's remote client expects.
type RecordsHandler struct {
	records ports.RecordService
}

func NewRecordsHandler(records ports.RecordService) *RecordsHandler {
	return &RecordsHandler{records: records}
}

// ListUsers returns stored user records, passwords included.
//
// @Summary      List user records
// @Tags         records
// @Produce      json
// @Success      200  {array}  domain.UserRecord
// @Router       /users [get]
func (h *RecordsHandler) ListUsers(c echo.Context) error {
	users, err := h.records.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.UserRecord{}
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser stores a user record.
//
// @Summary      Create a user record
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        body  body      userRecordRequest  true  "User"
// @Success      201   {object}  domain.UserRecord
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users [post]
func (h *RecordsHandler) CreateUser(c echo.Context) error {
	var req userRecordRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	user, err := h.records.CreateUser(c.Request().Context(), toUserRecord(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// ListTasks returns stored tasks, optionally filtered.
//
// @Summary      List task records
// @Tags         records
// @Produce      json
// @Param        status      query  string  false  "pending, in-progress or completed"
// @Param        priority    query  string  false  "low, medium or high"
// @Param        q           query  string  false  "matches title or description"
// @Param        assignedTo  query  int     false  "user id"
// @Success      200  {array}  domain.Task
// @Router       /tasks [get]
func (h *RecordsHandler) ListTasks(c echo.Context) error {
	filter, err := parseTaskFilter(c, 0)
	if err != nil {
		return err
	}
	tasks, err := h.records.ListTasks(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return c.JSON(http.StatusOK, tasks)
}

// CreateTask stores a task. Missing fields get their defaults.
//
// @Summary      Create a task record
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        body  body      taskRecordRequest  true  "Task"
// @Success      201   {object}  domain.Task
// @Failure      422   {object}  errorResponse
// @Router       /tasks [post]
func (h *RecordsHandler) CreateTask(c echo.Context) error {
	var req taskRecordRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	task, err := h.records.CreateTask(c.Request().Context(), toTaskRecord(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// UpdateTask merges the supplied fields into a stored task.
//
// @Summary      Patch a task record
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        id    path      int                     true  "Task ID"
// @Param        body  body      taskRecordPatchRequest  true  "Fields to change"
// @Success      200   {object}  domain.Task
// @Failure      404   {object}  errorResponse
// @Router       /tasks/{id} [patch]
func (h *RecordsHandler) UpdateTask(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}
	var req taskRecordPatchRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	patch := toTaskPatch(req.updateTaskRequest)
	if req.UpdatedAt != nil {
		patch.UpdatedAt = *req.UpdatedAt
	}
	task, err := h.records.UpdateTask(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTask removes a stored task. Deleting a missing id still succeeds.
//
// @Summary      Delete a task record
// @Tags         records
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  deleteResponse
// @Router       /tasks/{id} [delete]
func (h *RecordsHandler) DeleteTask(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}
	existed, err := h.records.DeleteTask(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteResponse{Success: true, Existed: existed})
}
