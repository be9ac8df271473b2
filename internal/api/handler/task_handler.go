package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskpanel/taskpanel/internal/app"
	"github.com/taskpanel/taskpanel/internal/core/domain"
	"github.com/taskpanel/taskpanel/internal/core/ports"
	"github.com/taskpanel/taskpanel/internal/realtime"
)

// TaskHandler serves the panel's task routes through the gateway and
// announces every mutation on the caller's realtime channel.
type TaskHandler struct {
	gateway ports.Gateway
	board   *app.Board
	hub     StreamHub
	log     zerolog.Logger
}

func NewTaskHandler(gateway ports.Gateway, board *app.Board, hub StreamHub, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{gateway: gateway, board: board, hub: hub, log: log}
}

// List returns tasks matching the query filters.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Param        status      query     string  false  "pending, in-progress or completed"
// @Param        priority    query     string  false  "low, medium or high"
// @Param        search      query     string  false  "matches title or description"
// @Param        assignedTo  query     string  false  "user id or me"
// @Success      200  {array}   domain.Task
// @Failure      400  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	filter, err := parseTaskFilter(c, user.ID)
	if err != nil {
		return err
	}

	res, err := h.gateway.ListTasks(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	setSource(c, res.Backend)
	tasks := res.Value
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return c.JSON(http.StatusOK, tasks)
}

// Create adds a task created by the caller.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  domain.Task
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.gateway.CreateTask(c.Request().Context(), &user, toCreateTaskInput(req))
	if err != nil {
		return err
	}
	setSource(c, res.Backend)
	h.board.Invalidate()
	h.emit(c, user, func(ch *realtime.Channel) error {
		return ch.EmitTaskCreate(res.Value, user.Name)
	})
	return c.JSON(http.StatusCreated, res.Value)
}

// Update applies a partial change to a task.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  domain.Task
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.gateway.UpdateTask(c.Request().Context(), id, toTaskPatch(req))
	if err != nil {
		return err
	}
	setSource(c, res.Backend)
	h.board.Invalidate()
	h.emit(c, user, func(ch *realtime.Channel) error {
		return ch.EmitTaskUpdate(res.Value, user.Name)
	})
	return c.JSON(http.StatusOK, res.Value)
}

// Delete removes a task. Deleting a missing task succeeds with existed=false.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  deleteResponse
// @Failure      400  {object}  errorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}
	title := h.board.Title(id)

	res, err := h.gateway.DeleteTask(c.Request().Context(), id)
	if err != nil {
		return err
	}
	setSource(c, res.Backend)
	h.board.Invalidate()
	if res.Existed {
		h.emit(c, user, func(ch *realtime.Channel) error {
			return ch.EmitTaskDelete(id, title, user.Name)
		})
	}
	return c.JSON(http.StatusOK, deleteResponse{Success: true, Existed: res.Existed})
}

// emit sends on the user's channel. The mutation already succeeded, so a
// failed emit is only logged.
func (h *TaskHandler) emit(c echo.Context, user domain.User, send func(*realtime.Channel) error) {
	stream, err := streamFor(h.hub, c, user)
	if err == nil && stream != nil {
		err = send(stream.Channel)
	}
	if err != nil {
		h.log.Warn().Err(err).Int64("user_id", user.ID).Msg("realtime emit failed")
	}
}
