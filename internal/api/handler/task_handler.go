package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Chamindu18/task-management-system/internal/core/domain"
	"github.com/Chamindu18/task-management-system/internal/core/ports"
	"github.com/Chamindu18/task-management-system/internal/core/security"
)

// TaskHandler handles HTTP requests for task operations. The router requires
// USER or ADMIN on every route; per-task access is checked against the owner
// after the task is loaded.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// --- Request / Response types ---

type taskRequest struct {
	Title       string `json:"title" validate:"required,min=5,max=100"`
	Description string `json:"description" validate:"max=500"`
	Status      string `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS COMPLETED"`
	Priority    string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	OwnerID     string `json:"owner_id"`
}

type taskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date,omitempty"`
	OwnerID     string `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Create handles POST /tasks.
//
// @Summary      Create a task
// @Description  The task is owned by the caller. Admins may assign it to another user with owner_id.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      taskRequest  true  "Task"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req taskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toTaskInput(req)
	if err != nil {
		return err
	}
	if in.OwnerID == "" || !p.IsAdmin() {
		in.OwnerID = p.UserID
	}

	task, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// List handles GET /tasks. Users see their own tasks; admins see every task
// and may narrow by owner_id.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "TODO, IN_PROGRESS or COMPLETED"
// @Param        owner_id  query     string  false  "Owner filter (admin only)"
// @Success      200       {array}   taskResponse
// @Failure      400       {object}  map[string]string
// @Failure      401       {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	filter := domain.TaskFilter{Status: domain.TaskStatus(c.QueryParam("status"))}
	if p.IsAdmin() {
		filter.OwnerID = c.QueryParam("owner_id")
	} else {
		filter.OwnerID = p.UserID
	}

	tasks, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Get handles GET /tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	task, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update handles PUT /tasks/:id.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Task ID"
// @Param        body  body      taskRequest  true  "Task"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	task, err := h.load(c)
	if err != nil {
		return err
	}

	var req taskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toTaskInput(req)
	if err != nil {
		return err
	}
	// Only admins reassign tasks.
	if p, _ := principal(c); !p.IsAdmin() {
		in.OwnerID = ""
	}

	updated, err := h.service.Update(c.Request().Context(), task.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(updated))
}

// Delete handles DELETE /tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	task, err := h.load(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), task.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// load fetches the task in the path and checks the caller owns it.
func (h *TaskHandler) load(c echo.Context) (*domain.Task, error) {
	task, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if err := authorize(c, security.Owner(task.OwnerID)); err != nil {
		return nil, err
	}
	return task, nil
}
