package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/taskstore/internal/domain/entities"
	"github.com/taskmaster/taskstore/internal/domain/schema"
	"github.com/taskmaster/taskstore/internal/infrastructure/logger"
	"github.com/taskmaster/taskstore/internal/ports"
)

// maxBodyBytes caps request bodies; a whole store is a few hundred KB at most.
const maxBodyBytes = 16 << 20

// TaskHandler handles task store requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// GetStore godoc
// @Summary Get the task store
// @Description Return the whole store in the current schema, migrating a legacy file on the fly
// @Tags tasks
// @Produce json
// @Success 200 {object} entities.Store
// @Router /api/tasks [get]
func (h *TaskHandler) GetStore(c echo.Context) error {
	return c.JSON(http.StatusOK, h.taskService.GetStore(c.Request().Context()))
}

// SaveStore godoc
// @Summary Replace the task store
// @Description Coerce the posted document and persist it unless it matches the stored one
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body entities.Store true "Store document"
// @Success 200 {object} ports.SaveResponse
// @Failure 400 {object} ports.SaveResponse
// @Failure 500 {object} ports.SaveResponse
// @Router /api/tasks [post]
func (h *TaskHandler) SaveStore(c echo.Context) error {
	candidate, err := decodeBody(c)
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request format")
	}

	result, err := h.taskService.SaveStore(c.Request().Context(), candidate)
	if err != nil {
		return h.writeFailure(c, "Save store failed", err)
	}

	return c.JSON(http.StatusOK, ports.SaveResponse{
		Success: true,
		Changed: result.Changed,
		Message: saveMessage(result),
	})
}

// GetToday godoc
// @Summary Get today's tasks
// @Tags tasks
// @Produce json
// @Success 200 {array} entities.Task
// @Router /api/tasks/today [get]
func (h *TaskHandler) GetToday(c echo.Context) error {
	return h.getDay(c, ports.DayToday)
}

// GetTomorrow godoc
// @Summary Get tomorrow's tasks
// @Tags tasks
// @Produce json
// @Success 200 {array} entities.Task
// @Router /api/tasks/tomorrow [get]
func (h *TaskHandler) GetTomorrow(c echo.Context) error {
	return h.getDay(c, ports.DayTomorrow)
}

// ReplaceToday godoc
// @Summary Replace today's tasks
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body []entities.Task true "Tasks"
// @Success 200 {object} ports.SaveResponse
// @Failure 400 {object} ports.SaveResponse
// @Failure 500 {object} ports.SaveResponse
// @Router /api/tasks/today [post]
func (h *TaskHandler) ReplaceToday(c echo.Context) error {
	return h.replaceDay(c, ports.DayToday)
}

// ReplaceTomorrow godoc
// @Summary Replace tomorrow's tasks
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body []entities.Task true "Tasks"
// @Success 200 {object} ports.SaveResponse
// @Failure 400 {object} ports.SaveResponse
// @Failure 500 {object} ports.SaveResponse
// @Router /api/tasks/tomorrow [post]
func (h *TaskHandler) ReplaceTomorrow(c echo.Context) error {
	return h.replaceDay(c, ports.DayTomorrow)
}

// SetCounter godoc
// @Summary Set the task id counter
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body ports.SetCounterRequest true "Counter"
// @Success 200 {object} ports.SaveResponse
// @Failure 400 {object} ports.SaveResponse
// @Failure 500 {object} ports.SaveResponse
// @Router /api/tasks/counter [post]
func (h *TaskHandler) SetCounter(c echo.Context) error {
	var req ports.SetCounterRequest
	if err := c.Bind(&req); err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return failure(c, http.StatusBadRequest, err.Error())
	}

	result, err := h.taskService.SetCounter(c.Request().Context(), req)
	if err != nil {
		return h.writeFailure(c, "Set counter failed", err)
	}

	return c.JSON(http.StatusOK, ports.SaveResponse{Success: true, Changed: result.Changed})
}

func (h *TaskHandler) getDay(c echo.Context, day ports.Day) error {
	return c.JSON(http.StatusOK, h.taskService.GetDayTasks(c.Request().Context(), day))
}

func (h *TaskHandler) replaceDay(c echo.Context, day ports.Day) error {
	tasks, err := decodeBody(c)
	if err != nil {
		return failure(c, http.StatusBadRequest, "Invalid request format")
	}

	result, err := h.taskService.ReplaceDayTasks(c.Request().Context(), day, tasks)
	if err != nil {
		return h.writeFailure(c, "Replace day tasks failed", err)
	}

	return c.JSON(http.StatusOK, ports.SaveResponse{Success: true, Changed: result.Changed})
}

// writeFailure maps invalid input to 400 and everything else to 500.
func (h *TaskHandler) writeFailure(c echo.Context, msg string, err error) error {
	log := h.logger.
		WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID)).
		WithError(err)

	if errors.Is(err, entities.ErrInvalidInput) {
		log.Warnw(msg, "path", c.Request().URL.Path)
		return failure(c, http.StatusBadRequest, err.Error())
	}

	log.Errorw(msg, "path", c.Request().URL.Path)
	return failure(c, http.StatusInternalServerError, "Failed to save tasks")
}

func decodeBody(c echo.Context) (any, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return schema.Decode(body)
}

func failure(c echo.Context, code int, message string) error {
	return c.JSON(code, ports.SaveResponse{Success: false, Message: message})
}

func saveMessage(result ports.WriteResult) string {
	if result.Changed {
		return "Tasks saved"
	}
	return "Tasks unchanged"
}
