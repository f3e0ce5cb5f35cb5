package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "nextlevel.com/nextlevel/internal/data_models"
	"nextlevel.com/nextlevel/internal/http/validators"
)

func (h *Handler) CreateTask(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req dto.CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), uid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) AddMission(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req dto.AddMissionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateAddMissionRequest(&req); err != nil {
		return err
	}

	task, err := h.taskService.AddMission(c.Request().Context(), uid, req.TaskID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.NewTaskListResponse(tasks))
}

func (h *Handler) ListDefaultTasks(c echo.Context) error {
	tasks, err := h.taskService.ListDefaultTasks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.NewTaskListResponse(tasks))
}

func (h *Handler) GetTask(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateUpdateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), uid, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), uid, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CompleteTask(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	result, err := h.taskService.CompleteTask(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) CloseTask(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.CloseTask(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ReopenTask(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.ReopenTask(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) CompletionHistory(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	history, err := h.taskService.CompletionHistory(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"days": history})
}
