package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "nextlevel.com/nextlevel/internal/data_models"
	"nextlevel.com/nextlevel/internal/http/validators"
)

func (h *Handler) CreateProject(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req dto.CreateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateCreateProjectRequest(&req); err != nil {
		return err
	}

	project, err := h.projectService.CreateProject(c.Request().Context(), uid, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, project)
}

func (h *Handler) ListProjects(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	projects, err := h.projectService.ListProjects(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"count": len(projects), "projects": projects})
}

func (h *Handler) GetProject(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	project, err := h.projectService.GetProject(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

func (h *Handler) ListSubtasks(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	tasks, err := h.projectService.ListSubtasks(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.NewTaskListResponse(tasks))
}

func (h *Handler) UpdateProject(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateProjectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateUpdateProjectRequest(&req); err != nil {
		return err
	}

	project, err := h.projectService.UpdateProject(c.Request().Context(), uid, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

func (h *Handler) DeleteProject(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	if err := h.projectService.DeleteProject(c.Request().Context(), uid, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CompleteProject(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	result, err := h.projectService.CompleteProject(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) SuggestSubtasks(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req dto.SuggestSubtasksRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateSuggestSubtasksRequest(&req); err != nil {
		return err
	}

	subtasks, err := h.suggestionService.SuggestSubtasks(c.Request().Context(), uid, req.ProjectDescription)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.SuggestSubtasksResponse{Subtasks: subtasks})
}
