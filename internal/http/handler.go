package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	svix "github.com/svix/svix-webhooks/go"

	apperrors "nextlevel.com/nextlevel/internal/errors"
	middleware "nextlevel.com/nextlevel/internal/http/middlewares"
	"nextlevel.com/nextlevel/internal/services"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	taskService       *services.TaskService
	projectService    *services.ProjectService
	userService       *services.UserService
	recurrenceService *services.RecurrenceService
	suggestionService *services.SuggestionService
	webhook           *svix.Webhook
	db                pinger
}

// NewHandler wires the services behind the routes. webhook may be nil, in
// which case the identity webhook endpoint is unavailable.
func NewHandler(
	taskService *services.TaskService,
	projectService *services.ProjectService,
	userService *services.UserService,
	recurrenceService *services.RecurrenceService,
	suggestionService *services.SuggestionService,
	webhook *svix.Webhook,
	db pinger,
) *Handler {
	return &Handler{
		taskService:       taskService,
		projectService:    projectService,
		userService:       userService,
		recurrenceService: recurrenceService,
		suggestionService: suggestionService,
		webhook:           webhook,
		db:                db,
	}
}

func (h *Handler) Health(c echo.Context) error {
	if err := h.db.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *Handler) ResetRecurrent(c echo.Context) error {
	result, err := h.recurrenceService.Sweep(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apperrors.ErrInvalidJSON
	}
	return nil
}

func userID(c echo.Context) (string, error) {
	id := middleware.UserID(c)
	if id == "" {
		return "", apperrors.ErrUnauthorized
	}
	return id, nil
}
