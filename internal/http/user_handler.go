package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	dto "nextlevel.com/nextlevel/internal/data_models"
	apperrors "nextlevel.com/nextlevel/internal/errors"
)

const maxWebhookBody = 1 << 20

func (h *Handler) Me(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	progress, err := h.userService.Progress(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, progress)
}

func (h *Handler) MyLevel(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	progress, err := h.userService.Progress(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.LevelResponse{Level: progress.Level})
}

func (h *Handler) MyExperience(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	progress, err := h.userService.Progress(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.ExperienceResponse{Experience: progress.Experience})
}

// UserWebhook applies signed user.created and user.deleted events from the
// identity provider. Other event types are acknowledged and ignored.
func (h *Handler) UserWebhook(c echo.Context) error {
	if h.webhook == nil {
		return apperrors.ErrWebhooksDisabled
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return apperrors.ErrInvalidJSON
	}
	if err := h.webhook.Verify(payload, c.Request().Header); err != nil {
		return apperrors.ErrUnauthorized
	}

	var event dto.UserWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return apperrors.ErrInvalidJSON
	}

	ctx := c.Request().Context()
	switch event.Type {
	case "user.created":
		if _, err := h.userService.RegisterUser(ctx, event.Data.ID); err != nil {
			return err
		}
	case "user.deleted":
		if err := h.userService.DeleteUser(ctx, event.Data.ID); err != nil {
			return err
		}
	default:
		return c.JSON(http.StatusOK, echo.Map{"status": "ignored"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
