package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "nextlevel.com/nextlevel/internal/errors"
)

type errorBody struct {
	Error    string              `json:"error"`
	Message  string              `json:"message"`
	Blockers []apperrors.Blocker `json:"blockers,omitempty"`
}

// ErrorHandler renders taxonomy errors with their status and message.
// Anything else is logged and reported as a bare 500. Server-side taxonomy
// errors such as a disabled feature are logged at warn.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			level := slog.LevelError
			if apperrors.KindOf(err) != apperrors.KindInternal {
				level = slog.LevelWarn
			}
			logger.Log(c.Request().Context(), level, "request failed",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", status),
				slog.Any("error", err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.ErrorContext(c.Request().Context(), "write error response", slog.Any("error", err))
		}
	}
}

func errorResponse(err error) (int, errorBody) {
	var subtasks *apperrors.IncompleteSubtasks
	if errors.As(err, &subtasks) {
		return subtasks.StatusCode(), errorBody{
			Error:    string(apperrors.KindIncompleteSubtasks),
			Message:  subtasks.Error(),
			Blockers: subtasks.Blockers,
		}
	}

	var appErr *apperrors.Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode, errorBody{Error: string(appErr.Kind), Message: appErr.Message}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg := http.StatusText(httpErr.Code)
		if s, ok := httpErr.Message.(string); ok {
			msg = s
		}
		return httpErr.Code, errorBody{Error: kindForStatus(httpErr.Code), Message: msg}
	}

	return http.StatusInternalServerError, errorBody{
		Error:   string(apperrors.KindInternal),
		Message: "internal server error",
	}
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return string(apperrors.KindNotFound)
	case http.StatusUnauthorized:
		return string(apperrors.KindUnauthorized)
	case http.StatusForbidden:
		return string(apperrors.KindForbidden)
	case http.StatusBadRequest:
		return string(apperrors.KindValidation)
	case http.StatusTooManyRequests:
		return "rate_limited"
	}
	if status >= http.StatusInternalServerError {
		return string(apperrors.KindInternal)
	}
	return "http_error"
}
