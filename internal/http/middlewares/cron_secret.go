package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"

	apperrors "nextlevel.com/nextlevel/internal/errors"
)

const HeaderCronSecret = "X-Cron-Secret"

// RequireSecret rejects requests whose header does not carry secret. An
// empty secret rejects everything.
func RequireSecret(header, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get(header)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				return apperrors.ErrUnauthorized
			}
			return next(c)
		}
	}
}
