package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireCronSecret guards the job endpoints against callers other than the
// external cron timers. The timer platform sends the shared secret in the
// X-Cron-Secret header.
//
// An empty configured secret disables the check (local development).
func RequireCronSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}

			provided := c.Request().Header.Get("X-Cron-Secret")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "invalid cron secret",
				})
			}

			return next(c)
		}
	}
}
