package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/flappyv/platform/internal/core/domain"
)

// RunState reports whether the service is logically running.
type RunState interface {
	Running() bool
}

// RequireRunning answers 503 while the service is stopped. Paths under any
// of exempt (health, metrics, the control surface) are always served.
func RequireRunning(state RunState, exempt ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if state.Running() {
				return next(c)
			}
			path := c.Request().URL.Path
			for _, prefix := range exempt {
				if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
					return next(c)
				}
			}
			return domain.ErrServiceStopped
		}
	}
}
