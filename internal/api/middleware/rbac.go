package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/flappyv/platform/internal/api/metrics"
	"github.com/flappyv/platform/internal/core/domain"
)

// RequireAdmin enforces the admin claim. It must run after Auth; a request
// without verified claims is unauthenticated, not forbidden.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, _ := c.Get(CtxUserID).(string); id == "" {
				return domain.ErrUnauthenticated
			}
			if admin, _ := c.Get(CtxAdmin).(bool); !admin {
				metrics.AuthFailuresTotal.WithLabelValues("forbidden").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
