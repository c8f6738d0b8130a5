package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/flappyv/platform/internal/api/middleware"
	"github.com/flappyv/platform/internal/core/domain"
)

// ctxIdentity extracts the principal injected by the Auth middleware. An
// empty user id means the middleware did not run for this route.
func ctxIdentity(c echo.Context) (userID string, admin bool, err error) {
	userID, _ = c.Get(middleware.CtxUserID).(string)
	if userID == "" {
		return "", false, domain.ErrUnauthenticated
	}
	admin, _ = c.Get(middleware.CtxAdmin).(bool)
	return userID, admin, nil
}
