package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/flappyv/platform/internal/api/metrics"
	"github.com/flappyv/platform/internal/core/domain"
	"github.com/flappyv/platform/internal/pkg/token"
)

// Context keys set by Auth.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxAdmin  = "admin"
)

// Authenticator verifies a raw credential against this process.
type Authenticator interface {
	Authenticate(raw string) (*token.Claims, error)
}

// PublicRoutes is the closed allow-list of routes served without a
// credential. Entries are "METHOD /registered/path" and are compared with the
// matched route pattern, never with the raw URL.
type PublicRoutes map[string]struct{}

func Public(routes ...string) PublicRoutes {
	p := make(PublicRoutes, len(routes))
	for _, r := range routes {
		p[r] = struct{}{}
	}
	return p
}

func (p PublicRoutes) Has(method, path string) bool {
	_, ok := p[method+" "+path]
	return ok
}

// Auth validates the bearer credential and injects its claims into context.
// Every route not listed in public requires a live credential.
func Auth(auth Authenticator, public PublicRoutes) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if public.Has(c.Request().Method, c.Path()) {
				return next(c)
			}

			raw, err := BearerToken(c.Request())
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues(failureReason(err)).Inc()
				return err
			}

			claims, err := auth.Authenticate(raw)
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues(failureReason(err)).Inc()
				return err
			}

			c.Set(CtxUserID, claims.UserID())
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxAdmin, claims.Admin)

			return next(c)
		}
	}
}

// BearerToken extracts the credential from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", domain.ErrUnauthenticated
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domain.ErrMalformedCredential
	}
	return strings.TrimSpace(parts[1]), nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "missing"
	case errors.Is(err, domain.ErrInvalidSignature):
		return "signature"
	case errors.Is(err, domain.ErrExpired):
		return "expired"
	case errors.Is(err, domain.ErrStaleGeneration):
		return "stale"
	default:
		return "malformed"
	}
}
