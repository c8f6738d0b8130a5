package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flappyv/platform/internal/core/domain"
)

func TestRequireAdmin_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(CtxUserID, "u1")
	c.Set(CtxAdmin, true)

	called := false
	handler := RequireAdmin()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequireAdmin_ForbidsNonAdmin(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	c.Set(CtxUserID, "u1")
	c.Set(CtxAdmin, false)

	err := RequireAdmin()(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireAdmin_WithoutClaimsIsUnauthenticated(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	c.Set(CtxAdmin, true)

	err := RequireAdmin()(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireAdmin_ChainedAfterAuth(t *testing.T) {
	e := echo.New()
	auth := Auth(newAuthenticator(t, testGeneration), Public())
	user := issue(t, testGeneration.Add(time.Minute), false)

	sideEffect := false
	chain := auth(RequireAdmin()(func(c echo.Context) error {
		sideEffect = true
		return c.NoContent(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/service/stop", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+user)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/service/stop")

	if err := chain(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if sideEffect {
		t.Fatalf("non-admin reached the handler")
	}
}
