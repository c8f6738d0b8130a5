package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/flappyv/platform/internal/core/domain"
)

type fakeState bool

func (f fakeState) Running() bool { return bool(f) }

func TestRequireRunning(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	exempt := []string{"/health", "/metrics", "/api/service"}

	cases := []struct {
		running bool
		path    string
		want    error
	}{
		{true, "/stats", nil},
		{false, "/stats", domain.ErrServiceStopped},
		{false, "/health", nil},
		{false, "/health/ready", nil},
		{false, "/metrics", nil},
		{false, "/api/service/start", nil},
		{false, "/healthz", domain.ErrServiceStopped},
	}
	for _, tc := range cases {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, tc.path, nil), httptest.NewRecorder())
		err := RequireRunning(fakeState(tc.running), exempt...)(ok)(c)
		if !errors.Is(err, tc.want) && !(err == nil && tc.want == nil) {
			t.Errorf("running=%v path=%s: expected %v, got %v", tc.running, tc.path, tc.want, err)
		}
	}
}
