package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/core/domain"
)

func TestHTTPErrorHandler_MapsTaxonomy(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrMalformedCredential, http.StatusUnauthorized},
		{domain.ErrInvalidSignature, http.StatusUnauthorized},
		{domain.ErrExpired, http.StatusUnauthorized},
		{domain.ErrStaleGeneration, http.StatusUnauthorized},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: flapStrength must be a number", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("upload skin: write 1.png: %w", domain.ErrPayloadTooLarge), http.StatusRequestEntityTooLarge},
		{domain.ErrUserExists, http.StatusConflict},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrStatNotFound, http.StatusNotFound},
		{domain.ErrSkinNotFound, http.StatusNotFound},
		{domain.ErrServiceStopped, http.StatusServiceUnavailable},
		{domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: disk full", domain.ErrPersistenceFailure), http.StatusInternalServerError},
		{echo.NewHTTPError(http.StatusUnprocessableEntity, "playerid is required"), http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	e := echo.New()
	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		h(tc.err, c)

		if rec.Code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Errorf("%v: expected error envelope, got %q", tc.err, rec.Body.String())
		}
	}
}

func TestHTTPErrorHandler_DoesNotLeakInternals(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("dial tcp 10.0.0.3:27017: secret=hunter2"), c)

	if strings.Contains(rec.Body.String(), "hunter2") || strings.Contains(rec.Body.String(), "27017") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}
