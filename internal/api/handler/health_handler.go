package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flappyv/platform/internal/core/domain"
)

// HealthHandler handles GET /health, the liveness probe.
// It answers while the service is logically stopped.
type HealthHandler struct {
	status func() domain.ServiceStatus
	now    func() time.Time
}

func NewHealthHandler(status func() domain.ServiceStatus) *HealthHandler {
	return &HealthHandler{status: status, now: time.Now}
}

type livenessResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Uptime    float64   `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// Liveness reports whether the process is up and logically running.
//
// @Summary      Liveness
// @Tags         health
// @Produce      json
// @Success      200  {object}  livenessResponse
// @Router       /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	st := h.status()
	state := "running"
	if !st.Running {
		state = "stopped"
	}
	return c.JSON(http.StatusOK, livenessResponse{
		Status:    state,
		Service:   st.Service,
		Uptime:    st.Uptime,
		Timestamp: h.now().UTC(),
	})
}

// Pinger checks one backing dependency.
type Pinger func(ctx context.Context) error

// ReadinessHandler handles GET /health/ready, the readiness probe.
// Every configured dependency must answer its ping.
type ReadinessHandler struct {
	deps map[string]Pinger
}

func NewReadinessHandler(deps map[string]Pinger) *ReadinessHandler {
	if deps == nil {
		deps = map[string]Pinger{}
	}
	return &ReadinessHandler{deps: deps}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness pings every dependency.
//
// @Summary      Readiness
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /health/ready [get]
func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.deps))
	healthy := true
	for name, ping := range h.deps {
		if err := ping(ctx); err != nil {
			// Only the failure kind is exposed; the cause may carry addresses.
			deps[name] = dependencyStatus{Status: "unhealthy", Error: domain.ErrUpstreamUnavailable.Error()}
			healthy = false
			continue
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
