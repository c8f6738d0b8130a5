package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/core/domain"
)

// Lifecycle is the logical running state controlled over HTTP.
type Lifecycle interface {
	Status() domain.ServiceStatus
	Start() bool
	Stop() bool
	ShutdownOnStop() bool
}

type ControlHandler struct {
	lc  Lifecycle
	log zerolog.Logger
}

func NewControlHandler(lc Lifecycle, log zerolog.Logger) *ControlHandler {
	return &ControlHandler{lc: lc, log: log}
}

type controlResponse struct {
	Message string               `json:"message"`
	Status  domain.ServiceStatus `json:"status"`
}

// Status reports the running state.
//
// @Summary      Service status
// @Tags         control
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.ServiceStatus
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/service/status [get]
func (h *ControlHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.lc.Status())
}

// Start resumes a stopped service.
//
// @Summary      Start service
// @Tags         control
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  controlResponse
// @Failure      403  {object}  map[string]string
// @Router       /api/service/start [post]
func (h *ControlHandler) Start(c echo.Context) error {
	msg := "service already running"
	if h.lc.Start() {
		msg = "service started"
		h.log.Info().Str("by", userOf(c)).Msg("service started")
	}
	return c.JSON(http.StatusOK, controlResponse{Message: msg, Status: h.lc.Status()})
}

// Stop pauses the service, or shuts the process down where configured. The
// acknowledgement is flushed before the shutdown is requested.
//
// @Summary      Stop service
// @Tags         control
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  controlResponse
// @Failure      403  {object}  map[string]string
// @Router       /api/service/stop [post]
func (h *ControlHandler) Stop(c echo.Context) error {
	status := h.lc.Status()
	status.Running = false
	msg := "service stopped"
	if h.lc.ShutdownOnStop() {
		msg = "service shutting down"
	}

	if err := c.JSON(http.StatusOK, controlResponse{Message: msg, Status: status}); err != nil {
		return err
	}
	c.Response().Flush()

	h.lc.Stop()
	h.log.Info().Str("by", userOf(c)).Bool("shutdown", h.lc.ShutdownOnStop()).Msg("service stopped")
	return nil
}

func userOf(c echo.Context) string {
	id, _, _ := ctxIdentity(c)
	return id
}
