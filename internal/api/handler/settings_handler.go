package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flappyv/platform/internal/api/metrics"
	"github.com/flappyv/platform/internal/core/domain"
	"github.com/flappyv/platform/internal/core/ports"
)

// maxSettingsBody bounds POST /game-settings payloads.
const maxSettingsBody = 16 << 10

type SettingsHandler struct {
	store ports.SettingsStore
}

func NewSettingsHandler(store ports.SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

type settingsWriteResponse struct {
	Message      string              `json:"message"`
	GameSettings domain.GameSettings `json:"gameSettings"`
	Version      uint64              `json:"version"`
	Timestamp    time.Time           `json:"timestamp"`
}

// Get returns the current game settings as a flat record.
//
// @Summary      Current game settings
// @Tags         game-settings
// @Produce      json
// @Success      200  {object}  domain.GameSettings
// @Router       /game-settings [get]
func (h *SettingsHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Read().Settings)
}

// Update validates, clamps and persists a full or partial settings record.
//
// @Summary      Update game settings
// @Description  Out-of-range values are clamped; non-numeric values reject the whole write.
// @Tags         game-settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      domain.GameSettings  true  "Full or partial record"
// @Success      200   {object}  settingsWriteResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /game-settings [post]
func (h *SettingsHandler) Update(c echo.Context) error {
	var candidate map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(c.Response(), c.Request().Body, maxSettingsBody))
	// Exactly one JSON object; anything after it rejects the write.
	if err := dec.Decode(&candidate); err != nil || candidate == nil || dec.Decode(&struct{}{}) != io.EOF {
		metrics.SettingsWritesTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "body must be a JSON object")
	}

	snap, err := h.store.Write(c.Request().Context(), candidate)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		metrics.SettingsWritesTotal.WithLabelValues("invalid").Inc()
		return err
	case err != nil:
		metrics.SettingsWritesTotal.WithLabelValues("persist_failed").Inc()
		return err
	}
	metrics.SettingsWritesTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, settingsWriteResponse{
		Message:      "game settings updated",
		GameSettings: snap.Settings,
		Version:      snap.Version,
		Timestamp:    snap.UpdatedAt,
	})
}
