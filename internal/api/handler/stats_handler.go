package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flappyv/platform/internal/api/metrics"
	"github.com/flappyv/platform/internal/core/ports"
)

// HeaderIdempotencyKey deduplicates stat submissions.
const HeaderIdempotencyKey = "Idempotency-Key"

type StatsHandler struct {
	service ports.StatService
}

func NewStatsHandler(service ports.StatService) *StatsHandler {
	return &StatsHandler{service: service}
}

// jumps and pipesPassed are pointers so a missing field is distinguishable from zero.
type recordStatRequest struct {
	PlayerID    string `json:"playerId"    validate:"required"`
	PlayerName  string `json:"playerName"  validate:"required"`
	Jumps       *int   `json:"jumps"       validate:"required,gte=0"`
	PipesPassed *int   `json:"pipesPassed" validate:"required,gte=0"`
	GameMode    string `json:"gameMode"    validate:"required"`
}

// Record stores a finished game.
//
// @Summary      Record a game
// @Tags         stats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Deduplication key"
// @Param        body             body      recordStatRequest  true   "Game result"
// @Success      201              {object}  domain.Stat
// @Success      200              {object}  domain.Stat  "Replayed submission"
// @Failure      401              {object}  map[string]string
// @Failure      422              {object}  map[string]string
// @Router       /stats [post]
func (h *StatsHandler) Record(c echo.Context) error {
	var req recordStatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	key := c.Request().Header.Get(HeaderIdempotencyKey)
	res, err := h.service.Record(c.Request().Context(), ports.RecordStatInput{
		PlayerID:       req.PlayerID,
		PlayerName:     req.PlayerName,
		Jumps:          *req.Jumps,
		PipesPassed:    *req.PipesPassed,
		GameMode:       req.GameMode,
		IdempotencyKey: key,
	})
	if err != nil {
		return err
	}

	if res.Replayed {
		metrics.StatsDedupTotal.WithLabelValues("hit").Inc()
		return c.JSON(http.StatusOK, res.Stat)
	}
	if key != "" {
		metrics.StatsDedupTotal.WithLabelValues("miss").Inc()
	}
	return c.JSON(http.StatusCreated, res.Stat)
}

// List returns the latest stats, newest first.
//
// @Summary      Latest stats
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Stat
// @Failure      401  {object}  map[string]string
// @Router       /stats [get]
func (h *StatsHandler) List(c echo.Context) error {
	stats, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Recent returns the most recent stat.
//
// @Summary      Most recent stat
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Stat
// @Failure      404  {object}  map[string]string
// @Router       /stats/recent [get]
func (h *StatsHandler) Recent(c echo.Context) error {
	stat, err := h.service.Recent(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stat)
}

// DailyJumps returns total jumps per UTC day.
//
// @Summary      Jumps per day
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.DailyJumps
// @Router       /stats/daily-jumps [get]
func (h *StatsHandler) DailyJumps(c echo.Context) error {
	days, err := h.service.DailyJumps(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, days)
}
