package realtime

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/core/domain"
)

// EventConfigUpdated is the only event name emitted on the live channel.
const EventConfigUpdated = "configUpdated"

const writeTimeout = 5 * time.Second

// Event is the envelope written to observers.
type Event struct {
	Event   string              `json:"event"`
	Version uint64              `json:"version"`
	Data    domain.GameSettings `json:"data"`
}

func newEvent(s domain.SettingsSnapshot) Event {
	return Event{Event: EventConfigUpdated, Version: s.Version, Data: s.Settings}
}

// Handler upgrades GET /ws and streams settings snapshots until the peer
// goes away. Inbound messages are discarded.
type Handler struct {
	hub     *Hub
	current func() domain.SettingsSnapshot
	origins []string
	log     zerolog.Logger
}

func NewHandler(hub *Hub, current func() domain.SettingsSnapshot, originPatterns []string, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, current: current, origins: originPatterns, log: log}
}

// Serve godoc
// @Summary      Live game settings
// @Description  WebSocket stream of configUpdated events, one on connect and one per write
// @Tags         game-settings
// @Success      101
// @Router       /ws [get]
func (h *Handler) Serve(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		// Accept has already written the response.
		h.log.Debug().Err(err).Msg("websocket accept failed")
		return nil
	}
	defer conn.CloseNow()

	sub, err := h.hub.Subscribe(h.current)
	if err != nil {
		_ = conn.Close(websocket.StatusGoingAway, "shutting down")
		return nil
	}
	defer sub.Close()

	// CloseRead discards inbound frames and cancels ctx when the peer leaves.
	ctx := conn.CloseRead(context.Background())

	var sent uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sub.Done():
			_ = conn.Close(websocket.StatusGoingAway, "shutting down")
			return nil
		case snap := <-sub.C():
			if snap.Version <= sent {
				continue
			}
			if err := h.write(ctx, conn, snap); err != nil {
				if !errors.Is(err, context.Canceled) {
					h.log.Debug().Err(err).Str("observer_id", sub.ID).Msg("websocket write failed")
				}
				return nil
			}
			sent = snap.Version
		}
	}
}

func (h *Handler) write(ctx context.Context, conn *websocket.Conn, snap domain.SettingsSnapshot) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, newEvent(snap))
}

// OriginPatterns converts CORS origins such as "http://localhost:3000" into
// the host patterns websocket.AcceptOptions expects.
func OriginPatterns(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
			continue
		}
		out = append(out, o)
	}
	return out
}
