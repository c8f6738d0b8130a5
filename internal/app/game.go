package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/api"
	"github.com/flappyv/platform/internal/api/handler"
	"github.com/flappyv/platform/internal/api/metrics"
	"github.com/flappyv/platform/internal/core/service"
	"github.com/flappyv/platform/internal/infrastructure/realtime"
	"github.com/flappyv/platform/internal/infrastructure/settingsfile"
	"github.com/flappyv/platform/internal/pkg/config"
	"github.com/flappyv/platform/internal/pkg/lifecycle"
)

func buildGame(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Service, error) {
	lc := lifecycle.New("game")
	deps, _, err := baseDeps(cfg, lc, log)
	if err != nil {
		return nil, err
	}

	hub := realtime.NewHub(log,
		realtime.WithObserverGauge(func(n int) { metrics.SettingsObservers.Set(float64(n)) }),
		realtime.WithDropCounter(metrics.SettingsBroadcastDroppedTotal.Inc),
	)
	store := service.NewSettingsStore(ctx, settingsfile.New(cfg.SettingsFile), hub, log)
	live := realtime.NewHandler(hub, store.Read, realtime.OriginPatterns(cfg.CORSOrigins), log)

	e, err := api.NewGameRouter(deps, handler.NewSettingsHandler(store), live.Serve)
	if err != nil {
		return nil, err
	}

	s := &Service{name: "game", echo: e, lc: lc, log: log, shutdownTimeout: cfg.ShutdownTimeout}
	// Hijacked websocket connections outlive the HTTP shutdown; ending the
	// subscriptions closes them.
	s.onShutdown("observers", func(context.Context) error {
		hub.Close()
		return nil
	})
	return s, nil
}
