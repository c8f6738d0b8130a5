package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/api"
	"github.com/flappyv/platform/internal/api/handler"
	"github.com/flappyv/platform/internal/core/service"
	"github.com/flappyv/platform/internal/infrastructure/db/postgres"
	"github.com/flappyv/platform/internal/infrastructure/uploads"
	"github.com/flappyv/platform/internal/pkg/config"
	"github.com/flappyv/platform/internal/pkg/lifecycle"
)

func buildImage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Service, error) {
	lc := lifecycle.New("image", lifecycle.WithShutdownOnStop())
	deps, _, err := baseDeps(cfg, lc, log)
	if err != nil {
		return nil, err
	}

	dir, err := uploads.New(cfg.UploadsDir)
	if err != nil {
		return nil, err
	}

	pool, err := postgres.Connect(ctx, postgres.Config{
		DSN:      cfg.Postgres.DSN,
		Timeout:  connectTimeout,
		Attempts: cfg.ConnectAttempts,
	}, log)
	if err != nil {
		return nil, err
	}
	skins := postgres.NewSkinRepository(pool)
	if err := skins.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("skin schema: %w", err)
	}
	deps.Readiness = map[string]handler.Pinger{"postgres": pool.Ping}

	svc := service.NewSkinService(skins, dir, log)
	e, err := api.NewImageRouter(deps, handler.NewSkinHandler(svc, dir.Root()))
	if err != nil {
		pool.Close()
		return nil, err
	}

	s := &Service{name: "image", echo: e, lc: lc, log: log, shutdownTimeout: cfg.ShutdownTimeout}
	s.onShutdown("postgres", func(context.Context) error {
		pool.Close()
		return nil
	})
	return s, nil
}
