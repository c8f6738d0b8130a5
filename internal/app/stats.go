package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/api"
	"github.com/flappyv/platform/internal/api/handler"
	"github.com/flappyv/platform/internal/api/metrics"
	"github.com/flappyv/platform/internal/core/domain"
	"github.com/flappyv/platform/internal/core/service"
	mongodb "github.com/flappyv/platform/internal/infrastructure/db/mongo"
	redisdb "github.com/flappyv/platform/internal/infrastructure/db/redis"
	"github.com/flappyv/platform/internal/pkg/config"
	"github.com/flappyv/platform/internal/pkg/lifecycle"
)

func buildStats(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Service, error) {
	lc := lifecycle.New("stats", lifecycle.WithShutdownOnStop())
	deps, _, err := baseDeps(cfg, lc, log)
	if err != nil {
		return nil, err
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  connectTimeout,
		Attempts: cfg.ConnectAttempts,
	}, log)
	if err != nil {
		return nil, err
	}
	stats := mongodb.NewStatRepository(db)
	if err := stats.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("stat indexes: %w", err)
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Timeout:  connectTimeout,
		Attempts: cfg.ConnectAttempts,
	}, log)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	deps.Readiness = map[string]handler.Pinger{
		"mongo": func(ctx context.Context) error { return client.Ping(ctx, nil) },
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	recorded := func(s *domain.Stat) {
		metrics.StatsRecordedTotal.WithLabelValues(s.GameMode).Inc()
	}
	svc := service.NewStatService(stats, redisdb.NewStatDedup(rdb), recorded, log)

	e, err := api.NewStatsRouter(deps, handler.NewStatsHandler(svc))
	if err != nil {
		_ = rdb.Close()
		_ = client.Disconnect(ctx)
		return nil, err
	}

	s := &Service{name: "stats", echo: e, lc: lc, log: log, shutdownTimeout: cfg.ShutdownTimeout}
	s.onShutdown("redis", func(context.Context) error { return rdb.Close() })
	s.onShutdown("mongo", client.Disconnect)
	return s, nil
}
