package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/flappyv/platform/internal/api"
	"github.com/flappyv/platform/internal/api/handler"
	"github.com/flappyv/platform/internal/core/service"
	mongodb "github.com/flappyv/platform/internal/infrastructure/db/mongo"
	"github.com/flappyv/platform/internal/pkg/config"
	"github.com/flappyv/platform/internal/pkg/lifecycle"
	"github.com/flappyv/platform/internal/pkg/token"
)

func connectUsers(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*mongodb.UserRepository, func(context.Context) error, func(context.Context) error, error) {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  connectTimeout,
		Attempts: cfg.ConnectAttempts,
	}, log)
	if err != nil {
		return nil, nil, nil, err
	}
	users := mongodb.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, nil, fmt.Errorf("user indexes: %w", err)
	}
	ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
	return users, ping, client.Disconnect, nil
}

func newAuthService(cfg *config.Config, users *mongodb.UserRepository, auth *token.Authenticator, log zerolog.Logger) (*service.AuthService, error) {
	issuer, err := token.NewIssuer(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("credential issuer: %w", err)
	}
	return service.NewAuthService(users, issuer, auth, cfg.TokenTTL, cfg.RememberTTL, log), nil
}

func buildAuth(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Service, error) {
	lc := lifecycle.New("auth")
	deps, auth, err := baseDeps(cfg, lc, log)
	if err != nil {
		return nil, err
	}

	users, ping, disconnect, err := connectUsers(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	deps.Readiness = map[string]handler.Pinger{"mongo": ping}

	svc, err := newAuthService(cfg, users, auth, log)
	if err != nil {
		_ = disconnect(ctx)
		return nil, err
	}

	e, err := api.NewAuthRouter(deps, handler.NewAuthHandler(svc))
	if err != nil {
		_ = disconnect(ctx)
		return nil, err
	}

	s := &Service{name: "auth", echo: e, lc: lc, log: log, shutdownTimeout: cfg.ShutdownTimeout}
	s.onShutdown("mongo", disconnect)
	return s, nil
}

// SetAdmin grants or revokes the admin flag of the user registered under
// email. The change applies from the user's next login.
func SetAdmin(ctx context.Context, cfg *config.Config, log zerolog.Logger, email string, admin bool) error {
	users, _, disconnect, err := connectUsers(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = disconnect(context.Background()) }()

	lc := lifecycle.New("admin")
	auth, err := credentials(cfg, lc)
	if err != nil {
		return err
	}
	svc, err := newAuthService(cfg, users, auth, log)
	if err != nil {
		return err
	}
	return svc.SetAdmin(ctx, email, admin)
}
