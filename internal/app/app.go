// Package app composes each flappy service from configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/flappyv/platform/internal/api"
	"github.com/flappyv/platform/internal/pkg/config"
	"github.com/flappyv/platform/internal/pkg/lifecycle"
	"github.com/flappyv/platform/internal/pkg/token"
)

const connectTimeout = 10 * time.Second

// Names of the services that can be launched.
var Services = []string{"auth", "game", "image", "stats"}

type closer struct {
	name string
	fn   func(context.Context) error
}

// Service is one composed, runnable service instance.
type Service struct {
	name            string
	echo            *echo.Echo
	lc              *lifecycle.Controller
	log             zerolog.Logger
	shutdownTimeout time.Duration
	// closers run in order once the listener has stopped.
	closers []closer
}

func (s *Service) Name() string { return s.name }

func (s *Service) Lifecycle() *lifecycle.Controller { return s.lc }

func (s *Service) onShutdown(name string, fn func(context.Context) error) {
	s.closers = append(s.closers, closer{name: name, fn: fn})
}

// Build composes the named service. Every external dependency is connected
// before Build returns; failure to reach one is an error.
func Build(ctx context.Context, name string, cfg *config.Config, log zerolog.Logger) (*Service, error) {
	switch name {
	case "auth":
		return buildAuth(ctx, cfg, log)
	case "game":
		return buildGame(ctx, cfg, log)
	case "image":
		return buildImage(ctx, cfg, log)
	case "stats":
		return buildStats(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown service %q", name)
	}
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM arrives, or an operator
// stop requests a shutdown. The listener drains first, then the closers run.
func (s *Service) Run(ctx context.Context, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info().Str("addr", addr).Msg("service listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", s.name, err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
			s.log.Info().Msg("shutdown signal received")
		case <-s.lc.StopRequested():
			s.log.Info().Msg("shutdown requested by operator")
		}
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Service) shutdown() error {
	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := s.echo.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	for _, c := range s.closers {
		if err := c.fn(ctx); err != nil {
			s.log.Error().Err(err).Str("resource", c.name).Msg("close failed")
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
			continue
		}
		s.log.Info().Str("resource", c.name).Msg("closed")
	}
	return errors.Join(errs...)
}

// credentials builds the verifying half shared by every service. The guard
// is bound to this instance's generation.
func credentials(cfg *config.Config, lc *lifecycle.Controller) (*token.Authenticator, error) {
	verifier, err := token.NewVerifier(cfg.JWTSecret, token.WithLeeway(cfg.TokenLeeway))
	if err != nil {
		return nil, fmt.Errorf("credential verifier: %w", err)
	}
	return token.NewAuthenticator(verifier, token.NewGuard(lc.Generation())), nil
}

func baseDeps(cfg *config.Config, lc *lifecycle.Controller, log zerolog.Logger) (api.Deps, *token.Authenticator, error) {
	auth, err := credentials(cfg, lc)
	if err != nil {
		return api.Deps{}, nil, err
	}
	return api.Deps{
		Log:           log,
		Lifecycle:     lc,
		Authenticator: auth,
		CORSOrigins:   cfg.CORSOrigins,
	}, auth, nil
}
