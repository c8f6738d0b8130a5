package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/flappyv/platform/docs"
	"github.com/flappyv/platform/internal/api/handler"
	"github.com/flappyv/platform/internal/api/middleware"
	"github.com/flappyv/platform/internal/pkg/lifecycle"
)

// Deps are the pieces every service router needs.
type Deps struct {
	Log           zerolog.Logger
	Lifecycle     *lifecycle.Controller
	Authenticator middleware.Authenticator
	CORSOrigins   []string
	Readiness     map[string]handler.Pinger
	// Registry receives the HTTP metrics. Nil uses a private registry, so
	// several routers can coexist in one process.
	Registry *prometheus.Registry
}

// Routes served without a credential on every service.
var commonPublic = []string{
	"GET /health",
	"GET /health/ready",
	"GET /metrics",
	"GET /swagger/*",
}

// Path prefixes served while the service is logically stopped.
var runStateExempt = []string{"/health", "/metrics", "/api/service"}

// newBase builds the Echo instance with global middleware, the health and
// metrics probes, and the admin control surface. public lists the
// service-specific routes that skip authentication.
func newBase(d Deps, public ...string) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	promMW, err := echoprometheus.MiddlewareConfig{
		Namespace:  "flappy",
		Subsystem:  d.Lifecycle.Name(),
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}.ToMiddleware()
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, handler.HeaderIdempotencyKey},
		AllowCredentials: true,
	}))
	e.Use(promMW)
	e.Use(middleware.RequireRunning(d.Lifecycle, runStateExempt...))
	e.Use(middleware.Auth(d.Authenticator, middleware.Public(append(commonPublic, public...)...)))

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler(d.Lifecycle.Status).Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Readiness).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Control surface (admin only) ---
	control := handler.NewControlHandler(d.Lifecycle, d.Log)
	svc := e.Group("/api/service", middleware.RequireAdmin())
	svc.GET("/status", control.Status)
	svc.POST("/start", control.Start)
	svc.POST("/stop", control.Stop)

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			} else if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// NewAuthRouter serves registration, login and credential checks.
func NewAuthRouter(d Deps, auth *handler.AuthHandler) (*echo.Echo, error) {
	e, err := newBase(d,
		"POST /api/auth/register",
		"POST /api/auth/login",
		"GET /api/auth/check",
	)
	if err != nil {
		return nil, err
	}

	g := e.Group("/api/auth")
	g.POST("/register", auth.Register)
	g.POST("/login", auth.Login)
	g.GET("/check", auth.Check)
	g.GET("/me", auth.Me)
	return e, nil
}

// NewGameRouter serves the authoritative game settings and the live channel.
func NewGameRouter(d Deps, settings *handler.SettingsHandler, live echo.HandlerFunc) (*echo.Echo, error) {
	e, err := newBase(d,
		"GET /game-settings",
		"GET /ws",
	)
	if err != nil {
		return nil, err
	}

	e.GET("/game-settings", settings.Get)
	e.POST("/game-settings", settings.Update)
	e.GET("/ws", live)
	return e, nil
}

// NewImageRouter serves skin uploads.
func NewImageRouter(d Deps, skins *handler.SkinHandler) (*echo.Echo, error) {
	e, err := newBase(d,
		"GET /current-skin",
		"GET /uploads/:filename",
	)
	if err != nil {
		return nil, err
	}

	e.POST("/images/upload", skins.Upload, echomiddleware.BodyLimit("6M"))
	e.GET("/current-skin", skins.Current)
	e.GET("/uploads/:filename", skins.File)
	return e, nil
}

// NewStatsRouter serves game statistics. Every stats route is protected.
func NewStatsRouter(d Deps, stats *handler.StatsHandler) (*echo.Echo, error) {
	e, err := newBase(d)
	if err != nil {
		return nil, err
	}

	g := e.Group("/stats")
	g.GET("", stats.List)
	g.POST("", stats.Record)
	g.GET("/recent", stats.Recent)
	g.GET("/daily-jumps", stats.DailyJumps)
	return e, nil
}
