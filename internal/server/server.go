// Package server exposes the responder over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voice-assistant/internal/common/logger"
	"voice-assistant/internal/common/observability"
	"voice-assistant/internal/conversation"
	"voice-assistant/internal/speech"
)

const (
	MaxMessageLength = 2000
	MaxAudioBytes    = 10 * 1024 * 1024
)

// Checker reports whether a dependency is ready to serve.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

type Deps struct {
	Sessions *conversation.Store
	// Transcriber is optional; without it the voice endpoint answers 503.
	Transcriber speech.Transcriber
	// Checks are run by /ready, keyed by dependency name.
	Checks        map[string]Checker
	Observability *observability.Observability
}

type Server struct {
	echo   *echo.Echo
	deps   Deps
	logger logger.Logger
}

func New(deps Deps, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, deps: deps, logger: log}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(s.requestLogger)

	e.GET("/health", s.health)
	e.GET("/ready", s.ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.POST("/chat", s.chat, middleware.BodyLimit("64K"))
	api.POST("/voice", s.voice, middleware.BodyLimit("10M"))
	api.GET("/sessions/:id", s.history)
	api.DELETE("/sessions/:id", s.deleteSession)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks until the server stops. A graceful shutdown is not reported as an error.
func (s *Server) Start(address string) error {
	s.logger.Info("http server listening", map[string]interface{}{"address": address})
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		fields := map[string]interface{}{
			"method":    c.Request().Method,
			"path":      c.Path(),
			"status":    c.Response().Status,
			"requestId": c.Response().Header().Get(echo.HeaderXRequestID),
			"duration":  time.Since(start).Milliseconds(),
		}
		if c.Response().Status >= http.StatusInternalServerError {
			s.logger.Error("request failed", fields)
		} else {
			s.logger.Debug("request served", fields)
		}
		return nil
	}
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "voice-assistant",
	})
}

func (s *Server) ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.deps.Checks))
	for name, check := range s.deps.Checks {
		if err := check.HealthCheck(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	return c.JSON(status, map[string]interface{}{
		"status": state,
		"checks": checks,
	})
}
