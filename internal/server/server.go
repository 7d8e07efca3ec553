// Package server implements the collaborator HTTP server: the chat
// completion endpoint, the event log sink, the broadcast relay and the
// static asset server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/diogo/pulsechat/internal/config"
	"github.com/diogo/pulsechat/internal/models"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Server is the collaborator HTTP server.
type Server struct {
	cfg      config.ServerConfig
	echo     *echo.Echo
	upstream Upstream
	hub      *Hub
	metrics  *Metrics
	eventLog *EventLog
	logger   *slog.Logger
	pick     func(n int) int
}

// Option configures a Server
type Option func(*Server)

// WithUpstream overrides the completion upstream. Without one (and without
// an API key) /api/chat answers with canned replies.
func WithUpstream(u Upstream) Option {
	return func(s *Server) {
		s.upstream = u
	}
}

// WithLogger sets the server logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPicker sets how a canned reply is chosen; pick(n) returns an index in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(s *Server) {
		if pick != nil {
			s.pick = pick
		}
	}
}

// New creates a server. Production mode requires the serve directory to exist.
func New(cfg config.ServerConfig, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: slog.Default(),
		pick:   rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	if cfg.Production {
		info, err := os.Stat(cfg.ServeDir)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("production mode enabled but serve directory does not exist: %s", cfg.ServeDir)
		}
	}

	if s.upstream == nil && cfg.APIKey != "" {
		s.upstream = NewOpenAIUpstream(cfg)
	}

	eventLog, err := NewEventLog(filepath.Join(cfg.LogDir, "events.jsonl"))
	if err != nil {
		return nil, err
	}
	s.eventLog = eventLog
	s.metrics = NewMetrics()
	if cfg.WebSocket {
		s.hub = NewHub(s.logger, s.metrics)
	}

	s.echo = s.newEcho()
	return s, nil
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency)
			return nil
		},
	}))

	e.POST(models.EndpointChat, s.handleChat)
	e.POST(models.EndpointLog, s.handleLog)
	e.POST(models.EndpointMessage, s.handleMessage)
	if s.hub != nil {
		e.GET(models.EndpointRelay, s.hub.Handle)
	}
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	e.POST("/*", func(c echo.Context) error {
		return c.String(http.StatusNotFound, "Not found")
	})
	e.GET("/*", s.handleStatic)

	return e
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Hub returns the relay hub, or nil when websocket support is disabled.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.cfg.Production {
			s.logger.Info("serving static files", "dir", s.cfg.ServeDir)
		} else {
			s.logger.Info("development mode, static files served by Vite")
		}
		s.logger.Info("server running", "addr", s.cfg.Addr, "websocket", s.hub != nil)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error on %s: %w", s.cfg.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")
		if s.hub != nil {
			s.hub.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if cerr := s.eventLog.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
