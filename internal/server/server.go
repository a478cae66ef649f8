// Package server is the HTTP API behind the web configurator.
//
// The browser keeps no rules of its own: every click is sent here, the engine
// adjusts the configuration in soft mode and the session store keeps the
// result together with an audit trail of what was rewritten and why. Export
// runs the same strict validation as the CLI, so a configuration the web
// produces is one the CLI accepts.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/harrison/stackforge/internal/engine"
	"github.com/harrison/stackforge/internal/logger"
	"github.com/harrison/stackforge/internal/session"
	"github.com/harrison/stackforge/internal/stack"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests
const ShutdownTimeout = 5 * time.Second

// Server serves the configurator API
type Server struct {
	engine   *engine.Engine
	store    *session.Store
	defaults stack.State
	log      logger.Logger
	router   *gin.Engine
	now      func() time.Time
}

// New builds the API over an engine and a session store. defaults is the
// state new sessions start from; nil means the built-in defaults.
func New(eng *engine.Engine, store *session.Store, defaults stack.State, log logger.Logger) *Server {
	if defaults == nil {
		defaults = stack.Defaults()
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Server{
		engine:   eng,
		store:    store,
		defaults: defaults.Clone(),
		log:      log,
		now:      time.Now,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), metricsMiddleware(), requestLogger(s.log))

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.GET("/catalog", s.handleCatalog)
	v1.POST("/validate", s.handleValidate)
	v1.POST("/adjust", s.handleAdjust)
	v1.POST("/options", s.handleOptions)

	sessions := v1.Group("/sessions")
	sessions.POST("", s.handleCreateSession)
	sessions.GET("/:id", s.handleGetSession)
	sessions.POST("/:id/select", s.handleSelect)
	sessions.GET("/:id/export", s.handleExport)

	return r
}

// Handler returns the API as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := s.refreshSessionGauge(ctx); err != nil {
		s.log.LogWarn(fmt.Sprintf("session count unavailable: %v", err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.LogInfo(fmt.Sprintf("configurator API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.log.LogInfo("shutting down configurator API")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// PruneSessions deletes sessions idle for longer than keep
func (s *Server) PruneSessions(ctx context.Context, keep time.Duration) (int64, error) {
	n, err := s.store.Prune(ctx, s.now().Add(-keep))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.LogInfo(fmt.Sprintf("pruned %d idle session(s)", n))
	}
	return n, s.refreshSessionGauge(ctx)
}

func (s *Server) refreshSessionGauge(ctx context.Context) error {
	n, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	sessionsStored.Set(float64(n))
	return nil
}

// requestLogger logs one debug line per request through the run logger
func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogDebug(fmt.Sprintf("%s %s %d %s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond)))
	}
}
