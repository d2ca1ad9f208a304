// Package server exposes the mastery report and adaptive session services
// over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/basil51/ai-school-sub003/internal/config"
	"github.com/basil51/ai-school-sub003/internal/events"
	"github.com/basil51/ai-school-sub003/internal/logger"
	"github.com/basil51/ai-school-sub003/internal/metrics"
	"github.com/basil51/ai-school-sub003/internal/report"
	"github.com/basil51/ai-school-sub003/internal/session"
)

// Reports is the mastery report service. report.Service satisfies it.
type Reports interface {
	Get(ctx context.Context, q report.Query) (*report.Report, error)
	Ingest(ctx context.Context, a events.AttemptEvent, timeSpent int) (*report.Report, error)
}

// Sessions is the adaptive session service. session.Manager satisfies it.
type Sessions interface {
	Start(ctx context.Context, studentID, assessmentID string) (*session.Step, error)
	Answer(ctx context.Context, sessionID string, in session.AnswerInput) (*session.Step, error)
	Hint(ctx context.Context, sessionID, questionID string) (*session.Step, error)
	Next(ctx context.Context, sessionID string) (*session.Step, error)
	Complete(ctx context.Context, sessionID string) (*session.Step, error)
	Get(ctx context.Context, sessionID string) (*session.Step, error)
	Active(ctx context.Context) ([]session.View, error)
}

// Pinger reports backing store health. store.Store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps wires the HTTP handlers. Health and Metrics may be nil.
type Deps struct {
	Reports  Reports
	Sessions Sessions
	Health   Pinger
	Log      *logger.Logger
	Metrics  *metrics.Metrics
}

// Server is the HTTP API.
type Server struct {
	engine          *gin.Engine
	http            *http.Server
	log             *logger.Logger
	shutdownTimeout time.Duration
}

// New builds the router and the underlying http.Server.
func New(cfg config.ServerConfig, deps Deps) *Server {
	log := logger.OrNop(deps.Log)
	h := &handlers{reports: deps.Reports, sessions: deps.Sessions, health: deps.Health, log: log}

	r := gin.New()
	r.Use(recovery(log))
	r.Use(requestLog(log))
	r.Use(observe(deps.Metrics))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.GET("/health", h.healthCheck)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/mastery", h.getMastery)
		api.POST("/mastery", h.postMastery)

		s := api.Group("/adaptive-session")
		s.POST("/start", h.startSession)
		s.POST("/answer", h.answer)
		s.POST("/hint", h.hint)
		s.POST("/next", h.next)
		s.POST("/complete", h.complete)
		s.GET("", h.activeSessions)
		s.GET("/:id", h.getSession)
	}

	return &Server{
		engine: r,
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log:             log,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.Info("http server listening", "addr", s.http.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server", "timeout", s.shutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
