// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/newthinker/statarb/internal/api/handler"
	"github.com/newthinker/statarb/internal/api/job"
	"github.com/newthinker/statarb/internal/api/middleware"
	"github.com/newthinker/statarb/internal/backtest"
	"github.com/newthinker/statarb/internal/metrics"
)

const sweepInterval = 10 * time.Minute

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	JobTTL      time.Duration
	MaxJobs     int
	MetricsPath string
	Defaults    backtest.Params
}

// Server is the HTTP surface for pair backtests.
type Server struct {
	httpServer *http.Server
	jobStore   *job.Store
	logger     *zap.Logger
	done       chan struct{}
}

// NewServer creates a new HTTP server around a backtester.
func NewServer(cfg Config, backtester *backtest.Backtester, registry *metrics.Registry, logger *zap.Logger) *Server {
	jobStore := job.NewStore(cfg.MaxJobs, cfg.JobTTL)
	bt := handler.NewBacktestHandler(jobStore, backtester, cfg.Defaults, registry, logger)

	mux := http.NewServeMux()

	auth := middleware.APIKeyAuth(cfg.APIKey)
	mux.Handle("POST /api/backtest", auth(http.HandlerFunc(bt.Create)))
	mux.Handle("GET /api/backtest/{id}", auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bt.GetStatus(w, r, r.PathValue("id"))
	})))
	mux.Handle("GET /api/diagnose", auth(http.HandlerFunc(bt.Diagnose)))
	mux.HandleFunc("GET /api/health", handleHealth)

	// Empty MetricsPath disables the exposition endpoint; metrics are
	// still collected either way.
	if cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	var root http.Handler = mux
	root = metrics.HTTPMiddleware(registry)(root)
	root = metrics.LoggingMiddleware(logger)(root)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      root,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		jobStore: jobStore,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Handler exposes the composed handler chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server and the job sweeper. It blocks until
// the server is shut down.
func (s *Server) Start() error {
	go s.sweepLoop()

	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.jobStore.Sweep(); n > 0 {
				s.logger.Debug("swept finished jobs", zap.Int("removed", n))
			}
		case <-s.done:
			return
		}
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	close(s.done)
	return s.httpServer.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
