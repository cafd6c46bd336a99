package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cutarr/cutarr/internal/api/handlers"
	"github.com/cutarr/cutarr/internal/api/middleware"
	"github.com/cutarr/cutarr/internal/config"
	"github.com/cutarr/cutarr/internal/controllers"
	"github.com/cutarr/cutarr/internal/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server       *http.Server
	db           *models.Database
	timelineCtrl *controllers.TimelineController
	cutCtrl      *controllers.CutController
	logger       *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, timelineCtrl *controllers.TimelineController, cutCtrl *controllers.CutController, logger *logrus.Logger) *Server {
	s := &Server{
		db:           db,
		timelineCtrl: timelineCtrl,
		cutCtrl:      cutCtrl,
		logger:       logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	// Health check
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	// Status endpoint
	statusHandler := handlers.NewStatusHandler(s.db, s.timelineCtrl, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	// Timeline document
	timelineHandler := handlers.NewTimelineHandler(s.timelineCtrl, s.logger)
	mux.HandleFunc("/api/timeline/{projectID}", timelineHandler.ServeHTTP)

	// Timeline actions and history
	actionsHandler := handlers.NewActionsHandler(s.timelineCtrl, s.logger)
	mux.HandleFunc("/api/timeline/{projectID}/actions", actionsHandler.ServeHTTP)
	mux.HandleFunc("/api/timeline/{projectID}/undo", actionsHandler.Undo)
	mux.HandleFunc("/api/timeline/{projectID}/redo", actionsHandler.Redo)

	// Export and summary
	exportHandler := handlers.NewExportHandler(s.timelineCtrl, s.logger)
	mux.HandleFunc("/api/timeline/{projectID}/export", exportHandler.ServeHTTP)
	summaryHandler := handlers.NewSummaryHandler(s.timelineCtrl, s.logger)
	mux.HandleFunc("/api/timeline/{projectID}/summary", summaryHandler.ServeHTTP)

	// Detected cuts
	cutsHandler := handlers.NewCutsHandler(s.db, s.cutCtrl, s.logger)
	mux.HandleFunc("/api/videos/{videoID}/cuts", cutsHandler.ServeHTTP)
	cutApplyHandler := handlers.NewCutApplyHandler(s.cutCtrl, s.logger)
	mux.HandleFunc("/api/timeline/{projectID}/cuts/apply", cutApplyHandler.ServeHTTP)

	// Analysis service webhook
	webhookHandler := handlers.NewWebhookHandler(s.cutCtrl, s.logger)
	mux.HandleFunc("/api/webhook/analysis", webhookHandler.ServeHTTP)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
