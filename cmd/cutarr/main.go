package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cutarr/cutarr/internal/api"
	"github.com/cutarr/cutarr/internal/config"
	"github.com/cutarr/cutarr/internal/controllers"
	"github.com/cutarr/cutarr/internal/models"
	"github.com/cutarr/cutarr/internal/scheduler"
	"github.com/cutarr/cutarr/internal/services/analysis"
	"github.com/cutarr/cutarr/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting Cutarr")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Initialize services
	var analysisClient *analysis.Client
	if cfg.AnalysisURL != "" {
		analysisClient, err = analysis.NewClient(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize analysis client: %w", err)
		}
		logger.Info("Analysis client initialized")
	} else {
		logger.Info("Analysis service not configured, using locally ingested cuts")
	}

	// 5. Initialize controllers
	timelineCtrl := controllers.NewTimelineController(db, cfg, logger)
	cutCtrl := controllers.NewCutController(db, analysisClient, timelineCtrl, logger)
	logger.Info("Controllers initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(timelineCtrl, cutCtrl, cfg, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, db, timelineCtrl, cutCtrl, logger)

	// Start server in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Cutarr is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("Cutarr stopped")
	return nil
}
