/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave accounting server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (environment, then flags)
  2. Initialize SQLite store
  3. Load the leave policy (POLICY_FILE or the default policy)
  4. Create API handler and router
  5. Start the data-quality scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override environment):
  -port    HTTP server port (PORT, default: 8080)
  -db      SQLite database path (DB_PATH, default: ./data/leave.db)
           Use ":memory:" for in-memory database
  -policy  Policy JSON file (POLICY_FILE, default: built-in policy)

ENVIRONMENT:
  LOG_LEVEL              logrus level (default: info)
  DATA_QUALITY_SCHEDULE  cron spec or "off" (default: @daily)
  CORS_ORIGINS           comma-separated origins (default: *)
  SHUTDOWN_TIMEOUT       graceful shutdown window (default: 10s)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (SHUTDOWN_TIMEOUT)
  3. Stop the scheduler
  4. Close database connection

SEE ALSO:
  - config/config.go: Environment configuration
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/config"
	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store/sqlite"
)

func main() {
	cfg := config.Load()

	// Flags
	flag.StringVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.StringVar(&cfg.PolicyFile, "policy", cfg.PolicyFile, "Policy JSON file")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)

	// Initialize store
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			logger.WithError(err).Fatal("failed to create database directory")
		}
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Policy
	policy := leave.DefaultPolicy()
	if cfg.PolicyFile != "" {
		policy, err = factory.NewPolicyFactory().LoadFile(cfg.PolicyFile)
		if err != nil {
			logger.WithError(err).WithField("policy_file", cfg.PolicyFile).Fatal("failed to load policy")
		}
		logger.WithField("policy_file", cfg.PolicyFile).Info("policy loaded")
	}

	handler := api.NewHandler(store, policy, logger)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	scheduler := api.NewDataQualityScheduler(store, policy, logger)
	scheduler.Schedule = cfg.DataQualitySchedule
	if err := scheduler.Start(); err != nil {
		logger.WithError(err).Fatal("failed to start data-quality scheduler")
	}
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.WithField("port", cfg.Port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}

	logger.Info("server stopped")
}
