// Package main initializes and starts the steptrack HTTP server, setting
// up configuration, logging, the storage backend, services, and handlers.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/avelichka/steptrack/internal/config"
	"github.com/avelichka/steptrack/internal/db"
	"github.com/avelichka/steptrack/internal/logger"
	"github.com/avelichka/steptrack/internal/repository"
	"github.com/avelichka/steptrack/internal/server/handler/http"
	"github.com/avelichka/steptrack/internal/service"
	"github.com/avelichka/steptrack/internal/storage"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Select the storage backend: PostgreSQL when a DSN is configured,
	// the local file store otherwise.
	var kv storage.KV
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		kv = repository.NewPostgresKV(postgresDB)
		zapLogger.Info("using postgres store")
	} else {
		kv = storage.NewFileStore(options.StorageDir)
		zapLogger.Info("using local file store", zap.String("dir", options.StorageDir))
	}

	// Profile layer over the raw blob store.
	profiles := storage.NewProfileStore(kv)

	// Initialize business-logic services.
	dashboardService := service.NewDashboardService(profiles)
	teamService := service.NewTeamService(profiles)

	// Periodic JSON backups of the whole store, if configured.
	if options.SnapshotDir != "" {
		interval, err := time.ParseDuration(options.SnapshotInterval)
		if err != nil {
			zapLogger.Fatal("bad snapshot interval", zap.Error(err))
		}
		db.StartSnapshotWriter(context.Background(), teamService, options.SnapshotDir, interval, zapLogger)
	}

	// Create HTTP handlers for profile and team endpoints.
	profileHandler := &http.ProfileHandler{Service: dashboardService}
	teamHandler := &http.TeamHandler{Service: teamService}

	// Build the router with middleware and routes.
	router := http.NewRouter(profileHandler, teamHandler, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
