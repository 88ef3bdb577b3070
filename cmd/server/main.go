package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/logistics-erp/internal/config"
	"github.com/example/logistics-erp/internal/database"
	"github.com/example/logistics-erp/internal/events"
	"github.com/example/logistics-erp/internal/logger"
	"github.com/example/logistics-erp/internal/routes"
	"github.com/example/logistics-erp/internal/workers"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer appLogger.Sync() //nolint:errcheck

	db, err := database.Open(database.Options{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DatabaseURL,
		LogLevel: cfg.DBLogLevel,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("database init failed", zap.Error(err))
	}

	hub := events.NewHub(appLogger.Named("events"), 32)
	app := routes.NewApp(db, cfg, appLogger, hub)

	scheduler := workers.NewScheduler(appLogger.Named("workers"),
		workers.NewStatusReconciler(db, hub, appLogger.Named("reconciler"), cfg.ReconcileSchedule),
	)
	cronRunner, err := scheduler.Start()
	if err != nil {
		appLogger.Fatal("scheduler start failed", zap.Error(err))
	}

	go func() {
		appLogger.Info("starting server", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			appLogger.Fatal("fiber.Listen error", zap.Error(err))
		}
	}()

	// Wait for termination signal to exit gracefully
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	appLogger.Info("shutting down")

	<-cronRunner.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("server shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
