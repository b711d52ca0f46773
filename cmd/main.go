package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mansoorceksport/fitlog/internal/config"
	"github.com/mansoorceksport/fitlog/internal/infrastructure/wger"
	"github.com/mansoorceksport/fitlog/internal/logging"
	"github.com/mansoorceksport/fitlog/internal/server"
	"github.com/mansoorceksport/fitlog/internal/telemetry"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logging.Setup(logging.SetupParams{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	logrus.Info("Starting FitLog API...")

	ctx := context.Background()

	otelProvider, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.OTEL.ServiceName,
		ServiceVersion: cfg.OTEL.ServiceVersion,
		Environment:    cfg.OTEL.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
		OTLPHeaders:    telemetry.BasicAuthHeaders(cfg.OTEL.InstanceID, cfg.OTEL.Token),
		Enabled:        cfg.OTEL.Enabled,
	})
	if err != nil {
		logrus.WithError(err).Warn("Failed to initialize OpenTelemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = otelProvider.Shutdown(shutdownCtx)
	}()

	store, closeStore, err := server.OpenStore(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to open %s store: %v", cfg.Store.Backend, err)
	}
	defer closeStore()

	catalog := wger.NewClient(wger.Config{
		BaseURL:  cfg.Catalog.BaseURL,
		Language: cfg.Catalog.Language,
		Limit:    cfg.Catalog.Limit,
		Timeout:  cfg.Catalog.Timeout,
	})

	app := server.NewApp(server.AppDependencies{
		Config:  cfg,
		Store:   store,
		Catalog: catalog,
		Files:   server.OpenFiles(ctx, cfg),
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logrus.Info("Shutting down gracefully...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("Error during shutdown")
		}
	}()

	logrus.Infof("Server starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
