package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	api "taskapp/internal/adapter/http"
	"taskapp/internal/adapter/telemetry"
	"taskapp/pkg/config"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()

	logger, err := config.NewAppLogger("taskapp")

	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer logger.Sync()

	tel, err := telemetry.Init(telemetry.Config{
		ServiceName:    "taskapp",
		ServiceVersion: "1.0.0",
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})

	if err != nil {
		log.Fatal("Failed to initialize telemetry:", err)
	}

	defer tel.Shutdown(ctx)

	metrics := telemetry.NewAppMetrics(tel.PrometheusRegistry)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		api.StartServerWithConfig(metrics, logger, cfg)
	}()

	<-c
	logger.Logger.Info("Shutting down gracefully...")
}
