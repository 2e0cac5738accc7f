package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/katilkim/katilkim-server/app"
	"github.com/katilkim/katilkim-server/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		application.Logger.Error("Application failed", "error", err)
	}

	application.Shutdown(context.Background())
	application.Logger.Info("Application shut down gracefully")
}
