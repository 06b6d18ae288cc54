package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/osusu-club/osusu-service/app"
	"github.com/osusu-club/osusu-service/config"
	"github.com/osusu-club/osusu-service/internal/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	obs, err := observability.Init(ctx, config.ToObsConfig(cfg))
	if err != nil {
		log.Fatalf("Failed to initialize observability: %v", err)
	}

	application, err := app.NewApp(ctx, cfg, obs)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		obs.Provider.Logger.Error("service exited with error", "error", err)
	}

	if err := application.Close(); err != nil {
		obs.Provider.Logger.Error("Error during shutdown", "error", err)
	}
}
