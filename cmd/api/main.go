package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/viralforge/tool-feedback-portal/internal/app/bootstrap"
)

func main() {
	configPath := os.Getenv("PORTAL_CONFIG")
	if configPath == "" {
		configPath = "configs/default.yaml"
	}
	ctx := context.Background()
	runtime, err := bootstrap.NewRuntime(ctx, configPath)
	if err != nil {
		slog.Error("bootstrap api runtime", "config", configPath, "error", err)
		os.Exit(1)
	}
	if err := runtime.RunAPI(ctx); err != nil {
		slog.Error("run api", "error", err)
		os.Exit(1)
	}
}
