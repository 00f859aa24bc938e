package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ordersvc/cmd"
	"ordersvc/config"
	"ordersvc/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Worker startup failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := parseConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	if !cfg.Worker.Enabled {
		logger.Info("Worker is disabled by config; exiting")
		return nil
	}
	if cfg.Database.Type != "mysql" {
		// In-memory repositories are private to one process.
		logger.Warn("Standalone worker needs database.type=mysql; use worker.embedded instead",
			zap.String("database", cfg.Database.Type))
		return nil
	}

	infra, err := cmd.NewInfrastructure(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	defer infra.Close()

	runners, err := cmd.NewRunners(cfg, infra)
	if err != nil {
		return fmt.Errorf("failed to create runners: %w", err)
	}
	if len(runners) == 0 {
		logger.Info("Nothing to run; exiting")
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cmd.RunAll(ctx, runners); err != nil {
		return fmt.Errorf("worker exited with error: %w", err)
	}
	logger.Info("Worker stopped")
	return nil
}

func parseConfigPath() string {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()
	return configPath
}
