// Package main is the entry point for the Helios demo viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/helioscene/helios/internal/config"
	"github.com/helioscene/helios/internal/logger"
	"github.com/helioscene/helios/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if config.WriteConfigRequested() {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Write config error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Helios Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
