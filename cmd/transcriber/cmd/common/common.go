// Package common holds the flags and setup shared by every command.
package common

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"audio-transcriber/internal/app/logger"
	"audio-transcriber/internal/config"
)

// Persistent flags, bound by the root command.
var (
	ConfigPath string
	Verbose    bool
)

// LoadConfig reads .env, then the config file, and applies --verbose. The
// caller applies its own flag overrides and then calls Resolve.
func LoadConfig() (*config.Config, error) {
	if _, err := config.LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		return nil, err
	}
	if Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// NewLogger builds the zap logger described by cfg.Log.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewLogger(cfg.Log.Level, cfg.Log.Development)
}

// SignalContext is canceled on SIGINT or SIGTERM so open model handles are
// released before exit.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
