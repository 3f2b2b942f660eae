package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"cinerate/internal/config"
	"cinerate/internal/logging"
	"cinerate/internal/server"
)

// Serve runs the rating API until ctx is cancelled or the process receives
// SIGINT/SIGTERM. It returns an error when the server cannot start.
func Serve(cmdCtx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if logger == nil {
		var err error
		logger, err = logging.NewFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	logConfigSnapshot(logger, cfg)

	stack, err := OpenStack(cfg, logger)
	if err != nil {
		logger.Error("open rating stack", logging.Error(err))
		return err
	}
	defer stack.Close()

	srv, err := server.New(cfg, stack.Gateway, stack.Cache, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	if err := srv.Start(signalCtx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	defer srv.Stop()

	pidPath := filepath.Join(cfg.Paths.DataDir, "cinerate.pid")
	if err := writePIDFile(pidPath); err != nil {
		logger.Warn("failed to write pid file",
			logging.String(logging.FieldEventType, "pid_file_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check data_dir permissions"),
			logging.String(logging.FieldImpact, "none; server keeps running"),
		)
	} else {
		defer os.Remove(pidPath)
	}

	<-signalCtx.Done()
	logger.Info("cinerate server shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("api_bind", cfg.Paths.APIBind),
		logging.String("data_dir", cfg.Paths.DataDir),
		logging.String("lookup_base_url", cfg.Lookup.BaseURL),
		logging.String("detail_base_url", cfg.Detail.BaseURL),
		logging.Bool("detail_default_key", strings.TrimSpace(cfg.Detail.APIKey) == "trilogy"),
		logging.String("cache_backend", cfg.Cache.Backend),
		logging.String("cache_path", cfg.Cache.Path),
	)
}
