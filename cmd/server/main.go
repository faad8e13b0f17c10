package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/akeren/gatherly-web/config"
	"github.com/akeren/gatherly-web/domain"
	"github.com/akeren/gatherly-web/internal/log"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := log.NewLoggerWithJSONOutput()

	logger.Info("Gatherly web server initializing")

	appConfig, err := config.LoadApplicationConfiguration(logger, wantsAutoMigrate(os.Args[1:]))
	if err != nil {
		logger.Error("Failed to load application configuration", "error", err.Error())
		os.Exit(1)
	}

	if err := domain.SetupCoreDomain(appConfig); err != nil {
		logger.Error("Failed to set up domains", "error", err.Error())
		appConfig.Cleanup()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- appConfig.RouterService.RunHTTPServer()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err)
			appConfig.Cleanup()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received, shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := appConfig.RouterService.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		} else {
			logger.Info("HTTP server shut down gracefully")
		}
	}

	appConfig.Cleanup()
	logger.Info("Graceful shutdown completed")
}

func wantsAutoMigrate(args []string) bool {
	return slices.ContainsFunc(args, func(arg string) bool {
		arg = strings.ToLower(arg)
		return arg == "--auto-migrate" || arg == "-m"
	})
}
