package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-client/internal/config"
	"github.com/spec-kit/ticket-client/internal/observability"
	"github.com/spec-kit/ticket-client/internal/stub"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	addr := pflag.String("addr", cfg.Stub.Addr(), "listen address")
	logLevel := pflag.String("log-level", cfg.Logger.Level, "log level (debug, info, warn, error)")
	logOTP := pflag.Bool("log-otp", cfg.Stub.LogOTP, "include issued OTPs in the notification log")
	pflag.Parse()
	cfg.Logger.Level = *logLevel
	cfg.Stub.LogOTP = *logOTP

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := stub.New(ctx, stub.Options{Config: *cfg, Logger: logger})
	if err != nil {
		logger.Fatal("failed to assemble ticket service", zap.Error(err))
	}

	go func() {
		if err := srv.Listen(*addr); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := srv.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
