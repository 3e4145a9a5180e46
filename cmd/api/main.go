// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biblioteca/internal/app"
	"biblioteca/internal/config"
	"biblioteca/internal/logging"
	"biblioteca/internal/server"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, config.Usage())
		os.Exit(2)
	}

	logger := logging.Setup(cfg.Env, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("application stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			logger.Warn("close application", slog.Any("error", err))
		}
	}()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(gCtx, server.New(cfg.Server, a.Handler()), logger)
	})
	if cfg.Overdue.ScanInterval > 0 {
		g.Go(func() error {
			return a.Scanner.Run(gCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("application stopped")
	return nil
}
