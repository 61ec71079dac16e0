package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"acconti/internal/backend"
	"acconti/internal/cli"
	apphttp "acconti/internal/http"
	"acconti/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("acconti")
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	// Publisher is a typed nil when AMQP is unavailable; only hand the
	// service a non-nil interface.
	var publisher services.SyncPublisher
	if result.Publisher != nil {
		publisher = result.Publisher
	}

	notifier := services.NewChangeNotifier()
	service := services.NewDepositService(result.Store, publisher, notifier)

	dims := apphttp.DefaultDimensions()
	dims.Width = float64(cfg.ChartWidth)
	dims.Height = float64(cfg.ChartHeight)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:              ":" + cfg.Port,
		Service:           service,
		Notifier:          notifier,
		Dimensions:        dims,
		ChartCacheSize:    cfg.ChartCacheSize,
		ChartCacheTTL:     cfg.ChartCacheTTL,
		FrameInterval:     time.Second / time.Duration(cfg.ChartFrameRate),
		AnimationDuration: cfg.AnimationDuration,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 0 // SSE streams stay open indefinitely
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting acconti server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
