package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrEthical07/hireauth"
	"github.com/MrEthical07/hireauth/config"
	"github.com/MrEthical07/hireauth/httpapi"
	otelexport "github.com/MrEthical07/hireauth/metrics/export/otel"
	promexport "github.com/MrEthical07/hireauth/metrics/export/prometheus"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP session service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	res := &resources{}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("releasing resources", zap.Error(err))
		}
	}()

	store, healthCheck, err := openStore(ctx, cfg, res, logger)
	if err != nil {
		return err
	}
	redisClient, err := openRedis(ctx, cfg, res, logger)
	if err != nil {
		return err
	}

	builder := hireauth.New().
		WithConfig(cfg.Engine()).
		WithCredentialStore(store).
		WithLogger(logger)
	if redisClient != nil {
		builder = builder.WithRedis(redisClient)
	}
	engine, err := builder.Build()
	if err != nil {
		logger.Error("engine configuration rejected", zap.Error(err))
		return err
	}
	defer engine.Close()

	metricsHandler, err := promexport.Handler(promexport.NewCollector(engine))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	if cfg.Log.MetricsInterval > 0 {
		reporter, err := otelexport.NewLogReporter(engine, logger)
		if err != nil {
			return fmt.Errorf("metrics reporter: %w", err)
		}
		reportCtx, stopReports := context.WithCancel(ctx)
		defer func() {
			stopReports()
			_ = reporter.Close(context.WithoutCancel(ctx))
		}()
		go reporter.Run(reportCtx, cfg.Log.MetricsInterval)
	}

	opts := cfg.HTTP()
	opts.MetricsHandler = metricsHandler
	opts.HealthCheck = healthCheck

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpapi.New(engine, opts, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("store", cfg.Store.Driver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
