// Package main runs stockd, the product REST endpoint the stock client synchronizes with.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/abgdnv/stocksync/internal/server/app"
	"github.com/abgdnv/stocksync/internal/server/config"
	"github.com/abgdnv/stocksync/pkg/bootstrap"
	"github.com/abgdnv/stocksync/pkg/config/configloader"
	"github.com/abgdnv/stocksync/pkg/telemetry"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func main() {
	configFile := pflag.StringP("config", "c", "", "path to the YAML configuration file (default config.yaml)")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFile); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, opens the store and starts the HTTP and pprof servers.
func run(ctx context.Context, configFile string) error {
	cfg, cfgErr := configloader.Load[*config.Config](config.ServiceName,
		configloader.WithDefaults(config.Defaults()),
		configloader.WithConfigFile(configFile),
	)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.Telemetry.Traces.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, config.ServiceName, cfg.Telemetry.Traces)
		if err != nil {
			return fmt.Errorf("failed to create tracer provider: %w", err)
		}
		defer shutdownProvider(logger, "tracer", cfg, tp.Shutdown)
	}
	var metricsHandler http.Handler
	if cfg.Telemetry.Metrics.Enabled {
		mp, handler, err := telemetry.NewMeterProvider(config.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to create meter provider: %w", err)
		}
		defer shutdownProvider(logger, "meter", cfg, mp.Shutdown)
		metricsHandler = handler
	}

	resources, err := app.OpenResources(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open resources: %w", err)
	}
	defer resources.Close()

	deps := app.SetupDependencies(resources.Store, resources.Publisher, logger)
	if metricsHandler != nil {
		deps.MetricsPath = cfg.Telemetry.Metrics.Path
		deps.MetricsHandler = metricsHandler
	}
	httpServer := app.SetupHttpServer(deps, cfg)

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	// Start the pprof server if enabled
	if cfg.PProf.Enabled {
		pprofServer := &http.Server{
			Addr:              cfg.PProf.Addr,
			ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
		}
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		// gracefully shutdown pprof server on context cancellation
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// shutdownProvider flushes a telemetry provider within the configured shutdown timeout.
func shutdownProvider(logger *slog.Logger, name string, cfg *config.Config, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Error("Failed to shut down telemetry provider", slog.String("provider", name), slog.Any("error", err))
	}
}
