package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bselens/bselens/internal/config"
	errwrap "github.com/bselens/bselens/internal/errors"
	"github.com/bselens/bselens/internal/metrics"
	"github.com/bselens/bselens/internal/observability"
	"github.com/bselens/bselens/internal/server"
	"github.com/bselens/bselens/internal/server/handlers"
)

// telemetryHealthChecker reports whether the Prometheus exporter is running.
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewServiceUnavailableError("telemetry system not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scrip lookups and quotes over HTTP",
	Long: `Start the HTTP server with graceful shutdown support.

Routes:
  /v1/lookup?q=, /v1/scrips/{code}/name, /v1/symbols/{symbol}/code,
  /v1/quotes/{code}, /v1/throttle, /health, /version, /metrics

Ctrl+C or SIGTERM shuts down gracefully; Ctrl+C twice within 2s force quits.
SIGHUP re-reads the config file.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	observability.InitServerLogger(config.AppName, cfg.Logging.Level)
	logger := observability.ServerLogger

	health := handlers.NewHealthManager(versionInfo.Version)
	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(config.AppName, cfg.Metrics.Port); err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			return errwrap.WrapInternal(ctx, err, "metrics initialization failed")
		}
		metrics.SetServerStartTime(time.Now().Unix())
		health.RegisterChecker("telemetry", telemetryHealthChecker{})
	}

	s, err := newSession(ctx, logger)
	if err != nil {
		return err
	}
	defer s.Close()
	if s.store != nil {
		health.RegisterChecker("store", s.store)
	}

	srv := server.New(cfg.Server, s.client, health)
	logger.Info("Initializing server",
		zap.String("version", versionInfo.Version),
		zap.String("addr", srv.Addr()),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Int("metrics_port", observability.GetMetricsPort()),
		zap.Bool("scrip_cache", s.store != nil))

	// Shutdown handlers run in reverse registration order.
	signals.OnShutdown(func(ctx context.Context) error {
		if err := logger.Sync(); err != nil {
			logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
		}
		return nil
	})
	signals.OnShutdown(func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errwrap.WrapInternal(ctx, err, "server shutdown failed")
		}
		logger.Info("HTTP server stopped gracefully")
		return nil
	})

	signals.OnReload(func(ctx context.Context) error {
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil
			}
			return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
		}
		// Throttle and store settings are bound at startup; a reload only
		// revalidates the file so a bad edit is reported early.
		if _, err := loadConfig(); err != nil {
			return err
		}
		logger.Info("Configuration reloaded", zap.String("file", viper.ConfigFileUsed()))
		return nil
	})

	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	go func() {
		if err := signals.Listen(ctx); err != nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return errwrap.WrapInternal(ctx, err, "server error")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().Int("metrics-port", 0, "Prometheus exporter port (0 picks a free port)")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("metrics.port", serveCmd.Flags().Lookup("metrics-port"))
}
