// Command klattd is the long-running synthesis worker: it subscribes to a
// NATS subject for render jobs and exposes a Prometheus scrape endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/klatt-synth/klattsynth/internal/config"
	"github.com/klatt-synth/klattsynth/internal/diag"
	"github.com/klatt-synth/klattsynth/internal/observability"
	"github.com/klatt-synth/klattsynth/internal/synthsvc"
)

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "klattd-bootstrap.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create bootstrap logger: %w", err)
	}

	return log, nil
}

func run() error {
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "klattd: failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("bootstrap logger created")

	cfg, err := config.LoadService(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		if closeErr := finalLog.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "klattd: error closing logger: %v\n", closeErr)
		}
	}()

	shutdownMeter, err := observability.InitMeterProvider()
	if err != nil {
		finalLog.Error("failed to init meter provider: %v", err)

		return fmt.Errorf("failed to init meter provider: %w", err)
	}

	defer func() {
		if shutdownErr := shutdownMeter(context.Background()); shutdownErr != nil {
			fmt.Fprintf(os.Stderr, "klattd: error shutting down meter provider: %v\n", shutdownErr)
		}
	}()

	metrics, err := observability.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		finalLog.Error("failed to build metrics: %v", err)

		return fmt.Errorf("failed to build metrics: %w", err)
	}

	conn, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		finalLog.Error("failed to connect to NATS at %s: %v", cfg.NATS.URL, err)

		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSrv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: promhttp.Handler()}

	go func() {
		if serveErr := metricsSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			finalLog.Error("metrics server exited: %v", serveErr)
		}
	}()

	worker := synthsvc.New(conn, cfg.NATS.Subject, diag.FromBookExpert(finalLog), metrics, cfg.NATS.MaxInFlight)

	finalLog.System("klattd listening on subject %s, metrics on %s", cfg.NATS.Subject, cfg.Metrics.ListenAddr)

	workerErr := worker.Run(ctx)

	if shutdownErr := metricsSrv.Shutdown(context.Background()); shutdownErr != nil {
		finalLog.Error("failed to shut down metrics server: %v", shutdownErr)
	}

	if workerErr != nil {
		finalLog.Error("worker exited with error: %v", workerErr)

		return fmt.Errorf("worker exited: %w", workerErr)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "klattd: %v\n", err)
		os.Exit(1)
	}
}
