package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/studyvault/studyvault/internal/bootstrap"
	"github.com/studyvault/studyvault/internal/config"
	"github.com/studyvault/studyvault/internal/observability/logging"
	"github.com/studyvault/studyvault/internal/observability/metrics"
)

const processTimeout = 10 * time.Minute

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.New("studyvault-worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("studyvault-worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsMux(workerMetrics),
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
		return app.Queue.SubscribeDocumentQueued(groupCtx, func(handlerCtx context.Context, documentID string) error {
			processCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
			defer cancel()

			workerMetrics.ProcessStarted()
			start := time.Now()
			err := app.ProcessUC.ProcessByID(processCtx, documentID)
			workerMetrics.ProcessFinished()

			status := "completed"
			if err != nil {
				status = "error"
			} else if doc, readErr := app.Repo.GetByID(processCtx, "", documentID); readErr == nil {
				workerMetrics.ObserveChunksStored("studyvault-worker", doc.TotalChunks)
			}
			workerMetrics.ObserveProcess("studyvault-worker", status, time.Since(start))
			return err
		})
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		logger.Error("worker_stopped", "error", err)
		os.Exit(1)
	}
}

func metricsMux(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}
