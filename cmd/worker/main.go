package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/legal-doc-assistant/internal/bootstrap"
	"github.com/kirillkom/legal-doc-assistant/internal/config"
	"github.com/kirillkom/legal-doc-assistant/internal/observability/logging"
	"github.com/kirillkom/legal-doc-assistant/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	pipelineMetrics := metrics.NewPipelineMetrics(serviceName, workerMetrics.Registry())

	app, err := bootstrap.New(ctx, cfg, pipelineMetrics)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject, "concurrency", cfg.NATSConcurrency)
	err = app.Queue.SubscribeReanalysisRequested(ctx, func(handlerCtx context.Context, documentID string) error {
		workerMetrics.StartDocument()
		started := time.Now()
		err := app.Reanalyzer.ReanalyzeByID(handlerCtx, documentID)
		workerMetrics.FinishDocument(serviceName, time.Since(started), err)
		if err != nil {
			slog.Error("reanalysis_failed", "document_id", documentID, "error", err)
		}
		return err
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
