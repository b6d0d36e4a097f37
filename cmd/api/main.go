package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/kirillkom/legal-doc-assistant/internal/adapters/http"
	mcpadapter "github.com/kirillkom/legal-doc-assistant/internal/adapters/mcp"
	"github.com/kirillkom/legal-doc-assistant/internal/bootstrap"
	"github.com/kirillkom/legal-doc-assistant/internal/config"
	"github.com/kirillkom/legal-doc-assistant/internal/observability/logging"
	"github.com/kirillkom/legal-doc-assistant/internal/observability/metrics"
)

const serviceName = "api"

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	pipelineMetrics := metrics.NewPipelineMetrics(serviceName, httpMetrics.Registry())

	app, err := bootstrap.New(ctx, cfg, pipelineMetrics)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router, err := httpadapter.NewRouter(cfg, httpadapter.Services{
		Ingestor:   app.Ingestor,
		Documents:  app.Repo,
		Reanalysis: app.Reanalyzer,
		Summarizer: app.Invoker,
		Drafter:    app.Invoker,
		Questions:  app.Invoker,
		Comparer:   app.Comparer,
		Templates:  app.Templates,
	}, httpadapter.WithRejectionRecorder(func(reason string) {
		httpMetrics.RecordRejected(serviceName, reason)
	}))
	if err != nil {
		slog.Error("router_init_failed", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", httpMetrics.Handler())
	if cfg.MCPEnabled {
		mcpServer := mcpadapter.NewServer("legal-doc-assistant", "1.0.0", mcpadapter.Services{
			Summarizer: app.Invoker,
			Drafter:    app.Invoker,
			Questions:  app.Invoker,
		})
		mux.Handle("/mcp", httpMetrics.Middleware(serviceName, mcpadapter.NewHTTPHandler(mcpServer)))
	}
	mux.Handle("/", httpMetrics.Middleware(serviceName, router.Handler()))

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.APIRequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", ":"+cfg.APIPort)
	if err != nil {
		slog.Error("api_listen_failed", "port", cfg.APIPort, "error", err)
		os.Exit(1)
	}
	if cfg.APIMaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.APIMaxConnections)
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort, "max_connections", cfg.APIMaxConnections, "mcp_enabled", cfg.MCPEnabled)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("api_server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
