package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hongminglow/carrot/internal/logger"
	"github.com/hongminglow/carrot/internal/metrics"
	"github.com/hongminglow/carrot/internal/server"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var m *metrics.Metrics
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		metricsSrv = &http.Server{Addr: cfg.MetricsAddress(), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics listening", "addr", metricsSrv.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
	}

	deps := server.NewDeps(cfg, store, m)
	if err := deps.Verifier.EnsureDefaultRole(ctx); err != nil {
		return fmt.Errorf("auth setup: %w", err)
	}
	srv := server.New(cfg, deps)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("carrot API listening", "addr", cfg.HTTPAddress(), "base_path", cfg.API.BasePath, "db", cfg.Database.Driver)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		logger.Info("shutdown signal received")
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", "error", err)
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(ctxShutdown)
	}
	logger.Info("server stopped")
	return nil
}
