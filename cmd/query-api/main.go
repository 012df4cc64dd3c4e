// cmd/query-api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"nba-query-workers/internal/api"
	"nba-query-workers/internal/common/config"
	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/common/observability"
	"nba-query-workers/internal/pipeline"
)

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.Tracing.ServiceName, observability.TracingOptions{
		Enabled:  cfg.Tracing.Enabled,
		Endpoint: cfg.Tracing.Endpoint,
	})
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.Open(ctx, cfg, obs, zapLog)
	if err != nil {
		zapLog.Fatal("pipeline startup failed", zap.Error(err))
	}
	defer p.Close()

	deps := api.Deps{
		Parser:    p.Parser,
		Builder:   p.Builder,
		Responder: p.Responder,
		Checks:    p.HealthChecks(),
		Logger:    log,
	}
	if p.Searcher != nil {
		deps.Searcher = p.Searcher
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: config.GetDuration(cfg.APIs.Completion.Timeout) + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("query API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		zapLog.Info("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("shutdown failed", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			zapLog.Error("query API failed", zap.Error(err))
		}
	}
}
