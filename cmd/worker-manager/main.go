// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nba-query-workers/internal/common/camunda"
	"nba-query-workers/internal/common/config"
	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/common/observability"
	"nba-query-workers/internal/pipeline"

	pui "nba-query-workers/internal/workers/ai-conversation/parse-user-intent"
	qe "nba-query-workers/internal/workers/data-access/query-elasticsearch"
	qp "nba-query-workers/internal/workers/data-access/query-postgresql"
	br "nba-query-workers/internal/workers/infrastructure/build-response"
	st "nba-query-workers/internal/workers/infrastructure/select-template"
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

	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	obs := observability.New(cfg.Tracing.ServiceName, observability.TracingOptions{
		Enabled:  cfg.Tracing.Enabled,
		Endpoint: cfg.Tracing.Endpoint,
	})
	defer obs.Shutdown()

	ctx := context.Background()

	var zeebe *camunda.Client
	err = pipeline.RetryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	p, err := pipeline.Open(ctx, cfg, obs, zapLog)
	if err != nil {
		zapLog.Fatal("pipeline startup failed", zap.Error(err))
	}
	defer p.Close()

	handlers := map[string]camunda.JobHandler{
		pui.TaskType: pui.NewHandler(&pui.Config{Timeout: workerTimeout(cfg, pui.TaskType)}, p.Parser, log),
		st.TaskType:  st.NewHandler(&st.Config{Timeout: workerTimeout(cfg, st.TaskType)}, log),
		qp.TaskType:  qp.NewHandler(&qp.Config{Timeout: workerTimeout(cfg, qp.TaskType)}, p.Builder, log),
		br.TaskType: br.NewHandler(&br.Config{
			AppVersion: cfg.App.Version,
			Timeout:    workerTimeout(cfg, br.TaskType),
		}, log),
	}
	if p.Searcher != nil {
		searchCfg := qe.LoadConfig(cfg.Search)
		searchCfg.Timeout = workerTimeout(cfg, qe.TaskType)
		handlers[qe.TaskType] = qe.NewHandler(searchCfg, p.Searcher, log)
	}

	var workers []*camunda.CamundaWorker
	for taskType, handler := range handlers {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			continue
		}
		wcfg := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), taskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, handler, obs, zapLog))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "healthy", http.StatusOK
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		taskTypes := make([]string, len(workers))
		for i, wk := range workers {
			taskTypes[i] = wk.TaskType()
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "ready",
			"workers": taskTypes,
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	metricsAddr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
	metricsServer := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", metricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)

	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	zapLog.Info("Worker manager stopped gracefully")
}

func workerTimeout(cfg *config.Config, taskType string) time.Duration {
	return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
}
