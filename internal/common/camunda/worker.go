// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"nba-query-workers/internal/common/errors"
	"nba-query-workers/internal/common/metrics"
	"nba-query-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandler completes the job itself on success and returns an error
// otherwise; errors are reported to the broker by the worker.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// JobHandlerFunc adapts a function to JobHandler.
type JobHandlerFunc func(client worker.JobClient, job entities.Job) error

func (f JobHandlerFunc) Handle(client worker.JobClient, job entities.Job) error {
	return f(client, job)
}

const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	opts WorkerOptions,
	handler JobHandler,
	obs *observability.Observability,
	logger *zap.Logger,
) *CamundaWorker {
	errHandler := errors.NewErrorHandler(&zapErrorLogger{logger: logger})

	builder := client.NewJobWorker().
		JobType(taskType).
		Handler(func(jc worker.JobClient, job entities.Job) {
			instrumented(taskType, handler, errHandler, obs, logger)(jc, job)
		}).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Timeout > 0 {
		builder = builder.Timeout(opts.Timeout)
	}

	w := &CamundaWorker{
		worker:   builder.Open(),
		logger:   logger,
		taskType: taskType,
	}
	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", opts.MaxJobsActive),
	)
	return w
}

// instrumented records prometheus and otel job metrics around handler and
// reports its error, if any, to the broker.
func instrumented(taskType string, handler JobHandler, errHandler *errors.ErrorHandler, obs *observability.Observability, logger *zap.Logger) func(worker.JobClient, entities.Job) {
	return func(jc worker.JobClient, job entities.Job) {
		ctx := context.Background()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		start := time.Now()
		err := handler.Handle(jc, job)
		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		if err != nil {
			stdErr := errors.AsStandardError(err)
			metrics.WorkerJobsFailed.WithLabelValues(taskType, string(stdErr.Code)).Inc()
			obs.RecordJobProcessed(ctx, taskType, statusFailed)
			obs.RecordJobDuration(ctx, taskType, elapsed, statusFailed)
			errHandler.HandleJobError(ctx, jc, job, stdErr)
			return
		}
		metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		obs.RecordJobProcessed(ctx, taskType, statusCompleted)
		obs.RecordJobDuration(ctx, taskType, elapsed, statusCompleted)
		logger.Debug("job completed", zap.String("taskType", taskType), zap.Int64("jobKey", job.Key))
	}
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}

type zapErrorLogger struct {
	logger *zap.Logger
}

func (z *zapErrorLogger) Error(msg string, fields map[string]interface{}) {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	z.logger.Error(msg, zf...)
}
