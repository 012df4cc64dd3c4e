package querypostgresql

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "nba-query-workers/internal/common/errors"
	"nba-query-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "query-postgresql"
)

type Handler struct {
	config  *Config
	builder *Builder
	logger  logger.Logger
}

func NewHandler(config *Config, builder *Builder, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		builder: builder,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Handle completes the job for every query outcome, including
// success=false. Only an undecodable payload or a broker failure is
// returned as an error.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return apperrors.NewInvalidJobPayloadError(fmt.Errorf("parse input: %w", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		return err
	}

	return h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidJobPayloadError(fmt.Errorf("input cannot be nil"))
	}

	result, elapsed := h.builder.run(ctx, input.Intent)

	return &Output{
		Result:             result,
		RowCount:           len(result.Data),
		QueryExecutionTime: elapsed.Milliseconds(),
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return err
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return apperrors.NewBrokerUnavailableError("complete job", err)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
