package parseuserintent

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "nba-query-workers/internal/common/errors"
	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "parse-user-intent"
)

type Handler struct {
	config *Config
	parser *Parser
	logger logger.Logger
}

func NewHandler(config *Config, parser *Parser, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		parser: parser,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Handle completes the job whether or not the question was understood;
// BPMN gateways route on the understood flag.
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

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return apperrors.NewBrokerUnavailableError("complete job", err)
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidJobPayloadError(fmt.Errorf("input cannot be nil"))
	}

	intent := h.parser.ParseIntent(ctx, input.Message, input.History)
	output := &Output{
		Intent:     intent,
		Understood: intent != nil,
	}

	if intent == nil && input.AllowFallback {
		output.Intent = models.FallbackIntent()
		output.Fallback = true
	}
	output.Description = models.DescribeIntent(output.Intent)

	h.logger.Info("intent step finished", map[string]interface{}{
		"understood":  output.Understood,
		"fallback":    output.Fallback,
		"description": output.Description,
	})
	return output, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
