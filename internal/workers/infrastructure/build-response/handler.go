// internal/workers/infrastructure/build-response/handler.go
package buildresponse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "nba-query-workers/internal/common/errors"
	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/common/validation"
	"nba-query-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "build-response"

type Handler struct {
	config *Config
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job",
		map[string]interface{}{
			"jobKey":      job.Key,
			"workflowKey": job.ProcessInstanceKey,
		})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return apperrors.NewInvalidJobPayloadError(fmt.Errorf("parse input: %w", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		return err
	}

	return h.completeJob(client, job, output)
}

// Execute wraps a query result in the response envelope. A failed result
// still produces an envelope, with status "error" and chart type none.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidJobPayloadError(fmt.Errorf("input cannot be nil"))
	}

	requestID := input.RequestId
	if requestID == "" {
		requestID = uuid.NewString()
	}

	result := input.Result
	if result.Template == "" {
		result.Template = string(models.TemplateNone)
	}

	payload := ResponsePayload{
		RequestId:   requestID,
		Description: models.DescribeIntent(input.Intent),
		Template:    result.Template,
		Data:        []models.Row{},
		Metadata: ResponseMetadata{
			Timestamp: h.now().UTC().Format(time.RFC3339),
			Version:   h.config.AppVersion,
		},
	}

	if result.Success {
		payload.Status = StatusSuccess
		payload.Chart = GetChartConfig(input.Intent, result.Data)
		if result.Data != nil {
			payload.Data = TransformDataForChart(result.Data, payload.Chart)
		}
	} else {
		payload.Status = StatusError
		payload.Chart = models.ChartConfig{Type: models.ChartNone}
		payload.Error = result.Error
	}
	payload.Metadata.RowCount = len(payload.Data)

	if vr := validation.ResponseSchema.Validate(payload); !vr.Valid {
		h.logger.Error("response envelope failed validation", map[string]interface{}{
			"requestId": requestID,
			"details":   vr.Error(),
		})
		return nil, apperrors.NewResponseValidationFailedError(vr.Error())
	}

	h.logger.Info("response built", map[string]interface{}{
		"requestId": requestID,
		"status":    payload.Status,
		"template":  payload.Template,
		"chartType": payload.Chart.Type,
		"rowCount":  payload.Metadata.RowCount,
	})
	return &Output{Response: payload}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return err
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return apperrors.NewBrokerUnavailableError("complete job", err)
	}
	return nil
}
