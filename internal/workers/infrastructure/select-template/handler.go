// internal/workers/infrastructure/select-template/handler.go
package selecttemplate

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "nba-query-workers/internal/common/errors"
	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/models"
	"nba-query-workers/internal/workers/data-access/query-postgresql/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "select-template"

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
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

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return err
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return apperrors.NewBrokerUnavailableError("complete job", err)
	}
	return nil
}

// Execute maps the intent onto a template id. A missing intent selects none
// rather than failing so the process can answer "not understood".
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidJobPayloadError(fmt.Errorf("input cannot be nil"))
	}

	id := queries.Select(input.Intent)
	output := &Output{
		SelectedTemplateId: id,
		HasTemplate:        id != models.TemplateNone,
	}

	h.logger.Debug("template selected", map[string]interface{}{
		"templateId":  id,
		"hasTemplate": output.HasTemplate,
	})
	return output, nil
}
