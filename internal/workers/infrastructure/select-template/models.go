// internal/workers/infrastructure/select-template/models.go
package selecttemplate

import "nba-query-workers/internal/models"

type Input struct {
	Intent *models.QueryIntent `json:"intent"`
}

type Output struct {
	SelectedTemplateId models.TemplateID `json:"selectedTemplateId"`
	HasTemplate        bool              `json:"hasTemplate"`
}
