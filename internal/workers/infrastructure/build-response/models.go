// internal/workers/infrastructure/build-response/models.go
package buildresponse

import "nba-query-workers/internal/models"

type Input struct {
	RequestId string              `json:"requestId,omitempty"`
	Intent    *models.QueryIntent `json:"intent"`
	Result    models.QueryResult  `json:"result"`
}

type Output struct {
	Response ResponsePayload `json:"response"`
}

type ResponsePayload struct {
	RequestId   string             `json:"requestId"`
	Status      string             `json:"status"` // "success" or "error"
	Description string             `json:"description"`
	Template    string             `json:"template"`
	Chart       models.ChartConfig `json:"chart"`
	Data        []models.Row       `json:"data"`
	Error       string             `json:"error,omitempty"`
	Metadata    ResponseMetadata   `json:"metadata"`
}

type ResponseMetadata struct {
	Timestamp string `json:"timestamp"` // ISO 8601
	Version   string `json:"version"`
	RowCount  int    `json:"rowCount"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)
