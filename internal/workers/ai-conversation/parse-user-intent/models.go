// internal/workers/ai-conversation/parse-user-intent/models.go
package parseuserintent

import "nba-query-workers/internal/models"

type Input struct {
	Message       string                       `json:"message"`
	History       []models.ConversationMessage `json:"history,omitempty"`
	AllowFallback bool                         `json:"allowFallback,omitempty"`
}

type Output struct {
	Intent      *models.QueryIntent `json:"intent"`
	Understood  bool                `json:"understood"`
	Fallback    bool                `json:"fallback"`
	Description string              `json:"description"`
}
