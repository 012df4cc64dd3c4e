// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "nba-query-workers/internal/common/errors"
	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/models"
	queryelasticsearch "nba-query-workers/internal/workers/data-access/query-elasticsearch"
	buildresponse "nba-query-workers/internal/workers/infrastructure/build-response"
)

const (
	maxBodyBytes    = 64 << 10
	NotUnderstood   = "Could not understand the question"
	healthCheckWait = 5 * time.Second
)

type IntentParser interface {
	ParseIntent(ctx context.Context, message string, history []models.ConversationMessage) *models.QueryIntent
}

type QueryBuilder interface {
	BuildAndExecuteQuery(ctx context.Context, intent *models.QueryIntent) models.QueryResult
}

type EntitySearcher interface {
	Search(ctx context.Context, name string, entityType models.EntityType, size int) (*queryelasticsearch.Output, error)
}

// HealthCheck reports one dependency's reachability.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	parser    IntentParser
	builder   QueryBuilder
	responder *buildresponse.Handler
	searcher  EntitySearcher
	checks    map[string]HealthCheck
	logger    logger.Logger
}

type ChatRequest struct {
	Message string                       `json:"message"`
	History []models.ConversationMessage `json:"history,omitempty"`
}

type ChatResponse struct {
	Success bool                `json:"success"`
	Intent  *models.QueryIntent `json:"intent,omitempty"`
	buildresponse.ResponsePayload
}

// ChatQuery runs the whole pipeline for one message. Pipeline failures are
// reported in the body with status 200; only malformed requests get a 4xx.
func (h *Handlers) ChatQuery(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx := r.Context()
	intent := h.parser.ParseIntent(ctx, req.Message, req.History)

	var result models.QueryResult
	if intent == nil {
		result = models.QueryResult{
			Success:  false,
			Data:     []models.Row{},
			Template: string(models.TemplateNone),
			Error:    NotUnderstood,
		}
	} else {
		result = h.builder.BuildAndExecuteQuery(ctx, intent)
	}

	out, err := h.responder.Execute(ctx, &buildresponse.Input{
		RequestId: RequestIDFrom(ctx),
		Intent:    intent,
		Result:    result,
	})
	if err != nil {
		h.logger.Error("failed to build chat response", map[string]interface{}{
			"error":     err,
			"requestId": RequestIDFrom(ctx),
		})
		writeError(w, http.StatusInternalServerError, "failed to build response")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Success:         result.Success,
		Intent:          intent,
		ResponsePayload: out.Response,
	})
}

func (h *Handlers) SearchEntities(w http.ResponseWriter, r *http.Request) {
	if h.searcher == nil {
		writeError(w, http.StatusServiceUnavailable, "entity search is disabled")
		return
	}

	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("q"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	size, _ := strconv.Atoi(q.Get("size"))

	out, err := h.searcher.Search(r.Context(), name, models.EntityType(q.Get("type")), size)
	if err != nil {
		stdErr := apperrors.AsStandardError(err)
		writeError(w, statusFor(stdErr.Code), stdErr.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckWait)
	defer cancel()

	checks := map[string]string{"server": "ok"}
	status, code := "healthy", http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			checks[name] = "unavailable: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidJobPayload:
		return http.StatusBadRequest
	case apperrors.ErrCodeIndexNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Status: "error", Message: message, Code: code})
}
