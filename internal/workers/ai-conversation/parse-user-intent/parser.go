// internal/workers/ai-conversation/parse-user-intent/parser.go
package parseuserintent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"nba-query-workers/internal/common/genai"
	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/common/metrics"
	"nba-query-workers/internal/common/observability"
	"nba-query-workers/internal/common/validation"
	"nba-query-workers/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

const (
	outcomeParsed          = "parsed"
	outcomeCompletionError = "completion_error"
	outcomeNoJSON          = "no_json"
	outcomeInvalid         = "invalid"
)

// Parser extracts a QueryIntent from a chat message. It is stateless; all
// conversation context arrives through the history argument.
type Parser struct {
	completer genai.Completer
	obs       *observability.Observability
	logger    logger.Logger
}

func NewParser(completer genai.Completer, obs *observability.Observability, log logger.Logger) *Parser {
	return &Parser{
		completer: completer,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "intent-parser"}),
	}
}

// ParseIntent returns nil whenever the question could not be understood:
// completion failure, no JSON in the reply, or an intent missing
// entity_type or stat_category. A mistyped optional field is dropped, not
// fatal. The completion is attempted once.
func (p *Parser) ParseIntent(ctx context.Context, message string, history []models.ConversationMessage) *models.QueryIntent {
	ctx, span := p.obs.StartSpan(ctx, "intent.parse", attribute.Int("history", len(history)))
	defer span.End()

	raw, err := p.completer.Generate(ctx, genai.CompletionRequest{
		Prompt:      BuildPrompt(message, history),
		System:      systemPrompt,
		Temperature: Temperature,
	})
	if err != nil {
		p.reject(outcomeCompletionError, map[string]interface{}{"error": err})
		return nil
	}

	doc, ok := ExtractJSON(raw)
	if !ok {
		p.reject(outcomeNoJSON, map[string]interface{}{"responseLength": len(raw)})
		return nil
	}

	if result := validation.IntentCoreSchema.Validate(doc); !result.Valid {
		p.reject(outcomeInvalid, map[string]interface{}{"validation": result.Error()})
		return nil
	}
	if dropped := sanitizeOptional(doc); len(dropped) > 0 {
		p.logger.Warn("dropped mistyped intent fields", map[string]interface{}{"fields": dropped})
	}

	intent, err := decodeIntent(doc)
	if err != nil {
		p.reject(outcomeInvalid, map[string]interface{}{"error": err})
		return nil
	}

	metrics.IntentParseTotal.WithLabelValues(outcomeParsed).Inc()
	span.SetAttributes(
		attribute.String("entity_type", string(intent.EntityType)),
		attribute.String("stat_category", string(intent.StatCategory)),
	)
	p.logger.Info("intent parsed", map[string]interface{}{
		"entityType":   intent.EntityType,
		"statCategory": intent.StatCategory,
		"timePeriod":   intent.TimePeriod,
		"confidence":   intent.Confidence,
	})
	return intent
}

func (p *Parser) reject(outcome string, fields map[string]interface{}) {
	metrics.IntentParseTotal.WithLabelValues(outcome).Inc()
	fields["outcome"] = outcome
	p.logger.Warn("intent not understood", fields)
}

// sanitizeOptional coerces numeric strings in limit and confidence, then
// removes every optional field that still fails IntentSchema. It returns the
// removed field names.
func sanitizeOptional(doc map[string]interface{}) []string {
	for _, key := range []string{"limit", "confidence"} {
		str, ok := doc[key].(string)
		if !ok {
			continue
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			doc[key] = f
		}
	}

	result := validation.IntentSchema.Validate(doc)
	if result.Valid {
		return nil
	}
	var dropped []string
	for _, e := range result.Errors {
		if _, ok := doc[e.Field]; !ok || e.Field == "entity_type" || e.Field == "stat_category" {
			continue
		}
		delete(doc, e.Field)
		dropped = append(dropped, e.Field)
	}
	return dropped
}

// decodeIntent maps a schema-valid document onto QueryIntent and applies
// defaults for confidence and time_period.
func decodeIntent(doc map[string]interface{}) (*models.QueryIntent, error) {
	if id, ok := doc["entity_id"].(float64); ok {
		doc["entity_id"] = strconv.FormatFloat(id, 'f', -1, 64)
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encode intent: %w", err)
	}

	var intent models.QueryIntent
	if err := json.Unmarshal(b, &intent); err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}

	if c, ok := doc["confidence"].(float64); ok {
		intent.Confidence = clamp(c)
	} else {
		intent.Confidence = models.DefaultConfidence
	}
	if intent.TimePeriod == "" {
		intent.TimePeriod = models.PeriodSeason
	}
	return &intent, nil
}

func clamp(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
