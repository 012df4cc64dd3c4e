// internal/workers/data-access/query-postgresql/builder.go
package querypostgresql

import (
	"context"
	"errors"
	"time"

	apperrors "nba-query-workers/internal/common/errors"
	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/common/metrics"
	"nba-query-workers/internal/common/observability"
	"nba-query-workers/internal/models"
	"nba-query-workers/internal/workers/data-access/query-postgresql/queries"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SeasonResolver supplies the season key every template filters on.
type SeasonResolver interface {
	Current(ctx context.Context) string
}

// Builder turns an intent into a QueryResult. It never returns an error:
// a missing template yields template "none", any execution failure yields
// template "error".
type Builder struct {
	db      queries.Querier
	seasons SeasonResolver
	obs     *observability.Observability
	logger  logger.Logger
}

func NewBuilder(db queries.Querier, seasons SeasonResolver, obs *observability.Observability, log logger.Logger) *Builder {
	return &Builder{
		db:      db,
		seasons: seasons,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"component": "query-builder"}),
	}
}

func (b *Builder) BuildAndExecuteQuery(ctx context.Context, intent *models.QueryIntent) models.QueryResult {
	result, _ := b.run(ctx, intent)
	return result
}

// run also reports how long the database took, for the worker output.
func (b *Builder) run(ctx context.Context, intent *models.QueryIntent) (models.QueryResult, time.Duration) {
	ctx, span := b.obs.StartSpan(ctx, "query.build_and_execute")
	defer span.End()

	templateID := queries.Select(intent)
	span.SetAttributes(attribute.String("template", templateID.String()))

	if templateID == models.TemplateNone {
		metrics.StatsQueryTotal.WithLabelValues(templateID.String(), "no_template").Inc()
		stdErr := apperrors.NewTemplateNotFoundError(templateID.String())
		b.logger.Info("no query template for intent", map[string]interface{}{
			"description": models.DescribeIntent(intent),
			"errorCode":   string(stdErr.Code),
		})
		return models.QueryResult{
			Success:  false,
			Data:     []models.Row{},
			Template: models.TemplateNone.String(),
			Error:    models.NoTemplateMessage,
		}, 0
	}

	season := b.seasons.Current(ctx)

	q, err := queries.Bind(intent, season)
	if err != nil {
		return b.failure(span, templateID, err), 0
	}

	data, elapsed, err := queries.Execute(ctx, b.db, q)
	metrics.StatsQueryDuration.WithLabelValues(templateID.String()).Observe(elapsed.Seconds())
	if err != nil {
		return b.failure(span, templateID, err), elapsed
	}

	metrics.StatsQueryTotal.WithLabelValues(templateID.String(), "success").Inc()
	b.logger.Info("stats query executed", map[string]interface{}{
		"template":   templateID.String(),
		"season":     season,
		"rowCount":   len(data),
		"durationMs": elapsed.Milliseconds(),
	})

	return models.QueryResult{
		Success:  true,
		Data:     data,
		Template: templateID.String(),
	}, elapsed
}

func (b *Builder) failure(span trace.Span, templateID models.TemplateID, err error) models.QueryResult {
	metrics.StatsQueryTotal.WithLabelValues(templateID.String(), "error").Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	stdErr := apperrors.QueryError(templateID.String(), err)
	fields := map[string]interface{}{
		"template":  templateID.String(),
		"errorCode": string(stdErr.Code),
		"error":     err,
	}
	if errors.Is(err, context.Canceled) {
		fields["canceled"] = true
	}
	b.logger.Error("stats query failed", fields)

	return models.QueryResult{
		Success:  false,
		Data:     []models.Row{},
		Template: models.TemplateError.String(),
		Error:    err.Error(),
	}
}
