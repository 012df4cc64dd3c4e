// internal/workers/data-access/query-elasticsearch/searcher.go
package queryelasticsearch

import (
	"context"
	"errors"
	"fmt"

	apperrors "nba-query-workers/internal/common/errors"
	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/common/observability"
	"nba-query-workers/internal/models"
	"nba-query-workers/internal/workers/data-access/query-elasticsearch/queries"

	"github.com/elastic/go-elasticsearch/v8"
	"go.opentelemetry.io/otel/attribute"
)

// Searcher resolves loosely typed player and team names against the search
// indexes. The SQL templates do their own LIKE matching and never call it.
type Searcher struct {
	client *elasticsearch.Client
	config *Config
	obs    *observability.Observability
	logger logger.Logger
}

func NewSearcher(client *elasticsearch.Client, config *Config, obs *observability.Observability, log logger.Logger) *Searcher {
	return &Searcher{
		client: client,
		config: config,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"component": "entity-search"}),
	}
}

func (s *Searcher) indexFor(entityType models.EntityType) (string, error) {
	switch entityType {
	case models.EntityPlayer, "":
		return s.config.PlayersIndex, nil
	case models.EntityTeam:
		return s.config.TeamsIndex, nil
	default:
		return "", apperrors.NewIndexNotFoundError(string(entityType))
	}
}

// Search returns matches ordered by score. An empty entity type searches
// players. size is capped at the configured MaxResults.
func (s *Searcher) Search(ctx context.Context, name string, entityType models.EntityType, size int) (*Output, error) {
	index, err := s.indexFor(entityType)
	if err != nil {
		return nil, err
	}
	if size < 1 || (s.config.MaxResults > 0 && size > s.config.MaxResults) {
		size = s.config.MaxResults
	}

	ctx, span := s.obs.StartSpan(ctx, "entity.search",
		attribute.String("index", index),
		attribute.Int("size", size),
	)
	defer span.End()

	result, err := queries.Execute(ctx, s.client, queries.EntitySearch{
		Index: index,
		Name:  models.NormalizeEntityName(name),
		Size:  size,
	})
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, queries.ErrIndexNotFound):
			return nil, apperrors.NewIndexNotFoundError(index)
		case errors.Is(err, queries.ErrEmptyName):
			return nil, apperrors.NewInvalidJobPayloadError(fmt.Errorf("name: %w", err))
		default:
			return nil, apperrors.NewSearchQueryFailedError(index, err)
		}
	}

	out := &Output{
		Matches:   make([]EntityMatch, 0, len(result.Hits)),
		TotalHits: result.TotalHits,
		Took:      result.Took,
	}
	for _, hit := range result.Hits {
		out.Matches = append(out.Matches, toMatch(hit))
	}
	if len(out.Matches) > 0 {
		best := out.Matches[0]
		out.BestMatch = &best
	}

	s.logger.Debug("entity search finished", map[string]interface{}{
		"index":     index,
		"totalHits": out.TotalHits,
		"took":      out.Took,
	})
	return out, nil
}

func toMatch(hit queries.Hit) EntityMatch {
	m := EntityMatch{ID: hit.ID, Score: hit.Score}
	m.FullName, _ = hit.Source["full_name"].(string)
	if team, ok := hit.Source["team"].(string); ok {
		m.Team = team
	} else if abbr, ok := hit.Source["abbreviation"].(string); ok {
		m.Team = abbr
	}
	return m
}
