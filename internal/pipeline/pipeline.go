// Package pipeline assembles the query pipeline stages shared by the worker
// manager and the HTTP API.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"nba-query-workers/internal/api"
	"nba-query-workers/internal/common/config"
	"nba-query-workers/internal/common/database"
	"nba-query-workers/internal/common/genai"
	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/common/observability"
	"nba-query-workers/internal/common/season"
	pui "nba-query-workers/internal/workers/ai-conversation/parse-user-intent"
	qe "nba-query-workers/internal/workers/data-access/query-elasticsearch"
	qp "nba-query-workers/internal/workers/data-access/query-postgresql"
	br "nba-query-workers/internal/workers/infrastructure/build-response"

	"go.uber.org/zap"
)

type Pipeline struct {
	Postgres      *database.PostgresClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient

	Seasons   *season.Resolver
	Parser    *pui.Parser
	Builder   *qp.Builder
	Responder *br.Handler
	// Searcher is nil when no Elasticsearch address is configured.
	Searcher *qe.Searcher
}

// RetryWithBackoff retries a startup dependency check with exponential
// backoff. Jobs and requests are never retried.
func RetryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// Open connects the stores and builds every stage. Close releases them.
func Open(ctx context.Context, cfg *config.Config, obs *observability.Observability, zapLog *zap.Logger) (*Pipeline, error) {
	log := logger.NewZapAdapter(zapLog)
	p := &Pipeline{}

	err := RetryWithBackoff(func() error {
		var err error
		p.Postgres, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return p.Postgres.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	zapLog.Info("PostgreSQL connected successfully")

	err = RetryWithBackoff(func() error {
		var err error
		p.Redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return p.Redis.Ping(ctx)
	}, 5, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		p.Close()
		return nil, err
	}
	zapLog.Info("Redis connected successfully")

	if cfg.Database.Elasticsearch.GetURL() != "" {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err == nil {
			err = es.Ping()
		}
		if err != nil {
			zapLog.Warn("Elasticsearch unavailable, entity search disabled", zap.Error(err))
		} else {
			p.Elasticsearch = es
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	assemble(p, cfg, obs, log)
	return p, nil
}

// Assemble builds the stages over already-open stores. es may be nil.
func Assemble(cfg *config.Config, pg *database.PostgresClient, rdb *database.RedisClient, es *database.ElasticsearchClient, obs *observability.Observability, log logger.Logger) *Pipeline {
	p := &Pipeline{Postgres: pg, Redis: rdb, Elasticsearch: es}
	assemble(p, cfg, obs, log)
	return p
}

func assemble(p *Pipeline, cfg *config.Config, obs *observability.Observability, log logger.Logger) {
	p.Seasons = season.NewResolver(log,
		season.WithOverride(cfg.Season.Override),
		season.WithCache(p.Redis.Client, config.GetDuration(cfg.Season.CacheTTLMs)),
		season.WithDatabase(p.Postgres),
	)

	p.Parser = pui.NewParser(genai.NewClient(cfg.APIs.Completion), obs, log)
	p.Builder = qp.NewBuilder(p.Postgres, p.Seasons, obs, log)
	p.Responder = br.NewHandler(&br.Config{
		AppVersion: cfg.App.Version,
		Timeout:    10 * time.Second,
	}, log)

	if p.Elasticsearch != nil {
		p.Searcher = qe.NewSearcher(p.Elasticsearch.Client, qe.LoadConfig(cfg.Search), obs, log)
	}
}

// HealthChecks lists the dependency probes served on /health.
func (p *Pipeline) HealthChecks() map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{
		"postgres": p.Postgres.Ping,
		"redis":    p.Redis.Ping,
	}
	if p.Elasticsearch != nil {
		checks["elasticsearch"] = func(context.Context) error { return p.Elasticsearch.Ping() }
	}
	return checks
}

func (p *Pipeline) Close() {
	if p.Redis != nil {
		_ = p.Redis.Close()
	}
	if p.Postgres != nil {
		_ = p.Postgres.Close()
	}
}
