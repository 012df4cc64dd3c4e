// internal/api/router.go
package api

import (
	"net/http"

	"nba-query-workers/internal/common/logger"
	buildresponse "nba-query-workers/internal/workers/infrastructure/build-response"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps wires the pipeline stages into the router. Searcher may be nil when
// Elasticsearch is not configured.
type Deps struct {
	Parser    IntentParser
	Builder   QueryBuilder
	Responder *buildresponse.Handler
	Searcher  EntitySearcher
	Checks    map[string]HealthCheck
	Logger    logger.Logger
}

func NewRouter(d Deps) http.Handler {
	h := &Handlers{
		parser:    d.Parser,
		builder:   d.Builder,
		responder: d.Responder,
		searcher:  d.Searcher,
		checks:    d.Checks,
		logger:    d.Logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recovery(d.Logger))
	r.Use(Logging(d.Logger))
	r.Use(chimiddleware.RealIP)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat/query", h.ChatQuery)
		r.Get("/entities/search", h.SearchEntities)
	})
	return r
}
