// internal/workers/data-access/query-postgresql/queries/registry.go
package queries

import (
	"errors"
	"fmt"
	"strings"

	"nba-query-workers/internal/models"
)

var (
	ErrNoTemplate      = errors.New(models.NoTemplateMessage)
	ErrUnknownTemplate = errors.New("unknown query template")
)

type bindFunc func(intent *models.QueryIntent, season string) Query

// Registry binds each executable template to its parameter tuple.
var Registry = map[models.TemplateID]bindFunc{
	models.TemplatePlayerScoring:  bindPlayer(models.TemplatePlayerScoring),
	models.TemplatePlayerRebounds: bindPlayer(models.TemplatePlayerRebounds),
	models.TemplatePlayerAssists:  bindPlayer(models.TemplatePlayerAssists),
	models.TemplatePlayerGeneral:  bindPlayer(models.TemplatePlayerGeneral),
	models.TemplateTeamStats: func(intent *models.QueryIntent, season string) Query {
		return TeamGameLog{NamePattern: NamePattern(intent), Season: season, Limit: models.ResolveLimit(intent)}
	},
	models.TemplateTeamStandings: func(_ *models.QueryIntent, season string) Query {
		return TeamStandings{Season: season}
	},
	models.TemplateTeamBetting: func(intent *models.QueryIntent, season string) Query {
		return TeamBetting{NamePattern: NamePattern(intent), Season: season}
	},
	models.TemplateLeagueLeaders: func(intent *models.QueryIntent, season string) Query {
		return LeagueLeaders{Season: season, Limit: models.ResolveLimit(intent)}
	},
}

func bindPlayer(id models.TemplateID) bindFunc {
	return func(intent *models.QueryIntent, season string) Query {
		return PlayerGameLog{
			Variant:     id,
			NamePattern: NamePattern(intent),
			Season:      season,
			Limit:       models.ResolveLimit(intent),
		}
	}
}

// NamePattern is the case-insensitive substring pattern for the subject.
// entity_name wins over entity_id; with neither it matches every name.
func NamePattern(intent *models.QueryIntent) string {
	name := intent.EntityName
	if strings.TrimSpace(name) == "" {
		name = intent.EntityID
	}
	return "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
}

// Bind selects a template for the intent and fills its parameters.
func Bind(intent *models.QueryIntent, season string) (Query, error) {
	id := Select(intent)
	if id == models.TemplateNone {
		return nil, ErrNoTemplate
	}
	bind, ok := Registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return bind(intent, season), nil
}

// BuildQueryParams returns the positional arguments for the intent's
// template, or nil when no template applies.
func BuildQueryParams(intent *models.QueryIntent, season string) []interface{} {
	q, err := Bind(intent, season)
	if err != nil {
		return nil
	}
	return q.Args()
}
