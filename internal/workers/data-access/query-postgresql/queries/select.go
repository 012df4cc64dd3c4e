// internal/workers/data-access/query-postgresql/queries/select.go
package queries

import "nba-query-workers/internal/models"

// Select picks a template from the intent's entity type and stat category
// alone. Game and comparison subjects, and anything unrecognised, map to
// TemplateNone.
func Select(intent *models.QueryIntent) models.TemplateID {
	if intent == nil {
		return models.TemplateNone
	}

	switch intent.EntityType {
	case models.EntityPlayer:
		switch intent.StatCategory {
		case models.CategoryScoring:
			return models.TemplatePlayerScoring
		case models.CategoryRebounds:
			return models.TemplatePlayerRebounds
		case models.CategoryAssists:
			return models.TemplatePlayerAssists
		default:
			return models.TemplatePlayerGeneral
		}
	case models.EntityTeam:
		switch intent.StatCategory {
		case models.CategoryStandings:
			return models.TemplateTeamStandings
		case models.CategoryBetting:
			return models.TemplateTeamBetting
		default:
			return models.TemplateTeamStats
		}
	case models.EntityLeague:
		return models.TemplateLeagueLeaders
	case models.EntityGame, models.EntityComparison:
		return models.TemplateNone
	default:
		return models.TemplateNone
	}
}
