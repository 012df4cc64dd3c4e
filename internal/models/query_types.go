// internal/models/query_types.go
package models

// TemplateID identifies one of the fixed stats query templates.
type TemplateID string

const (
	TemplatePlayerScoring  TemplateID = "player_scoring"
	TemplatePlayerRebounds TemplateID = "player_rebounds"
	TemplatePlayerAssists  TemplateID = "player_assists"
	TemplatePlayerGeneral  TemplateID = "player_general"
	TemplateTeamStandings  TemplateID = "team_standings"
	TemplateTeamBetting    TemplateID = "team_betting"
	TemplateTeamStats      TemplateID = "team_stats"
	TemplateLeagueLeaders  TemplateID = "league_leaders"

	// TemplateNone is selected when no template covers the intent.
	TemplateNone TemplateID = "none"
	// TemplateError is reported on results whose execution failed.
	TemplateError TemplateID = "error"
)

// AllTemplates lists every executable template.
var AllTemplates = []TemplateID{
	TemplatePlayerScoring,
	TemplatePlayerRebounds,
	TemplatePlayerAssists,
	TemplatePlayerGeneral,
	TemplateTeamStandings,
	TemplateTeamBetting,
	TemplateTeamStats,
	TemplateLeagueLeaders,
}

func (t TemplateID) String() string {
	return string(t)
}

// Row is a single result row keyed by column name.
type Row = map[string]interface{}

// QueryResult is the outcome of one build-and-execute call.
type QueryResult struct {
	Success  bool   `json:"success"`
	Data     []Row  `json:"data"`
	Template string `json:"template"`
	Error    string `json:"error,omitempty"`
}

// NoTemplateMessage is reported when an intent has no matching template.
const NoTemplateMessage = "No matching query template for this intent"
