// internal/workers/data-access/query-postgresql/queries/templates.go
package queries

import "nba-query-workers/internal/models"

// Query is a selected template with its bound parameters. The set of
// implementations is closed; each carries a fixed positional contract and
// user-supplied values only ever travel through Args.
type Query interface {
	Template() models.TemplateID
	SQL() string
	Args() []interface{}
	isQuery()
}

// PlayerGameLog backs the four per-player templates: $1 name pattern,
// $2 season, $3 limit.
type PlayerGameLog struct {
	Variant     models.TemplateID
	NamePattern string
	Season      string
	Limit       int
}

func (q PlayerGameLog) Template() models.TemplateID { return q.Variant }
func (q PlayerGameLog) SQL() string                 { return playerSQL[q.Variant] }
func (q PlayerGameLog) Args() []interface{}         { return []interface{}{q.NamePattern, q.Season, q.Limit} }
func (PlayerGameLog) isQuery()                      {}

// TeamGameLog: $1 name pattern, $2 season, $3 limit.
type TeamGameLog struct {
	NamePattern string
	Season      string
	Limit       int
}

func (TeamGameLog) Template() models.TemplateID { return models.TemplateTeamStats }
func (TeamGameLog) SQL() string                 { return teamStatsSQL }
func (q TeamGameLog) Args() []interface{}       { return []interface{}{q.NamePattern, q.Season, q.Limit} }
func (TeamGameLog) isQuery()                    {}

// TeamStandings: $1 season.
type TeamStandings struct {
	Season string
}

func (TeamStandings) Template() models.TemplateID { return models.TemplateTeamStandings }
func (TeamStandings) SQL() string                 { return teamStandingsSQL }
func (q TeamStandings) Args() []interface{}       { return []interface{}{q.Season} }
func (TeamStandings) isQuery()                    {}

// TeamBetting: $1 name pattern, $2 season.
type TeamBetting struct {
	NamePattern string
	Season      string
}

func (TeamBetting) Template() models.TemplateID { return models.TemplateTeamBetting }
func (TeamBetting) SQL() string                 { return teamBettingSQL }
func (q TeamBetting) Args() []interface{}       { return []interface{}{q.NamePattern, q.Season} }
func (TeamBetting) isQuery()                    {}

// LeagueLeaders ranks players by points per game: $1 season, $2 limit.
type LeagueLeaders struct {
	Season string
	Limit  int
}

func (LeagueLeaders) Template() models.TemplateID { return models.TemplateLeagueLeaders }
func (LeagueLeaders) SQL() string                 { return leagueLeadersSQL }
func (q LeagueLeaders) Args() []interface{}       { return []interface{}{q.Season, q.Limit} }
func (LeagueLeaders) isQuery()                    {}

const playerGameFrom = `
FROM player_game_stats s
JOIN players p ON p.player_id = s.player_id
JOIN games g ON g.game_id = s.game_id
LEFT JOIN teams opp ON opp.team_id = CASE
    WHEN g.home_team_id = s.team_id THEN g.away_team_id
    ELSE g.home_team_id
END
WHERE LOWER(p.full_name) LIKE $1
  AND g.season = $2
ORDER BY g.game_date DESC
LIMIT $3`

var playerSQL = map[models.TemplateID]string{
	models.TemplatePlayerScoring: `
SELECT g.game_date, p.full_name, opp.abbreviation AS opponent,
       s.points, s.field_goals_made, s.field_goals_attempted,
       s.three_pointers_made, s.three_pointers_attempted,
       s.free_throws_made, s.free_throws_attempted, s.minutes` + playerGameFrom,

	models.TemplatePlayerRebounds: `
SELECT g.game_date, p.full_name, opp.abbreviation AS opponent,
       s.offensive_rebounds, s.defensive_rebounds, s.total_rebounds, s.minutes` + playerGameFrom,

	models.TemplatePlayerAssists: `
SELECT g.game_date, p.full_name, opp.abbreviation AS opponent,
       s.assists, s.turnovers, s.minutes` + playerGameFrom,

	models.TemplatePlayerGeneral: `
SELECT g.game_date, p.full_name, opp.abbreviation AS opponent,
       s.points, s.total_rebounds, s.assists, s.steals, s.blocks,
       s.turnovers, s.minutes` + playerGameFrom,
}

const teamStatsSQL = `
SELECT g.game_date, t.full_name, tg.points, tg.field_goal_pct,
       tg.three_point_pct, tg.total_rebounds, tg.assists, tg.turnovers
FROM team_game_stats tg
JOIN teams t ON t.team_id = tg.team_id
JOIN games g ON g.game_id = tg.game_id
WHERE LOWER(t.full_name) LIKE $1
  AND g.season = $2
ORDER BY g.game_date DESC
LIMIT $3`

const teamStandingsSQL = `
SELECT t.full_name, ts.conference, ts.wins, ts.losses, ts.win_pct,
       ts.conference_rank, ts.games_behind
FROM team_standings ts
JOIN teams t ON t.team_id = ts.team_id
WHERE ts.season = $1
ORDER BY ts.conference, ts.conference_rank`

const teamBettingSQL = `
SELECT t.full_name, a.ats_wins, a.ats_losses, a.ats_pushes, a.cover_pct,
       a.over_count, a.under_count
FROM ats_performance a
JOIN teams t ON t.team_id = a.team_id
WHERE LOWER(t.full_name) LIKE $1
  AND a.season = $2`

const leagueLeadersSQL = `
SELECT p.full_name,
       COUNT(*) AS games_played,
       ROUND(AVG(s.points)::numeric, 1) AS ppg,
       ROUND(AVG(s.total_rebounds)::numeric, 1) AS rpg,
       ROUND(AVG(s.assists)::numeric, 1) AS apg
FROM player_game_stats s
JOIN players p ON p.player_id = s.player_id
JOIN games g ON g.game_id = s.game_id
WHERE g.season = $1
GROUP BY p.player_id, p.full_name
HAVING COUNT(*) >= 5
ORDER BY ppg DESC
LIMIT $2`
