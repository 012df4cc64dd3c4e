// internal/workers/ai-conversation/parse-user-intent/prompt.go
package parseuserintent

import (
	"fmt"
	"strings"

	"nba-query-workers/internal/models"
)

const (
	// Temperature is kept low so extraction varies as little as possible.
	Temperature = 0.1

	maxHistoryMessages = 4
)

const systemPrompt = `You convert NBA statistics questions into a JSON query intent.
Respond with a single JSON object and nothing else.

Fields:
- entity_type (required): player | team | game | league | comparison
- entity_name: full player or team name, e.g. "LeBron James", "Boston Celtics"
- entity_id: numeric or string id if the user gave one
- stat_category (required): scoring | rebounds | assists | defense | efficiency | betting | standings | schedule | general | comparison
- stat_name: specific stat, e.g. "points", "three_pointers", "total_rebounds", "steals"
- time_period: last_5 | last_10 | season | career | today | custom (default season)
- comparison_entity: second player or team when comparing
- comparison_type: head_to_head | side_by_side
- sort_by, sort_order (asc | desc)
- limit: integer number of rows the user asked for
- confidence: number between 0 and 1

Examples:
Q: How many points did LeBron score last game?
{"entity_type":"player","entity_name":"LeBron James","stat_category":"scoring","stat_name":"points","time_period":"last_5","limit":1,"confidence":0.95}

Q: Show me the Eastern Conference standings
{"entity_type":"team","stat_category":"standings","time_period":"season","confidence":0.9}

Q: How have the Celtics done against the spread this year?
{"entity_type":"team","entity_name":"Boston Celtics","stat_category":"betting","time_period":"season","confidence":0.9}

Q: Who are the top 10 scorers in the league?
{"entity_type":"league","stat_category":"scoring","stat_name":"points","time_period":"season","limit":10,"confidence":0.9}

Q: Compare Jokic and Embiid rebounding over the last 10 games
{"entity_type":"comparison","entity_name":"Nikola Jokic","comparison_entity":"Joel Embiid","stat_category":"rebounds","time_period":"last_10","comparison_type":"side_by_side","confidence":0.85}`

// BuildPrompt prefixes the question with the last few turns of the
// conversation so follow-ups like "what about his rebounds?" resolve.
func BuildPrompt(message string, history []models.ConversationMessage) string {
	var sb strings.Builder

	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	if len(history) > 0 {
		sb.WriteString("Previous conversation:\n")
		for _, m := range history {
			role := "User"
			if m.Role == "assistant" {
				role = "Assistant"
			}
			fmt.Fprintf(&sb, "%s: %s\n", role, m.Content)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Current question: ")
	sb.WriteString(message)
	return sb.String()
}
