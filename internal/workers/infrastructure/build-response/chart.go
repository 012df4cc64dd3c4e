// internal/workers/infrastructure/build-response/chart.go
package buildresponse

import (
	"math"
	"strconv"
	"strings"
	"time"

	"nba-query-workers/internal/models"
)

const gameDateField = "game_date"

var barColors = []string{"#1d428a", "#c8102e", "#fdb927", "#007a33"}

// categoryField is the column charted for a player when the intent names no
// specific stat.
var categoryField = map[models.StatCategory]string{
	models.CategoryScoring:  "points",
	models.CategoryRebounds: "total_rebounds",
	models.CategoryAssists:  "assists",
	models.CategoryDefense:  "steals",
}

// GetChartConfig derives a rendering descriptor from the intent and the shape
// of the result. It does not look at row values.
func GetChartConfig(intent *models.QueryIntent, data []models.Row) models.ChartConfig {
	if len(data) == 0 {
		return models.ChartConfig{Type: models.ChartNone}
	}
	if intent == nil {
		return models.ChartConfig{Type: models.ChartTable}
	}

	title := models.DescribeIntent(intent)

	switch {
	case intent.EntityType == models.EntityPlayer && len(data) > 1:
		y := intent.StatName
		if y == "" {
			y = playerField(intent.StatCategory)
		}
		return models.ChartConfig{
			Type:   models.ChartBar,
			XAxis:  gameDateField,
			YAxis:  y,
			Title:  title,
			XLabel: "Game",
			YLabel: humanize(y),
			Colors: barColors[:1],
		}
	case intent.StatCategory == models.CategoryStandings:
		return models.ChartConfig{Type: models.ChartTable, Title: title}
	case intent.EntityType == models.EntityLeague:
		return models.ChartConfig{
			Type:   models.ChartBar,
			XAxis:  "full_name",
			YAxis:  "ppg",
			Title:  "League leaders - points per game",
			XLabel: "Player",
			YLabel: "PPG",
			Colors: barColors,
		}
	default:
		return models.ChartConfig{Type: models.ChartTable, Title: title}
	}
}

func playerField(category models.StatCategory) string {
	if f, ok := categoryField[category]; ok {
		return f
	}
	return "points"
}

func humanize(field string) string {
	words := strings.Fields(strings.ReplaceAll(field, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// TransformDataForChart formats rows for bar and line charts: game dates
// become "Jan 2" and numeric strings become numbers rounded to one decimal.
// Rows are copied; the input is left untouched. Table and none configs get
// the data back as is.
func TransformDataForChart(data []models.Row, cfg models.ChartConfig) []models.Row {
	if cfg.Type != models.ChartBar && cfg.Type != models.ChartLine {
		return data
	}

	out := make([]models.Row, len(data))
	for i, row := range data {
		copied := make(models.Row, len(row))
		for k, v := range row {
			copied[k] = formatValue(k, v)
		}
		out[i] = copied
	}
	return out
}

func formatValue(key string, v interface{}) interface{} {
	if key == gameDateField {
		return shortDate(v)
	}
	s, ok := v.(string)
	if !ok {
		return v
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return v
	}
	return math.Round(f*10) / 10
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func shortDate(v interface{}) interface{} {
	switch d := v.(type) {
	case time.Time:
		return d.Format("Jan 2")
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t.Format("Jan 2")
			}
		}
	}
	return v
}
