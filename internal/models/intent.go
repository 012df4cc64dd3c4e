package models

import (
	"regexp"
	"strings"
)

type EntityType string

const (
	EntityPlayer     EntityType = "player"
	EntityTeam       EntityType = "team"
	EntityGame       EntityType = "game"
	EntityLeague     EntityType = "league"
	EntityComparison EntityType = "comparison"
)

type StatCategory string

const (
	CategoryScoring    StatCategory = "scoring"
	CategoryRebounds   StatCategory = "rebounds"
	CategoryAssists    StatCategory = "assists"
	CategoryDefense    StatCategory = "defense"
	CategoryEfficiency StatCategory = "efficiency"
	CategoryBetting    StatCategory = "betting"
	CategoryStandings  StatCategory = "standings"
	CategorySchedule   StatCategory = "schedule"
	CategoryGeneral    StatCategory = "general"
	CategoryComparison StatCategory = "comparison"
)

type TimePeriod string

const (
	PeriodLast5  TimePeriod = "last_5"
	PeriodLast10 TimePeriod = "last_10"
	PeriodSeason TimePeriod = "season"
	PeriodCareer TimePeriod = "career"
	PeriodToday  TimePeriod = "today"
	PeriodCustom TimePeriod = "custom"
)

const (
	DefaultConfidence  = 0.5
	FallbackConfidence = 0.3
	DefaultRowLimit    = 20
)

// QueryIntent is the structured form of a user question. It is built once
// per message and not modified afterwards.
type QueryIntent struct {
	EntityType       EntityType   `json:"entity_type"`
	EntityName       string       `json:"entity_name,omitempty"`
	EntityID         string       `json:"entity_id,omitempty"`
	StatCategory     StatCategory `json:"stat_category"`
	StatName         string       `json:"stat_name,omitempty"`
	TimePeriod       TimePeriod   `json:"time_period,omitempty"`
	ComparisonEntity string       `json:"comparison_entity,omitempty"`
	ComparisonType   string       `json:"comparison_type,omitempty"`
	SortBy           string       `json:"sort_by,omitempty"`
	SortOrder        string       `json:"sort_order,omitempty"`
	Limit            *int         `json:"limit,omitempty"`
	Confidence       float64      `json:"confidence"`
}

// ConversationMessage is one prior turn of a chat.
type ConversationMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// FallbackIntent is the league-wide overview offered when a question could
// not be parsed and the caller opted into a fallback.
func FallbackIntent() *QueryIntent {
	return &QueryIntent{
		EntityType:   EntityLeague,
		StatCategory: CategoryGeneral,
		TimePeriod:   PeriodSeason,
		Confidence:   FallbackConfidence,
	}
}

func IsPlayerIntent(intent *QueryIntent) bool {
	return intent != nil && intent.EntityType == EntityPlayer
}

func IsTeamIntent(intent *QueryIntent) bool {
	return intent != nil && intent.EntityType == EntityTeam
}

func IsComparisonIntent(intent *QueryIntent) bool {
	return intent != nil && (intent.EntityType == EntityComparison || intent.ComparisonEntity != "")
}

func IsBettingIntent(intent *QueryIntent) bool {
	return intent != nil && intent.StatCategory == CategoryBetting
}

// DescribeIntent renders a short human-readable label for an intent.
func DescribeIntent(intent *QueryIntent) string {
	if intent == nil {
		return "NBA stats"
	}

	var parts []string
	if intent.EntityName != "" {
		parts = append(parts, intent.EntityName)
	}
	if intent.StatName != "" {
		parts = append(parts, strings.ReplaceAll(intent.StatName, "_", " "))
	} else if intent.StatCategory != "" {
		parts = append(parts, string(intent.StatCategory))
	}
	if intent.TimePeriod != "" && intent.TimePeriod != PeriodSeason {
		parts = append(parts, strings.ReplaceAll(string(intent.TimePeriod), "_", " "))
	}
	if intent.ComparisonEntity != "" {
		parts = append(parts, "vs "+intent.ComparisonEntity)
	}

	if len(parts) == 0 {
		return "NBA stats"
	}
	return strings.Join(parts, " - ")
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]`)

// NormalizeEntityName prepares a player or team name for fuzzy matching.
func NormalizeEntityName(name string) string {
	return strings.TrimSpace(nonAlphanumeric.ReplaceAllString(strings.ToLower(name), ""))
}

// DefaultLimit maps a time period onto a row limit.
func DefaultLimit(period TimePeriod) int {
	switch period {
	case PeriodLast5:
		return 5
	case PeriodLast10:
		return 10
	case PeriodToday:
		return 1
	default:
		return DefaultRowLimit
	}
}

// ResolveLimit prefers a positive explicit limit on the intent.
func ResolveLimit(intent *QueryIntent) int {
	if intent.Limit != nil && *intent.Limit > 0 {
		return *intent.Limit
	}
	return DefaultLimit(intent.TimePeriod)
}
