// internal/workers/data-access/query-elasticsearch/config.go
package queryelasticsearch

import (
	"time"

	"nba-query-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	PlayersIndex string
	TeamsIndex   string
	MaxResults   int
}

func LoadConfig(search config.SearchConfig) *Config {
	return &Config{
		Timeout:      10 * time.Second,
		PlayersIndex: search.PlayersIndex,
		TeamsIndex:   search.TeamsIndex,
		MaxResults:   search.MaxResults,
	}
}
