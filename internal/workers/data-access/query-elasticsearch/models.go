// internal/workers/data-access/query-elasticsearch/models.go
package queryelasticsearch

import "nba-query-workers/internal/models"

type Input struct {
	Name       string            `json:"name"`
	EntityType models.EntityType `json:"entityType"`
	Size       int               `json:"size,omitempty"`
}

type EntityMatch struct {
	ID       string  `json:"id"`
	FullName string  `json:"fullName"`
	Team     string  `json:"team,omitempty"`
	Score    float64 `json:"score"`
}

type Output struct {
	Matches   []EntityMatch `json:"matches"`
	BestMatch *EntityMatch  `json:"bestMatch"`
	TotalHits int64         `json:"totalHits"`
	Took      int64         `json:"took"` // milliseconds
}
