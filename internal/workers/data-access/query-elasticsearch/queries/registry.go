// internal/workers/data-access/query-elasticsearch/queries/registry.go
package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
)

var ErrIndexNotFound = errors.New("index not found")

type Hit struct {
	ID     string                 `json:"_id"`
	Score  float64                `json:"_score"`
	Source map[string]interface{} `json:"_source"`
}

type QueryResult struct {
	Hits      []Hit
	TotalHits int64
	MaxScore  float64
	Took      int64
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []Hit    `json:"hits"`
	} `json:"hits"`
}

// Execute runs an entity search. A missing index is reported as
// ErrIndexNotFound so callers can distinguish it from query failures.
func Execute(ctx context.Context, client *elasticsearch.Client, es EntitySearch) (*QueryResult, error) {
	req, err := BuildQuery(es)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, client)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, es.Index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &QueryResult{
		Hits:      r.Hits.Hits,
		TotalHits: r.Hits.Total.Value,
		Took:      r.Took,
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	if result.Hits == nil {
		result.Hits = []Hit{}
	}
	return result, nil
}
