// internal/workers/data-access/query-elasticsearch/queries/builders.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrMissingIndex = errors.New("index name is required")
	ErrEmptyName    = errors.New("entity name is required")
)

const (
	DefaultSize = 5
	MaxSize     = 25
)

// EntitySearch is a fuzzy lookup of a player or team by name.
type EntitySearch struct {
	Index string
	Name  string
	Size  int
}

// BuildQuery builds the search request for a fuzzy full_name match. Exact
// phrase hits are boosted above fuzzy ones.
func BuildQuery(es EntitySearch) (*esapi.SearchRequest, error) {
	if es.Index == "" {
		return nil, ErrMissingIndex
	}
	if es.Name == "" {
		return nil, ErrEmptyName
	}

	size := es.Size
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	body, err := json.Marshal(buildNameQuery(es.Name))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	return &esapi.SearchRequest{
		Index: []string{es.Index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}, nil
}

func buildNameQuery(name string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"match": map[string]interface{}{
							"full_name": map[string]interface{}{
								"query":     name,
								"fuzziness": "AUTO",
								"operator":  "and",
							},
						},
					},
					map[string]interface{}{
						"match_phrase": map[string]interface{}{
							"full_name": map[string]interface{}{
								"query": name,
								"boost": 2,
							},
						},
					},
				},
				"minimum_should_match": 1,
			},
		},
	}
}
