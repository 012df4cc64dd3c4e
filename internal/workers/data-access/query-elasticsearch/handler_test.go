package queryelasticsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "nba-query-workers/internal/common/errors"
	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/models"
	"nba-query-workers/internal/workers/data-access/query-elasticsearch/queries"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		PlayersIndex: "players",
		TeamsIndex:   "teams",
		MaxResults:   5,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

type capturedSearch struct {
	mu   sync.Mutex
	path string
	body map[string]interface{}
	size string
}

func (c *capturedSearch) get() (path, size string, body map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path, c.size, c.body
}

// fakeCluster answers _search requests the way Elasticsearch 8 does,
// including the product header the client checks.
func fakeCluster(t *testing.T, status int, response string, captured *capturedSearch) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		if captured != nil {
			captured.mu.Lock()
			defer captured.mu.Unlock()
			captured.path = r.URL.Path
			captured.size = r.URL.Query().Get("size")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &captured.body)
		}

		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)
	return server
}

func createTestHandler(t *testing.T, server *httptest.Server) *Handler {
	t.Helper()
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{server.URL},
	})
	require.NoError(t, err)

	log := createTestLogger(t)
	cfg := createTestConfig()
	return NewHandler(cfg, NewSearcher(client, cfg, nil, log), log)
}

const playerHits = `{
	"took": 3,
	"hits": {
		"total": {"value": 2, "relation": "eq"},
		"max_score": 7.5,
		"hits": [
			{"_id": "2544", "_score": 7.5, "_source": {"full_name": "LeBron James", "team": "LAL"}},
			{"_id": "1628389", "_score": 2.1, "_source": {"full_name": "Bronny James", "team": "LAL"}}
		]
	}
}`

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	var captured capturedSearch
	server := fakeCluster(t, http.StatusOK, playerHits, &captured)
	handler := createTestHandler(t, server)

	output, err := handler.Execute(context.Background(), &Input{
		Name:       "  LeBron  James! ",
		EntityType: models.EntityPlayer,
	})
	require.NoError(t, err)

	path, size, sent := captured.get()
	assert.Equal(t, "/players/_search", path)
	assert.Equal(t, "5", size)

	body, _ := json.Marshal(sent)
	assert.Contains(t, string(body), `"fuzziness":"AUTO"`)
	assert.Contains(t, string(body), `"query":"lebron  james"`)

	require.Len(t, output.Matches, 2)
	assert.Equal(t, int64(2), output.TotalHits)
	assert.Equal(t, int64(3), output.Took)
	require.NotNil(t, output.BestMatch)
	assert.Equal(t, "2544", output.BestMatch.ID)
	assert.Equal(t, "LeBron James", output.BestMatch.FullName)
	assert.Equal(t, "LAL", output.BestMatch.Team)
	assert.Equal(t, 7.5, output.BestMatch.Score)
}

func TestHandler_Execute_TeamIndex(t *testing.T) {
	var captured capturedSearch
	response := `{"took":1,"hits":{"total":{"value":1},"max_score":4.2,"hits":[
		{"_id":"1610612738","_score":4.2,"_source":{"full_name":"Boston Celtics","abbreviation":"BOS"}}]}}`
	server := fakeCluster(t, http.StatusOK, response, &captured)
	handler := createTestHandler(t, server)

	output, err := handler.Execute(context.Background(), &Input{
		Name:       "celtics",
		EntityType: models.EntityTeam,
		Size:       50,
	})
	require.NoError(t, err)

	path, size, _ := captured.get()
	assert.Equal(t, "/teams/_search", path)
	assert.Equal(t, "5", size, "size is capped at MaxResults")
	require.NotNil(t, output.BestMatch)
	assert.Equal(t, "BOS", output.BestMatch.Team)
}

func TestSearcher_Search_SizeCap(t *testing.T) {
	tests := []struct {
		name       string
		maxResults int
		size       int
		wantSize   string
	}{
		{name: "oversized request", maxResults: 5, size: 100000, wantSize: "5"},
		{name: "within limit", maxResults: 10, size: 3, wantSize: "3"},
		{name: "unset uses max", maxResults: 10, size: 0, wantSize: "10"},
		{name: "no configured max falls back to hard cap", maxResults: 0, size: 100000, wantSize: "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured capturedSearch
			server := fakeCluster(t, http.StatusOK, playerHits, &captured)
			client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
			require.NoError(t, err)

			cfg := createTestConfig()
			cfg.MaxResults = tt.maxResults
			searcher := NewSearcher(client, cfg, nil, createTestLogger(t))

			_, err = searcher.Search(context.Background(), "LeBron James", models.EntityPlayer, tt.size)
			require.NoError(t, err)

			_, size, _ := captured.get()
			assert.Equal(t, tt.wantSize, size)
		})
	}
}

func TestHandler_Execute_NoMatches(t *testing.T) {
	server := fakeCluster(t, http.StatusOK, `{"took":1,"hits":{"total":{"value":0},"max_score":null,"hits":[]}}`, nil)
	handler := createTestHandler(t, server)

	output, err := handler.Execute(context.Background(), &Input{Name: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, output.Matches)
	assert.NotNil(t, output.Matches)
	assert.Nil(t, output.BestMatch)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		input    *Input
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "index missing",
			status:   http.StatusNotFound,
			response: `{"error":{"type":"index_not_found_exception"},"status":404}`,
			input:    &Input{Name: "lebron", EntityType: models.EntityPlayer},
			wantCode: apperrors.ErrCodeIndexNotFound,
		},
		{
			name:     "cluster error",
			status:   http.StatusInternalServerError,
			response: `{"error":{"type":"search_phase_execution_exception"},"status":500}`,
			input:    &Input{Name: "lebron", EntityType: models.EntityPlayer},
			wantCode: apperrors.ErrCodeSearchQueryFailed,
		},
		{
			name:     "unsupported entity type",
			status:   http.StatusOK,
			response: playerHits,
			input:    &Input{Name: "lakers vs celtics", EntityType: models.EntityGame},
			wantCode: apperrors.ErrCodeIndexNotFound,
		},
		{
			name:     "empty name",
			status:   http.StatusOK,
			response: playerHits,
			input:    &Input{Name: "!!!", EntityType: models.EntityPlayer},
			wantCode: apperrors.ErrCodeInvalidJobPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := fakeCluster(t, tt.status, tt.response, nil)
			handler := createTestHandler(t, server)

			output, err := handler.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, output)
			assert.Equal(t, tt.wantCode, apperrors.AsStandardError(err).Code)
		})
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	server := fakeCluster(t, http.StatusOK, playerHits, nil)
	output, err := createTestHandler(t, server).Execute(context.Background(), nil)
	assert.Error(t, err)
	assert.Nil(t, output)
}

// ==========================
// Query Builder Tests
// ==========================

func TestBuildQuery(t *testing.T) {
	_, err := queries.BuildQuery(queries.EntitySearch{Name: "x"})
	assert.ErrorIs(t, err, queries.ErrMissingIndex)

	_, err = queries.BuildQuery(queries.EntitySearch{Index: "players"})
	assert.ErrorIs(t, err, queries.ErrEmptyName)

	req, err := queries.BuildQuery(queries.EntitySearch{Index: "players", Name: "jokic"})
	require.NoError(t, err)
	require.NotNil(t, req.Size)
	assert.Equal(t, queries.DefaultSize, *req.Size)

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `"match_phrase"`))
}
