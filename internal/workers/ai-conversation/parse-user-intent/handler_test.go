package parseuserintent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"nba-query-workers/internal/common/config"
	"nba-query-workers/internal/common/genai"
	"nba-query-workers/internal/common/logger"
	"nba-query-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

// completionServer replies to every chat completion with content.
func completionServer(t *testing.T, content string, delay time.Duration, calls *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		assert.Equal(t, "/chat/completions", r.URL.Path)
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func createTestHandler(t *testing.T, server *httptest.Server, timeout time.Duration) *Handler {
	t.Helper()
	client := genai.NewClient(config.CompletionConfig{
		BaseURL:   server.URL,
		Model:     "test",
		Timeout:   int(timeout.Milliseconds()),
		MaxTokens: 256,
	})
	log := createTestLogger(t)
	cfg := createTestConfig()
	cfg.Timeout = timeout
	return NewHandler(cfg, NewParser(client, nil, log), log)
}

type recordingCompleter struct {
	reply string
	err   error
	req   genai.CompletionRequest
}

func (r *recordingCompleter) Generate(_ context.Context, req genai.CompletionRequest) (string, error) {
	r.req = req
	return r.reply, r.err
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		reply          string
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "player scoring last game",
			reply: `{"entity_type":"player","entity_name":"LeBron James","stat_category":"scoring","stat_name":"points","time_period":"last_5","limit":1,"confidence":0.95}`,
			validateOutput: func(t *testing.T, output *Output) {
				require.NotNil(t, output.Intent)
				assert.True(t, output.Understood)
				assert.False(t, output.Fallback)
				assert.Equal(t, models.EntityPlayer, output.Intent.EntityType)
				assert.Equal(t, "LeBron James", output.Intent.EntityName)
				assert.Equal(t, models.CategoryScoring, output.Intent.StatCategory)
				assert.Equal(t, models.PeriodLast5, output.Intent.TimePeriod)
				require.NotNil(t, output.Intent.Limit)
				assert.Equal(t, 1, *output.Intent.Limit)
				assert.InDelta(t, 0.95, output.Intent.Confidence, 1e-9)
				assert.Equal(t, "LeBron James - points - last 5", output.Description)
			},
		},
		{
			name:  "json wrapped in prose",
			reply: "Sure! Here is the intent:\n```json\n{\"entity_type\":\"team\",\"stat_category\":\"standings\"}\n```\nLet me know.",
			validateOutput: func(t *testing.T, output *Output) {
				require.NotNil(t, output.Intent)
				assert.Equal(t, models.CategoryStandings, output.Intent.StatCategory)
				assert.Equal(t, models.PeriodSeason, output.Intent.TimePeriod)
				assert.Equal(t, models.DefaultConfidence, output.Intent.Confidence)
				assert.Nil(t, output.Intent.Limit)
			},
		},
		{
			name:  "numeric entity id and out of range confidence",
			reply: `{"entity_type":"player","entity_id":2544,"stat_category":"rebounds","confidence":1.7,"limit":null}`,
			validateOutput: func(t *testing.T, output *Output) {
				require.NotNil(t, output.Intent)
				assert.Equal(t, "2544", output.Intent.EntityID)
				assert.Equal(t, 1.0, output.Intent.Confidence)
				assert.Nil(t, output.Intent.Limit)
			},
		},
		{
			name:  "limit not an integer is dropped",
			reply: `{"entity_type":"league","stat_category":"scoring","limit":"ten"}`,
			validateOutput: func(t *testing.T, output *Output) {
				require.NotNil(t, output.Intent)
				assert.True(t, output.Understood)
				assert.Equal(t, models.EntityLeague, output.Intent.EntityType)
				assert.Nil(t, output.Intent.Limit)
			},
		},
		{
			name:  "limit as numeric string",
			reply: `{"entity_type":"player","entity_name":"LeBron James","stat_category":"scoring","limit":"5"}`,
			validateOutput: func(t *testing.T, output *Output) {
				require.NotNil(t, output.Intent)
				require.NotNil(t, output.Intent.Limit)
				assert.Equal(t, 5, *output.Intent.Limit)
				assert.Equal(t, "LeBron James", output.Intent.EntityName)
			},
		},
		{
			name:  "fractional limit is dropped",
			reply: `{"entity_type":"player","entity_name":"LeBron James","stat_category":"scoring","limit":1.5}`,
			validateOutput: func(t *testing.T, output *Output) {
				require.NotNil(t, output.Intent)
				assert.Nil(t, output.Intent.Limit)
				assert.Equal(t, models.CategoryScoring, output.Intent.StatCategory)
			},
		},
		{
			name:  "confidence as numeric string",
			reply: `{"entity_type":"player","entity_name":"LeBron James","stat_category":"scoring","confidence":"0.9"}`,
			validateOutput: func(t *testing.T, output *Output) {
				require.NotNil(t, output.Intent)
				assert.InDelta(t, 0.9, output.Intent.Confidence, 1e-9)
			},
		},
		{
			name:  "confidence as word falls back to default",
			reply: `{"entity_type":"team","stat_category":"standings","confidence":"high"}`,
			validateOutput: func(t *testing.T, output *Output) {
				require.NotNil(t, output.Intent)
				assert.Equal(t, models.DefaultConfidence, output.Intent.Confidence)
			},
		},
		{
			name:  "numeric entity name is dropped",
			reply: `{"entity_type":"team","entity_name":76,"stat_category":"scoring","time_period":"last_10"}`,
			validateOutput: func(t *testing.T, output *Output) {
				require.NotNil(t, output.Intent)
				assert.Empty(t, output.Intent.EntityName)
				assert.Equal(t, models.PeriodLast10, output.Intent.TimePeriod)
			},
		},
		{
			name:  "think block with stray braces",
			reply: "<think>the user wants {points} for a player</think>\n{\"entity_type\":\"player\",\"entity_name\":\"Stephen Curry\",\"stat_category\":\"scoring\"}",
			validateOutput: func(t *testing.T, output *Output) {
				require.NotNil(t, output.Intent)
				assert.Equal(t, "Stephen Curry", output.Intent.EntityName)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := completionServer(t, tt.reply, 0, nil)
			handler := createTestHandler(t, server, 5*time.Second)

			output, err := handler.Execute(context.Background(), &Input{Message: "question"})
			require.NoError(t, err)
			require.NotNil(t, output)
			tt.validateOutput(t, output)
		})
	}
}

// ==========================
// Not Understood Tests
// ==========================

func TestHandler_Execute_NotUnderstood(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{name: "prose only", reply: "I'm not sure what you mean, could you rephrase?"},
		{name: "malformed json", reply: `{"entity_type": "player", "stat_category": }`},
		{name: "missing stat category", reply: `{"entity_type":"player","entity_name":"LeBron James"}`},
		{name: "empty entity type", reply: `{"entity_type":"","stat_category":"scoring"}`},
		{name: "json array", reply: `[{"entity_type":"player"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := completionServer(t, tt.reply, 0, nil)
			handler := createTestHandler(t, server, 5*time.Second)

			output, err := handler.Execute(context.Background(), &Input{Message: "asdf"})
			require.NoError(t, err)
			assert.Nil(t, output.Intent)
			assert.False(t, output.Understood)
			assert.Equal(t, "NBA stats", output.Description)
		})
	}
}

func TestHandler_Execute_Fallback(t *testing.T) {
	server := completionServer(t, "no idea", 0, nil)
	handler := createTestHandler(t, server, 5*time.Second)

	output, err := handler.Execute(context.Background(), &Input{Message: "asdf", AllowFallback: true})
	require.NoError(t, err)

	assert.False(t, output.Understood)
	assert.True(t, output.Fallback)
	require.NotNil(t, output.Intent)
	assert.Equal(t, models.EntityLeague, output.Intent.EntityType)
	assert.Equal(t, models.CategoryGeneral, output.Intent.StatCategory)
	assert.Equal(t, models.FallbackConfidence, output.Intent.Confidence)
}

func TestHandler_Execute_NilInput(t *testing.T) {
	server := completionServer(t, "{}", 0, nil)
	handler := createTestHandler(t, server, time.Second)

	output, err := handler.Execute(context.Background(), nil)
	assert.Error(t, err)
	assert.Nil(t, output)
}

// ==========================
// Completion Failure Tests
// ==========================

func TestHandler_Execute_Timeout(t *testing.T) {
	var calls int32
	server := completionServer(t, `{"entity_type":"player","stat_category":"scoring"}`, 300*time.Millisecond, &calls)
	handler := createTestHandler(t, server, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	output, err := handler.Execute(ctx, &Input{Message: "How many points did LeBron score?"})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Nil(t, output.Intent)
	assert.Less(t, elapsed, 250*time.Millisecond)

	server.Close()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "completion must not be retried")
}

func TestParser_CompletionError(t *testing.T) {
	completer := &recordingCompleter{err: errors.New("connection refused")}
	parser := NewParser(completer, nil, createTestLogger(t))

	assert.Nil(t, parser.ParseIntent(context.Background(), "points leaders", nil))
}

func TestHandler_Execute_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	handler := createTestHandler(t, server, time.Second)
	output, err := handler.Execute(context.Background(), &Input{Message: "standings"})
	require.NoError(t, err)
	assert.False(t, output.Understood)
}

// ==========================
// Prompt Tests
// ==========================

func TestParser_PromptCarriesRecentHistory(t *testing.T) {
	completer := &recordingCompleter{reply: `{"entity_type":"player","stat_category":"rebounds"}`}
	parser := NewParser(completer, nil, createTestLogger(t))

	history := []models.ConversationMessage{
		{Role: "user", Content: "turn one"},
		{Role: "assistant", Content: "turn two"},
		{Role: "user", Content: "How many points did LeBron score?"},
		{Role: "assistant", Content: "LeBron scored 31."},
		{Role: "user", Content: "And Curry?"},
		{Role: "assistant", Content: "Curry scored 27."},
	}

	intent := parser.ParseIntent(context.Background(), "what about his rebounds?", history)
	require.NotNil(t, intent)

	prompt := completer.req.Prompt
	assert.NotContains(t, prompt, "turn one")
	assert.NotContains(t, prompt, "turn two")
	assert.Contains(t, prompt, "Previous conversation:\nUser: How many points did LeBron score?\nAssistant: LeBron scored 31.\n")
	assert.Contains(t, prompt, "Assistant: Curry scored 27.")
	assert.Contains(t, prompt, "Current question: what about his rebounds?")
	assert.Equal(t, Temperature, completer.req.Temperature)
	assert.Contains(t, completer.req.System, "entity_type")
}

func TestBuildPrompt_NoHistory(t *testing.T) {
	assert.Equal(t, "Current question: Celtics record", BuildPrompt("Celtics record", nil))
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOK bool
	}{
		{name: "bare object", raw: `{"a":1}`, wantOK: true},
		{name: "prose around object", raw: "here: {\"a\":1} done", wantOK: true},
		{name: "no braces", raw: "nothing", wantOK: false},
		{name: "reversed braces", raw: "} {", wantOK: false},
		{name: "think block only", raw: "<think>{oops</think>", wantOK: false},
		{name: "think block then object", raw: "<think>{a}</think>{\"a\":1}", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, ok := ExtractJSON(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.EqualValues(t, 1, doc["a"])
			}
		})
	}
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkExtractJSON(b *testing.B) {
	raw := "<think>reasoning {x}</think>\n{\"entity_type\":\"player\",\"entity_name\":\"LeBron James\",\"stat_category\":\"scoring\"}"
	for i := 0; i < b.N; i++ {
		_, _ = ExtractJSON(raw)
	}
}
