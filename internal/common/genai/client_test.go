package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"nba-query-workers/internal/common/config"
	apperrors "nba-query-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, timeoutMs int) *Client {
	return NewClient(config.CompletionConfig{
		BaseURL:   url + "/v1/",
		APIKey:    "test-key",
		Model:     "qwen2.5-7b-instruct",
		Timeout:   timeoutMs,
		MaxTokens: 256,
	})
}

func TestClient_Generate_Success(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"entity_type\":\"league\"}"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2000)
	out, err := client.Generate(context.Background(), CompletionRequest{
		Prompt:      "Who leads the league in scoring?",
		System:      "extract intent",
		Temperature: 0.1,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"entity_type":"league"}`, out)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, 0.1, captured.Temperature)
	assert.Equal(t, 256, captured.MaxTokens)
	assert.Equal(t, "qwen2.5-7b-instruct", captured.Model)
	assert.False(t, captured.Stream)
}

func TestClient_Generate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode apperrors.ErrorCode
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusServiceUnavailable)
			},
			wantCode: apperrors.ErrCodeIntentParsingFailed,
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
			wantCode: apperrors.ErrCodeIntentParsingFailed,
		},
		{
			name: "slow server",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
			wantCode: apperrors.ErrCodeCompletionTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				tt.handler(w, r)
			}))

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err := newTestClient(server.URL, 5000).Generate(ctx, CompletionRequest{Prompt: "hi"})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.AsStandardError(err).Code)

			server.Close()
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "completion requests are never retried")
		})
	}
}
