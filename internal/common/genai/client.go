// Package genai talks to an OpenAI-compatible chat completion server
// (llama.cpp server, Ollama, vLLM, LM Studio).
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nba-query-workers/internal/common/config"
	apperrors "nba-query-workers/internal/common/errors"
	commonhttp "nba-query-workers/internal/common/http"
)

var ErrEmptyCompletion = errors.New("completion returned no choices")

// CompletionRequest is a single system+user exchange.
type CompletionRequest struct {
	Prompt      string
	System      string
	Temperature float64
	MaxTokens   int
}

// Completer is what the intent parser depends on.
type Completer interface {
	Generate(ctx context.Context, req CompletionRequest) (string, error)
}

type Client struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	timeout   time.Duration
	http      *commonhttp.Client
}

func NewClient(cfg config.CompletionConfig) *Client {
	timeout := config.GetDuration(cfg.Timeout)
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   timeout,
		http:      commonhttp.NewClient(timeout),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends one chat completion request and returns the first choice.
func (c *Client) Generate(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var resp chatResponse
	err := c.http.PostJSON(ctx, c.baseURL+"/chat/completions", headers, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   maxTokens,
	}, &resp)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return "", apperrors.NewCompletionTimeoutError(c.timeout)
		}
		return "", apperrors.NewIntentParsingFailedError(fmt.Errorf("chat completion: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewIntentParsingFailedError(ErrEmptyCompletion)
	}
	return resp.Choices[0].Message.Content, nil
}
