package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"velum-go/internal/config"
	"velum-go/internal/models"

	"go.uber.org/zap"
)

// HTTPClient is the part of *http.Client the AI client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AIConfigSource supplies the AI settings in effect for a call.
type AIConfigSource interface {
	AIConfig(ctx context.Context) config.AIConfig
}

// ChatMessage is one turn of a chat-completions conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assistant is the AI collaborator used by the services.
type Assistant interface {
	Configured(ctx context.Context) bool
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
	Stream(ctx context.Context, messages []ChatMessage, onDelta func(string) error) (string, error)
}

// AIClient talks to an OpenAI-compatible chat completions endpoint.
type AIClient struct {
	cfg    AIConfigSource
	client HTTPClient
	log    *zap.Logger
}

func NewAIClient(cfg AIConfigSource, client HTTPClient, log *zap.Logger) *AIClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &AIClient{cfg: cfg, client: client, log: log}
}

// Configured reports whether an API key is available.
func (c *AIClient) Configured(ctx context.Context) bool {
	return strings.TrimSpace(c.cfg.AIConfig(ctx).APIKey) != ""
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream,omitempty"`
}

func (c *AIClient) do(ctx context.Context, messages []ChatMessage, stream bool) (*http.Response, context.CancelFunc, error) {
	cfg := c.cfg.AIConfig(ctx)
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil, models.ErrAIUnavailable
	}
	model := cfg.Model
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}

	body, err := json.Marshal(chatCompletionRequest{Model: model, Messages: messages, Stream: stream})
	if err != nil {
		return nil, nil, err
	}

	cancel := context.CancelFunc(func() {})
	if cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, normalizeOpenAIEndpoint(cfg.BaseURL), bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("%w: %v", models.ErrAIUpstream, err)
	}
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		cancel()
		return nil, nil, fmt.Errorf("%w: status %d: %s", models.ErrAIUpstream, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return resp, cancel, nil
}

// Complete sends the conversation and returns the first choice's content.
func (c *AIClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	resp, cancel, err := c.do(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer cancel()
	defer func() { _ = resp.Body.Close() }()

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cc); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrAIBadResponse, err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", models.ErrAIBadResponse)
	}
	return cc.Choices[0].Message.Content, nil
}

// Stream sends the conversation with streaming enabled and calls onDelta for
// every content fragment. It returns the concatenated reply. An error from
// onDelta stops the stream.
func (c *AIClient) Stream(ctx context.Context, messages []ChatMessage, onDelta func(string) error) (string, error) {
	resp, cancel, err := c.do(ctx, messages, true)
	if err != nil {
		return "", err
	}
	defer cancel()
	defer func() { _ = resp.Body.Close() }()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			c.log.Debug("Skipping malformed stream chunk", zap.Error(err))
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		full.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return full.String(), err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("%w: %v", models.ErrAIUpstream, err)
	}
	return full.String(), nil
}

func normalizeOpenAIEndpoint(base string) string {
	endpoint := strings.TrimRight(strings.TrimSpace(base), "/")
	if endpoint == "" {
		endpoint = "https://api.openai.com"
	}
	switch {
	case strings.HasSuffix(endpoint, "/chat/completions"):
		return endpoint
	case strings.HasSuffix(endpoint, "/v1"):
		return endpoint + "/chat/completions"
	default:
		return endpoint + "/v1/chat/completions"
	}
}

// extractJSONObject returns the text between the first '{' and the last '}'.
// Models often wrap JSON in prose or code fences.
func extractJSONObject(s string) string {
	first := strings.IndexByte(s, '{')
	last := strings.LastIndexByte(s, '}')
	if first >= 0 && last > first {
		return s[first : last+1]
	}
	return s
}
