// Package tagger asks an OpenAI-compatible chat-completion endpoint for
// topical tags describing a page excerpt.
//
// The wire format is the /v1/chat/completions API shared by OpenAI, vLLM,
// Ollama, and llama.cpp servers; gateway authentication rides on
// operator-supplied extra headers rather than a real API key.
package tagger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MaxTags is the hard cap on tags kept from a model response.
const MaxTags = 6

// systemPrompt pins the model to strict JSON output. Parsing below is the
// single source of truth; prose responses fail the pass.
const systemPrompt = `Task: Content Tagging.
Constraints:
- Exactly 6 tags.
- Format: Raw JSON ONLY. No markdown code blocks. No intro/outro text.
- Tags: Single words only. No hyphens, no spaces, all lowercase.
- Schema: {"tags": ["word1", "word2", ...]}`

// Config configures the tagger client.
type Config struct {
	// Endpoint is the base URL of the completion service, without the
	// /v1/chat/completions suffix.
	Endpoint string
	// Model is the model identifier sent with every request.
	Model string
	// ExtraHeaders are attached to every outbound call.
	ExtraHeaders map[string]string
	// Timeout for the completion round-trip. Default: 120s.
	Timeout time.Duration
}

// Client calls the chat-completion endpoint. Safe for concurrent use.
type Client struct {
	endpoint string
	model    string
	headers  map[string]string
	client   *http.Client
}

// New creates a tagger Client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		headers:  cfg.ExtraHeaders,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatRequest is the JSON body sent to /v1/chat/completions.
type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
}

// chatResponse is the JSON response from /v1/chat/completions.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// tagPayload is the strict schema the model is instructed to emit.
type tagPayload struct {
	Tags []string `json:"tags"`
}

// Tag requests tags for the page at url described by excerpt. The model
// output must be a raw JSON object {"tags": [...]}; anything else fails.
// At most MaxTags tags are kept, in response order, unmodified.
func (c *Client) Tag(ctx context.Context, url, excerpt string) ([]string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("URL: %s\n\nCONTENT:\n%s\n\nJSON Output:", url, excerpt)},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.endpoint + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	// Placeholder credential; real gateways authenticate via extra headers.
	req.Header.Set("Authorization", "Bearer <nothing>")
	for name, value := range c.headers {
		req.Header.Set(name, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, endpoint, string(respBody))
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from %s", endpoint)
	}

	content := completion.Choices[0].Message.Content

	var payload tagPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("parse tags %q: %w", content, err)
	}

	tags := payload.Tags
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}
	return tags, nil
}

// ParseExtraHeaders splits a comma-separated list of "Name: Value" pairs.
// Malformed entries are skipped.
func ParseExtraHeaders(s string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		headers[name] = value
	}
	return headers
}
