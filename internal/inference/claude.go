// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/pitagorin/internal/httputil"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend runs steps through the Claude Messages API. The model id
// of each step names the Claude model.
type ClaudeBackend struct {
	APIKey     string
	MaxTokens  int
	MaxRetries int
	Client     *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Name implements Backend.
func (c *ClaudeBackend) Name() string { return "claude" }

// Load implements Backend. No network call is made; credentials and task
// shape are checked up front.
func (c *ClaudeBackend) Load(_ context.Context, task types.TaskKind, modelID string) (Model, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("claude backend: missing API key: %w", types.ErrValidation)
	}
	if strings.TrimSpace(modelID) == "" {
		return nil, fmt.Errorf("empty model id: %w", types.ErrValidation)
	}
	in, err := newInstruction(task)
	if err != nil {
		return nil, err
	}
	return &claudeModel{backend: c, modelID: modelID, in: in}, nil
}

type claudeModel struct {
	backend *ClaudeBackend
	modelID string
	in      instruction
}

// Invoke implements Model.
func (m *claudeModel) Invoke(ctx context.Context, input string) (Result, error) {
	prompt, err := m.in.render(input)
	if err != nil {
		return nil, err
	}
	text, err := m.backend.complete(ctx, m.modelID, prompt)
	if err != nil {
		return nil, err
	}
	return m.in.result(text), nil
}

func (c *ClaudeBackend) complete(ctx context.Context, model, prompt string) (string, error) {
	reqBody := claudeRequest{
		Model:     model,
		MaxTokens: maxTokensOrDefault(c.MaxTokens),
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, c.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var out strings.Builder
	for _, block := range cResp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("no text content in Claude API response")
	}
	return strings.TrimSpace(out.String()), nil
}
