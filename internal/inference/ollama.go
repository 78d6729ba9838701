// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/pdiddy/pitagorin/pkg/types"
)

// DefaultOllamaURL is the address of a local Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaBackend runs steps on models served by Ollama.
type OllamaBackend struct {
	client    *api.Client
	maxTokens int
}

// NewOllamaBackend creates a backend for the server at rawURL ("" means
// DefaultOllamaURL). maxTokens caps output length (0 means DefaultMaxTokens).
func NewOllamaBackend(rawURL string, maxTokens int) (*OllamaBackend, error) {
	if rawURL == "" {
		rawURL = DefaultOllamaURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama url %q: %w", rawURL, err)
	}
	httpClient := &http.Client{Timeout: 5 * time.Minute}
	return &OllamaBackend{
		client:    api.NewClient(u, httpClient),
		maxTokens: maxTokensOrDefault(maxTokens),
	}, nil
}

// Name implements Backend.
func (o *OllamaBackend) Name() string { return "ollama" }

// Load implements Backend. It confirms the model is available on the server.
func (o *OllamaBackend) Load(ctx context.Context, task types.TaskKind, modelID string) (Model, error) {
	if strings.TrimSpace(modelID) == "" {
		return nil, fmt.Errorf("empty model id: %w", types.ErrValidation)
	}
	in, err := newInstruction(task)
	if err != nil {
		return nil, err
	}
	if _, err := o.client.Show(ctx, &api.ShowRequest{Model: modelID}); err != nil {
		return nil, fmt.Errorf("ollama model %s: %w", modelID, err)
	}
	return &ollamaModel{backend: o, modelID: modelID, in: in}, nil
}

type ollamaModel struct {
	backend *OllamaBackend
	modelID string
	in      instruction
}

// Invoke implements Model with a single non-streamed generate call.
func (m *ollamaModel) Invoke(ctx context.Context, input string) (Result, error) {
	prompt, err := m.in.render(input)
	if err != nil {
		return nil, err
	}
	stream := false
	req := &api.GenerateRequest{
		Model:  m.modelID,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]any{
			"num_predict": m.backend.maxTokens,
		},
	}

	var out strings.Builder
	err = m.backend.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama generate (%s): %w", m.modelID, err)
	}
	return m.in.result(strings.TrimSpace(out.String())), nil
}
