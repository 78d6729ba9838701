// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// Defaults for the Ollama embedder.
const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "all-minilm"
)

// OllamaEmbedder requests embeddings from an Ollama server.
type OllamaEmbedder struct {
	client *api.Client
	model  string
	dims   int
}

// NewOllamaEmbedder creates an embedder for model served at rawURL. Empty
// arguments fall back to DefaultOllamaURL and DefaultOllamaModel.
func NewOllamaEmbedder(rawURL, model string) (*OllamaEmbedder, error) {
	if rawURL == "" {
		rawURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama url %q: %w", rawURL, err)
	}
	httpClient := &http.Client{Timeout: 30 * time.Second}
	return &OllamaEmbedder{client: api.NewClient(u, httpClient), model: model}, nil
}

// Name implements Embedder.
func (o *OllamaEmbedder) Name() string { return "ollama/" + o.model }

// Dimensions implements Embedder. It is zero until the first Embed call
// reports the model's vector size.
func (o *OllamaEmbedder) Dimensions() int { return o.dims }

// Embed implements Embedder.
func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  o.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings (%s): %w", o.model, err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama embeddings (%s): empty vector", o.model)
	}
	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	o.dims = len(vec)
	return vec, nil
}
