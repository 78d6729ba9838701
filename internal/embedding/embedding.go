// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding turns text into fixed-size vectors for similarity search.
//
// Two embedders are provided: HashEmbedder is a local feature-hashing model
// that needs no network and gives stable vectors across runs; OllamaEmbedder
// calls a sentence-embedding model served by Ollama.
package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/pdiddy/pitagorin/pkg/types"
)

// Embedder converts text into a vector. Every vector produced by one
// embedder has the same length, reported by Dimensions.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Name() string
}

// New builds the embedder selected by cfg.
func New(cfg types.EmbeddingConfig, ollamaURL string) (Embedder, error) {
	switch cfg.Provider {
	case "", types.EmbeddingHash:
		return NewHashEmbedder(cfg.Dimensions), nil
	case types.EmbeddingOllama:
		return NewOllamaEmbedder(ollamaURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q: %w", cfg.Provider, types.ErrValidation)
	}
}

// Cosine returns the cosine similarity of a and b, or 0 when the lengths
// differ or either vector is zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// normalize scales v to unit length in place.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	n := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= n
	}
}
