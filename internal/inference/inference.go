// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inference runs a single model over a text for a pipeline step.
//
// A Backend loads Model handles for a (task, model) pair; the Runner caches
// those handles for the life of the process and reduces each raw Result to
// the text the next step consumes.
package inference

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/pitagorin/internal/logger"
	"github.com/pdiddy/pitagorin/internal/registry"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// Output field names, one per task family.
const (
	FieldSummary     = "summary_text"
	FieldGenerated   = "generated_text"
	FieldTranslation = "translation_text"
)

// DefaultMaxTokens caps each step's output when no limit is configured.
const DefaultMaxTokens = 512

// Result is the raw output record of one model invocation.
type Result map[string]any

// Model is a loaded model ready to transform text.
type Model interface {
	Invoke(ctx context.Context, input string) (Result, error)
}

// Backend loads models for a task.
type Backend interface {
	Name() string
	Load(ctx context.Context, task types.TaskKind, modelID string) (Model, error)
}

// Runner executes steps against a Backend, loading each (task, model) pair
// at most once.
type Runner struct {
	backend Backend
	models  *registry.Registry[Model]
}

// NewRunner returns a Runner backed by b.
func NewRunner(b Backend) *Runner {
	return &Runner{backend: b, models: registry.New[Model]()}
}

// Loaded returns the number of cached model handles.
func (r *Runner) Loaded() int {
	return r.models.Len()
}

// Models returns the "task|model" keys of the cached model handles, sorted.
func (r *Runner) Models() []string {
	return r.models.Keys()
}

// Run loads (or reuses) the model for task and modelID, invokes it on input,
// and returns the normalized text output.
func (r *Runner) Run(ctx context.Context, task types.TaskKind, modelID, input string) (string, error) {
	key := string(task) + "|" + modelID
	m, err := r.models.Get(key, func() (Model, error) {
		logger.Info("loading %s model %s for %s", r.backend.Name(), modelID, task)
		return r.backend.Load(ctx, task, modelID)
	})
	if err != nil {
		return "", fmt.Errorf("loading %s for %s: %w", modelID, task, err)
	}

	res, err := m.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("running %s: %w", modelID, err)
	}
	return Normalize(task, res), nil
}

// OutputField returns the Result field that holds the text output for task,
// or "" for task kinds without a known field.
func OutputField(task types.TaskKind) string {
	switch {
	case task == types.TaskSummarization:
		return FieldSummary
	case task == types.TaskGeneration, task == types.TaskTextGeneration:
		return FieldGenerated
	case task.IsTranslation():
		return FieldTranslation
	}
	return ""
}

// Normalize extracts the text output of res for task. When the task has no
// known field or the field is missing, the whole result is rendered as JSON.
func Normalize(task types.TaskKind, res Result) string {
	if field := OutputField(task); field != "" {
		if s, ok := res[field].(string); ok {
			return s
		}
	}
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprint(map[string]any(res))
	}
	return string(data)
}

// New builds the backend selected by cfg.
func New(cfg types.InferenceConfig, ollamaURL string) (Backend, error) {
	switch cfg.Backend {
	case "", types.InferenceOllama:
		return NewOllamaBackend(ollamaURL, cfg.MaxTokens)
	case types.InferenceClaude:
		return &ClaudeBackend{APIKey: cfg.APIKey, MaxTokens: cfg.MaxTokens, MaxRetries: cfg.MaxRetries}, nil
	default:
		return nil, fmt.Errorf("unknown inference backend %q: %w", cfg.Backend, types.ErrValidation)
	}
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxTokens
	}
	return n
}
