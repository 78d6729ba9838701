// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// TaskKind names the operation a pipeline step asks the model to perform.
type TaskKind string

const (
	TaskGeneration      TaskKind = "text2text-generation"
	TaskTextGeneration  TaskKind = "text-generation"
	TaskSummarization   TaskKind = "summarization"
	TaskTranslationEnEs TaskKind = "translation_en_to_es"
)

// translationPrefix starts every translation task kind, e.g. translation_en_to_es.
const translationPrefix = "translation_"

// IsTranslation reports whether the task is a translation_<src>_to_<dst> kind.
func (k TaskKind) IsTranslation() bool {
	return strings.HasPrefix(string(k), translationPrefix)
}

// Languages returns the source and target language codes of a translation
// task. ok is false for other kinds or a malformed name.
func (k TaskKind) Languages() (src, dst string, ok bool) {
	if !k.IsTranslation() {
		return "", "", false
	}
	rest := strings.TrimPrefix(string(k), translationPrefix)
	src, dst, ok = strings.Cut(rest, "_to_")
	if !ok || src == "" || dst == "" {
		return "", "", false
	}
	return src, dst, true
}

// Step is one inference invocation in a pipeline.
type Step struct {
	Task    TaskKind `json:"task" yaml:"task" mapstructure:"task"`
	ModelID string   `json:"model_id" yaml:"model_id" mapstructure:"model_id"`
}

// CatalogEntry maps a human-readable model name to the step it produces.
type CatalogEntry struct {
	Name    string   `json:"name" yaml:"name" mapstructure:"name"`
	Task    TaskKind `json:"task" yaml:"task" mapstructure:"task"`
	ModelID string   `json:"model_id" yaml:"model_id" mapstructure:"model_id"`
}

// Step returns the pipeline step for the catalog entry.
func (e CatalogEntry) Step() Step {
	return Step{Task: e.Task, ModelID: e.ModelID}
}

// PipelineFile is the on-disk form of a reusable pipeline definition.
type PipelineFile struct {
	Steps []Step `json:"steps" yaml:"steps"`
}
