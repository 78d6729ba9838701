// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package inference

import (
	"fmt"
	"strings"

	"github.com/pdiddy/pitagorin/pkg/types"
)

// DefaultCatalog is the model catalog used when the configuration does not
// define one.
var DefaultCatalog = []types.CatalogEntry{
	{Name: "Assistant", Task: types.TaskGeneration, ModelID: "llama3.2"},
	{Name: "Translator EN-ES", Task: types.TaskTranslationEnEs, ModelID: "llama3.2"},
	{Name: "Summarizer", Task: types.TaskSummarization, ModelID: "llama3.2"},
}

// FindEntry returns the catalog entry whose name matches name, ignoring
// case and surrounding space.
func FindEntry(catalog []types.CatalogEntry, name string) (types.CatalogEntry, error) {
	want := strings.TrimSpace(name)
	for _, e := range catalog {
		if strings.EqualFold(e.Name, want) {
			return e, nil
		}
	}
	names := make([]string, len(catalog))
	for i, e := range catalog {
		names[i] = e.Name
	}
	return types.CatalogEntry{}, fmt.Errorf("unknown model %q (available: %s): %w",
		name, strings.Join(names, ", "), types.ErrValidation)
}

// ParseStep resolves a step reference. A reference is either a catalog
// name or an explicit "task:model_id" pair.
func ParseStep(catalog []types.CatalogEntry, ref string) (types.Step, error) {
	if e, err := FindEntry(catalog, ref); err == nil {
		return e.Step(), nil
	}
	task, model, ok := strings.Cut(strings.TrimSpace(ref), ":")
	if !ok || task == "" || model == "" {
		_, err := FindEntry(catalog, ref)
		return types.Step{}, err
	}
	return types.Step{Task: types.TaskKind(task), ModelID: model}, nil
}
