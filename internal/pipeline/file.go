// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pitagorin/pkg/types"
)

// LoadFile reads a pipeline definition from a YAML file:
//
//	steps:
//	  - task: summarization
//	    model_id: llama3.2
//	  - task: translation_en_to_es
//	    model_id: llama3.2
func LoadFile(path string) ([]types.Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline %s: %w", path, err)
	}
	var pf types.PipelineFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing pipeline %s: %w: %w", path, types.ErrValidation, err)
	}
	for i, s := range pf.Steps {
		if strings.TrimSpace(string(s.Task)) == "" || strings.TrimSpace(s.ModelID) == "" {
			return nil, fmt.Errorf("pipeline %s: step %d needs task and model_id: %w", path, i+1, types.ErrValidation)
		}
	}
	return pf.Steps, nil
}

// SaveFile writes steps to path in the format LoadFile reads.
func SaveFile(path string, steps []types.Step) error {
	data, err := yaml.Marshal(types.PipelineFile{Steps: steps})
	if err != nil {
		return fmt.Errorf("marshaling pipeline: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing pipeline %s: %w", path, err)
	}
	return nil
}
