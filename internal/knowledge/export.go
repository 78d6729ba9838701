// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pitagorin/internal/index"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// ExportEntry is one fragment as written to the export files.
type ExportEntry = types.Fragment

// ExportYAML writes every fragment to dataDir/index/export.yaml and returns
// the file path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return s.writeExport("export.yaml", data)
}

// ExportJSON writes every fragment to dataDir/index/export.json and returns
// the file path.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return s.writeExport("export.json", data)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	frags, err := s.Fragments(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if frags == nil {
		frags = []ExportEntry{}
	}
	return frags, nil
}

func (s *Store) writeExport(name string, data []byte) (string, error) {
	dir := index.Dir(s.dataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
