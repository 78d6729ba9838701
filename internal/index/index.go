// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index stores embedded text fragments and answers metadata-filtered
// nearest-neighbor queries over them.
//
// Two backends implement Index: SQLiteIndex keeps vectors in a local SQLite
// database and scans them exactly; QdrantIndex delegates storage and search
// to a Qdrant server.
package index

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pdiddy/pitagorin/internal/embedding"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// Index is an embedding index with metadata filtering.
type Index interface {
	// AddVector embeds text and persists it with id and meta. Duplicate text
	// under a new id is a new entry.
	AddVector(ctx context.Context, id, text string, meta types.Metadata) error

	// Search returns up to limit texts whose topic is one of topics, most
	// similar to query first. No match yields an empty slice.
	Search(ctx context.Context, query string, topics []string, limit int) ([]string, error)

	// ListDistinctValues returns the sorted distinct values of key across all
	// entries. Entries without the key are skipped.
	ListDistinctValues(ctx context.Context, key string) ([]string, error)

	// Fragments returns every stored fragment.
	Fragments(ctx context.Context) ([]types.Fragment, error)

	Close() error
}

const (
	indexDir = "index"
	dbFile   = "knowledge.db"
)

// Dir returns the directory holding index artifacts under dataDir.
func Dir(dataDir string) string {
	return filepath.Join(dataDir, indexDir)
}

// Open builds the index selected by cfg.
func Open(ctx context.Context, cfg types.AppConfig, emb embedding.Embedder) (Index, error) {
	switch cfg.KnowledgeBase.Backend {
	case "", types.IndexSQLite:
		return NewSQLiteIndex(cfg.DataDir, emb)
	case types.IndexQdrant:
		return NewQdrantIndex(ctx, cfg.Qdrant, emb)
	default:
		return nil, fmt.Errorf("unknown index backend %q: %w", cfg.KnowledgeBase.Backend, types.ErrValidation)
	}
}

// retrievalError wraps err so it matches both types.ErrRetrieval and err.
func retrievalError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, types.ErrRetrieval, err)
}
