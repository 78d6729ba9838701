// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge owns the fragment lifecycle of the local knowledge base:
// adding text under a topic, retrieving topic-filtered context for a query,
// listing topics, ingesting files or URLs, and exporting the stored fragments.
package knowledge

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/pitagorin/internal/acquire"
	"github.com/pdiddy/pitagorin/internal/index"
	"github.com/pdiddy/pitagorin/internal/logger"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// DefaultResultCount is the number of fragments returned per query when the
// caller does not ask for a specific count.
const DefaultResultCount = 3

// contextSeparator joins retrieved fragments into one context block.
const contextSeparator = "\n\n"

// Parser turns raw file bytes into text for a given extension.
type Parser interface {
	Parse(data []byte, ext string) (string, error)
}

// Store manages fragments on top of an embedding index. It holds no state
// besides the index handle and its defaults.
type Store struct {
	idx          index.Index
	parser       Parser
	client       *http.Client
	dataDir      string
	resultCount  int
	defaultTopic string
}

// NewStore wraps idx. parser may be nil when file ingestion is not needed.
func NewStore(idx index.Index, parser Parser, dataDir string, cfg types.KnowledgeBaseConfig) *Store {
	rc := cfg.ResultCount
	if rc <= 0 {
		rc = DefaultResultCount
	}
	topic := strings.TrimSpace(cfg.DefaultTopic)
	if topic == "" {
		topic = types.DefaultTopic
	}
	return &Store{
		idx:          idx,
		parser:       parser,
		client:       acquire.NewClient(),
		dataDir:      dataDir,
		resultCount:  rc,
		defaultTopic: topic,
	}
}

// Close releases the underlying index.
func (s *Store) Close() error {
	return s.idx.Close()
}

// AddDocument stores text under topic. Blank text is a no-op that returns
// stored=false and no error. An empty topic falls back to the configured
// default topic and an empty source to "manual".
func (s *Store) AddDocument(ctx context.Context, text, topic, source string) (id string, stored bool, err error) {
	if strings.TrimSpace(text) == "" {
		logger.Debug("skipping blank document")
		return "", false, nil
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = s.defaultTopic
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = types.DefaultSource
	}

	frag := types.Fragment{ID: uuid.New().String(), Text: text, Topic: topic, Source: source}
	if err := s.idx.AddVector(ctx, frag.ID, frag.Text, frag.Metadata()); err != nil {
		return "", false, fmt.Errorf("adding document to %s: %w", topic, err)
	}
	logger.Debug("stored fragment %s in %s (%d chars, source %s)", frag.ID, topic, len(text), source)
	return frag.ID, true, nil
}

// QueryKnowledge returns the fragments most similar to query among those
// tagged with one of topics, joined by blank lines. It returns "" when
// topics is empty or nothing matches. A non-positive resultCount uses the
// store default.
func (s *Store) QueryKnowledge(ctx context.Context, query string, topics []string, resultCount int) (string, error) {
	if len(topics) == 0 {
		return "", nil
	}
	if resultCount <= 0 {
		resultCount = s.resultCount
	}
	hits, err := s.idx.Search(ctx, query, topics, resultCount)
	if err != nil {
		return "", fmt.Errorf("querying knowledge: %w", err)
	}
	logger.Debug("retrieved %d fragments from %d topics", len(hits), len(topics))
	return strings.Join(hits, contextSeparator), nil
}

// ListTopics returns the sorted distinct topics of all stored fragments.
func (s *Store) ListTopics(ctx context.Context) ([]string, error) {
	topics, err := s.idx.ListDistinctValues(ctx, types.MetaTopic)
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}
	return topics, nil
}

// Fragments returns every stored fragment.
func (s *Store) Fragments(ctx context.Context) ([]types.Fragment, error) {
	frags, err := s.idx.Fragments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing fragments: %w", err)
	}
	return frags, nil
}
