// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pitagorin/internal/container"
	"github.com/pdiddy/pitagorin/internal/embedding"
	"github.com/pdiddy/pitagorin/internal/index"
	"github.com/pdiddy/pitagorin/internal/inference"
	"github.com/pdiddy/pitagorin/internal/knowledge"
	"github.com/pdiddy/pitagorin/internal/logger"
	"github.com/pdiddy/pitagorin/internal/parse"
	"github.com/pdiddy/pitagorin/internal/secrets"
)

// openStore opens the configured index and wraps it in a knowledge store.
// withParser attaches a file parser for ingestion.
func openStore(ctx context.Context, withParser bool) (*knowledge.Store, error) {
	emb, err := embedding.New(appConfig.Embedding, appConfig.OllamaURL)
	if err != nil {
		return nil, err
	}
	idx, err := index.Open(ctx, appConfig, emb)
	if err != nil {
		return nil, err
	}
	logger.Debug("index %s with embedder %s", appConfig.KnowledgeBase.Backend, emb.Name())

	var parser knowledge.Parser
	if withParser {
		parser = newParser()
	}
	return knowledge.NewStore(idx, parser, appConfig.DataDir, appConfig.KnowledgeBase), nil
}

// newParser builds a file parser. PDF conversion is available only when a
// container runtime is found.
func newParser() *parse.Parser {
	rt, err := container.Select(appConfig.Parse.Runtime)
	if err != nil {
		logger.Debug("pdf conversion disabled: %v", err)
		return parse.New(nil, appConfig.Parse.MarkitdownImage)
	}
	logger.Debug("pdf conversion via %s", rt.Name())
	return parse.New(rt, appConfig.Parse.MarkitdownImage)
}

// newRunner builds the inference runner for pipeline steps.
func newRunner() (*inference.Runner, error) {
	cfg := appConfig.Inference
	if cfg.APIKey == "" {
		cfg.APIKey = secrets.Lookup(loadedSecrets, secrets.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	}
	backend, err := inference.New(cfg, appConfig.OllamaURL)
	if err != nil {
		return nil, err
	}
	logger.Debug("inference backend: %s", backend.Name())
	return inference.NewRunner(backend), nil
}

// readInput returns the joined args, or all of stdin when the only arg is "-".
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}
