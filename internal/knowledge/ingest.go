// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pdiddy/pitagorin/internal/acquire"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// downloadRetries bounds retries of transient download failures.
const downloadRetries = 2

// IngestSummary holds counts from a file ingestion run.
type IngestSummary struct {
	Stored  int
	Skipped int
	Failed  int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Stored + s.Skipped + s.Failed
}

// IngestFile parses the file at path by its extension and stores the text
// under topic with the file's base name as source. A parse failure returns
// an error matching types.ErrExternalSource and nothing is written.
func (s *Store) IngestFile(ctx context.Context, path, topic string) (id string, stored bool, err error) {
	if s.parser == nil {
		return "", false, fmt.Errorf("ingesting %s: no parser configured: %w", path, types.ErrValidation)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", path, err)
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return s.ingestBytes(ctx, path, data, ext, topic, filepath.Base(path))
}

// IngestURL downloads rawURL and stores its parsed text under topic with
// the last URL path segment as source.
func (s *Store) IngestURL(ctx context.Context, rawURL, topic string) (id string, stored bool, err error) {
	if s.parser == nil {
		return "", false, fmt.Errorf("ingesting %s: no parser configured: %w", rawURL, types.ErrValidation)
	}
	doc, err := acquire.Download(ctx, s.client, rawURL, downloadRetries)
	if err != nil {
		return "", false, err
	}
	return s.ingestBytes(ctx, rawURL, doc.Data, doc.Ext, topic, doc.Name)
}

func (s *Store) ingestBytes(ctx context.Context, origin string, data []byte, ext, topic, source string) (string, bool, error) {
	text, err := s.parser.Parse(data, ext)
	if err != nil {
		if !errors.Is(err, types.ErrExternalSource) {
			err = fmt.Errorf("%w: %w", types.ErrExternalSource, err)
		}
		return "", false, fmt.Errorf("parsing %s: %w", origin, err)
	}
	return s.AddDocument(ctx, text, topic, source)
}

// IngestGlob expands each pattern (doublestar syntax, e.g. "docs/**/*.md")
// and ingests every matching file under topic. Patterns that are http(s)
// URLs are downloaded instead. Per-file progress is written
// to w; per-file failures are counted and do not stop the run.
func (s *Store) IngestGlob(ctx context.Context, patterns []string, topic string, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		if acquire.IsURL(pattern) {
			if !seen[pattern] {
				seen[pattern] = true
				files = append(files, pattern)
			}
			continue
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return summary, fmt.Errorf("expanding %q: %w", pattern, types.ErrValidation)
		}
		if len(matches) == 0 {
			fmt.Fprintf(w, "no files match %s\n", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	for _, f := range files {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		ingest := s.IngestFile
		if acquire.IsURL(f) {
			ingest = s.IngestURL
		}
		id, stored, err := ingest(ctx, f, topic)
		switch {
		case err != nil:
			fmt.Fprintf(w, "failed  %s: %v\n", f, err)
			summary.Failed++
		case !stored:
			fmt.Fprintf(w, "skipped %s (empty)\n", f)
			summary.Skipped++
		default:
			fmt.Fprintf(w, "stored  %s as %s\n", f, id)
			summary.Stored++
		}
	}

	fmt.Fprintf(w, "\nstored: %d, skipped: %d, failed: %d\n",
		summary.Stored, summary.Skipped, summary.Failed)
	return summary, nil
}
