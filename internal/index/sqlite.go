// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pitagorin/internal/embedding"
	"github.com/pdiddy/pitagorin/internal/logger"
	"github.com/pdiddy/pitagorin/pkg/types"
)

// SQLiteIndex keeps fragments and their vectors in a SQLite database at
// dataDir/index/knowledge.db. Search is an exact cosine scan over the rows
// whose topic matches the filter.
type SQLiteIndex struct {
	db       *sql.DB
	embedder embedding.Embedder
	path     string
}

// NewSQLiteIndex opens or creates the index database under dataDir and
// creates the schema if it does not exist.
func NewSQLiteIndex(dataDir string, emb embedding.Embedder) (*SQLiteIndex, error) {
	dbDir := Dir(dataDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, retrievalError("creating index directory", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, retrievalError("opening database", err)
	}

	s := &SQLiteIndex{db: db, embedder: emb, path: dbPath}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, retrievalError("creating schema", err)
	}
	logger.Debug("opened sqlite index %s (embedder %s)", dbPath, emb.Name())
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteIndex) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS fragments (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			text TEXT NOT NULL,
			topic TEXT,
			metadata TEXT NOT NULL,
			vector BLOB NOT NULL,
			dims INTEGER NOT NULL,
			embedder TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fragments_topic ON fragments(topic)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// AddVector implements Index.
func (s *SQLiteIndex) AddVector(ctx context.Context, id, text string, meta types.Metadata) error {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return retrievalError("embedding fragment", err)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return retrievalError("encoding metadata", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return retrievalError("beginning transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO fragments (id, text, topic, metadata, vector, dims, embedder, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, text, meta[types.MetaTopic], string(metaJSON),
		encodeVector(vec), len(vec), s.embedder.Name(),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return retrievalError("inserting fragment "+id, err)
	}
	if err := tx.Commit(); err != nil {
		return retrievalError("committing fragment "+id, err)
	}
	return nil
}

type scored struct {
	text  string
	score float64
}

// Search implements Index.
func (s *SQLiteIndex) Search(ctx context.Context, query string, topics []string, limit int) ([]string, error) {
	if len(topics) == 0 || limit <= 0 {
		return []string{}, nil
	}
	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, retrievalError("embedding query", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(topics)), ",")
	args := make([]any, len(topics))
	for i, t := range topics {
		args[i] = t
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, vector FROM fragments WHERE topic IN (`+placeholders+`) ORDER BY rowid`,
		args...)
	if err != nil {
		return nil, retrievalError("querying fragments", err)
	}
	defer rows.Close()

	var hits []scored
	for rows.Next() {
		var id, text string
		var blob []byte
		if err := rows.Scan(&id, &text, &blob); err != nil {
			return nil, retrievalError("scanning fragment", err)
		}
		vec, ok := decodeVector(blob)
		if !ok || len(vec) != len(qvec) {
			logger.Debug("skipping fragment %s: vector has %d bytes, query has %d dims", id, len(blob), len(qvec))
			continue
		}
		hits = append(hits, scored{text: text, score: embedding.Cosine(qvec, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, retrievalError("iterating fragments", err)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.text
	}
	return out, nil
}

// ListDistinctValues implements Index. Rows whose metadata does not decode
// are skipped.
func (s *SQLiteIndex) ListDistinctValues(ctx context.Context, key string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, metadata FROM fragments`)
	if err != nil {
		return nil, retrievalError("scanning metadata", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, retrievalError("scanning metadata", err)
		}
		var meta map[string]any
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			logger.Debug("skipping fragment %s: malformed metadata: %v", id, err)
			continue
		}
		if v, ok := meta[key].(string); ok {
			seen[v] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, retrievalError("iterating metadata", err)
	}
	return sortedKeys(seen), nil
}

// Fragments implements Index, returning fragments in insertion order.
func (s *SQLiteIndex) Fragments(ctx context.Context) ([]types.Fragment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, metadata FROM fragments ORDER BY rowid`)
	if err != nil {
		return nil, retrievalError("listing fragments", err)
	}
	defer rows.Close()

	var out []types.Fragment
	for rows.Next() {
		var f types.Fragment
		var raw string
		if err := rows.Scan(&f.ID, &f.Text, &raw); err != nil {
			return nil, retrievalError("scanning fragment", err)
		}
		var meta types.Metadata
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			logger.Debug("fragment %s: malformed metadata: %v", f.ID, err)
		}
		f.Topic = meta[types.MetaTopic]
		f.Source = meta[types.MetaSource]
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, retrievalError("iterating fragments", err)
	}
	return out, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// encodeVector packs v as little-endian float32 values.
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector reverses encodeVector. ok is false when data is not a whole
// number of float32 values.
func decodeVector(data []byte) ([]float32, bool) {
	if len(data)%4 != 0 {
		return nil, false
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats, true
}
