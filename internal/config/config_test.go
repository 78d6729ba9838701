package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pitagorin/internal/inference"
	"github.com/pdiddy/pitagorin/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	Init(v, filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, types.IndexSQLite, cfg.KnowledgeBase.Backend)
	assert.Equal(t, 3, cfg.KnowledgeBase.ResultCount)
	assert.Equal(t, "General", cfg.KnowledgeBase.DefaultTopic)
	assert.Equal(t, types.EmbeddingHash, cfg.Embedding.Provider)
	assert.Equal(t, 384, cfg.Embedding.Dimensions)
	assert.Equal(t, types.InferenceOllama, cfg.Inference.Backend)
	assert.Equal(t, 512, cfg.Inference.MaxTokens)
	assert.Equal(t, "markitdown:latest", cfg.Parse.MarkitdownImage)
	assert.Equal(t, inference.DefaultCatalog, cfg.Inference.Catalog)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "pitagorin.yaml", `
data_dir: /srv/pitagorin
knowledge_base:
  backend: qdrant
  result_count: 5
qdrant:
  addr: qdrant:6334
inference:
  backend: claude
  catalog:
    - name: Haiku
      task: summarization
      model_id: claude-haiku
`)
	v := viper.New()
	Init(v, path)
	used, err := Read(v)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/srv/pitagorin", cfg.DataDir)
	assert.Equal(t, types.IndexQdrant, cfg.KnowledgeBase.Backend)
	assert.Equal(t, 5, cfg.KnowledgeBase.ResultCount)
	assert.Equal(t, "qdrant:6334", cfg.Qdrant.Addr)
	assert.Equal(t, "knowledge_base", cfg.Qdrant.Collection)
	assert.Equal(t, types.InferenceClaude, cfg.Inference.Backend)
	assert.Equal(t, []types.CatalogEntry{
		{Name: "Haiku", Task: types.TaskSummarization, ModelID: "claude-haiku"},
	}, cfg.Inference.Catalog)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PITAGORIN_DATA_DIR", "/tmp/kb")
	t.Setenv("PITAGORIN_INFERENCE_API_KEY", "sk-test")
	t.Setenv("PITAGORIN_KNOWLEDGE_BASE_RESULT_COUNT", "7")

	v := viper.New()
	Init(v, "")
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/kb", cfg.DataDir)
	assert.Equal(t, "sk-test", cfg.Inference.APIKey)
	assert.Equal(t, 7, cfg.KnowledgeBase.ResultCount)
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", `
knowledge_base:
  backend: faiss
embedding:
  provider: openai
inference:
  catalog:
    - name: Broken
`)
	v := viper.New()
	Init(v, path)
	_, err := Read(v)
	require.NoError(t, err)

	_, err = Load(v)
	require.ErrorIs(t, err, types.ErrValidation)
	assert.Contains(t, err.Error(), `knowledge_base.backend "faiss"`)
	assert.Contains(t, err.Error(), `embedding.provider "openai"`)
	assert.Contains(t, err.Error(), "inference.catalog[0]")
}

func TestReadMalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.yaml", "data_dir: [unclosed\n")
	v := viper.New()
	Init(v, path)
	_, err := Read(v)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "PITAGORIN_TEST_DOTENV=from-file\nPITAGORIN_TEST_KEEP=from-file\n")
	t.Setenv("PITAGORIN_TEST_KEEP", "from-env")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	t.Cleanup(func() { os.Unsetenv("PITAGORIN_TEST_DOTENV") })

	assert.Equal(t, "from-file", os.Getenv("PITAGORIN_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("PITAGORIN_TEST_KEEP"))
}
