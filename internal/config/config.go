// Package config loads pitagorin settings from pitagorin.yaml, PITAGORIN_*
// environment variables, and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/pitagorin/internal/embedding"
	"github.com/pdiddy/pitagorin/internal/index"
	"github.com/pdiddy/pitagorin/internal/inference"
	"github.com/pdiddy/pitagorin/internal/knowledge"
	"github.com/pdiddy/pitagorin/internal/parse"
	"github.com/pdiddy/pitagorin/pkg/types"
)

const (
	// Name is the config file base name and the per-user config directory.
	Name = "pitagorin"

	// EnvPrefix prefixes environment overrides, e.g. PITAGORIN_DATA_DIR.
	EnvPrefix = "PITAGORIN"
)

// SetDefaults registers the default value of every known key. Keys must be
// registered for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("ollama_url", embedding.DefaultOllamaURL)

	v.SetDefault("knowledge_base.backend", string(types.IndexSQLite))
	v.SetDefault("knowledge_base.result_count", knowledge.DefaultResultCount)
	v.SetDefault("knowledge_base.default_topic", types.DefaultTopic)

	v.SetDefault("qdrant.addr", index.DefaultQdrantAddr)
	v.SetDefault("qdrant.collection", index.DefaultQdrantCollection)

	v.SetDefault("embedding.provider", string(types.EmbeddingHash))
	v.SetDefault("embedding.model", embedding.DefaultOllamaModel)
	v.SetDefault("embedding.dimensions", embedding.DefaultDimensions)

	v.SetDefault("inference.backend", string(types.InferenceOllama))
	v.SetDefault("inference.api_key", "")
	v.SetDefault("inference.max_retries", 3)
	v.SetDefault("inference.max_tokens", inference.DefaultMaxTokens)

	v.SetDefault("parse.runtime", "")
	v.SetDefault("parse.markitdown_image", parse.ImageMarkitdown)
}

// Init prepares v to read cfgFile, or pitagorin.yaml from the working
// directory and ~/.config/pitagorin/ when cfgFile is empty.
func Init(v *viper.Viper, cfgFile string) {
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Read reads the config file if one is found. It returns the path used, or
// "" when no file exists. A file that exists but fails to parse is an error.
func Read(v *viper.Viper) (string, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w: %w", types.ErrValidation, err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes v into an AppConfig and fills values the file left empty.
func Load(v *viper.Viper) (types.AppConfig, error) {
	var cfg types.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w: %w", types.ErrValidation, err)
	}
	if len(cfg.Inference.Catalog) == 0 {
		cfg.Inference.Catalog = append([]types.CatalogEntry(nil), inference.DefaultCatalog...)
	}
	if cfg.KnowledgeBase.ResultCount <= 0 {
		cfg.KnowledgeBase.ResultCount = knowledge.DefaultResultCount
	}
	return cfg, Validate(cfg)
}

// Validate rejects unknown backend names.
func Validate(cfg types.AppConfig) error {
	var problems []string
	switch cfg.KnowledgeBase.Backend {
	case types.IndexSQLite, types.IndexQdrant:
	default:
		problems = append(problems, fmt.Sprintf("knowledge_base.backend %q (want sqlite or qdrant)", cfg.KnowledgeBase.Backend))
	}
	switch cfg.Embedding.Provider {
	case types.EmbeddingHash, types.EmbeddingOllama:
	default:
		problems = append(problems, fmt.Sprintf("embedding.provider %q (want hash or ollama)", cfg.Embedding.Provider))
	}
	switch cfg.Inference.Backend {
	case types.InferenceOllama, types.InferenceClaude:
	default:
		problems = append(problems, fmt.Sprintf("inference.backend %q (want ollama or claude)", cfg.Inference.Backend))
	}
	for i, e := range cfg.Inference.Catalog {
		if strings.TrimSpace(e.Name) == "" || e.Task == "" || strings.TrimSpace(e.ModelID) == "" {
			problems = append(problems, fmt.Sprintf("inference.catalog[%d]: name, task, and model_id are required", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s: %w", strings.Join(problems, "; "), types.ErrValidation)
	}
	return nil
}
