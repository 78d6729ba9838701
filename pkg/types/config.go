package types

// IndexBackend identifies the vector storage used by the knowledge base.
type IndexBackend string

const (
	IndexSQLite IndexBackend = "sqlite"
	IndexQdrant IndexBackend = "qdrant"
)

// KnowledgeBaseConfig holds settings for the knowledge store.
type KnowledgeBaseConfig struct {
	// Backend selects the vector index: sqlite or qdrant.
	Backend IndexBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// ResultCount is the default number of fragments returned per query (default 3).
	ResultCount int `json:"result_count" yaml:"result_count" mapstructure:"result_count"`

	// DefaultTopic labels fragments added without a topic (default "General").
	DefaultTopic string `json:"default_topic" yaml:"default_topic" mapstructure:"default_topic"`
}

// QdrantConfig holds connection settings for the Qdrant index backend.
type QdrantConfig struct {
	// Addr is the gRPC host:port of the Qdrant server (default "localhost:6334").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// Collection is the collection that stores fragments (default "knowledge_base").
	Collection string `json:"collection" yaml:"collection" mapstructure:"collection"`
}

// EmbeddingProvider identifies the text embedder.
type EmbeddingProvider string

const (
	EmbeddingHash   EmbeddingProvider = "hash"
	EmbeddingOllama EmbeddingProvider = "ollama"
)

// EmbeddingConfig holds settings for turning text into vectors.
type EmbeddingConfig struct {
	// Provider selects the embedder: hash (local, offline) or ollama.
	Provider EmbeddingProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the embedding model name for remote providers (default "all-minilm").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// Dimensions is the vector size of the hash embedder (default 384).
	Dimensions int `json:"dimensions" yaml:"dimensions" mapstructure:"dimensions"`
}

// InferenceBackend identifies the service that runs pipeline steps.
type InferenceBackend string

const (
	InferenceOllama InferenceBackend = "ollama"
	InferenceClaude InferenceBackend = "claude"
)

// InferenceConfig holds settings for pipeline step execution.
type InferenceConfig struct {
	// Backend selects the model runtime: ollama or claude.
	Backend InferenceBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// APIKey is the authentication key for hosted backends.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries is the number of retry attempts for hosted API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// MaxTokens caps the length of each step's output (default 512).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Catalog maps human-readable model names to pipeline steps.
	Catalog []CatalogEntry `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}

// ParseConfig holds settings for document parsing.
type ParseConfig struct {
	// Runtime forces a container runtime for PDF extraction ("docker" or
	// "podman"). Empty means detect.
	Runtime string `json:"runtime,omitempty" yaml:"runtime,omitempty" mapstructure:"runtime"`

	// MarkitdownImage is the container image used to convert PDFs.
	MarkitdownImage string `json:"markitdown_image" yaml:"markitdown_image" mapstructure:"markitdown_image"`
}

// AppConfig groups every setting the CLI reads from file and environment.
type AppConfig struct {
	// DataDir is the base directory for persisted state (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// OllamaURL is the base URL of the Ollama server shared by embedding and inference.
	OllamaURL string `json:"ollama_url" yaml:"ollama_url" mapstructure:"ollama_url"`

	KnowledgeBase KnowledgeBaseConfig `json:"knowledge_base" yaml:"knowledge_base" mapstructure:"knowledge_base"`
	Qdrant        QdrantConfig        `json:"qdrant" yaml:"qdrant" mapstructure:"qdrant"`
	Embedding     EmbeddingConfig     `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
	Inference     InferenceConfig     `json:"inference" yaml:"inference" mapstructure:"inference"`
	Parse         ParseConfig         `json:"parse" yaml:"parse" mapstructure:"parse"`
}
