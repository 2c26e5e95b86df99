package config

import "time"

const (
	defaultAPIListen       = ":5001"
	defaultClientAPITarget = "http://localhost:5001"

	defaultIntercomBaseURL   = "https://api.intercom.io"
	defaultIntercomRateLimit = 5.0

	defaultStorageProvider  = "file"
	defaultSnapshotPath     = "info.json"
	defaultSupplementalPath = "supplemental_info.json"
	defaultEmbeddingLogPath = "logs/embeddings_log.txt"

	defaultVectorProvider   = "memory"
	defaultVectorCollection = "ragbot"

	defaultOllamaTarget        = "http://localhost:11434"
	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingModel      = "all-minilm"
	defaultEmbeddingDimensions = 384
	defaultEmbeddingWorkers    = 4

	defaultLLMProvider = "ollama"
	defaultLLMModel    = "trojan-chat-bot"

	defaultTopK = 5

	defaultStartupAttempts = 5
	defaultStartupBackoff  = 5 * time.Second

	defaultLockProvider = "local"
	defaultLockTTL      = 10 * time.Minute

	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "ragbot.rebuilds"
)

// DefaultPromptTemplate is the retrieval prompt. {context} and {question}
// are substituted at query time.
const DefaultPromptTemplate = `Answer the question based on the provided context. Do not include introductory phrases. If the question is unclear or unrelated to the context, ask the user to rephrase or provide more details.

Context:
{context}

Question:
{question}

Answer:
`

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Intercom: IntercomConfig{
			BaseURL:   defaultIntercomBaseURL,
			RateLimit: defaultIntercomRateLimit,
		},
		Storage: StorageConfig{
			Provider:         defaultStorageProvider,
			SnapshotPath:     defaultSnapshotPath,
			SupplementalPath: defaultSupplementalPath,
			EmbeddingLogPath: defaultEmbeddingLogPath,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Collection: defaultVectorCollection,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultOllamaTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
			Workers:    defaultEmbeddingWorkers,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
			Target:   defaultOllamaTarget,
			Model:    defaultLLMModel,
		},
		QA: QAConfig{
			TopK:           defaultTopK,
			PromptTemplate: DefaultPromptTemplate,
		},
		Rebuild: RebuildConfig{
			StartupAttempts: defaultStartupAttempts,
			StartupBackoff:  defaultStartupBackoff,
		},
		Lock: LockConfig{
			Provider: defaultLockProvider,
			TTL:      defaultLockTTL,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
	}
}
