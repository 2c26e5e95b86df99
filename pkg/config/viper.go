package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/dotdir"
)

const envPrefix = "RAGBOT"

// legacyEnv maps config keys to the bare environment variables the bot has
// always been deployed with. They are consulted after the RAGBOT_ variants.
var legacyEnv = map[string]string{
	"intercom.token":     "INTERCOM_TOKEN",
	"qa.prompt_template": "PROMPT_TEMPLATE",
}

// InitViper creates and returns a configured *viper.Viper.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (RAGBOT_API_LISTEN, INTERCOM_TOKEN, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("client.api_target", d.Client.APITarget)

	v.SetDefault("intercom.base_url", d.Intercom.BaseURL)
	v.SetDefault("intercom.token", d.Intercom.Token)
	v.SetDefault("intercom.rate_limit", d.Intercom.RateLimit)

	v.SetDefault("storage.provider", d.Storage.Provider)
	v.SetDefault("storage.snapshot_path", d.Storage.SnapshotPath)
	v.SetDefault("storage.supplemental_path", d.Storage.SupplementalPath)
	v.SetDefault("storage.embedding_log_path", d.Storage.EmbeddingLogPath)

	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.target", d.VectorStore.Target)
	v.SetDefault("vector_store.collection", d.VectorStore.Collection)

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.api_key", d.Embedding.APIKey)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.workers", d.Embedding.Workers)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.target", d.LLM.Target)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)

	v.SetDefault("qa.top_k", d.QA.TopK)
	v.SetDefault("qa.prompt_template", d.QA.PromptTemplate)

	v.SetDefault("rebuild.startup_attempts", d.Rebuild.StartupAttempts)
	v.SetDefault("rebuild.startup_backoff", d.Rebuild.StartupBackoff)
	v.SetDefault("rebuild.watch_supplemental", d.Rebuild.WatchSupplemental)

	v.SetDefault("lock.provider", d.Lock.Provider)
	v.SetDefault("lock.redis_addr", d.Lock.RedisAddr)
	v.SetDefault("lock.ttl", d.Lock.TTL)

	v.SetDefault("eventstream.provider", d.EventStream.Provider)
	v.SetDefault("eventstream.brokers", d.EventStream.Brokers)
	v.SetDefault("eventstream.topic", d.EventStream.Topic)
}

// FromViper materializes a Config from the resolved viper precedence chain.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Client: ClientConfig{
			APITarget: v.GetString("client.api_target"),
		},
		Intercom: IntercomConfig{
			BaseURL:   v.GetString("intercom.base_url"),
			Token:     v.GetString("intercom.token"),
			RateLimit: v.GetFloat64("intercom.rate_limit"),
		},
		Storage: StorageConfig{
			Provider:         v.GetString("storage.provider"),
			SnapshotPath:     v.GetString("storage.snapshot_path"),
			SupplementalPath: v.GetString("storage.supplemental_path"),
			EmbeddingLogPath: v.GetString("storage.embedding_log_path"),
		},
		VectorStore: VectorStoreConfig{
			Provider:   v.GetString("vector_store.provider"),
			Target:     v.GetString("vector_store.target"),
			Collection: v.GetString("vector_store.collection"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			APIKey:     v.GetString("embedding.api_key"),
			Dimensions: v.GetUint("embedding.dimensions"),
			Workers:    v.GetUint("embedding.workers"),
		},
		LLM: LLMConfig{
			Provider: v.GetString("llm.provider"),
			Target:   v.GetString("llm.target"),
			Model:    v.GetString("llm.model"),
			APIKey:   v.GetString("llm.api_key"),
		},
		QA: QAConfig{
			TopK:           v.GetUint("qa.top_k"),
			PromptTemplate: v.GetString("qa.prompt_template"),
		},
		Rebuild: RebuildConfig{
			StartupAttempts:   v.GetUint("rebuild.startup_attempts"),
			StartupBackoff:    v.GetDuration("rebuild.startup_backoff"),
			WatchSupplemental: v.GetBool("rebuild.watch_supplemental"),
		},
		Lock: LockConfig{
			Provider:  v.GetString("lock.provider"),
			RedisAddr: v.GetString("lock.redis_addr"),
			TTL:       v.GetDuration("lock.ttl"),
		},
		EventStream: EventStreamConfig{
			Provider: v.GetString("eventstream.provider"),
			Brokers:  v.GetStringSlice("eventstream.brokers"),
			Topic:    v.GetString("eventstream.topic"),
		},
	}
}
