package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g.,
// --vector-store-provider on both "ragbot serve" and "ragbot rebuild --local").
type Flag struct {
	// Name is the long flag name (e.g. "llm-model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "k"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "llm.model").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen           = "listen"
	FlagAPITarget        = "api-target"
	FlagIntercomURL      = "intercom-url"
	FlagIntercomToken    = "intercom-token"
	FlagSnapshotPath     = "snapshot"
	FlagSupplementalPath = "supplemental"
	FlagEmbeddingLogPath = "embedding-log"
	FlagVectorStoreProv  = "vector-store-provider"
	FlagVectorStoreTgt   = "vector-store-target"
	FlagEmbeddingProv    = "embedding-provider"
	FlagEmbeddingTgt     = "embedding-target"
	FlagEmbeddingModel   = "embedding-model"
	FlagEmbeddingDims    = "embedding-dimensions"
	FlagLLMProvider      = "llm-provider"
	FlagLLMTarget        = "llm-target"
	FlagLLMModel         = "llm-model"
	FlagTopK             = "top-k"
	FlagLockProvider     = "lock-provider"
	FlagRedisAddr        = "redis-addr"
	FlagEventStreamProv  = "eventstream-provider"
	FlagEventStreamTopic = "eventstream-topic"
)

// Registry is the flag registry shared by every ragbot command.
var Registry = FlagSet{
	FlagListen:           {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagAPITarget:        {Name: "api-target", Shorthand: "a", ViperKey: "client.api_target", Description: "ragbot API server URL"},
	FlagIntercomURL:      {Name: "intercom-url", ViperKey: "intercom.base_url", Description: "Intercom API base URL"},
	FlagIntercomToken:    {Name: "intercom-token", ViperKey: "intercom.token", Description: "Intercom API bearer token (or INTERCOM_TOKEN)"},
	FlagSnapshotPath:     {Name: "snapshot", ViperKey: "storage.snapshot_path", Description: "Path of the fetched article snapshot"},
	FlagSupplementalPath: {Name: "supplemental", ViperKey: "storage.supplemental_path", Description: "Path of the supplemental Q&A store"},
	FlagEmbeddingLogPath: {Name: "embedding-log", ViperKey: "storage.embedding_log_path", Description: "Path of the embedding audit log"},
	FlagVectorStoreProv:  {Name: "vector-store-provider", ViperKey: "vector_store.provider", Description: "Vector store provider (memory, chroma, sqlite, qdrant, pgvector)"},
	FlagVectorStoreTgt:   {Name: "vector-store-target", ViperKey: "vector_store.target", Description: "Vector store target (URL, DSN or sqlite path)"},
	FlagEmbeddingProv:    {Name: "embedding-provider", ViperKey: "embedding.provider", Description: "Embedding provider (ollama, openai)"},
	FlagEmbeddingTgt:     {Name: "embedding-target", ViperKey: "embedding.target", Description: "Embedding provider URL"},
	FlagEmbeddingModel:   {Name: "embedding-model", ViperKey: "embedding.model", Description: "Embedding model name"},
	FlagEmbeddingDims:    {Name: "embedding-dimensions", ViperKey: "embedding.dimensions", Description: "Embedding vector dimensions"},
	FlagLLMProvider:      {Name: "llm-provider", ViperKey: "llm.provider", Description: "Language model provider (ollama, openai, anthropic)"},
	FlagLLMTarget:        {Name: "llm-target", ViperKey: "llm.target", Description: "Language model provider URL"},
	FlagLLMModel:         {Name: "llm-model", ViperKey: "llm.model", Description: "Language model name"},
	FlagTopK:             {Name: "top-k", Shorthand: "k", ViperKey: "qa.top_k", Description: "Number of documents retrieved per question"},
	FlagLockProvider:     {Name: "lock-provider", ViperKey: "lock.provider", Description: "Rebuild lock provider (local, redis)"},
	FlagRedisAddr:        {Name: "redis-addr", ViperKey: "lock.redis_addr", Description: "Redis address for the rebuild lock"},
	FlagEventStreamProv:  {Name: "eventstream-provider", ViperKey: "eventstream.provider", Description: "Rebuild event publisher (nop, kafka)"},
	FlagEventStreamTopic: {Name: "eventstream-topic", ViperKey: "eventstream.topic", Description: "Kafka topic for rebuild events"},
}

// ServeFlags are the registry keys bound by commands that run the pipeline.
var ServeFlags = []string{
	FlagListen,
	FlagIntercomURL,
	FlagIntercomToken,
	FlagSnapshotPath,
	FlagSupplementalPath,
	FlagEmbeddingLogPath,
	FlagVectorStoreProv,
	FlagVectorStoreTgt,
	FlagEmbeddingProv,
	FlagEmbeddingTgt,
	FlagEmbeddingModel,
	FlagEmbeddingDims,
	FlagLLMProvider,
	FlagLLMTarget,
	FlagLLMModel,
	FlagTopK,
	FlagLockProvider,
	FlagRedisAddr,
	FlagEventStreamProv,
	FlagEventStreamTopic,
}

// AddFlags registers every key in keys from fs, picking the flag kind from
// the default value type. Values are read back through viper once bound.
func AddFlags(cmd *cobra.Command, fs FlagSet, keys []string) {
	for _, key := range keys {
		def, ok := fs[key]
		if !ok {
			continue
		}
		v := viper.New()
		setViperDefaults(v)
		switch v.Get(def.ViperKey).(type) {
		case uint:
			cmd.Flags().UintP(def.Name, def.Shorthand, v.GetUint(def.ViperKey), def.Description)
		default:
			cmd.Flags().StringP(def.Name, def.Shorthand, v.GetString(def.ViperKey), def.Description)
		}
	}
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// LoadForCommand resolves the full precedence chain for cmd: registered flags
// in keys, then environment, then config.toml in configDir, then defaults.
func LoadForCommand(cmd *cobra.Command, configDir string, keys []string) (*Config, error) {
	v, err := InitViper(configDir)
	if err != nil {
		return nil, err
	}
	BindRegisteredFlags(v, cmd, Registry, keys)
	return FromViper(v), nil
}
