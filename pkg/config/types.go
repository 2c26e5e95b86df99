package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent ragbot configuration stored as config.toml
// in the .ragbot/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	Intercom    IntercomConfig    `toml:"intercom"`
	Storage     StorageConfig     `toml:"storage"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	LLM         LLMConfig         `toml:"llm"`
	QA          QAConfig          `toml:"qa"`
	Rebuild     RebuildConfig     `toml:"rebuild"`
	Lock        LockConfig        `toml:"lock"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running server
// (ragbot ask, ragbot rebuild, ragbot stats). Values are full URLs.
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// IntercomConfig holds the content source settings.
type IntercomConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	Token   string `toml:"token,omitempty"`

	// RateLimit is the sustained request rate in requests per second.
	RateLimit float64 `toml:"rate_limit,omitempty"`
}

// StorageConfig holds file locations for the ingestion snapshot, the
// supplemental store and the embedding audit log.
type StorageConfig struct {
	Provider         string `toml:"provider,omitempty"`
	SnapshotPath     string `toml:"snapshot_path,omitempty"`
	SupplementalPath string `toml:"supplemental_path,omitempty"`
	EmbeddingLogPath string `toml:"embedding_log_path,omitempty"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Collection string `toml:"collection,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`
	Workers    uint   `toml:"workers,omitempty"`
}

// LLMConfig holds the generation provider settings.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
}

// QAConfig holds retrieval and prompting settings.
type QAConfig struct {
	TopK           uint   `toml:"top_k,omitempty"`
	PromptTemplate string `toml:"prompt_template,omitempty"`
}

// RebuildConfig holds the startup retry policy and the supplemental watcher.
type RebuildConfig struct {
	StartupAttempts   uint          `toml:"startup_attempts,omitempty"`
	StartupBackoff    time.Duration `toml:"startup_backoff,omitempty"`
	WatchSupplemental bool          `toml:"watch_supplemental,omitempty"`
}

// LockConfig selects how concurrent rebuilds are excluded.
type LockConfig struct {
	Provider  string        `toml:"provider,omitempty"`
	RedisAddr string        `toml:"redis_addr,omitempty"`
	TTL       time.Duration `toml:"ttl,omitempty"`
}

// EventStreamConfig selects where rebuild events are published.
type EventStreamConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func durationKey(name string, field func(c *Config) *time.Duration) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return field(c).String()
		},
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = d
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.listen":        stringKey(func(c *Config) *string { return &c.API.Listen }),
	"client.api_target": stringKey(func(c *Config) *string { return &c.Client.APITarget }),

	"intercom.base_url": stringKey(func(c *Config) *string { return &c.Intercom.BaseURL }),
	"intercom.token":    stringKey(func(c *Config) *string { return &c.Intercom.Token }),
	"intercom.rate_limit": {
		get: func(c *Config) string {
			if c.Intercom.RateLimit == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Intercom.RateLimit, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for intercom.rate_limit: %w", err)
			}
			c.Intercom.RateLimit = f
			return nil
		},
	},

	"storage.provider":           stringKey(func(c *Config) *string { return &c.Storage.Provider }),
	"storage.snapshot_path":      stringKey(func(c *Config) *string { return &c.Storage.SnapshotPath }),
	"storage.supplemental_path":  stringKey(func(c *Config) *string { return &c.Storage.SupplementalPath }),
	"storage.embedding_log_path": stringKey(func(c *Config) *string { return &c.Storage.EmbeddingLogPath }),

	"vector_store.provider":   stringKey(func(c *Config) *string { return &c.VectorStore.Provider }),
	"vector_store.target":     stringKey(func(c *Config) *string { return &c.VectorStore.Target }),
	"vector_store.collection": stringKey(func(c *Config) *string { return &c.VectorStore.Collection }),

	"embedding.provider":   stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":     stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":      stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.api_key":    stringKey(func(c *Config) *string { return &c.Embedding.APIKey }),
	"embedding.dimensions": uintKey("embedding.dimensions", func(c *Config) *uint { return &c.Embedding.Dimensions }),
	"embedding.workers":    uintKey("embedding.workers", func(c *Config) *uint { return &c.Embedding.Workers }),

	"llm.provider": stringKey(func(c *Config) *string { return &c.LLM.Provider }),
	"llm.target":   stringKey(func(c *Config) *string { return &c.LLM.Target }),
	"llm.model":    stringKey(func(c *Config) *string { return &c.LLM.Model }),
	"llm.api_key":  stringKey(func(c *Config) *string { return &c.LLM.APIKey }),

	"qa.top_k":           uintKey("qa.top_k", func(c *Config) *uint { return &c.QA.TopK }),
	"qa.prompt_template": stringKey(func(c *Config) *string { return &c.QA.PromptTemplate }),

	"rebuild.startup_attempts": uintKey("rebuild.startup_attempts", func(c *Config) *uint { return &c.Rebuild.StartupAttempts }),
	"rebuild.startup_backoff":  durationKey("rebuild.startup_backoff", func(c *Config) *time.Duration { return &c.Rebuild.StartupBackoff }),
	"rebuild.watch_supplemental": {
		get: func(c *Config) string { return strconv.FormatBool(c.Rebuild.WatchSupplemental) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for rebuild.watch_supplemental: %w", err)
			}
			c.Rebuild.WatchSupplemental = b
			return nil
		},
	},

	"lock.provider":   stringKey(func(c *Config) *string { return &c.Lock.Provider }),
	"lock.redis_addr": stringKey(func(c *Config) *string { return &c.Lock.RedisAddr }),
	"lock.ttl":        durationKey("lock.ttl", func(c *Config) *time.Duration { return &c.Lock.TTL }),

	"eventstream.provider": stringKey(func(c *Config) *string { return &c.EventStream.Provider }),
	"eventstream.topic":    stringKey(func(c *Config) *string { return &c.EventStream.Topic }),
	"eventstream.brokers": {
		get: func(c *Config) string { return strings.Join(c.EventStream.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.EventStream.Brokers = splitList(v)
			return nil
		},
	},
}

// orderedKeys is the stable listing order, matching the TOML section layout.
var orderedKeys = []string{
	"api.listen",
	"client.api_target",
	"intercom.base_url",
	"intercom.token",
	"intercom.rate_limit",
	"storage.provider",
	"storage.snapshot_path",
	"storage.supplemental_path",
	"storage.embedding_log_path",
	"vector_store.provider",
	"vector_store.target",
	"vector_store.collection",
	"embedding.provider",
	"embedding.target",
	"embedding.model",
	"embedding.api_key",
	"embedding.dimensions",
	"embedding.workers",
	"llm.provider",
	"llm.target",
	"llm.model",
	"llm.api_key",
	"qa.top_k",
	"qa.prompt_template",
	"rebuild.startup_attempts",
	"rebuild.startup_backoff",
	"rebuild.watch_supplemental",
	"lock.provider",
	"lock.redis_addr",
	"lock.ttl",
	"eventstream.provider",
	"eventstream.brokers",
	"eventstream.topic",
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
