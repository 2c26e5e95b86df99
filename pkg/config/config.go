// Package config loads, saves and binds the ragbot configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/jskoiz/llama3-chatbot-with-rag/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns all supported configuration key names in section order.
func ValidConfigKeys() []string {
	result := make([]string, 0, len(orderedKeys))
	for _, k := range orderedKeys {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}
	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads config.toml from the resolved .ragbot/ directory.
// A missing file yields NewDefaultConfig(); fields set in the file override
// the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	d := NewDefaultConfig()

	fillString := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fillUint := func(dst *uint, def uint) {
		if *dst == 0 {
			*dst = def
		}
	}

	if cfg.Version == 0 {
		cfg.Version = d.Version
	}

	fillString(&cfg.API.Listen, d.API.Listen)
	fillString(&cfg.Client.APITarget, d.Client.APITarget)

	fillString(&cfg.Intercom.BaseURL, d.Intercom.BaseURL)
	if cfg.Intercom.RateLimit == 0 {
		cfg.Intercom.RateLimit = d.Intercom.RateLimit
	}

	fillString(&cfg.Storage.Provider, d.Storage.Provider)
	fillString(&cfg.Storage.SnapshotPath, d.Storage.SnapshotPath)
	fillString(&cfg.Storage.SupplementalPath, d.Storage.SupplementalPath)
	fillString(&cfg.Storage.EmbeddingLogPath, d.Storage.EmbeddingLogPath)

	fillString(&cfg.VectorStore.Provider, d.VectorStore.Provider)
	fillString(&cfg.VectorStore.Collection, d.VectorStore.Collection)

	fillString(&cfg.Embedding.Provider, d.Embedding.Provider)
	fillString(&cfg.Embedding.Target, d.Embedding.Target)
	fillString(&cfg.Embedding.Model, d.Embedding.Model)
	fillUint(&cfg.Embedding.Dimensions, d.Embedding.Dimensions)
	fillUint(&cfg.Embedding.Workers, d.Embedding.Workers)

	fillString(&cfg.LLM.Provider, d.LLM.Provider)
	fillString(&cfg.LLM.Target, d.LLM.Target)
	fillString(&cfg.LLM.Model, d.LLM.Model)

	fillUint(&cfg.QA.TopK, d.QA.TopK)
	fillString(&cfg.QA.PromptTemplate, d.QA.PromptTemplate)

	fillUint(&cfg.Rebuild.StartupAttempts, d.Rebuild.StartupAttempts)
	if cfg.Rebuild.StartupBackoff == 0 {
		cfg.Rebuild.StartupBackoff = d.Rebuild.StartupBackoff
	}

	fillString(&cfg.Lock.Provider, d.Lock.Provider)
	if cfg.Lock.TTL == 0 {
		cfg.Lock.TTL = d.Lock.TTL
	}

	fillString(&cfg.EventStream.Provider, d.EventStream.Provider)
	fillString(&cfg.EventStream.Topic, d.EventStream.Topic)
}

// SaveConfig persists the configuration to config.toml in the target .ragbot/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
