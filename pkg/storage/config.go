package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config stores repository-local settings: whether this store is served
// as a replicated repository, and where the node's replicator config
// lives. Both default to off, so a plain store behaves unreplicated.
type Config struct {
	Replicated       bool   `json:"replicated,omitempty"`
	ReplicatorConfig string `json:"replicator_config,omitempty"`
}

func (s *ContentStore) configPath() string {
	return filepath.Join(s.root, "config.json")
}

// ReadConfig reads the store's config.json. A missing file returns an
// empty config.
func (s *ContentStore) ReadConfig() (*Config, error) {
	data, err := os.ReadFile(s.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("read config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// WriteConfig atomically writes the store's config.json.
func (s *ContentStore) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("write config: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(s.root, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, s.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}
