package replication

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"
	"github.com/google/uuid"
)

// Defaults applied when the node config omits a setting.
const (
	DefaultLocalPort         = 8080
	DefaultRepoDeployTimeout = 60 * time.Second
)

// Config carries the node-wide replicator settings, decoded from the TOML
// file the repository config points at. Zero values mean "unset"; read
// settings through the getter methods, which apply defaults and validate.
type Config struct {
	LocalPort             int    `toml:"local_port"`
	RepoDeployTimeoutSecs int    `toml:"repo_deploy_timeout_seconds"`
	ReplicaGroupID        string `toml:"replica_group_id"`
	TombstoneCap          int    `toml:"tombstone_capacity"`
	AuthorityEndpoint     string `toml:"authority_endpoint"`
}

// Port returns the local replicator port.
func (c *Config) Port() int {
	if c == nil || c.LocalPort <= 0 {
		return DefaultLocalPort
	}
	return c.LocalPort
}

// RepoDeployTimeout returns how long repository deployment may take before
// the node gives up waiting.
func (c *Config) RepoDeployTimeout() time.Duration {
	if c == nil || c.RepoDeployTimeoutSecs <= 0 {
		return DefaultRepoDeployTimeout
	}
	return time.Duration(c.RepoDeployTimeoutSecs) * time.Second
}

// GroupID returns the configured replica group id. A missing or malformed
// id (group ids are UUIDs) is reported as unset.
func (c *Config) GroupID() string {
	if c == nil || c.ReplicaGroupID == "" {
		return ""
	}
	if _, err := uuid.Parse(c.ReplicaGroupID); err != nil {
		glog.Warningf("ignoring malformed replica_group_id %q: %v", c.ReplicaGroupID, err)
		return ""
	}
	return c.ReplicaGroupID
}

// TombstoneCapacity returns the configured tombstone window size, the
// environment override, or the default, in that order of preference.
func (c *Config) TombstoneCapacity() int {
	if c != nil && c.TombstoneCap > 0 {
		return c.TombstoneCap
	}
	return CapacityFromEnv()
}

// Authority returns the replication authority endpoint URL, "" when the
// node has none configured.
func (c *Config) Authority() string {
	if c == nil {
		return ""
	}
	return c.AuthorityEndpoint
}

// Loader reads a node config file and re-parses it only when the file's
// modification time changes, so hot paths can call Load on every access.
// Load is safe for concurrent use.
type Loader struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	cached  *Config
}

// NewLoader returns a loader for the config file at path. An empty path is
// valid and denotes an unconfigured, non-replicated node.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the config file location, "" when unconfigured.
func (l *Loader) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Configured reports whether a config file is set and present on disk.
// Nodes without a replicator config serve repositories unreplicated.
func (l *Loader) Configured() bool {
	if l == nil || l.path == "" {
		return false
	}
	_, err := os.Stat(l.path)
	return err == nil
}

// Load returns the current config, re-reading the file only if it changed
// since the previous call.
func (l *Loader) Load() (*Config, error) {
	if l == nil || l.path == "" {
		return nil, fmt.Errorf("replicator config: no path configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fi, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("replicator config: %w", err)
	}
	if l.cached != nil && fi.ModTime().Equal(l.modTime) {
		return l.cached, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(l.path, &cfg); err != nil {
		return nil, fmt.Errorf("replicator config %s: %w", l.path, err)
	}
	l.cached = &cfg
	l.modTime = fi.ModTime()
	glog.V(2).Infof("loaded replicator config from %s", l.path)
	return &cfg, nil
}
