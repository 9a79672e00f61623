// Package config loads node configuration from TOML, YAML or JSON files
// with NUCLEUS_* environment overrides.
package config

import (
	"time"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Pool modes.
const (
	PoolModeReject = "reject"
	PoolModeBlock  = "block"
)

// Config is the complete configuration of one node.
type Config struct {
	Node    NodeConfig    `toml:"node" json:"node" yaml:"node"`
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`
	Network NetworkConfig `toml:"network" json:"network" yaml:"network"`
	Pool    PoolConfig    `toml:"pool" json:"pool" yaml:"pool"`
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
	Metrics MetricsConfig `toml:"metrics" json:"metrics" yaml:"metrics"`
}

// NodeConfig identifies the node.
type NodeConfig struct {
	AgentID string `toml:"agent_id" json:"agent_id" yaml:"agent_id"`
	DNAPath string `toml:"dna_path" json:"dna_path" yaml:"dna_path"`
}

// StorageConfig selects where content and metadata live. EAVBackend
// defaults to Backend; "redis" is only valid for EAV.
type StorageConfig struct {
	Backend    string      `toml:"backend" json:"backend" yaml:"backend"`
	Path       string      `toml:"path" json:"path" yaml:"path"`
	EAVBackend string      `toml:"eav_backend" json:"eav_backend" yaml:"eav_backend"`
	Redis      RedisConfig `toml:"redis" json:"redis" yaml:"redis"`
}

// RedisConfig configures the Redis EAV backend.
type RedisConfig struct {
	Addr     string `toml:"addr" json:"addr" yaml:"addr"`
	Password string `toml:"password" json:"password" yaml:"password"`
	DB       int    `toml:"db" json:"db" yaml:"db"`
	Prefix   string `toml:"prefix" json:"prefix" yaml:"prefix"`
}

// NetworkConfig bounds network requests. RequestRate limits requests
// answered per peer per second; zero is unlimited.
type NetworkConfig struct {
	TimeoutMS    int     `toml:"timeout_ms" json:"timeout_ms" yaml:"timeout_ms"`
	RequestRate  float64 `toml:"request_rate" json:"request_rate" yaml:"request_rate"`
	RequestBurst int     `toml:"request_burst" json:"request_burst" yaml:"request_burst"`
}

// Timeout returns TimeoutMS as a duration.
func (n NetworkConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutMS) * time.Millisecond
}

// PoolConfig sizes the worker pool.
type PoolConfig struct {
	Size int    `toml:"size" json:"size" yaml:"size"`
	Mode string `toml:"mode" json:"mode" yaml:"mode"`
}

// LoggingConfig selects the log handler.
type LoggingConfig struct {
	Level  string `toml:"level" json:"level" yaml:"level"`
	Format string `toml:"format" json:"format" yaml:"format"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `toml:"addr" json:"addr" yaml:"addr"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Node: NodeConfig{
			AgentID: "agent",
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "nucleus:eav:",
			},
		},
		Network: NetworkConfig{TimeoutMS: 5000, RequestBurst: 8},
		Pool:    PoolConfig{Size: 16, Mode: PoolModeReject},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// EAV returns the effective EAV backend.
func (s StorageConfig) EAV() string {
	if s.EAVBackend == "" {
		return s.Backend
	}
	return s.EAVBackend
}
