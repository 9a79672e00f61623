package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeFile parses path into cfg by file extension.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := filepath.Ext(path); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q (want .toml, .json, .yaml)", ext)
	}
	return nil
}

// ApplyEnvOverrides overwrites fields from NUCLEUS_* environment variables.
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv("NUCLEUS_AGENT_ID"); v != "" {
		c.Node.AgentID = v
	}
	if v := os.Getenv("NUCLEUS_DNA_PATH"); v != "" {
		c.Node.DNAPath = v
	}

	if v := os.Getenv("NUCLEUS_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("NUCLEUS_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("NUCLEUS_EAV_BACKEND"); v != "" {
		c.Storage.EAVBackend = v
	}
	if v := os.Getenv("NUCLEUS_REDIS_ADDR"); v != "" {
		c.Storage.Redis.Addr = v
	}
	// Credentials from env only, so they stay out of config files.
	if v := os.Getenv("NUCLEUS_REDIS_PASSWORD"); v != "" {
		c.Storage.Redis.Password = v
	}

	if v := os.Getenv("NUCLEUS_NETWORK_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NUCLEUS_NETWORK_TIMEOUT_MS: %w", err)
		}
		c.Network.TimeoutMS = n
	}
	if v := os.Getenv("NUCLEUS_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NUCLEUS_POOL_SIZE: %w", err)
		}
		c.Pool.Size = n
	}

	if v := os.Getenv("NUCLEUS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NUCLEUS_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	return nil
}
