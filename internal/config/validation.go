package config

import (
	"fmt"
	"strings"

	"github.com/roach88/nucleus/internal/ir"
)

// Validate checks the configuration and reports every problem at once as
// an ir.ConfigError.
func (c *Config) Validate() error {
	var problems []string
	add := func(field, format string, args ...any) {
		problems = append(problems, field+": "+fmt.Sprintf(format, args...))
	}

	if c.Node.AgentID == "" {
		add("node.agent_id", "must not be empty")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.Path == "" {
			add("storage.path", "required for the sqlite backend")
		}
	default:
		add("storage.backend", "unknown backend %q (want memory or sqlite)", c.Storage.Backend)
	}
	switch c.Storage.EAV() {
	case BackendMemory, BackendSQLite:
		if c.Storage.EAV() == BackendSQLite && c.Storage.Backend != BackendSQLite {
			add("storage.eav_backend", "sqlite requires storage.backend sqlite")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			add("storage.redis.addr", "required for the redis EAV backend")
		}
		if c.Storage.Redis.DB < 0 {
			add("storage.redis.db", "must not be negative")
		}
	default:
		add("storage.eav_backend", "unknown backend %q (want memory, sqlite or redis)", c.Storage.EAV())
	}

	if c.Network.TimeoutMS <= 0 {
		add("network.timeout_ms", "must be positive, got %d", c.Network.TimeoutMS)
	}

	if c.Network.RequestRate < 0 {
		add("network.request_rate", "must not be negative, got %g", c.Network.RequestRate)
	}
	if c.Network.RequestBurst < 0 {
		add("network.request_burst", "must not be negative, got %d", c.Network.RequestBurst)
	}

	if c.Pool.Size <= 0 {
		add("pool.size", "must be positive, got %d", c.Pool.Size)
	}
	if c.Pool.Mode != PoolModeReject && c.Pool.Mode != PoolModeBlock {
		add("pool.mode", "unknown mode %q (want reject or block)", c.Pool.Mode)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("logging.level", "unknown level %q", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		add("logging.format", "unknown format %q (want text or json)", c.Logging.Format)
	}

	if len(problems) > 0 {
		return ir.ConfigError(strings.Join(problems, "; "))
	}
	return nil
}
