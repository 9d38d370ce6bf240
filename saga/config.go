package saga

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime's tunables. The zero value is usable; New
// normalizes non-positive fields to their defaults.
type Config struct {
	// ChannelCapacity bounds the action channel. Producers suspend, never
	// drop, once this many actions are queued.
	ChannelCapacity int `env:"SAGA_CHANNEL_CAPACITY" envDefault:"100"`

	// TaskShards shards the running-instance registry.
	TaskShards int `env:"SAGA_TASK_SHARDS" envDefault:"8"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ChannelCapacity: 100,
		TaskShards:      8,
	}
}

// ConfigFromEnv reads the SAGA_* environment variables, falling back to the
// defaults for unset ones.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("saga: parse config from env: %w", err)
	}
	return cfg, nil
}
