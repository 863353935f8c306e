package sable

import (
	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
)

// WorldConfig is the engine configuration, loaded from the environment on
// top of defaults.
type WorldConfig struct {
	// Namespace scopes log fields and snapshot keys, so several worlds can
	// share one redis instance.
	Namespace string `config:"SABLE_NAMESPACE"`
	// LogLevel is a zerolog level string ("debug", "info", ...).
	LogLevel string `config:"SABLE_LOG_LEVEL"`
	// RedisAddress and RedisPassword point at the snapshot storage. Only
	// used by callers that open a redis-backed PrimitiveStorage.
	RedisAddress  string `config:"SABLE_REDIS_ADDRESS"`
	RedisPassword string `config:"SABLE_REDIS_PASSWORD"`
}

func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Namespace:    "world",
		LogLevel:     "info",
		RedisAddress: "localhost:6379",
	}
}

// LoadWorldConfig loads any matching environment variables over the default
// config. Env variable names are the field tags above.
func LoadWorldConfig() (WorldConfig, error) {
	cfg := DefaultWorldConfig()
	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to load world config from environment")
	}
	return cfg, nil
}
