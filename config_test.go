package sable_test

import (
	"testing"

	"github.com/sable-engine/sable"
	"github.com/sable-engine/sable/assert"
)

func TestLoadWorldConfigDefaults(t *testing.T) {
	cfg, err := sable.LoadWorldConfig()
	assert.NilError(t, err)
	assert.Equal(t, cfg.Namespace, "world")
	assert.Equal(t, cfg.LogLevel, "info")
	assert.Equal(t, cfg.RedisAddress, "localhost:6379")
}

func TestLoadWorldConfigFromEnvironment(t *testing.T) {
	t.Setenv("SABLE_NAMESPACE", "arena-7")
	t.Setenv("SABLE_LOG_LEVEL", "warn")
	t.Setenv("SABLE_REDIS_ADDRESS", "redis.internal:6380")

	cfg, err := sable.LoadWorldConfig()
	assert.NilError(t, err)
	assert.Equal(t, cfg.Namespace, "arena-7")
	assert.Equal(t, cfg.LogLevel, "warn")
	assert.Equal(t, cfg.RedisAddress, "redis.internal:6380")
	// Unset variables keep their defaults.
	assert.Equal(t, cfg.RedisPassword, "")
}

func TestNewWorldRejectsInvalidLogLevel(t *testing.T) {
	_, err := sable.NewWorld(sable.WithConfig(sable.WorldConfig{
		Namespace: "test",
		LogLevel:  "extremely-loud",
	}))
	assert.ErrorIs(t, err, sable.ErrWrongArgument)
}
