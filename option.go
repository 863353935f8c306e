package sable

import (
	"github.com/rs/zerolog"

	"github.com/sable-engine/sable/gamestate"
)

type worldOptions struct {
	config          *WorldConfig
	logger          *zerolog.Logger
	snapshotStorage gamestate.PrimitiveStorage[string]
}

// WorldOption configures a World during NewWorld.
type WorldOption func(*worldOptions)

// WithConfig uses the given config instead of loading it from the
// environment.
func WithConfig(cfg WorldConfig) WorldOption {
	return func(o *worldOptions) {
		o.config = &cfg
	}
}

// WithLogger replaces the logger NewWorld would otherwise build from the
// config.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(o *worldOptions) {
		o.logger = &logger
	}
}

// WithSnapshotStorage enables snapshots, persisted through the given
// storage. Without this option SaveSnapshot and LoadSnapshot fail.
func WithSnapshotStorage(storage gamestate.PrimitiveStorage[string]) WorldOption {
	return func(o *worldOptions) {
		o.snapshotStorage = storage
	}
}
