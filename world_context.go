package sable

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Game is the opaque, user-owned state bag the scheduler hands to systems.
// The engine never inspects it beyond the type assertion in GameState; it is
// a second mutable region alongside the World, deliberately kept out of the
// World's ownership tree.
type Game any

// WorldContext is the view a system gets for the duration of exactly one
// invocation. It is constructed right before the system body runs and must
// not be retained after the body returns: one live context at a time is the
// whole aliasing discipline of the engine.
type WorldContext interface {
	// World returns the world the system may read and mutate.
	World() *World
	// Game returns the user game state passed into this tick.
	Game() Game
	// Logger returns a logger tagged with the running system's name.
	Logger() *zerolog.Logger
	// SystemName returns the name of the running system.
	SystemName() string
}

type worldContext struct {
	world      *World
	game       Game
	logger     zerolog.Logger
	systemName string
}

func newWorldContext(w *World, game Game, systemName string) WorldContext {
	return &worldContext{
		world:      w,
		game:       game,
		logger:     w.logger.With().Str("system", systemName).Logger(),
		systemName: systemName,
	}
}

func (ctx *worldContext) World() *World {
	return ctx.world
}

func (ctx *worldContext) Game() Game {
	return ctx.game
}

func (ctx *worldContext) Logger() *zerolog.Logger {
	return &ctx.logger
}

func (ctx *worldContext) SystemName() string {
	return ctx.systemName
}

// GameState downcasts the context's game state to the concrete type *T. A
// mismatch means the engine was ticked with the wrong state type, which is a
// wiring bug, not a user input problem: it reports ErrUnknown.
func GameState[T any](wCtx WorldContext) (*T, error) {
	var want *T
	game, ok := wCtx.Game().(*T)
	if !ok {
		return nil, eris.Wrapf(ErrUnknown, "game state is %T, want %T", wCtx.Game(), want)
	}
	return game, nil
}
