package sable

import (
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/sable-engine/sable/gamestate"
	ecslog "github.com/sable-engine/sable/log"
	"github.com/sable-engine/sable/types"
)

// World is the composition root of the engine: it owns the entity
// generator, the component manager, the scheduler, and the registered
// queries, and drives one tick at a time. All mutation funnels through the
// world so query membership stays incrementally correct.
type World struct {
	instanceID string
	config     WorldConfig
	logger     zerolog.Logger

	entityGenerator  *EntityGenerator
	componentManager *ComponentManager
	systemManager    *systemManager

	queries []*Query

	// nextDenseIndex is the next internal entity slot handed out by a flush.
	nextDenseIndex uint64
	tick           uint64

	snapshotter *gamestate.Snapshotter
}

var _ ecslog.Loggable = &World{}

// NewWorld builds a world from the environment config plus any options.
func NewWorld(opts ...WorldOption) (*World, error) {
	options := &worldOptions{}
	for _, opt := range opts {
		opt(options)
	}

	cfg := options.config
	if options.config == nil {
		loaded, err := LoadWorldConfig()
		if err != nil {
			return nil, err
		}
		cfg = &loaded
	}

	w := &World{
		instanceID: uuid.New().String(),
		config:     *cfg,
	}

	if options.logger != nil {
		w.logger = *options.logger
	} else {
		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, eris.Wrapf(ErrWrongArgument, "invalid log level %q", cfg.LogLevel)
		}
		w.logger = zerolog.New(os.Stderr).Level(level).With().
			Timestamp().
			Str("namespace", cfg.Namespace).
			Str("instance", w.instanceID).
			Logger()
	}

	w.entityGenerator = NewEntityGenerator(w.logger)
	w.componentManager = NewComponentManager(w.logger)
	w.systemManager = newSystemManager(w.logger)
	if options.snapshotStorage != nil {
		w.snapshotter = gamestate.NewSnapshotter(options.snapshotStorage, cfg.Namespace, w.logger)
	}
	return w, nil
}

// Namespace returns the configured world namespace.
func (w *World) Namespace() string {
	return w.config.Namespace
}

// InstanceID returns the unique id of this world instance.
func (w *World) InstanceID() string {
	return w.instanceID
}

// Logger returns the world's base logger.
func (w *World) Logger() *zerolog.Logger {
	return &w.logger
}

// CurrentTick returns the number of completed ticks.
func (w *World) CurrentTick() uint64 {
	return w.tick
}

// SpawnEmptyEntities requests n new entities and returns their handles. The
// handles resolve to nothing until the next flush.
func (w *World) SpawnEmptyEntities(n int) []types.UserEntity {
	return w.entityGenerator.SpawnEmptyEntities(n)
}

// RealEntity resolves a handle to its internal entity.
func (w *World) RealEntity(handle types.UserEntity) (types.Entity, error) {
	return w.entityGenerator.RealEntity(handle)
}

// RealEntities resolves a batch of handles, short-circuiting on the first
// miss.
func (w *World) RealEntities(handles []types.UserEntity) ([]types.Entity, error) {
	return w.entityGenerator.RealEntities(handles)
}

// FlushSpawns realizes every pending spawn request: it allocates one dense
// entity per pending handle, each inheriting the generation of the handle
// that requested it, commits the pairing, and re-evaluates queries for the
// new entities.
func (w *World) FlushSpawns() error {
	pending := w.entityGenerator.Pending()
	if len(pending) == 0 {
		return nil
	}

	reals := make([]types.Entity, 0, len(pending))
	next := w.nextDenseIndex
	for _, handle := range pending {
		reals = append(reals, types.Entity{Index: next, Generation: handle.Generation})
		next++
	}
	if err := w.entityGenerator.UpdateTable(reals); err != nil {
		return err
	}
	w.nextDenseIndex = next

	for _, handle := range pending {
		w.refreshQueries(handle)
	}
	w.logger.Debug().Int("spawned", len(pending)).Msg("flushed pending spawns")
	return nil
}

// Tick runs one full engine update: pending spawns are flushed, then every
// registered system whose gate and schedule agree runs, in registration
// order. A failure anywhere aborts the rest of the tick and surfaces as
// ErrUnknown; the remaining systems simply do not run until the next tick.
func (w *World) Tick(game Game) error {
	if err := w.FlushSpawns(); err != nil {
		w.logger.Error().Err(err).Msg("flush failed, aborting tick")
		return eris.Wrapf(ErrUnknown, "tick %d flush failed", w.tick)
	}
	if err := w.systemManager.runSystems(w, game); err != nil {
		return err
	}
	w.tick++
	return nil
}

// RegisterSystems registers systems that run on every tick with no gate.
// Registration order is execution order.
func (w *World) RegisterSystems(systems ...System) error {
	return w.systemManager.register(Always(), nil, systems...)
}

// RegisterSystem registers one system with an explicit run schedule and an
// optional gate evaluated against the game state each tick.
func (w *World) RegisterSystem(system System, schedule RunSchedule, gate Gate) error {
	return w.systemManager.register(schedule, gate, system)
}

// RegisterSystemWithName registers an always-running system under an
// explicit name rather than the one derived from its function symbol. Useful
// for anonymous closures, whose reflected names are positional.
func (w *World) RegisterSystemWithName(system System, name string) error {
	return w.systemManager.registerNamed(name, system, Always(), nil)
}

// GetRegisteredSystems returns the names of all live registered systems.
func (w *World) GetRegisteredSystems() []string {
	return w.systemManager.GetRegisteredSystems()
}

// GetCurrentSystem returns the name of the system currently running, if any.
func (w *World) GetCurrentSystem() string {
	return w.systemManager.GetCurrentSystem()
}

// GetRegisteredComponents returns all registered component metadata.
func (w *World) GetRegisteredComponents() []types.ComponentMetadata {
	return w.componentManager.RegisteredComponents()
}

// refreshQueries re-evaluates one handle against every registered query.
func (w *World) refreshQueries(handle types.UserEntity) {
	for _, q := range w.queries {
		q.refresh(w, handle)
	}
}

// LogWorld logs the world's registered components and systems.
func (w *World) LogWorld(level zerolog.Level) {
	ecslog.World(&w.logger, w, level)
}

// LogEntity logs one entity together with the component types it carries.
func (w *World) LogEntity(level zerolog.Level, handle types.UserEntity) error {
	real, err := w.entityGenerator.RealEntity(handle)
	if err != nil {
		return err
	}
	ecslog.Entity(&w.logger, level, real, w.componentManager.componentTypesOf(real))
	return nil
}
