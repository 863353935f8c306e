package sable

import (
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/sable-engine/sable/types"
)

// EntityGenerator translates user-facing entity handles into internal dense
// entity identifiers. Spawn requests are batched: a request mints a
// UserEntity immediately, but the handle maps to nothing until a flush pairs
// every pending handle with a freshly allocated Entity.
//
// The generator is guarded by a single reader/writer lock so spawn requests
// may arrive from outside the tick loop (e.g. a background loader) while
// system execution itself stays single-threaded. It is constructed by and
// owned by a World; there is no package-level instance.
type EntityGenerator struct {
	mu sync.RWMutex

	table   map[types.UserEntity]types.Entity
	pending []types.UserEntity

	// created counts handles minted in the current generation epoch. When it
	// wraps, the epoch rolls: later handles carry the next generation while
	// existing handles keep the one they were minted with, which is what
	// makes stale handles detectable.
	created    uint64
	generation uint64

	logger zerolog.Logger
}

func NewEntityGenerator(logger zerolog.Logger) *EntityGenerator {
	return &EntityGenerator{
		table:  make(map[types.UserEntity]types.Entity),
		logger: logger.With().Str("module", "entity_generator").Logger(),
	}
}

// SpawnEmptyEntities mints n new handles, queues them for the next flush,
// and returns them. It never fails.
func (g *EntityGenerator) SpawnEmptyEntities(n int) []types.UserEntity {
	g.mu.Lock()
	defer g.mu.Unlock()

	spawned := make([]types.UserEntity, 0, n)
	for i := 0; i < n; i++ {
		handle := types.UserEntity{Index: g.created, Generation: g.generation}
		g.created++
		if g.created == 0 {
			// The per-epoch counter wrapped. Handles minted from here on
			// carry the next generation.
			g.generation++
			g.logger.Info().Uint64("generation", g.generation).Msg("entity index space wrapped, rolling generation epoch")
		}
		g.pending = append(g.pending, handle)
		spawned = append(spawned, handle)
	}
	return spawned
}

// RealEntity resolves a handle to its internal entity. A handle that was
// never spawned, is still pending, or is stale from a previous generation
// epoch reports ErrDoesNotExist.
func (g *EntityGenerator) RealEntity(handle types.UserEntity) (types.Entity, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	real, ok := g.table[handle]
	if !ok {
		return types.Entity{}, eris.Wrapf(ErrDoesNotExist, "no realized entity for handle %s", handle)
	}
	return real, nil
}

// RealEntities resolves a batch of handles, short-circuiting on the first
// miss.
func (g *EntityGenerator) RealEntities(handles []types.UserEntity) ([]types.Entity, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	reals := make([]types.Entity, 0, len(handles))
	for _, handle := range handles {
		real, ok := g.table[handle]
		if !ok {
			return nil, eris.Wrapf(ErrDoesNotExist, "no realized entity for handle %s", handle)
		}
		reals = append(reals, real)
	}
	return reals, nil
}

// UpdateTable is the flush step: it pairs each pending handle with its
// freshly allocated entity, in queue order. The whole flush is transactional.
// A count mismatch or a handle that is already mapped rejects the flush with
// ErrWrongArgument and commits nothing, so a corrected retry still succeeds.
func (g *EntityGenerator) UpdateTable(reals []types.Entity) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(reals) != len(g.pending) {
		return eris.Wrapf(ErrWrongArgument, "flush expects %d entities for the pending handles, got %d", len(g.pending), len(reals))
	}
	// Stage before committing: a duplicate handle anywhere in the batch must
	// not leave a half-applied table behind. Duplicates within the batch
	// itself are rejected too, or the second occurrence would silently
	// overwrite the first while still consuming its paired entity.
	seen := make(map[types.UserEntity]struct{}, len(g.pending))
	for _, handle := range g.pending {
		if _, ok := g.table[handle]; ok {
			return eris.Wrapf(ErrWrongArgument, "handle %s is already mapped, rejecting whole flush", handle)
		}
		if _, ok := seen[handle]; ok {
			return eris.Wrapf(ErrWrongArgument, "handle %s appears twice in the pending queue, rejecting whole flush", handle)
		}
		seen[handle] = struct{}{}
	}
	for i, handle := range g.pending {
		g.table[handle] = reals[i]
	}
	g.logger.Debug().Int("flushed", len(reals)).Msg("flushed pending entities")
	g.pending = g.pending[:0]
	return nil
}

// PendingCount returns the number of handles awaiting a flush.
func (g *EntityGenerator) PendingCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.pending)
}

// Pending returns a copy of the handles awaiting a flush, in queue order.
func (g *EntityGenerator) Pending() []types.UserEntity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]types.UserEntity, len(g.pending))
	copy(out, g.pending)
	return out
}

// TableEntries returns a copy of the handle table.
func (g *EntityGenerator) TableEntries() map[types.UserEntity]types.Entity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[types.UserEntity]types.Entity, len(g.table))
	for handle, real := range g.table {
		out[handle] = real
	}
	return out
}

type generatorState struct {
	Mappings   []entityMapping    `json:"mappings"`
	Pending    []types.UserEntity `json:"pending"`
	Created    uint64             `json:"created"`
	Generation uint64             `json:"generation"`
}

type entityMapping struct {
	Handle types.UserEntity `json:"handle"`
	Real   types.Entity     `json:"real"`
}

func (g *EntityGenerator) snapshot() generatorState {
	g.mu.RLock()
	defer g.mu.RUnlock()

	st := generatorState{
		Mappings:   make([]entityMapping, 0, len(g.table)),
		Pending:    make([]types.UserEntity, len(g.pending)),
		Created:    g.created,
		Generation: g.generation,
	}
	copy(st.Pending, g.pending)
	for handle, real := range g.table {
		st.Mappings = append(st.Mappings, entityMapping{Handle: handle, Real: real})
	}
	return st
}

func (g *EntityGenerator) restore(st generatorState) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.table = make(map[types.UserEntity]types.Entity, len(st.Mappings))
	for _, m := range st.Mappings {
		g.table[m.Handle] = m.Real
	}
	g.pending = append(g.pending[:0], st.Pending...)
	g.created = st.Created
	g.generation = st.Generation
}
