package sable_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/sable-engine/sable"
	"github.com/sable-engine/sable/assert"
	"github.com/sable-engine/sable/types"
)

type Health struct {
	Value int
}

func (Health) Name() string { return "health" }

type Poisoned struct{}

func (Poisoned) Name() string { return "poisoned" }

type Position struct {
	X, Y float64
}

func (Position) Name() string { return "position" }

func newTestWorld(t *testing.T, opts ...sable.WorldOption) *sable.World {
	t.Helper()
	opts = append([]sable.WorldOption{
		sable.WithConfig(sable.WorldConfig{Namespace: "test", LogLevel: "disabled"}),
		sable.WithLogger(zerolog.Nop()),
	}, opts...)
	w, err := sable.NewWorld(opts...)
	assert.NilError(t, err)
	return w
}

// spawnFlushed spawns n entities and flushes them immediately.
func spawnFlushed(t *testing.T, w *sable.World, n int) []types.UserEntity {
	t.Helper()
	handles := w.SpawnEmptyEntities(n)
	assert.NilError(t, w.FlushSpawns())
	return handles
}

func TestUnflushedHandleDoesNotResolve(t *testing.T) {
	w := newTestWorld(t)
	assert.NilError(t, sable.RegisterComponent[Health](w))

	handle := w.SpawnEmptyEntities(1)[0]
	_, err := w.RealEntity(handle)
	assert.ErrorIs(t, err, sable.ErrDoesNotExist)
	_, err = sable.GetComponent[Health](w, handle)
	assert.ErrorIs(t, err, sable.ErrDoesNotExist)

	// The next tick flushes the pending spawn.
	assert.NilError(t, w.Tick(nil))
	real, err := w.RealEntity(handle)
	assert.NilError(t, err)
	assert.Equal(t, real.Generation, handle.Generation)
}

func TestFlushAssignsDenseIndexes(t *testing.T) {
	w := newTestWorld(t)
	first := spawnFlushed(t, w, 2)
	second := spawnFlushed(t, w, 1)

	reals, err := w.RealEntities(append(first, second...))
	assert.NilError(t, err)
	assert.DeepEqual(t, []uint64{reals[0].Index, reals[1].Index, reals[2].Index}, []uint64{0, 1, 2})
}

func TestTickCountsCompletedTicks(t *testing.T) {
	w := newTestWorld(t)
	assert.Equal(t, w.CurrentTick(), uint64(0))
	assert.NilError(t, w.Tick(nil))
	assert.NilError(t, w.Tick(nil))
	assert.Equal(t, w.CurrentTick(), uint64(2))
}

func TestLogEntityRequiresRealEntity(t *testing.T) {
	w := newTestWorld(t)
	handle := w.SpawnEmptyEntities(1)[0]
	err := w.LogEntity(zerolog.InfoLevel, handle)
	assert.ErrorIs(t, err, sable.ErrDoesNotExist)

	assert.NilError(t, w.FlushSpawns())
	assert.NilError(t, w.LogEntity(zerolog.InfoLevel, handle))
}
