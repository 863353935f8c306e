package sable

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sable-engine/sable/assert"
	"github.com/sable-engine/sable/types"
)

func TestSpawnedHandlesAreUnique(t *testing.T) {
	gen := NewEntityGenerator(zerolog.Nop())

	seen := map[types.UserEntity]bool{}
	for _, handle := range gen.SpawnEmptyEntities(64) {
		assert.Assert(t, !seen[handle], "handle %s minted twice", handle)
		seen[handle] = true
	}
	for _, handle := range gen.SpawnEmptyEntities(64) {
		assert.Assert(t, !seen[handle], "handle %s minted twice", handle)
		seen[handle] = true
	}
	assert.Equal(t, len(seen), 128)
	assert.Equal(t, gen.PendingCount(), 128)
}

func TestStaleHandleIsRejectedAfterEpochRoll(t *testing.T) {
	gen := NewEntityGenerator(zerolog.Nop())
	gen.created = math.MaxUint64

	// The first handle takes the last index of the old epoch; the second one
	// opens the next epoch at index 0.
	handles := gen.SpawnEmptyEntities(2)
	assert.Equal(t, handles[0], types.UserEntity{Index: math.MaxUint64, Generation: 0})
	assert.Equal(t, handles[1], types.UserEntity{Index: 0, Generation: 1})

	reals := []types.Entity{
		{Index: 0, Generation: handles[0].Generation},
		{Index: 1, Generation: handles[1].Generation},
	}
	assert.NilError(t, gen.UpdateTable(reals))

	// A handle reusing index 0 from the old generation must not resolve
	// against the table built from the new generation's flush.
	_, err := gen.RealEntity(types.UserEntity{Index: 0, Generation: 0})
	assert.ErrorIs(t, err, ErrDoesNotExist)

	real, err := gen.RealEntity(handles[1])
	assert.NilError(t, err)
	assert.Equal(t, real.Generation, handles[1].Generation)
}

func TestFlushCountMismatchLeavesStateRetryable(t *testing.T) {
	gen := NewEntityGenerator(zerolog.Nop())
	handles := gen.SpawnEmptyEntities(3)

	err := gen.UpdateTable(make([]types.Entity, 2))
	assert.ErrorIs(t, err, ErrWrongArgument)
	assert.Equal(t, gen.PendingCount(), 3)

	// The failed attempt must not corrupt anything: a corrected flush
	// succeeds.
	reals := []types.Entity{{Index: 0}, {Index: 1}, {Index: 2}}
	assert.NilError(t, gen.UpdateTable(reals))
	assert.Equal(t, gen.PendingCount(), 0)
	for i, handle := range handles {
		real, err := gen.RealEntity(handle)
		assert.NilError(t, err)
		assert.Equal(t, real, reals[i])
	}
}

func TestFlushIsAllOrNothing(t *testing.T) {
	gen := NewEntityGenerator(zerolog.Nop())
	first := gen.SpawnEmptyEntities(1)
	assert.NilError(t, gen.UpdateTable([]types.Entity{{Index: 0}}))

	// Queue a fresh handle plus a duplicate of the already-mapped one.
	fresh := gen.SpawnEmptyEntities(1)[0]
	gen.pending = append(gen.pending, first[0])

	err := gen.UpdateTable([]types.Entity{{Index: 1}, {Index: 2}})
	assert.ErrorIs(t, err, ErrWrongArgument)

	// Nothing from the failed batch may have been committed.
	_, err = gen.RealEntity(fresh)
	assert.ErrorIs(t, err, ErrDoesNotExist)
	assert.Equal(t, gen.PendingCount(), 2)
}

func TestFlushRejectsHandleRepeatedWithinBatch(t *testing.T) {
	gen := NewEntityGenerator(zerolog.Nop())
	handle := gen.SpawnEmptyEntities(1)[0]
	gen.pending = append(gen.pending, handle)

	err := gen.UpdateTable([]types.Entity{{Index: 0}, {Index: 1}})
	assert.ErrorIs(t, err, ErrWrongArgument)

	// Nothing was committed and the queue is intact.
	_, err = gen.RealEntity(handle)
	assert.ErrorIs(t, err, ErrDoesNotExist)
	assert.Equal(t, gen.PendingCount(), 2)
}

func TestRealEntitiesShortCircuits(t *testing.T) {
	gen := NewEntityGenerator(zerolog.Nop())
	handles := gen.SpawnEmptyEntities(2)
	assert.NilError(t, gen.UpdateTable([]types.Entity{{Index: 0}, {Index: 1}}))

	reals, err := gen.RealEntities(handles)
	assert.NilError(t, err)
	assert.Len(t, reals, 2)

	neverSpawned := types.UserEntity{Index: 999, Generation: 0}
	_, err = gen.RealEntities(append(handles, neverSpawned))
	assert.ErrorIs(t, err, ErrDoesNotExist)
}
