package sable_test

import (
	"testing"

	"github.com/rotisserie/eris"

	"github.com/sable-engine/sable"
	"github.com/sable-engine/sable/assert"
	"github.com/sable-engine/sable/types"
)

type tickLog struct {
	Paused bool
	Ran    []string
}

func recordRun(wCtx sable.WorldContext, label string) error {
	state, err := sable.GameState[tickLog](wCtx)
	if err != nil {
		return err
	}
	state.Ran = append(state.Ran, label)
	return nil
}

func alphaSystem(wCtx sable.WorldContext) error { return recordRun(wCtx, "alpha") }
func betaSystem(wCtx sable.WorldContext) error  { return recordRun(wCtx, "beta") }
func gammaSystem(wCtx sable.WorldContext) error { return recordRun(wCtx, "gamma") }

func failingSystem(sable.WorldContext) error {
	return eris.New("deliberate system failure")
}

func TestSystemsRunInRegistrationOrder(t *testing.T) {
	w := newTestWorld(t)
	assert.NilError(t, w.RegisterSystems(betaSystem, alphaSystem, gammaSystem))

	state := &tickLog{}
	assert.NilError(t, w.Tick(state))
	assert.NilError(t, w.Tick(state))
	assert.DeepEqual(t, state.Ran, []string{"beta", "alpha", "gamma", "beta", "alpha", "gamma"})
}

func TestDuplicateSystemRegistrationFails(t *testing.T) {
	w := newTestWorld(t)
	assert.NilError(t, w.RegisterSystems(alphaSystem))

	err := w.RegisterSystems(alphaSystem)
	assert.ErrorIs(t, err, sable.ErrDuplicate)

	// A duplicate anywhere in the batch registers none of the batch.
	err = w.RegisterSystems(betaSystem, betaSystem)
	assert.ErrorIs(t, err, sable.ErrDuplicate)
	assert.Len(t, w.GetRegisteredSystems(), 1)
}

func TestSingleCallSystemRunsOnceAndIsPruned(t *testing.T) {
	w := newTestWorld(t)
	assert.NilError(t, w.RegisterSystem(alphaSystem, sable.SingleCall(), nil))

	state := &tickLog{}
	assert.NilError(t, w.Tick(state))
	assert.NilError(t, w.Tick(state))
	assert.DeepEqual(t, state.Ran, []string{"alpha"})
	assert.Len(t, w.GetRegisteredSystems(), 0)
}

func TestForNUpdatesSystemRunsExactlyNTimes(t *testing.T) {
	w := newTestWorld(t)
	assert.NilError(t, w.RegisterSystem(alphaSystem, sable.ForNUpdates(2), nil))

	state := &tickLog{}
	for i := 0; i < 4; i++ {
		assert.NilError(t, w.Tick(state))
	}
	assert.DeepEqual(t, state.Ran, []string{"alpha", "alpha"})
	assert.Len(t, w.GetRegisteredSystems(), 0)
}

func TestEveryNUpdatesSystemRunsOnFirstAndEveryNth(t *testing.T) {
	w := newTestWorld(t)
	assert.NilError(t, w.RegisterSystem(alphaSystem, sable.EveryNUpdates(3), nil))

	state := &tickLog{}
	for i := 0; i < 8; i++ {
		assert.NilError(t, w.Tick(state))
	}
	// Ticks 1, 4 and 7 of the eight.
	assert.Len(t, state.Ran, 3)
}

func TestGateBlocksWithoutConsumingTheSchedule(t *testing.T) {
	w := newTestWorld(t)
	notPaused := func(game sable.Game) (bool, error) {
		return !game.(*tickLog).Paused, nil
	}
	assert.NilError(t, w.RegisterSystem(alphaSystem, sable.SingleCall(), notPaused))

	state := &tickLog{Paused: true}
	assert.NilError(t, w.Tick(state))
	assert.NilError(t, w.Tick(state))
	assert.Len(t, state.Ran, 0)
	// The blocked single call is still pending.
	assert.Len(t, w.GetRegisteredSystems(), 1)

	state.Paused = false
	assert.NilError(t, w.Tick(state))
	assert.DeepEqual(t, state.Ran, []string{"alpha"})
	assert.Len(t, w.GetRegisteredSystems(), 0)
}

func TestGateErrorAbortsTheTick(t *testing.T) {
	w := newTestWorld(t)
	brokenGate := func(sable.Game) (bool, error) {
		return false, eris.New("gate exploded")
	}
	assert.NilError(t, w.RegisterSystem(alphaSystem, sable.Always(), brokenGate))
	assert.NilError(t, w.RegisterSystems(betaSystem))

	state := &tickLog{}
	err := w.Tick(state)
	assert.ErrorIs(t, err, sable.ErrUnknown)
	// The failure aborted everything after the broken gate.
	assert.Len(t, state.Ran, 0)
	assert.Equal(t, w.CurrentTick(), uint64(0))
}

func TestSystemFailureAbortsRemainingSystems(t *testing.T) {
	w := newTestWorld(t)
	assert.NilError(t, w.RegisterSystems(alphaSystem, failingSystem, betaSystem))

	state := &tickLog{}
	err := w.Tick(state)
	assert.ErrorIs(t, err, sable.ErrUnknown)
	assert.DeepEqual(t, state.Ran, []string{"alpha"})

	// The next tick starts over from the top.
	assert.Equal(t, w.GetCurrentSystem(), "")
}

func TestGameStateRejectsWrongType(t *testing.T) {
	w := newTestWorld(t)
	assert.NilError(t, w.RegisterSystems(alphaSystem))

	err := w.Tick(&struct{ Unrelated int }{})
	assert.ErrorIs(t, err, sable.ErrUnknown)
}

func TestSystemMutationsAreVisibleAcrossTicks(t *testing.T) {
	w := newTestWorld(t)
	assert.NilError(t, sable.RegisterComponent[Health](w))

	handles := spawnFlushed(t, w, 3)
	for _, handle := range handles {
		assert.NilError(t, sable.AddComponentTo(w, handle, Health{Value: 0}))
	}

	q, err := w.NewQuery([]types.Component{Health{}}, []types.Component{Health{}})
	assert.NilError(t, err)

	regenSystem := func(wCtx sable.WorldContext) error {
		var failed error
		q.Each(func(handle types.UserEntity) bool {
			failed = sable.UpdateComponent(wCtx.World(), handle, func(h *Health) *Health {
				h.Value++
				return h
			})
			return failed == nil
		})
		return failed
	}
	assert.NilError(t, w.RegisterSystems(regenSystem))

	for i := 0; i < 5; i++ {
		assert.NilError(t, w.Tick(nil))
	}
	for _, handle := range handles {
		got, err := sable.GetComponent[Health](w, handle)
		assert.NilError(t, err)
		assert.Equal(t, got.Value, 5)
	}
}

func TestRegisterSystemWithNameUsesExplicitName(t *testing.T) {
	w := newTestWorld(t)
	record := func(label string) sable.System {
		return func(wCtx sable.WorldContext) error { return recordRun(wCtx, label) }
	}
	assert.NilError(t, w.RegisterSystemWithName(record("first"), "firstSystem"))
	assert.NilError(t, w.RegisterSystemWithName(record("second"), "secondSystem"))
	err := w.RegisterSystemWithName(record("third"), "firstSystem")
	assert.ErrorIs(t, err, sable.ErrDuplicate)

	assert.DeepEqual(t, w.GetRegisteredSystems(), []string{"firstSystem", "secondSystem"})
	state := &tickLog{}
	assert.NilError(t, w.Tick(state))
	assert.DeepEqual(t, state.Ran, []string{"first", "second"})
}

func TestWorldContextCarriesSystemName(t *testing.T) {
	w := newTestWorld(t)
	var seen string
	inspect := func(wCtx sable.WorldContext) error {
		seen = wCtx.SystemName()
		assert.Equal(t, w.GetCurrentSystem(), seen)
		return nil
	}
	assert.NilError(t, w.RegisterSystems(inspect))
	assert.NilError(t, w.Tick(nil))
	assert.Contains(t, seen, "TestWorldContextCarriesSystemName")
}
