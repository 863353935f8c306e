package sable

import (
	"testing"

	"github.com/sable-engine/sable/assert"
)

func TestAlwaysNeverExpires(t *testing.T) {
	s := Always()
	for i := 0; i < 10; i++ {
		assert.True(t, s.tick())
	}
	assert.False(t, s.expired())
}

func TestSingleCallExpiresAfterOneRun(t *testing.T) {
	s := SingleCall()
	assert.True(t, s.tick())
	assert.True(t, s.expired())
	assert.False(t, s.tick())
}

func TestForNUpdatesRunsExactlyN(t *testing.T) {
	s := ForNUpdates(2)
	assert.True(t, s.tick())
	assert.False(t, s.expired())
	assert.True(t, s.tick())
	assert.True(t, s.expired())
	assert.False(t, s.tick())
}

func TestForZeroUpdatesIsNever(t *testing.T) {
	s := ForNUpdates(0)
	assert.True(t, s.expired())
	assert.False(t, s.tick())
}

func TestEveryNUpdatesRunsOnFirstAndEveryNth(t *testing.T) {
	s := EveryNUpdates(3)
	ran := make([]bool, 0, 9)
	for i := 0; i < 9; i++ {
		ran = append(ran, s.tick())
	}
	// 1-indexed ticks 1, 4 and 7.
	assert.DeepEqual(t, ran, []bool{true, false, false, true, false, false, true, false, false})
	assert.False(t, s.expired())
}

func TestEveryNUpdatesCounterResetsToOne(t *testing.T) {
	s := EveryNUpdates(2)
	assert.True(t, s.tick())
	// After a run the counter rests at 1, never 0.
	assert.Equal(t, s.counter, uint64(1))
}
