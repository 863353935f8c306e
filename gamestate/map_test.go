package gamestate_test

import (
	"sort"
	"testing"

	"github.com/sable-engine/sable/assert"
	"github.com/sable-engine/sable/gamestate"
)

func TestMapStorageMissesReportKeyNotFound(t *testing.T) {
	store := gamestate.NewMapStorage[string, int]()
	_, err := store.Get("absent")
	assert.ErrorIs(t, err, gamestate.ErrKeyNotFound)
	assert.False(t, store.Has("absent"))
}

func TestMapStorageSetGetDelete(t *testing.T) {
	store := gamestate.NewMapStorage[string, int]()
	assert.NilError(t, store.Set("a", 1))
	assert.NilError(t, store.Set("b", 2))
	assert.NilError(t, store.Set("a", 10))

	value, err := store.Get("a")
	assert.NilError(t, err)
	assert.Equal(t, value, 10)
	assert.Equal(t, store.Len(), 2)

	assert.NilError(t, store.Delete("a"))
	_, err = store.Get("a")
	assert.ErrorIs(t, err, gamestate.ErrKeyNotFound)

	// Deleting an absent key is not an error.
	assert.NilError(t, store.Delete("a"))
}

func TestMapStorageKeysAndClear(t *testing.T) {
	store := gamestate.NewMapStorage[string, int]()
	assert.NilError(t, store.Set("a", 1))
	assert.NilError(t, store.Set("b", 2))

	keys, err := store.Keys()
	assert.NilError(t, err)
	sort.Strings(keys)
	assert.DeepEqual(t, keys, []string{"a", "b"})

	assert.NilError(t, store.Clear())
	assert.Equal(t, store.Len(), 0)
}
