package sable

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/sable-engine/sable/gamestate"
	"github.com/sable-engine/sable/types"
)

// ComponentManager owns one type-erased value store per registered component
// type, keyed by the internal Entity. Values are boxed; the compile-time
// typed surface lives in the generic helpers (RegisterComponent,
// AddComponentTo, GetComponent and friends), which downcast on the way out.
// Each stored value is exclusively owned by the manager: callers only ever
// see it for the duration of a query or system invocation.
type ComponentManager struct {
	byName map[string]types.ComponentMetadata
	byID   map[types.ComponentID]types.ComponentMetadata
	stores map[types.ComponentID]gamestate.VolatileStorage[types.Entity, any]
	nextID types.ComponentID

	logger zerolog.Logger
}

func NewComponentManager(logger zerolog.Logger) *ComponentManager {
	return &ComponentManager{
		byName: make(map[string]types.ComponentMetadata),
		byID:   make(map[types.ComponentID]types.ComponentMetadata),
		stores: make(map[types.ComponentID]gamestate.VolatileStorage[types.Entity, any]),
		logger: logger.With().Str("module", "component_manager").Logger(),
	}
}

// Register installs an empty store for the component described by meta and
// assigns its ComponentID. Registering a second component under an existing
// name is rejected with ErrDuplicate; two components never share a store.
func (m *ComponentManager) Register(meta types.ComponentMetadata) error {
	if _, ok := m.byName[meta.Name()]; ok {
		return eris.Wrapf(ErrDuplicate, "component %q is already registered", meta.Name())
	}
	id := m.nextID
	if err := meta.SetID(id); err != nil {
		return eris.Wrapf(err, "failed to assign id to component %q", meta.Name())
	}
	m.nextID++
	m.byName[meta.Name()] = meta
	m.byID[id] = meta
	m.stores[id] = gamestate.NewMapStorage[types.Entity, any]()
	m.logger.Debug().Str("component", meta.Name()).Int("component_id", int(id)).Msg("registered component")
	return nil
}

// Metadata looks a registered component up by name.
func (m *ComponentManager) Metadata(name string) (types.ComponentMetadata, error) {
	meta, ok := m.byName[name]
	if !ok {
		return nil, eris.Wrapf(ErrDoesNotExist, "component %q is not registered", name)
	}
	return meta, nil
}

// AddComponentToEntity stores a boxed value for the entity under the given
// component type. An unregistered type reports ErrDoesNotExist; an entity
// that already carries the type reports ErrDuplicate.
func (m *ComponentManager) AddComponentToEntity(id types.ComponentID, entity types.Entity, value any) error {
	store, ok := m.stores[id]
	if !ok {
		return eris.Wrapf(ErrDoesNotExist, "component type %d is not registered", id)
	}
	if store.Has(entity) {
		return eris.Wrapf(ErrDuplicate, "entity %s already has component %q", entity, m.byID[id].Name())
	}
	return store.Set(entity, value)
}

// Component returns the boxed value the entity carries for the given type.
// "Type never registered" and "entity lacks a value" are both
// ErrDoesNotExist, with distinct messages.
func (m *ComponentManager) Component(id types.ComponentID, entity types.Entity) (any, error) {
	store, ok := m.stores[id]
	if !ok {
		return nil, eris.Wrapf(ErrDoesNotExist, "component type %d is not registered", id)
	}
	if !store.Has(entity) {
		return nil, eris.Wrapf(ErrDoesNotExist, "entity %s has no component %q", entity, m.byID[id].Name())
	}
	return store.Get(entity)
}

// SetComponent overwrites the value the entity carries for the given type.
// It is the write-back half of a mutable fetch; the value must already
// exist.
func (m *ComponentManager) SetComponent(id types.ComponentID, entity types.Entity, value any) error {
	store, ok := m.stores[id]
	if !ok {
		return eris.Wrapf(ErrDoesNotExist, "component type %d is not registered", id)
	}
	if !store.Has(entity) {
		return eris.Wrapf(ErrDoesNotExist, "entity %s has no component %q", entity, m.byID[id].Name())
	}
	return store.Set(entity, value)
}

// RemoveComponentFromEntity deletes the entity's value for the given type.
func (m *ComponentManager) RemoveComponentFromEntity(id types.ComponentID, entity types.Entity) error {
	store, ok := m.stores[id]
	if !ok {
		return eris.Wrapf(ErrDoesNotExist, "component type %d is not registered", id)
	}
	if !store.Has(entity) {
		return eris.Wrapf(ErrDoesNotExist, "entity %s has no component %q", entity, m.byID[id].Name())
	}
	return store.Delete(entity)
}

// HasComponentType reports whether the entity carries the given component
// type. Unlike Component, this is the non-failing predicate the query engine
// filters with: an unregistered type simply reports false.
func (m *ComponentManager) HasComponentType(id types.ComponentID, entity types.Entity) bool {
	store, ok := m.stores[id]
	if !ok {
		return false
	}
	return store.Has(entity)
}

// HasCorrectConstraints reports whether the entity carries every component
// type in with and none of the types in without.
func (m *ComponentManager) HasCorrectConstraints(entity types.Entity, with, without []types.ComponentID) bool {
	for _, id := range with {
		if !m.HasComponentType(id, entity) {
			return false
		}
	}
	for _, id := range without {
		if m.HasComponentType(id, entity) {
			return false
		}
	}
	return true
}

// RegisteredComponents returns all registered component metadata, ordered by
// ComponentID.
func (m *ComponentManager) RegisteredComponents() []types.ComponentMetadata {
	acc := make([]types.ComponentMetadata, 0, len(m.byID))
	for _, meta := range m.byID {
		acc = append(acc, meta)
	}
	sort.Slice(acc, func(i, j int) bool { return acc[i].ID() < acc[j].ID() })
	return acc
}

// componentTypesOf returns the component types the entity currently carries.
// Used for entity logging.
func (m *ComponentManager) componentTypesOf(entity types.Entity) []types.ComponentMetadata {
	acc := make([]types.ComponentMetadata, 0)
	for _, meta := range m.RegisteredComponents() {
		if m.HasComponentType(meta.ID(), entity) {
			acc = append(acc, meta)
		}
	}
	return acc
}
