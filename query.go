package sable

import (
	"slices"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/sable-engine/sable/filter"
	"github.com/sable-engine/sable/types"
)

// Query is a live set of entities matching a declared component access
// pattern. The pattern names the component types the caller fetches with
// shared intent (reads), the types it fetches with exclusive intent
// (writes), and With/Without constraints that gate membership without being
// fetched. All four lists are resolved to component ids once, at creation.
//
// Membership is maintained incrementally as components change rather than
// recomputed per tick: systems run every frame, component mutations are
// comparatively rare, so the bookkeeping is paid where it is cheapest.
type Query struct {
	reads   []types.ComponentID
	writes  []types.ComponentID
	with    []types.ComponentID
	without []types.ComponentID

	members map[types.UserEntity]int // member -> position in order
	order   []types.UserEntity

	logger zerolog.Logger
}

// NewQuery builds a query over the given access pattern and registers it
// with the world so membership follows component changes and flushes. Every
// named component type must already be registered; entities already realized
// in the world are evaluated immediately.
func (w *World) NewQuery(reads []types.Component, writes []types.Component, filters ...filter.ComponentFilter) (*Query, error) {
	q := &Query{
		members: make(map[types.UserEntity]int),
		logger:  w.logger.With().Str("module", "query").Logger(),
	}
	var err error
	if q.reads, err = w.resolveComponentIDs(reads); err != nil {
		return nil, err
	}
	if q.writes, err = w.resolveComponentIDs(writes); err != nil {
		return nil, err
	}
	for _, f := range filters {
		with, without := f.Constraints()
		withIDs, err := w.resolveComponentIDs(with)
		if err != nil {
			return nil, err
		}
		withoutIDs, err := w.resolveComponentIDs(without)
		if err != nil {
			return nil, err
		}
		q.with = append(q.with, withIDs...)
		q.without = append(q.without, withoutIDs...)
	}

	w.queries = append(w.queries, q)
	for handle := range w.entityGenerator.TableEntries() {
		q.refresh(w, handle)
	}
	return q, nil
}

func (w *World) resolveComponentIDs(components []types.Component) ([]types.ComponentID, error) {
	ids := make([]types.ComponentID, 0, len(components))
	for _, component := range components {
		meta, err := w.componentManager.Metadata(component.Name())
		if err != nil {
			return nil, err
		}
		ids = append(ids, meta.ID())
	}
	return ids, nil
}

// matches reports whether the entity behind the handle satisfies the query's
// full access + constraint pattern. An unrealized handle trivially matches
// nothing.
func (q *Query) matches(w *World, handle types.UserEntity) bool {
	real, err := w.entityGenerator.RealEntity(handle)
	if err != nil {
		return false
	}
	for _, id := range q.reads {
		if !w.componentManager.HasComponentType(id, real) {
			return false
		}
	}
	for _, id := range q.writes {
		if !w.componentManager.HasComponentType(id, real) {
			return false
		}
	}
	return w.componentManager.HasCorrectConstraints(real, q.with, q.without)
}

// AddEntity inserts the handle into the query's set if it matches the
// declared pattern. A handle that is not yet flushed, or that fails any
// component or constraint check, is silently not added. Inserting a handle
// that is already a member is a bookkeeping bug and reports ErrDuplicate.
func (q *Query) AddEntity(w *World, handle types.UserEntity) error {
	if !q.matches(w, handle) {
		return nil
	}
	if _, ok := q.members[handle]; ok {
		return eris.Wrapf(ErrDuplicate, "entity %s is already a member of the query", handle)
	}
	q.insert(handle)
	return nil
}

// AddEntities runs AddEntity over a batch, short-circuiting on the first
// failure.
func (q *Query) AddEntities(w *World, handles []types.UserEntity) error {
	for _, handle := range handles {
		if err := q.AddEntity(w, handle); err != nil {
			return err
		}
	}
	return nil
}

// RemoveEntity removes a member; removing a non-member reports
// ErrDoesNotExist.
func (q *Query) RemoveEntity(handle types.UserEntity) error {
	if _, ok := q.members[handle]; !ok {
		return eris.Wrapf(ErrDoesNotExist, "entity %s is not a member of the query", handle)
	}
	q.remove(handle)
	return nil
}

// RemoveEntityUnchecked removes a member if present and only logs a warning
// otherwise. Bulk removal after a full despawn goes through here so callers
// need no per-entity error handling.
func (q *Query) RemoveEntityUnchecked(handle types.UserEntity) {
	if _, ok := q.members[handle]; !ok {
		q.logger.Warn().Str("entity", handle.String()).Msg("removing entity that is not a query member")
		return
	}
	q.remove(handle)
}

// RemoveEntities removes a batch of members, short-circuiting with
// ErrDoesNotExist on the first non-member.
func (q *Query) RemoveEntities(handles []types.UserEntity) error {
	for _, handle := range handles {
		if err := q.RemoveEntity(handle); err != nil {
			return err
		}
	}
	return nil
}

// RemoveEntitiesUnchecked removes a batch, ignoring non-members.
func (q *Query) RemoveEntitiesUnchecked(handles []types.UserEntity) {
	for _, handle := range handles {
		q.RemoveEntityUnchecked(handle)
	}
}

// Each executes the callback on every member. Returning false stops the
// iteration.
func (q *Query) Each(callback func(types.UserEntity) bool) {
	for _, handle := range q.order {
		if !callback(handle) {
			return
		}
	}
}

// Count returns the number of members.
func (q *Query) Count() int {
	return len(q.order)
}

// First returns the first member, or ErrDoesNotExist if the query is empty.
func (q *Query) First() (types.UserEntity, error) {
	if len(q.order) == 0 {
		return types.UserEntity{}, eris.Wrap(ErrDoesNotExist, "query has no members")
	}
	return q.order[0], nil
}

// Entities returns a copy of the member set.
func (q *Query) Entities() []types.UserEntity {
	out := make([]types.UserEntity, len(q.order))
	copy(out, q.order)
	return out
}

// Fetch returns the entity's values for every accessed component type, reads
// first then writes, all or nothing. A handle that does not resolve yields
// no value and no error. A member whose components cannot be fetched means
// the incremental bookkeeping is broken; that is logged and reported as
// ErrUnknown.
func (q *Query) Fetch(w *World, handle types.UserEntity) ([]any, bool, error) {
	real, err := w.entityGenerator.RealEntity(handle)
	if err != nil {
		return nil, false, nil
	}
	values := make([]any, 0, len(q.reads)+len(q.writes))
	for _, id := range append(append([]types.ComponentID{}, q.reads...), q.writes...) {
		value, err := w.componentManager.Component(id, real)
		if err != nil {
			q.logger.Error().Err(err).Str("entity", handle.String()).Int("component_id", int(id)).
				Msg("query fetch failed for a declared component")
			return nil, false, eris.Wrapf(ErrUnknown, "fetch of component %d for entity %s failed", id, handle)
		}
		values = append(values, value)
	}
	return values, true, nil
}

// QueryGet fetches one of the query's declared components, typed. The
// component type must be part of the query's access pattern
// (ErrWrongArgument otherwise). A handle that does not resolve yields no
// value and no error, matching Fetch; a member whose value cannot be fetched
// or downcast reports ErrUnknown.
func QueryGet[T types.Component](w *World, q *Query, handle types.UserEntity) (*T, bool, error) {
	var t T
	meta, err := w.componentManager.Metadata(t.Name())
	if err != nil {
		return nil, false, err
	}
	id := meta.ID()
	if !slices.Contains(q.reads, id) && !slices.Contains(q.writes, id) {
		return nil, false, eris.Wrapf(ErrWrongArgument, "component %q is not part of the query's access pattern", t.Name())
	}
	real, err := w.entityGenerator.RealEntity(handle)
	if err != nil {
		return nil, false, nil
	}
	value, err := w.componentManager.Component(id, real)
	if err != nil {
		q.logger.Error().Err(err).Str("entity", handle.String()).Str("component", t.Name()).
			Msg("query fetch failed for a declared component")
		return nil, false, eris.Wrapf(ErrUnknown, "fetch of component %q for entity %s failed", t.Name(), handle)
	}
	component, ok := value.(T)
	if !ok {
		return nil, false, eris.Wrapf(ErrUnknown, "component %q downcast failed: stored value is %T", t.Name(), value)
	}
	return &component, true, nil
}

// refresh re-evaluates one handle against the pattern, inserting or removing
// it so membership tracks component changes.
func (q *Query) refresh(w *World, handle types.UserEntity) {
	_, isMember := q.members[handle]
	matches := q.matches(w, handle)
	switch {
	case matches && !isMember:
		q.insert(handle)
	case !matches && isMember:
		q.remove(handle)
	}
}

func (q *Query) insert(handle types.UserEntity) {
	q.members[handle] = len(q.order)
	q.order = append(q.order, handle)
}

func (q *Query) remove(handle types.UserEntity) {
	idx := q.members[handle]
	last := len(q.order) - 1
	q.order[idx] = q.order[last]
	q.members[q.order[idx]] = idx
	q.order = q.order[:last]
	delete(q.members, handle)
}
