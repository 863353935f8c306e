// Package filter declares component presence constraints for queries. With
// and Without compile down to flat lists of component types evaluated
// against an entity's component set; listing several components in one
// filter requires all of them (they are AND-ed).
package filter

import "github.com/sable-engine/sable/types"

// ComponentFilter contributes required and excluded component types to a
// query's constraint lists. Filters constrain membership independently of
// whether the listed components are themselves fetched.
type ComponentFilter interface {
	Constraints() (with []types.Component, without []types.Component)
}

type with struct {
	components []types.Component
}

// With matches entities that carry every one of the given components.
func With(components ...types.Component) ComponentFilter {
	return &with{components: components}
}

func (f *with) Constraints() ([]types.Component, []types.Component) {
	return f.components, nil
}

type without struct {
	components []types.Component
}

// Without matches entities that carry none of the given components.
func Without(components ...types.Component) ComponentFilter {
	return &without{components: components}
}

func (f *without) Constraints() ([]types.Component, []types.Component) {
	return nil, f.components
}

type and struct {
	filters []ComponentFilter
}

// And combines filters. The result requires every with-constraint and every
// without-constraint of its parts.
func And(filters ...ComponentFilter) ComponentFilter {
	return &and{filters: filters}
}

func (f *and) Constraints() ([]types.Component, []types.Component) {
	var withAcc, withoutAcc []types.Component
	for _, inner := range f.filters {
		w, wo := inner.Constraints()
		withAcc = append(withAcc, w...)
		withoutAcc = append(withoutAcc, wo...)
	}
	return withAcc, withoutAcc
}

type all struct{}

// All places no constraint on entities.
func All() ComponentFilter {
	return &all{}
}

func (f *all) Constraints() ([]types.Component, []types.Component) {
	return nil, nil
}
