// Package log renders engine state (registered components, systems,
// entities) as structured zerolog events.
package log

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/sable-engine/sable/types"
)

// Loggable is anything that can report its registered components and
// systems. The World implements it.
type Loggable interface {
	GetRegisteredComponents() []types.ComponentMetadata
	GetRegisteredSystems() []string
}

func componentDict(component types.ComponentMetadata) *zerolog.Event {
	return zerolog.Dict().
		Int("component_id", int(component.ID())).
		Str("component_name", component.Name())
}

func appendComponents(event *zerolog.Event, components []types.ComponentMetadata) *zerolog.Event {
	sort.Slice(components, func(i, j int) bool {
		return components[i].ID() < components[j].ID()
	})
	arr := zerolog.Arr()
	for _, component := range components {
		arr = arr.Dict(componentDict(component))
	}
	event.Int("total_components", len(components))
	return event.Array("components", arr)
}

func appendSystems(event *zerolog.Event, systems []string) *zerolog.Event {
	arr := zerolog.Arr()
	for _, name := range systems {
		arr = arr.Str(name)
	}
	event.Int("total_systems", len(systems))
	return event.Array("systems", arr)
}

// Components logs all component info related to the engine.
func Components(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	appendComponents(logger.WithLevel(level), target.GetRegisteredComponents()).Send()
}

// System logs all system info related to the engine.
func System(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	appendSystems(logger.WithLevel(level), target.GetRegisteredSystems()).Send()
}

// Entity logs one entity together with the component types it carries.
func Entity(logger *zerolog.Logger, level zerolog.Level, entity types.Entity, components []types.ComponentMetadata) {
	event := logger.WithLevel(level)
	arr := zerolog.Arr()
	for _, component := range components {
		arr = arr.Dict(componentDict(component))
	}
	event.Array("components", arr).
		Uint64("entity_index", entity.Index).
		Uint64("entity_generation", entity.Generation).
		Send()
}

// World logs everything about the world: components and systems.
func World(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	event := logger.WithLevel(level)
	event = appendComponents(event, target.GetRegisteredComponents())
	appendSystems(event, target.GetRegisteredSystems()).Send()
}
