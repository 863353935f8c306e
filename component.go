package sable

import (
	"github.com/rotisserie/eris"

	"github.com/sable-engine/sable/types"
)

// RegisterComponent registers the component type T with the world. Every
// component type must be registered before values of it are attached to
// entities.
func RegisterComponent[T types.Component](w *World) error {
	meta, err := types.NewComponentMetadata[T]()
	if err != nil {
		return err
	}
	return w.componentManager.Register(meta)
}

// AddComponentTo attaches the given component value to the entity behind the
// handle. The handle must have been flushed; adding to a pending or stale
// handle reports ErrDoesNotExist, and adding a type the entity already
// carries reports ErrDuplicate.
func AddComponentTo[T types.Component](w *World, handle types.UserEntity, component T) error {
	meta, err := w.componentManager.Metadata(component.Name())
	if err != nil {
		return err
	}
	real, err := w.entityGenerator.RealEntity(handle)
	if err != nil {
		return err
	}
	if err := w.componentManager.AddComponentToEntity(meta.ID(), real, component); err != nil {
		return err
	}
	w.refreshQueries(handle)
	return nil
}

// GetComponent returns a copy of the entity's component of type T. Mutations
// of the returned value are not visible to the world until written back with
// SetComponent or UpdateComponent.
func GetComponent[T types.Component](w *World, handle types.UserEntity) (*T, error) {
	var t T
	meta, err := w.componentManager.Metadata(t.Name())
	if err != nil {
		return nil, err
	}
	real, err := w.entityGenerator.RealEntity(handle)
	if err != nil {
		return nil, err
	}
	value, err := w.componentManager.Component(meta.ID(), real)
	if err != nil {
		return nil, err
	}
	component, ok := value.(T)
	if !ok {
		// A stored value of the wrong concrete type means the component id
		// mapping itself is broken, not that the caller misused the API.
		return nil, eris.Wrapf(ErrUnknown, "component %q downcast failed: stored value is %T", t.Name(), value)
	}
	return &component, nil
}

// SetComponent writes a component value back to the entity behind the
// handle. The entity must already carry a value of type T.
func SetComponent[T types.Component](w *World, handle types.UserEntity, component T) error {
	meta, err := w.componentManager.Metadata(component.Name())
	if err != nil {
		return err
	}
	real, err := w.entityGenerator.RealEntity(handle)
	if err != nil {
		return err
	}
	return w.componentManager.SetComponent(meta.ID(), real, component)
}

// UpdateComponent is the exclusive-access fetch: it reads the entity's
// component of type T, applies fn, and writes the result back.
func UpdateComponent[T types.Component](w *World, handle types.UserEntity, fn func(*T) *T) error {
	component, err := GetComponent[T](w, handle)
	if err != nil {
		return err
	}
	return SetComponent(w, handle, *fn(component))
}

// RemoveComponentFrom detaches the component of type T from the entity
// behind the handle. ErrDoesNotExist if the entity does not carry one.
func RemoveComponentFrom[T types.Component](w *World, handle types.UserEntity) error {
	var t T
	meta, err := w.componentManager.Metadata(t.Name())
	if err != nil {
		return err
	}
	real, err := w.entityGenerator.RealEntity(handle)
	if err != nil {
		return err
	}
	if err := w.componentManager.RemoveComponentFromEntity(meta.ID(), real); err != nil {
		return err
	}
	w.refreshQueries(handle)
	return nil
}

// HasComponent reports whether the entity behind the handle carries a
// component of type T. It never fails: unregistered types and unflushed
// handles report false.
func HasComponent[T types.Component](w *World, handle types.UserEntity) bool {
	var t T
	meta, err := w.componentManager.Metadata(t.Name())
	if err != nil {
		return false
	}
	real, err := w.entityGenerator.RealEntity(handle)
	if err != nil {
		return false
	}
	return w.componentManager.HasComponentType(meta.ID(), real)
}
