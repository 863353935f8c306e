package types

import (
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"

	"github.com/sable-engine/sable/codec"
)

// ComponentID is the process-wide stable token identifying one registered
// component type. IDs are assigned sequentially at registration time.
type ComponentID int

// Component is the interface user component structs implement to become
// storable in a world. Name must be unique across all registered components.
type Component interface {
	Name() string
}

// ComponentMetadata wraps a user-defined Component struct with the
// functionality the engine needs to store it type-erased: a stable ID, a
// codec, and the reflected JSON schema used to detect incompatible struct
// changes on snapshot restore.
type ComponentMetadata interface {
	// SetID sets the ComponentID of this component. It must only be set once.
	SetID(ComponentID) error
	// ID returns the ComponentID of the component.
	ID() ComponentID
	Encode(any) ([]byte, error)
	Decode([]byte) (any, error)
	GetSchema() []byte

	Component
}

// Metadata is the concrete ComponentMetadata for the component type T. It is
// the bridge through which compile-time-typed user code installs itself into
// the type-erased component manager.
type Metadata[T Component] struct {
	isIDSet bool
	id      ComponentID
	name    string
	schema  []byte
}

// NewComponentMetadata wraps the component type T for registration with a
// world. The component's schema is reflected once here.
func NewComponentMetadata[T Component]() (*Metadata[T], error) {
	var t T
	schema, err := SerializeComponentSchema(t)
	if err != nil {
		return nil, err
	}
	return &Metadata[T]{name: t.Name(), schema: schema}, nil
}

// SetID sets this component's ID. It must be unique across the world object.
func (m *Metadata[T]) SetID(id ComponentID) error {
	if m.isIDSet {
		// Components are normally registered once at startup. Tests reuse the
		// same component across worlds, which is fine as long as the assigned
		// ID never changes.
		if id == m.id {
			return nil
		}
		return eris.Errorf("id for component %q is already set to %d, cannot change to %d", m.name, m.id, id)
	}
	m.id = id
	m.isIDSet = true
	return nil
}

func (m *Metadata[T]) ID() ComponentID {
	return m.id
}

func (m *Metadata[T]) Name() string {
	return m.name
}

func (m *Metadata[T]) String() string {
	return m.name
}

func (m *Metadata[T]) Encode(value any) ([]byte, error) {
	return codec.Encode(value)
}

func (m *Metadata[T]) Decode(bz []byte) (any, error) {
	return codec.Decode[T](bz)
}

func (m *Metadata[T]) GetSchema() []byte {
	return m.schema
}

// SerializeComponentSchema reflects the JSON schema of the given component.
func SerializeComponentSchema(component Component) ([]byte, error) {
	schema, err := jsonschema.Reflect(component).MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return schema, nil
}

// IsSchemaValid reports whether two serialized component schemas are
// identical.
func IsSchemaValid(jsonSchemaBytes1 []byte, jsonSchemaBytes2 []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(jsonSchemaBytes1, jsonSchemaBytes2)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}
