package gamestate

import (
	"context"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/sable-engine/sable/codec"
	"github.com/sable-engine/sable/types"
)

// ComponentValue is one stored component value, keyed by the entity that
// carries it. Data is codec-encoded and only the component's own metadata
// knows how to decode it back to a concrete type.
type ComponentValue struct {
	Entity types.Entity    `json:"entity"`
	Data   json.RawMessage `json:"data"`
}

// ComponentSnapshot is the serialized state of one component type: the
// schema it had when the snapshot was taken plus every stored value.
type ComponentSnapshot struct {
	Name   string
	Schema []byte
	Values []ComponentValue
}

// Snapshotter persists world state through a PrimitiveStorage and recovers
// it again. The world-level counters travel as an opaque meta blob; the
// snapshotter only understands component records.
type Snapshotter struct {
	storage   PrimitiveStorage[string]
	namespace string
	logger    zerolog.Logger
}

func NewSnapshotter(storage PrimitiveStorage[string], namespace string, logger zerolog.Logger) *Snapshotter {
	return &Snapshotter{
		storage:   storage,
		namespace: namespace,
		logger:    logger.With().Str("module", "snapshotter").Logger(),
	}
}

// Save replaces whatever snapshot this namespace currently holds. Other
// namespaces' keys in the shared storage are left alone.
func (s *Snapshotter) Save(ctx context.Context, meta []byte, components []ComponentSnapshot) error {
	if err := s.clearNamespace(ctx); err != nil {
		return eris.Wrap(err, "failed to clear previous snapshot")
	}
	if err := s.storage.Set(ctx, snapshotMetaKey(s.namespace), meta); err != nil {
		return eris.Wrap(err, "failed to save snapshot meta")
	}
	for _, comp := range components {
		if err := s.storage.Set(ctx, componentSchemaKey(s.namespace, comp.Name), comp.Schema); err != nil {
			return eris.Wrapf(err, "failed to save schema of component %q", comp.Name)
		}
		bz, err := codec.Encode(comp.Values)
		if err != nil {
			return eris.Wrapf(err, "failed to encode values of component %q", comp.Name)
		}
		if err := s.storage.Set(ctx, componentValuesKey(s.namespace, comp.Name), bz); err != nil {
			return eris.Wrapf(err, "failed to save values of component %q", comp.Name)
		}
	}
	s.logger.Info().Int("components", len(components)).Msg("saved snapshot")
	return nil
}

// clearNamespace deletes every snapshot key of this namespace and nothing
// else. Several worlds share one storage scoped only by namespace, so a
// blanket storage clear here would destroy the other worlds' snapshots.
func (s *Snapshotter) clearNamespace(ctx context.Context) error {
	keys, err := s.storage.Keys(ctx)
	if err != nil {
		return eris.Wrap(err, "failed to list storage keys")
	}
	prefix := snapshotKeyPrefix(s.namespace)
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			return eris.Wrapf(err, "failed to delete stale snapshot key %q", key)
		}
	}
	return nil
}

// Load reads the snapshot back for the given registered components. Each
// component's saved schema must match its registered schema; a component
// with no saved record is skipped, since it may have been registered after
// the snapshot was taken.
func (s *Snapshotter) Load(ctx context.Context, registered []types.ComponentMetadata) ([]byte, []ComponentSnapshot, error) {
	meta, err := s.storage.GetBytes(ctx, snapshotMetaKey(s.namespace))
	if err != nil {
		if eris.Is(err, ErrKeyNotFound) {
			return nil, nil, eris.Wrapf(ErrNoSnapshot, "namespace %q", s.namespace)
		}
		return nil, nil, eris.Wrap(err, "failed to load snapshot meta")
	}

	comps := make([]ComponentSnapshot, 0, len(registered))
	for _, comp := range registered {
		schema, err := s.storage.GetBytes(ctx, componentSchemaKey(s.namespace, comp.Name()))
		if err != nil {
			if eris.Is(err, ErrKeyNotFound) {
				s.logger.Debug().Str("component", comp.Name()).Msg("component has no saved record, skipping")
				continue
			}
			return nil, nil, eris.Wrapf(err, "failed to load schema of component %q", comp.Name())
		}
		ok, err := types.IsSchemaValid(schema, comp.GetSchema())
		if err != nil {
			return nil, nil, eris.Wrapf(err, "failed to compare schema of component %q", comp.Name())
		}
		if !ok {
			return nil, nil, eris.Wrapf(ErrComponentSchemaMismatch, "component %q", comp.Name())
		}

		bz, err := s.storage.GetBytes(ctx, componentValuesKey(s.namespace, comp.Name()))
		if err != nil {
			return nil, nil, eris.Wrapf(err, "failed to load values of component %q", comp.Name())
		}
		values, err := codec.Decode[[]ComponentValue](bz)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "failed to decode values of component %q", comp.Name())
		}
		comps = append(comps, ComponentSnapshot{Name: comp.Name(), Schema: schema, Values: values})
	}
	return meta, comps, nil
}
