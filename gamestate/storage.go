// Package gamestate holds the engine's key/value storage layers: volatile
// in-memory bookkeeping storage and durable primitive storage used for world
// snapshots.
package gamestate

import "context"

// VolatileStorage is in-memory key/value storage for engine bookkeeping. Its
// contents do not survive a process restart.
type VolatileStorage[K comparable, V any] interface {
	Get(key K) (V, error)
	Has(key K) bool
	Set(key K, value V) error
	Delete(key K) error
	Keys() ([]K, error)
	Len() int
	Clear() error
}

// PrimitiveStorage is durable key/value storage a world snapshot is written
// to and recovered from.
type PrimitiveStorage[K comparable] interface {
	GetBytes(ctx context.Context, key K) ([]byte, error)
	Set(ctx context.Context, key K, value any) error
	Delete(ctx context.Context, key K) error
	Keys(ctx context.Context) ([]K, error)
	Clear(ctx context.Context) error
	Close(ctx context.Context) error
}
