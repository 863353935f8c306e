package types

import "fmt"

// GenerationalKey is a versioned slot identity. Index is the slot number and
// Generation is the epoch the key was minted in. Two keys are equal iff both
// fields match, so a key minted in an earlier epoch never resolves against
// state built in a later one.
type GenerationalKey struct {
	Index      uint64 `json:"index"`
	Generation uint64 `json:"generation"`
}

func (k GenerationalKey) String() string {
	return fmt.Sprintf("%d@gen%d", k.Index, k.Generation)
}

// UserEntity is the handle returned to callers at spawn-request time. It may
// predate the flush that realizes the entity, in which case lookups against
// it report "does not exist" rather than failing hard.
type UserEntity GenerationalKey

func (u UserEntity) String() string { return GenerationalKey(u).String() }

// Entity is the internal dense identifier assigned to a spawned entity once
// pending spawn requests are flushed. Component storage is keyed by Entity,
// never by UserEntity.
type Entity GenerationalKey

func (e Entity) String() string { return GenerationalKey(e).String() }
