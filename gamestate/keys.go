package gamestate

import "fmt"

// snapshotKeyPrefix is the prefix every snapshot key of one namespace
// shares. Clearing a namespace's snapshot means deleting exactly the keys
// under this prefix; other namespaces sharing the storage are untouched.
func snapshotKeyPrefix(namespace string) string {
	return fmt.Sprintf("%s:SNAPSHOT:", namespace)
}

// snapshotMetaKey is the key holding the snapshot's world-level counters
// (current tick, next dense index, generator state).
func snapshotMetaKey(namespace string) string {
	return snapshotKeyPrefix(namespace) + "META"
}

// componentSchemaKey is the key holding the serialized schema of one
// component type at the time the snapshot was taken.
func componentSchemaKey(namespace, component string) string {
	return snapshotKeyPrefix(namespace) + "SCHEMA:" + component
}

// componentValuesKey is the key holding every stored value of one component
// type, as a JSON list of entity/value pairs.
func componentValuesKey(namespace, component string) string {
	return snapshotKeyPrefix(namespace) + "COMPONENT-VALUES:" + component
}
