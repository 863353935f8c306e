// Package codec is the serialization boundary for all engine state. Component
// values and snapshot records pass through here so the JSON implementation is
// swappable in exactly one place.
package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// Encode serializes a value for storage. Components are plain structs, so
// the only failure mode is a value holding something JSON cannot express.
func Encode(value any) ([]byte, error) {
	bz, err := json.Marshal(value)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to encode %T", value)
	}
	return bz, nil
}

// Decode deserializes stored bytes back into a value of type T.
func Decode[T any](bz []byte) (T, error) {
	var value T
	if err := json.Unmarshal(bz, &value); err != nil {
		return value, eris.Wrapf(err, "failed to decode into %T", value)
	}
	return value, nil
}
