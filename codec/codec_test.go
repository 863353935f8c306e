package codec_test

import (
	"testing"

	"github.com/sable-engine/sable/assert"
	"github.com/sable-engine/sable/codec"
)

type record struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

func TestRoundTrip(t *testing.T) {
	bz, err := codec.Encode(record{Label: "a", Count: 3})
	assert.NilError(t, err)

	decoded, err := codec.Decode[record](bz)
	assert.NilError(t, err)
	assert.Equal(t, decoded, record{Label: "a", Count: 3})
}

func TestEncodeRejectsUnserializableValues(t *testing.T) {
	_, err := codec.Encode(make(chan int))
	assert.ErrorContains(t, err, "failed to encode")
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	_, err := codec.Decode[record]([]byte("{not json"))
	assert.ErrorContains(t, err, "failed to decode")
}
