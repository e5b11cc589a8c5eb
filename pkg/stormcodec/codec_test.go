package stormcodec_test

import (
	"testing"

	"github.com/mdouchement/udeshare/pkg/stormcodec"
	"github.com/stretchr/testify/assert"
)

func TestByName(t *testing.T) {
	data := []struct {
		name     string
		expected string
	}{
		{name: "", expected: "msgpack"},
		{name: "msgpack", expected: "msgpack"},
		{name: "JSON", expected: "json"},
		{name: "cbor", expected: "cbor"},
		{name: " binc ", expected: "binc"},
	}

	for _, d := range data {
		c, err := stormcodec.ByName(d.name)
		assert.NoError(t, err)
		assert.Equal(t, d.expected, c.Name())
	}

	_, err := stormcodec.ByName("gob")
	assert.EqualError(t, err, "unsupported storage codec: gob")
}

func TestHandleCodecs(t *testing.T) {
	for _, c := range []interface {
		Marshal(any) ([]byte, error)
		Unmarshal([]byte, any) error
	}{stormcodec.CBOR, stormcodec.Binc} {
		payload, err := c.Marshal("george.abitbol@nowhere.lan")
		assert.NoError(t, err)

		var v string
		err = c.Unmarshal(payload, &v)
		assert.NoError(t, err)
		assert.Equal(t, "george.abitbol@nowhere.lan", v)
	}
}
