package payload

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// MsgPack implements Codec using MessagePack.
// Struct fields fall back to their json tag when no msgpack tag is set, so
// payload structs only need json tags.
type MsgPack struct{}

// Encode serializes the payload to MessagePack bytes.
func (MsgPack) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes MessagePack bytes into the target.
func (MsgPack) Decode(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func (MsgPack) ContentType() string {
	return "application/msgpack"
}

var _ Codec = MsgPack{}

func init() {
	Register(MsgPack{})
}
