// Package payload converts event payloads between representations.
//
// Events carry their payload as an untyped value. Emitters usually attach a
// concrete struct, but payloads that crossed a process boundary before being
// re-emitted (decoded JSON, MessagePack maps, protobuf messages) arrive in a
// generic shape. As converts such a payload into the struct a listener
// expects by round-tripping it through a Codec.
//
// Usage:
//
//	points, err := payload.As[PointsAdded](ev.Payload)
//
//	// Explicit codec
//	points, err := payload.AsWith[PointsAdded](payload.MsgPack{}, ev.Payload)
package payload

import "errors"

// ErrNilPayload is returned when a nil payload is converted to a value type.
var ErrNilPayload = errors.New("payload is nil")

// Codec encodes/decodes payload data.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Encode serializes the payload to bytes.
	Encode(v any) ([]byte, error)

	// Decode deserializes bytes into target, which must be a pointer.
	Decode(data []byte, v any) error

	// ContentType returns the MIME type (e.g., "application/json").
	ContentType() string
}

// Default returns the codec used by As (JSON).
func Default() Codec {
	return JSON{}
}
