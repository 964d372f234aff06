package payload

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

// Proto implements Codec using Protocol Buffers.
// Both the payload and the conversion target must be proto.Message values.
type Proto struct{}

// Encode serializes the payload, which must implement proto.Message.
func (Proto) Encode(v any) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, errors.New("payload must implement proto.Message")
	}
	return proto.Marshal(msg)
}

// Decode deserializes into target, which must be a pointer to a proto.Message.
func (Proto) Decode(data []byte, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return errors.New("target must implement proto.Message")
	}
	return proto.Unmarshal(data, msg)
}

func (Proto) ContentType() string {
	return "application/protobuf"
}

var _ Codec = Proto{}

func init() {
	Register(Proto{})
}
