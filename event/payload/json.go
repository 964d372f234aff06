package payload

import "encoding/json"

// JSON implements Codec using encoding/json.
type JSON struct{}

func (JSON) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSON) ContentType() string {
	return "application/json"
}

var _ Codec = JSON{}
