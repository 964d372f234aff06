package payload

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrUnknownContentType is returned by Lookup for an unregistered content
// type.
var ErrUnknownContentType = errors.New("unknown payload content type")

// codecs maps content type to codec. JSON is always present; the other
// built-in codecs add themselves in init.
var codecs = struct {
	sync.RWMutex
	byType map[string]Codec
}{byType: map[string]Codec{JSON{}.ContentType(): JSON{}}}

// Register makes codec available to Lookup under its ContentType,
// replacing any codec registered for the same type.
func Register(codec Codec) {
	codecs.Lock()
	defer codecs.Unlock()
	codecs.byType[codec.ContentType()] = codec
}

// Lookup returns the codec registered for contentType. An empty content
// type selects Default.
func Lookup(contentType string) (Codec, error) {
	if contentType == "" {
		return Default(), nil
	}
	codecs.RLock()
	defer codecs.RUnlock()
	if c, ok := codecs.byType[contentType]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, contentType)
}

// ContentTypes lists the registered content types, sorted.
func ContentTypes() []string {
	codecs.RLock()
	defer codecs.RUnlock()
	return slices.Sorted(maps.Keys(codecs.byType))
}
