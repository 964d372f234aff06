package event

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Wildcard is the reserved event type that matches every event.
const Wildcard = "*"

// ErrEmptyType is returned by Event.Validate when the event has no type.
var ErrEmptyType = errors.New("event type is empty")

// PlayerID identifies the player an event belongs to.
// The bus passes it through without interpreting it.
type PlayerID string

// Metadata carries tracking information for an event.
type Metadata struct {
	CorrelationID string            `json:"correlationId,omitempty"`
	CausationID   string            `json:"causationId,omitempty"`
	Source        string            `json:"source,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Get returns the value for key, looking at the named fields first.
func (m *Metadata) Get(key string) string {
	if m == nil {
		return ""
	}
	switch key {
	case "correlationId":
		return m.CorrelationID
	case "causationId":
		return m.CausationID
	case "source":
		return m.Source
	}
	return m.Extra[key]
}

// Copy returns a deep copy of the metadata.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	c := *m
	if m.Extra != nil {
		c.Extra = make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// Event is an immutable record of something that happened to a player.
// Payload is indexed by Type; listeners convert it with Typed or payload.As.
type Event struct {
	Type      string    `json:"type"`
	PlayerID  PlayerID  `json:"playerId"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// Validate checks the event has a type.
func (e Event) Validate() error {
	if e.Type == "" {
		return ErrEmptyType
	}
	return nil
}

// CorrelationID returns the correlation id or "".
func (e Event) CorrelationID() string {
	return e.Metadata.Get("correlationId")
}

// EventOption configures an event built with New.
type EventOption func(*Event)

// WithCorrelationID sets the correlation id.
func WithCorrelationID(id string) EventOption {
	return func(e *Event) {
		e.meta().CorrelationID = id
	}
}

// WithCausationID sets the causation id.
func WithCausationID(id string) EventOption {
	return func(e *Event) {
		e.meta().CausationID = id
	}
}

// WithSource tags the module that produced the event.
func WithSource(source string) EventOption {
	return func(e *Event) {
		e.meta().Source = source
	}
}

// WithExtra adds a free-form metadata entry.
func WithExtra(key, value string) EventOption {
	return func(e *Event) {
		m := e.meta()
		if m.Extra == nil {
			m.Extra = make(map[string]string)
		}
		m.Extra[key] = value
	}
}

// WithTimestamp overrides the emission time.
func WithTimestamp(t time.Time) EventOption {
	return func(e *Event) {
		e.Timestamp = t
	}
}

// CausedBy marks the event as a consequence of parent: the correlation id
// is inherited and parent's correlation id becomes the causation id.
func CausedBy(parent Event) EventOption {
	return func(e *Event) {
		m := e.meta()
		if id := parent.CorrelationID(); id != "" {
			m.CorrelationID = id
			m.CausationID = id
		}
	}
}

func (e *Event) meta() *Metadata {
	if e.Metadata == nil {
		e.Metadata = &Metadata{}
	}
	return e.Metadata
}

// New creates an event stamped with the current UTC time. A correlation id
// is generated when none is supplied.
func New(eventType string, player PlayerID, payload any, opts ...EventOption) Event {
	ev := Event{
		Type:      eventType,
		PlayerID:  player,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	for _, opt := range opts {
		opt(&ev)
	}
	if ev.CorrelationID() == "" {
		ev.meta().CorrelationID = NewID()
	}
	return ev
}

// NewID generates a new unique ID.
func NewID() string {
	return uuid.NewString()
}

// Caused derives a follow-up event for the same player, linked to e
// through CausedBy.
func (e Event) Caused(eventType string, payload any, opts ...EventOption) Event {
	return New(eventType, e.PlayerID, payload, append([]EventOption{CausedBy(e)}, opts...)...)
}
