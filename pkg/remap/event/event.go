// Package event defines the records programs transform and their NDJSON
// wire form.
//
// An Event couples an identity (UUID and timestamp) with the fields a
// program evaluates against. The Decoder and Encoder move events over
// newline-delimited JSON, the format the command line tools speak.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/remap/pkg/remap/value"
)

// Event is one record moving through a pipeline.
type Event struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Fields    value.Object `json:"fields"`
}

// Option configures event creation.
type Option func(*Event)

// WithID sets a specific event ID (default: auto-generated UUID).
func WithID(id string) Option {
	return func(e *Event) {
		e.ID = id
	}
}

// WithTimestamp sets a specific timestamp (default: time.Now in UTC).
func WithTimestamp(t time.Time) Option {
	return func(e *Event) {
		e.Timestamp = t
	}
}

// New creates an event carrying fields.
func New(fields value.Object, opts ...Option) *Event {
	e := &Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Fields:    fields,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Field returns the named field and whether it is present.
func (e *Event) Field(name string) (value.Value, bool) {
	v, ok := e.Fields[name]
	return v, ok
}

// WithFields returns a copy of the event carrying fields instead of the
// original ones. Identity and timestamp are preserved; events are never
// mutated in place.
func (e *Event) WithFields(fields value.Object) *Event {
	return &Event{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		Fields:    fields,
	}
}
