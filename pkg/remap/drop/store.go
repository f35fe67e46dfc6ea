// Package drop records events removed from a pipeline by runtime faults.
//
// A fault removes one event from its batch without touching the others.
// The runner routes each removed event to a Store together with the
// fault that removed it, so operators can inspect and replay them.
package drop

import (
	"errors"
	"time"
)

// Dropped describes one event removed from a pipeline.
type Dropped struct {
	// EventID identifies the removed event.
	EventID string

	// Reason is the fault message that removed the event.
	Reason string

	// Payload is the event's serialized form, kept for replay.
	Payload []byte

	// DroppedAt is when the event was removed. Stores fill it with the
	// current time when zero.
	DroppedAt time.Time
}

// Store persists dropped events for later inspection.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append records a dropped event.
	Append(d Dropped) error

	// List returns recorded drops in append order. A limit greater than
	// zero caps the count; otherwise everything is returned.
	List(limit int) ([]Dropped, error)

	// Len returns the number of recorded drops.
	Len() (int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for drop stores.
var (
	// ErrStoreFull indicates a bounded store cannot accept more drops.
	ErrStoreFull = errors.New("drop store full")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("drop store closed")
)
