package drop

import (
	"sync"
	"time"
)

// DefaultMemoryLimit bounds a MemoryStore when no limit is given.
const DefaultMemoryLimit = 10000

// MemoryStore is a bounded in-memory drop store.
// Suitable for testing and single-instance deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	drops  []Dropped
	limit  int
	closed bool
}

// NewMemoryStore creates an in-memory store holding at most limit
// drops. A limit of zero or less uses DefaultMemoryLimit.
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &MemoryStore{limit: limit}
}

// Append implements Store. It returns ErrStoreFull once the limit is
// reached; the caller decides whether losing the record is acceptable.
func (m *MemoryStore) Append(d Dropped) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if len(m.drops) >= m.limit {
		return ErrStoreFull
	}

	if d.DroppedAt.IsZero() {
		d.DroppedAt = time.Now().UTC()
	}

	// Copy the payload to avoid retaining the caller's slice.
	if d.Payload != nil {
		p := make([]byte, len(d.Payload))
		copy(p, d.Payload)
		d.Payload = p
	}

	m.drops = append(m.drops, d)
	return nil
}

// List implements Store.
func (m *MemoryStore) List(limit int) ([]Dropped, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	n := len(m.drops)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Dropped, n)
	copy(out, m.drops[:n])
	return out, nil
}

// Len implements Store.
func (m *MemoryStore) Len() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.drops), nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.drops = nil
	return nil
}

var _ Store = (*MemoryStore)(nil)
