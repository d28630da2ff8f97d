// pkg/nonce/memory.go
package nonce

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

type entry struct {
	value    string
	issuedAt time.Time
}

type memTracker struct {
	ttl time.Duration

	mu      sync.Mutex
	pending map[string]entry
}

// NewMemoryTracker keeps pending handshakes in process memory. ttl <= 0
// disables expiry.
func NewMemoryTracker(ttl time.Duration) Tracker {
	return &memTracker{ttl: ttl, pending: map[string]entry{}}
}

func (m *memTracker) Issue(ctx context.Context, shop string) (string, error) {
	n, err := generate()
	if err != nil {
		return "", err
	}
	now := time.Now()
	m.mu.Lock()
	if m.ttl > 0 {
		// Abandoned handshakes expire silently; sweep them here so the map
		// does not grow with shops that never came back.
		for k, e := range m.pending {
			if now.Sub(e.issuedAt) > m.ttl {
				delete(m.pending, k)
			}
		}
	}
	m.pending[shop] = entry{value: n, issuedAt: now}
	m.mu.Unlock()
	return n, nil
}

func (m *memTracker) Consume(ctx context.Context, shop, presented string) error {
	m.mu.Lock()
	e, ok := m.pending[shop]
	// Deleted on both match and mismatch: a nonce is single-use either way.
	delete(m.pending, shop)
	m.mu.Unlock()
	if !ok {
		return ErrMismatch
	}
	if m.ttl > 0 && time.Since(e.issuedAt) > m.ttl {
		return ErrMismatch
	}
	if subtle.ConstantTimeCompare([]byte(e.value), []byte(presented)) != 1 {
		return ErrMismatch
	}
	return nil
}
