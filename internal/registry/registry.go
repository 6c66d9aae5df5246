package registry

import (
	"context"
	"sync"

	"messenger-service/internal/models"
)

// Handle is a user's currently open real-time channel. Push may block on the
// underlying transport, so callers must never invoke it while holding the
// registry lock.
type Handle interface {
	Push(ctx context.Context, event models.Event) error
}

// Registry maps user ids to their single live connection handle. It is
// purely in-memory; a process restart leaves every user offline until they
// reconnect.
type Registry struct {
	mu    sync.RWMutex
	conns map[int]Handle
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{conns: make(map[int]Handle)}
}

// Register stores the handle for the user, replacing any previous one
// (last-writer-wins on reconnect). The displaced handle is returned so the
// caller can close it.
func (r *Registry) Register(userID int, h Handle) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.conns[userID]
	r.conns[userID] = h
	if prev == h {
		return nil
	}
	return prev
}

// Unregister removes the user's entry only if it still holds h, so a stale
// disconnect cannot evict a newer connection.
func (r *Registry) Unregister(userID int, h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[userID] != h {
		return false
	}
	delete(r.conns, userID)
	return true
}

// Lookup returns the user's live handle, if any.
func (r *Registry) Lookup(userID int) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.conns[userID]
	return h, ok
}

// Active reports the number of registered connections.
func (r *Registry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
