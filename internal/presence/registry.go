// Package presence tracks which users currently hold live connections.
// The registry is process-scoped and purely in-memory: after a restart every
// user is offline until they reconnect.
package presence

import (
	"sort"
	"sync"
)

// Handle is one live connection through which events can be pushed.
// Deliver must not block; it reports whether the event was accepted.
type Handle interface {
	UserID() string
	ConnID() string
	Deliver(event string, payload any) bool
}

// Registry maps (user id, conn id) to live handles. A user is online while at
// least one handle is registered for them, so a second device never evicts the
// first and disconnecting one device never drops the other's routability.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]map[string]Handle
	total int
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]map[string]Handle)}
}

// Register records the handle. Re-registering the same (user, conn) pair
// replaces the stored handle.
func (r *Registry) Register(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userConns, ok := r.conns[h.UserID()]
	if !ok {
		userConns = make(map[string]Handle, 1)
		r.conns[h.UserID()] = userConns
	}
	if _, exists := userConns[h.ConnID()]; !exists {
		r.total++
	}
	userConns[h.ConnID()] = h
}

// Unregister removes the handle and reports whether it was the user's last
// one, i.e. whether the user just went offline.
func (r *Registry) Unregister(h Handle) (last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userConns, ok := r.conns[h.UserID()]
	if !ok {
		return false
	}
	if _, exists := userConns[h.ConnID()]; !exists {
		return false
	}
	delete(userConns, h.ConnID())
	r.total--
	if len(userConns) == 0 {
		delete(r.conns, h.UserID())
		return true
	}
	return false
}

// Lookup returns every live handle for the user; empty when offline.
func (r *Registry) Lookup(userID string) []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userConns, ok := r.conns[userID]
	if !ok {
		return nil
	}
	handles := make([]Handle, 0, len(userConns))
	for _, h := range userConns {
		handles = append(handles, h)
	}
	return handles
}

func (r *Registry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID]) > 0
}

// OnlineIDs returns a sorted snapshot of online user ids.
func (r *Registry) OnlineIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// All returns a snapshot of every registered handle.
func (r *Registry) All() []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handles := make([]Handle, 0, r.total)
	for _, userConns := range r.conns {
		for _, h := range userConns {
			handles = append(handles, h)
		}
	}
	return handles
}

// Len returns the number of registered connections (not users).
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}
