package chat

import (
	"sort"
	"sync"
)

// Registry is the process-wide presence table: user id -> the one live
// connection handle. It is the single shared mutable resource of the
// realtime core; every access goes through these four methods so the
// "at most one handle per user" invariant can never be observed broken,
// not even transiently.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[string]*Client)}
}

// Attach registers c as the live handle for its user. If the user already
// had a handle the newer connection wins and the superseded handle is
// returned so the caller can close it after the swap has committed.
func (r *Registry) Attach(userID string, c *Client) (prev *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev = r.byUser[userID]
	r.byUser[userID] = c
	return prev
}

// Detach removes the entry for userID only while c is still its current
// handle. A stale detach racing a newer attach is a no-op, so reconnect
// races cannot knock a fresh connection out of the table.
func (r *Registry) Detach(userID string, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.byUser[userID]; ok && cur == c {
		delete(r.byUser, userID)
		return true
	}
	return false
}

// Lookup returns the current handle for userID. Never blocks beyond the
// read lock.
func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[userID]
	return c, ok
}

// Snapshot lists all currently present user ids, sorted for deterministic
// broadcasts.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byUser))
	for uid := range r.byUser {
		out = append(out, uid)
	}
	sort.Strings(out)
	return out
}

// Clients returns every live handle, for broadcast fan-out.
func (r *Registry) Clients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.byUser))
	for _, c := range r.byUser {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
