// Package session carries per-request credentials and the small amount of
// transient cross-request state the account flows need: the merge intent
// flag set before an account-link redirect, and the set of users whose
// cached credentials must be refreshed.
package session

import "sync"

// Credentials identifies the authenticated caller of a request.
type Credentials struct {
	SessionID    string // Stable ID for this login session.
	UserID       uint64 // Authenticated user ID.
	Username     string // Username at login time.
	AuthProvider string // Provider the session authenticated with, empty for password logins.
}

// Manager holds transient session state in memory. All state is scoped by
// session or user identity; nothing here is shared across sessions.
type Manager struct {
	mu    sync.Mutex
	merge map[string]struct{} // Session IDs with a pending merge intent.
	stale map[uint64]struct{} // User IDs whose cached credentials are stale.
}

// NewManager constructs a Manager.
func NewManager() *Manager {
	return &Manager{
		merge: make(map[string]struct{}),
		stale: make(map[uint64]struct{}),
	}
}

// SetMergeIntent marks the session so the next completed external
// authentication merges into the current account instead of logging in fresh.
func (m *Manager) SetMergeIntent(sessionID string) {
	if m == nil || sessionID == "" {
		return
	}
	m.mu.Lock()
	m.merge[sessionID] = struct{}{}
	m.mu.Unlock()
}

// ConsumeMergeIntent reads and clears the merge intent for a session. The
// authentication completion flow calls this exactly once per round trip,
// regardless of handshake outcome, so an abandoned redirect cannot leak the
// flag into a later login.
func (m *Manager) ConsumeMergeIntent(sessionID string) bool {
	if m == nil || sessionID == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.merge[sessionID]
	if ok {
		delete(m.merge, sessionID)
	}
	return ok
}

// FlagUserForUpdate marks a user's cached credentials as stale after a
// profile mutation. The refresh itself happens on the user's next request.
func (m *Manager) FlagUserForUpdate(userID uint64) {
	if m == nil || userID == 0 {
		return
	}
	m.mu.Lock()
	m.stale[userID] = struct{}{}
	m.mu.Unlock()
}

// ConsumeStale reads and clears the stale flag for a user.
func (m *Manager) ConsumeStale(userID uint64) bool {
	if m == nil || userID == 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.stale[userID]
	if ok {
		delete(m.stale, userID)
	}
	return ok
}
