package session

import (
	"sort"
	"sync"

	"github.com/hupe1980/agentshop/core"
)

// History is the message history of a single conversation. It is safe for
// concurrent use.
type History struct {
	mu       sync.RWMutex
	messages []core.Content
}

// NewHistory returns an empty history.
func NewHistory() *History { return &History{} }

// Add appends messages in order.
func (h *History) Add(messages ...core.Content) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, messages...)
}

// Messages returns a copy of the full history.
func (h *History) Messages() []core.Content {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]core.Content(nil), h.messages...)
}

// Len returns the number of stored messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Clear drops all messages.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

// Last returns a window of roughly the last n messages that starts on a user
// message, so tool results are never separated from the call that produced
// them. The window is the last n messages advanced to their first user
// message; if the window holds none, it starts at the closest earlier user
// message instead. n <= 0 returns the full history.
func (h *History) Last(n int) []core.Content {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n >= len(h.messages) {
		return append([]core.Content(nil), h.messages...)
	}

	start := len(h.messages) - n
	for i := start; i < len(h.messages); i++ {
		if h.messages[i].Role == core.RoleUser {
			return append([]core.Content(nil), h.messages[i:]...)
		}
	}
	for i := start - 1; i >= 0; i-- {
		if h.messages[i].Role == core.RoleUser {
			return append([]core.Content(nil), h.messages[i:]...)
		}
	}
	return append([]core.Content(nil), h.messages[start:]...)
}

// InMemoryStore is a volatile store of histories keyed by session id. It is
// safe for concurrent access and suited for tests, the console and demo servers.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*History
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*History)}
}

// Get returns the history for sessionID, creating it lazily.
func (s *InMemoryStore) Get(sessionID string) *History {
	s.mu.RLock()
	h, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.sessions[sessionID]; ok {
		return h
	}
	h = NewHistory()
	s.sessions[sessionID] = h
	return h
}

// Delete removes a session. Deleting an unknown session is a no-op.
func (s *InMemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// IDs returns the known session ids in sorted order.
func (s *InMemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
