package memory

import (
	"context"
	"sync"
	"time"
)

type sessionEntry struct {
	value     []byte
	expiresAt time.Time
}

// SessionStore is a process-local session store with per-key expiry.
type SessionStore struct {
	mu    sync.Mutex
	items map[string]sessionEntry
	nowFn func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: map[string]sessionEntry{}, nowFn: time.Now}
}

func sessionKey(sessionID, key string) string {
	return sessionID + "\x00" + key
}

func (s *SessionStore) Set(_ context.Context, sessionID, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sessionKey(sessionID, key)] = sessionEntry{
		value:     append([]byte(nil), value...),
		expiresAt: s.nowFn().Add(ttl),
	}
	return nil
}

func (s *SessionStore) Get(_ context.Context, sessionID, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.lookupLocked(sessionKey(sessionID, key))
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), entry.value...), nil
}

func (s *SessionStore) Pop(_ context.Context, sessionID, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := sessionKey(sessionID, key)
	entry, ok := s.lookupLocked(k)
	if !ok {
		return nil, nil
	}
	delete(s.items, k)
	return entry.value, nil
}

func (s *SessionStore) lookupLocked(k string) (sessionEntry, bool) {
	entry, ok := s.items[k]
	if !ok {
		return sessionEntry{}, false
	}
	if !entry.expiresAt.After(s.nowFn()) {
		delete(s.items, k)
		return sessionEntry{}, false
	}
	return entry, true
}
