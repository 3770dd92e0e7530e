package domain

import (
	"sync"
	"time"
)

// Session tracks one viewer connection's side of room membership plus its
// liveness flag. The room registry keeps the authoritative member sets; a
// session's joined view is mutated only by the registry, so the two stay
// bidirectionally consistent.
type Session struct {
	ID           string
	alive        bool
	joined       map[RoomKey]struct{}
	createdAt    time.Time
	lastActiveAt time.Time
	mu           sync.RWMutex
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		alive:        true,
		joined:       make(map[RoomKey]struct{}),
		createdAt:    now,
		lastActiveAt: now,
	}
}

// AddRoom records membership; it reports whether the key was new.
func (s *Session) AddRoom(key RoomKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.joined[key]; ok {
		return false
	}
	s.joined[key] = struct{}{}
	return true
}

func (s *Session) RemoveRoom(key RoomKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.joined, key)
}

func (s *Session) InRoom(key RoomKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.joined[key]
	return ok
}

// Rooms returns a snapshot of the joined room keys.
func (s *Session) Rooms() []RoomKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]RoomKey, 0, len(s.joined))
	for k := range s.joined {
		keys = append(keys, k)
	}
	return keys
}

// Alive reports whether the peer responded since the last supervisor sweep.
func (s *Session) Alive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alive
}

func (s *Session) SetAlive(alive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alive = alive
	if alive {
		s.lastActiveAt = time.Now()
	}
}

func (s *Session) UpdateActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActiveAt = time.Now()
}

func (s *Session) LastActiveAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActiveAt
}
