package convstore

import (
	"context"
	"sync"
	"time"
)

// Role tags one conversational turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one role-tagged utterance in a call's history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"content"`
}

type record struct {
	turns       []Turn
	lastUpdated time.Time
}

// Store keeps per-call conversation history in memory. Records expire a
// fixed TTL after their last write; expiry is checked lazily on read and
// reclaimed by the janitor for calls that never come back.
type Store struct {
	mu      sync.RWMutex
	records map[string]record
	ttl     time.Duration
	now     func() time.Time
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		records: make(map[string]record),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock overrides the time source for expiry checks. Test hook.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Get returns a copy of the stored turns for callSID, or an empty slice
// when the record is missing or older than the TTL.
func (s *Store) Get(callSID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[callSID]
	if !ok {
		return nil
	}
	if s.now().Sub(r.lastUpdated) >= s.ttl {
		return nil
	}
	out := make([]Turn, len(r.turns))
	copy(out, r.turns)
	return out
}

// Put replaces the record for callSID and refreshes its last-updated time.
func (s *Store) Put(callSID string, turns []Turn) {
	cp := make([]Turn, len(turns))
	copy(cp, turns)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[callSID] = record{turns: cp, lastUpdated: s.now()}
}

// Len reports the number of records currently held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// StartJanitor periodically removes expired records until ctx is done.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, r := range s.records {
		if now.Sub(r.lastUpdated) >= s.ttl {
			delete(s.records, key)
		}
	}
}
