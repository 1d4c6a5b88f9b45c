package archive

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process archive for local/dev use.
type InMemoryStore struct {
	mu         sync.RWMutex
	turns      map[string][]TurnRecord
	recordings map[string][]RecordingRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		turns:      make(map[string][]TurnRecord),
		recordings: make(map[string][]RecordingRecord),
	}
}

func (s *InMemoryStore) SaveTurn(_ context.Context, record TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.turns[record.CallSID] = append(s.turns[record.CallSID], record)
	return nil
}

func (s *InMemoryStore) SaveRecording(_ context.Context, record RecordingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ReceivedAt.IsZero() {
		record.ReceivedAt = time.Now().UTC()
	}
	s.recordings[record.CallSID] = append(s.recordings[record.CallSID], record)
	return nil
}

// Turns returns the stored turns for a call in insertion order.
func (s *InMemoryStore) Turns(callSID string) []TurnRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TurnRecord, len(s.turns[callSID]))
	copy(out, s.turns[callSID])
	return out
}

// Recordings returns the stored recording updates for a call.
func (s *InMemoryStore) Recordings(callSID string) []RecordingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RecordingRecord, len(s.recordings[callSID]))
	copy(out, s.recordings[callSID])
	return out
}

func (s *InMemoryStore) Close() error { return nil }
