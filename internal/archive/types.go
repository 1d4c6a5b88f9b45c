package archive

import (
	"context"
	"time"
)

// TurnRecord stores one user or assistant utterance from a call.
type TurnRecord struct {
	ID        string    `json:"id"`
	CallSID   string    `json:"call_sid"`
	From      string    `json:"from"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordingRecord stores a recording-status callback.
type RecordingRecord struct {
	RecordingSID    string    `json:"recording_sid"`
	CallSID         string    `json:"call_sid"`
	Status          string    `json:"status"`
	URL             string    `json:"url"`
	DurationSeconds int       `json:"duration_seconds"`
	Channels        int       `json:"channels"`
	ReceivedAt      time.Time `json:"received_at"`
}

// Store persists call transcripts and recording metadata. Writes are
// best-effort from the call path: failures are logged, never fatal.
type Store interface {
	SaveTurn(ctx context.Context, record TurnRecord) error
	SaveRecording(ctx context.Context, record RecordingRecord) error
	Close() error
}
