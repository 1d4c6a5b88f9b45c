package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists call transcripts and recording metadata in
// PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS call_turns (
			id TEXT PRIMARY KEY,
			call_sid TEXT NOT NULL,
			caller TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_call_turns_call_created ON call_turns (call_sid, created_at);`,
		`CREATE TABLE IF NOT EXISTS call_recordings (
			recording_sid TEXT PRIMARY KEY,
			call_sid TEXT NOT NULL,
			status TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			duration_seconds INT NOT NULL DEFAULT 0,
			channels INT NOT NULL DEFAULT 0,
			received_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_call_recordings_call ON call_recordings (call_sid);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveTurn(ctx context.Context, record TurnRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO call_turns (id, call_sid, caller, role, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID,
		record.CallSID,
		record.From,
		record.Role,
		record.Content,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveRecording(ctx context.Context, record RecordingRecord) error {
	if record.ReceivedAt.IsZero() {
		record.ReceivedAt = time.Now().UTC()
	}

	// Status callbacks can repeat for the same recording; keep the latest.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO call_recordings (recording_sid, call_sid, status, url, duration_seconds, channels, received_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (recording_sid) DO UPDATE SET
			status = EXCLUDED.status,
			url = EXCLUDED.url,
			duration_seconds = EXCLUDED.duration_seconds,
			channels = EXCLUDED.channels,
			received_at = EXCLUDED.received_at`,
		record.RecordingSID,
		record.CallSID,
		record.Status,
		record.URL,
		record.DurationSeconds,
		record.Channels,
		record.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("save recording: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
