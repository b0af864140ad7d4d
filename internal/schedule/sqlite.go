package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lampctl/lampseq/internal/infrastructure/database"
)

// SQLiteStore persists the prepared schedule in the single-row
// prepared_schedule table (see the migrations package).
//
// The raw line is stored verbatim so the durable artifact is exactly
// what the client sent; parsing happens again on read.
type SQLiteStore struct {
	db *database.DB
}

// NewSQLiteStore creates a Store backed by the given database.
func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Write upserts the schedule row, replacing any previous schedule.
func (s *SQLiteStore) Write(ctx context.Context, rawLine string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prepared_schedule (id, raw_line, prepared_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			raw_line = excluded.raw_line,
			prepared_at = excluded.prepared_at
	`, rawLine, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing prepared schedule: %w", err)
	}
	return nil
}

// Read returns the last prepared line, or ErrNotPrepared if the row has
// never been written in this or any earlier process lifetime.
func (s *SQLiteStore) Read(ctx context.Context) (string, error) {
	var rawLine string
	err := s.db.QueryRowContext(ctx,
		"SELECT raw_line FROM prepared_schedule WHERE id = 1",
	).Scan(&rawLine)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotPrepared
	}
	if err != nil {
		return "", fmt.Errorf("reading prepared schedule: %w", err)
	}
	return rawLine, nil
}
