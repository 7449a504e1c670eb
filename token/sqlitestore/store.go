// Package sqlitestore persists token records in SQLite.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jrsteele09/go-oauth-relay/internal/errors"
	"github.com/jrsteele09/go-oauth-relay/token"
	_ "modernc.org/sqlite"
)

var _ token.Repo = (*Store)(nil)

// Store is a SQLite-backed token.Repo. The upsert is a single
// INSERT ... ON CONFLICT statement, so concurrent writers for the same user
// id serialise at the storage layer and a record is always written whole.
type Store struct {
	sqlDB *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS token_info (
	user_id       TEXT PRIMARY KEY,
	access_token  TEXT NOT NULL,
	refresh_token TEXT NOT NULL,
	expires       INTEGER NOT NULL
);`

// Open opens (creating if needed) the SQLite token store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create token_info table: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Get(ctx context.Context, userID string) (*token.Record, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	var record token.Record
	var expires int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT user_id, access_token, refresh_token, expires
		   FROM token_info WHERE user_id = ?`, userID,
	).Scan(&record.UserID, &record.AccessToken, &record.RefreshToken, &expires)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNoLinkedAccount
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get token record: %w", errors.ErrStorageUnavailable, err)
	}
	record.Expires = fromMillis(expires)
	return &record, nil
}

func (s *Store) Upsert(ctx context.Context, record *token.Record) error {
	if record == nil || record.UserID == "" {
		return fmt.Errorf("user id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO token_info (user_id, access_token, refresh_token, expires)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires = excluded.expires`,
		record.UserID, record.AccessToken, record.RefreshToken, toMillis(record.Expires),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert token record: %w", errors.ErrStorageUnavailable, err)
	}
	return nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
