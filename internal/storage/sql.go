package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"medilink-client/internal/logger"
)

// Both sqlite3 and postgres accept $n placeholders and ON CONFLICT upserts,
// so one set of statements serves either driver.
const (
	createTokenTableSQL = `CREATE TABLE IF NOT EXISTS session_tokens (key TEXT PRIMARY KEY, value TEXT NOT NULL, updated_on TIMESTAMP NOT NULL)`
	selectTokenSQL      = `SELECT value FROM session_tokens WHERE key = $1`
	upsertTokenSQL      = `INSERT INTO session_tokens (key, value, updated_on) VALUES ($1, $2, $3)
	                       ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_on = excluded.updated_on`
	deleteTokenSQL = `DELETE FROM session_tokens WHERE key = $1`
)

// SQLTokenStore keeps the token in a key/value table
type SQLTokenStore struct {
	db *sql.DB
}

// NewSQLTokenStore wraps an open database; the table must already exist
func NewSQLTokenStore(db *sql.DB) *SQLTokenStore {
	return &SQLTokenStore{db: db}
}

// OpenSQLTokenStore opens the database, checks connectivity and creates the table
func OpenSQLTokenStore(driver, dsn string) (*SQLTokenStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	s := NewSQLTokenStore(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLTokenStore) EnsureSchema(ctx context.Context) error {
	logger.DatabaseCall("create_table", createTokenTableSQL)
	_, err := s.db.ExecContext(ctx, createTokenTableSQL)
	logger.DatabaseResult("create_table", 0, err)
	if err != nil {
		return fmt.Errorf("create session_tokens: %w", err)
	}
	return nil
}

func (s *SQLTokenStore) Load(ctx context.Context) (string, error) {
	logger.DatabaseCall("load_token", selectTokenSQL)
	var token string
	err := s.db.QueryRowContext(ctx, selectTokenSQL, TokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("load_token", 0, nil)
		return "", ErrNoToken
	}
	logger.DatabaseResult("load_token", 1, err)
	if err != nil {
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (s *SQLTokenStore) Save(ctx context.Context, token string) error {
	logger.DatabaseCall("save_token", upsertTokenSQL)
	res, err := s.db.ExecContext(ctx, upsertTokenSQL, TokenKey, token, time.Now().UTC())
	var n int64
	if err == nil {
		n, _ = res.RowsAffected()
	}
	logger.DatabaseResult("save_token", n, err)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *SQLTokenStore) Clear(ctx context.Context) error {
	logger.DatabaseCall("clear_token", deleteTokenSQL)
	res, err := s.db.ExecContext(ctx, deleteTokenSQL, TokenKey)
	var n int64
	if err == nil {
		n, _ = res.RowsAffected()
	}
	logger.DatabaseResult("clear_token", n, err)
	if err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// Close releases the underlying database
func (s *SQLTokenStore) Close() error {
	return s.db.Close()
}
