package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds token store configuration
type Config struct {
	Type          string // "file", "sqlite", "postgres" or "memory"
	Dir           string // Directory for the file and sqlite stores
	DSN           string // Connection string for postgres
	EncryptionKey string // Optional passphrase sealing the file store
}

// New builds the token store selected by cfg.Type
func New(cfg Config) (TokenStore, error) {
	switch cfg.Type {
	case "", "file":
		return NewFileTokenStore(cfg.Dir, cfg.EncryptionKey)
	case "sqlite":
		dir, err := sessionDir(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return OpenSQLTokenStore("sqlite3", sqliteDSN(filepath.Join(dir, "session.db")))
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres token store requires a DSN")
		}
		return OpenSQLTokenStore("postgres", cfg.DSN)
	case "memory":
		return NewMemoryTokenStore(), nil
	default:
		return nil, fmt.Errorf("unsupported token store type: %q", cfg.Type)
	}
}

// sessionDir defaults to ~/.medilink and makes sure the directory exists
func sessionDir(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".medilink")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}
	return dir, nil
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=5000", path)
}
