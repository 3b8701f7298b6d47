package storage

import (
	"context"
	"errors"
)

// ErrNoToken is returned by Load when nothing has been persisted.
var ErrNoToken = errors.New("no session token stored")

// TokenKey is the single durable key the client persists.
const TokenKey = "token"

// TokenStore persists the bearer token across process runs.
// Supports local files, SQL databases and process memory.
type TokenStore interface {
	// Load returns the stored token or ErrNoToken
	Load(ctx context.Context) (string, error)

	// Save replaces the stored token
	Save(ctx context.Context, token string) error

	// Clear removes the stored token; clearing an empty store is not an error
	Clear(ctx context.Context) error
}
