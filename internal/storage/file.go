package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	tokenFileName = "session.token"
	sealedPrefix  = "sealed:v1:"
)

var ErrSealedToken = errors.New("stored token could not be unsealed")

// FileTokenStore keeps the token in a single file readable only by the user
type FileTokenStore struct {
	path string
	key  *[32]byte // nil when sealing is disabled
}

// NewFileTokenStore creates the store directory if needed.
// A non-empty passphrase seals the token with secretbox.
func NewFileTokenStore(dir, passphrase string) (*FileTokenStore, error) {
	dir, err := sessionDir(dir)
	if err != nil {
		return nil, err
	}

	s := &FileTokenStore{path: filepath.Join(dir, tokenFileName)}
	if passphrase != "" {
		k := sha256.Sum256([]byte(passphrase))
		s.key = &k
	}
	return s, nil
}

// Path returns the file backing the store
func (s *FileTokenStore) Path() string {
	return s.path
}

func (s *FileTokenStore) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", ErrNoToken
	}
	if strings.HasPrefix(content, sealedPrefix) {
		return s.unseal(strings.TrimPrefix(content, sealedPrefix))
	}
	return content, nil
}

func (s *FileTokenStore) Save(ctx context.Context, token string) error {
	content := token
	if s.key != nil {
		sealed, err := s.seal(token)
		if err != nil {
			return err
		}
		content = sealedPrefix + sealed
	}

	// Write-then-rename so a crash never leaves a half-written token behind
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) seal(token string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(token), &nonce, s.key)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *FileTokenStore) unseal(encoded string) (string, error) {
	if s.key == nil {
		return "", fmt.Errorf("%w: no encryption key configured", ErrSealedToken)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) < 24 {
		return "", ErrSealedToken
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, s.key)
	if !ok {
		return "", ErrSealedToken
	}
	return string(plain), nil
}
