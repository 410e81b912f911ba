package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fairworkhq/payday/pkg/jwtx"
)

// StoredCredentials is what a CredentialStore persists: the signed session
// token and the account profile, nothing else. Tickets, one-time codes and
// backup codes must never reach a store.
type StoredCredentials struct {
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

// CredentialStore persists a session between process runs. Load returns
// (nil, nil) when nothing usable is stored: implementations check the token's
// embedded expiry locally and silently discard a lapsed session, so callers
// never have to handle a stale token.
type CredentialStore interface {
	Save(creds StoredCredentials) error
	Load() (*StoredCredentials, error)
	Clear() error
}

// tokenLapsed checks the embedded expiry claim without a network round-trip.
// A token that fails to parse counts as lapsed.
func tokenLapsed(token string) bool {
	claims, err := jwtx.PeekExpiry(token)
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return time.Now().After(claims.ExpiresAt.Time)
}

// FileCredentialStore persists credentials as JSON in a single file with
// owner-only permissions.
type FileCredentialStore struct {
	Path string

	mu sync.Mutex
}

func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{Path: path}
}

func (s *FileCredentialStore) Save(creds StoredCredentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("authsdk: encode credentials: %w", err)
	}
	if err := os.WriteFile(s.Path, raw, 0600); err != nil {
		return fmt.Errorf("authsdk: write credentials: %w", err)
	}
	return nil
}

func (s *FileCredentialStore) Load() (*StoredCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("authsdk: read credentials: %w", err)
	}

	var creds StoredCredentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		// A corrupt file is treated like an empty one
		_ = os.Remove(s.Path)
		return nil, nil
	}

	if tokenLapsed(creds.Token) {
		_ = os.Remove(s.Path)
		return nil, nil
	}

	return &creds, nil
}

func (s *FileCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryCredentialStore keeps credentials in process memory. Useful for tests
// and for callers that never want a token on disk.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	creds *StoredCredentials
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (s *MemoryCredentialStore) Save(creds StoredCredentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := creds
	s.creds = &c
	return nil
}

func (s *MemoryCredentialStore) Load() (*StoredCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.creds == nil {
		return nil, nil
	}
	if tokenLapsed(s.creds.Token) {
		s.creds = nil
		return nil, nil
	}

	c := *s.creds
	return &c, nil
}

func (s *MemoryCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = nil
	return nil
}
