// Package credentials persists the bearer token between runs. The
// backend hands out one opaque token at login or registration; this is
// the only secret the client keeps.
package credentials

import (
	"encoding/json"
	"os"
	"sync"
)

type fileFormat struct {
	Token string `json:"token"`
}

// Store is a file-backed holder for the persisted token. All methods
// are safe for concurrent use.
type Store struct {
	path  string
	mu    sync.Mutex
	token string
}

// NewStore returns a store persisting to the given path. Call Load
// before first use.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the credentials file. A missing file is not an error and
// leaves the store empty.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.token = ""
			return nil
		}
		return err
	}
	defer f.Close()

	var ff fileFormat
	if err := json.NewDecoder(f).Decode(&ff); err != nil {
		return err
	}
	s.token = ff.Token
	return nil
}

// Token returns the current token, or "" when no credential is held.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Save stores the token in memory and writes it to disk.
func (s *Store) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(fileFormat{Token: token})
}

// Clear drops the token and removes the credentials file. Clearing an
// already-empty store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
