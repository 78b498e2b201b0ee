package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoSession is returned when no usable session is stored.
var ErrNoSession = errors.New("not logged in")

// Store persists the session as a JSON file.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the session file location.
func (s *Store) Path() string { return s.path }

// Save writes the session, replacing any previous one.
func (s *Store) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Load returns the stored session. Expired or unreadable sessions are
// removed and reported as ErrNoSession.
func (s *Store) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil || !sess.Valid(s.now()) {
		_ = os.Remove(s.path)
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Clear removes the stored session. Clearing twice is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a valid session is stored.
func (s *Store) IsAuthenticated() bool {
	_, err := s.Load()
	return err == nil
}

// AccessToken returns the stored access token, or "" when logged out.
func (s *Store) AccessToken() string {
	sess, err := s.Load()
	if err != nil {
		return ""
	}
	return sess.Token.AccessToken
}
