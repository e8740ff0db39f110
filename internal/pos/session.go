package pos

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// TerminalSession is the staff sign-in cached on the terminal between
// restarts. Expires is a millisecond epoch; once past it every mutating
// operation must be refused until the terminal re-authenticates.
type TerminalSession struct {
	StaffID        string `json:"staff_id"`
	StaffName      string `json:"staff_name"`
	Role           string `json:"role"`
	RestaurantID   string `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name,omitempty"`
	Theme          string `json:"theme,omitempty"`
	Expires        int64  `json:"expires"`
}

// Valid reports whether the session is still usable at now.
func (s *TerminalSession) Valid(now time.Time) bool {
	if s == nil || s.StaffID == "" || s.RestaurantID == "" {
		return false
	}
	return now.UnixMilli() < s.Expires
}

// SessionStore caches the terminal session loaded from disk and hands it
// to the HTTP layer for auth checks.
type SessionStore struct {
	path    string
	current *TerminalSession
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Reload re-reads the session file, e.g. after a manager signs in again.
func (s *SessionStore) Reload() error {
	session, err := LoadSession(s.path)
	if err != nil {
		return err
	}
	s.current = session
	return nil
}

func (s *SessionStore) Session() *TerminalSession {
	return s.current
}

// LoadSession reads a cached session from path. A missing file is
// ErrSessionExpired so callers treat first boot and expiry the same way.
func LoadSession(path string) (*TerminalSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	var s TerminalSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSession writes the session to path, creating parent directories as
// needed.
func SaveSession(path string, s *TerminalSession) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
