// Package session holds the signed-in state. It is an explicit value handed
// to the pages that need it; nothing reads it from ambient storage.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"robles/internal/records"
)

type Session struct {
	Authenticated bool         `yaml:"authenticated"`
	User          records.User `yaml:"user"`
}

// New is the session created by a successful login.
func New(u records.User) Session {
	return Session{Authenticated: true, User: u}
}

// Valid reports whether protected pages may be shown.
func (s Session) Valid() bool { return s.Authenticated }

// FileStore persists the session as YAML.
type FileStore struct {
	Path string
}

// Load returns the zero Session when nothing was saved.
func (f FileStore) Load() (Session, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Session{}, fmt.Errorf("parse session %s: %w", f.Path, err)
	}
	return s, nil
}

func (f FileStore) Save(s Session) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(f.Path, b, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the saved session. Clearing twice is not an error.
func (f FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
