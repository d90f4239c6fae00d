package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/JosherenPro/ManiocAGRI/client"
)

// sessionStore persists the bearer token, role and username between
// invocations. Nothing else is stored; logout removes the file.
type sessionStore struct {
	path string
}

func newSessionStore() (*sessionStore, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config dir: %w", err)
	}
	return &sessionStore{path: filepath.Join(configDir, "maniocagri", "session.json")}, nil
}

func loadSession() (*client.Session, *sessionStore, error) {
	store, err := newSessionStore()
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(store.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session client.Session
	if err := json.Unmarshal(data, &session); err != nil {
		// A corrupt session file is treated as signed out.
		return nil, store, nil
	}
	return &session, store, nil
}

func (s *sessionStore) Save(session *client.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (s *sessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
