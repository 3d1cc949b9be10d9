// AngelaMos | 2026
// sessionfile.go

package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// SessionStorage persists the refresh token between process runs. The access
// token is never stored; it is short-lived and re-minted on restore.
type SessionStorage interface {
	Load() (*StoredSession, error)
	Save(session *StoredSession) error
	Clear() error
}

type StoredSession struct {
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultSessionPath puts the session file under the user config directory.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "taskflow", "session.json"), nil
}

// Load returns (nil, nil) when no session has been saved yet.
func (f *FileStorage) Load() (*StoredSession, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var session StoredSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}

	if session.RefreshToken == "" {
		return nil, nil
	}

	return &session, nil
}

func (f *FileStorage) Save(session *StoredSession) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	return nil
}

func (f *FileStorage) Clear() error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
