// AngelaMos | 2026
// storage.go

package authstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/carterperez-dev/taskflow/internal/client/session"
)

// StorageKey is the fixed key the auth snapshot is persisted under.
const StorageKey = "auth-storage"

// Storage is a durable local key-value store for state snapshots.
type Storage interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Snapshot is the persisted subset of auth state. The token is deliberately
// absent: bearer credentials never touch disk through this path.
type Snapshot struct {
	State SnapshotState `json:"state"`
}

type SnapshotState struct {
	User            *session.User `json:"user"`
	IsAuthenticated bool          `json:"isAuthenticated"`
}

// FileStorage keeps each key as a JSON file in one directory.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

// DefaultStorageDir resolves to the taskflow folder under the user config
// directory.
func DefaultStorageDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "taskflow"), nil
}

func (f *FileStorage) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.keyPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

func (f *FileStorage) Set(key string, value []byte) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	if err := os.WriteFile(f.keyPath(key), value, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (f *FileStorage) Delete(key string) error {
	err := os.Remove(f.keyPath(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (f *FileStorage) keyPath(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func encodeSnapshot(user *session.User, isAuthenticated bool) ([]byte, error) {
	return json.Marshal(Snapshot{
		State: SnapshotState{
			User:            user,
			IsAuthenticated: isAuthenticated,
		},
	})
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}
