package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps one JSON file per key under dir.
type FileStore struct {
	dir string
	now func() time.Time
}

type fileEntry struct {
	ExpiresAt time.Time       `json:"expires_at"`
	Data      json.RawMessage `json:"data"`
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

func (fs *FileStore) path(key string) string {
	hash := md5.Sum([]byte(key))
	return filepath.Join(fs.dir, fmt.Sprintf("%x.json", hash))
}

func (fs *FileStore) Get(_ context.Context, key string, dst any) (bool, error) {
	filePath := fs.path(key)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(filePath)
		return false, nil
	}
	if !entry.ExpiresAt.IsZero() && fs.now().After(entry.ExpiresAt) {
		_ = os.Remove(filePath) // expired
		return false, nil
	}
	if err := json.Unmarshal(entry.Data, dst); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return true, nil
}

func (fs *FileStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if err := os.MkdirAll(fs.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := fileEntry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = fs.now().Add(ttl)
	}
	raw, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(fs.dir, "entry-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), fs.path(key))
}

func (fs *FileStore) Close() error { return nil }
