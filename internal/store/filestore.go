package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists each key as a JSON file under a data directory. The
// process is single-user, so a plain mutex serializes writers; readers always
// see a fully written file because writes go through a rename.
type FileStore struct {
	dir    string
	logger *slog.Logger

	mu          sync.Mutex
	subscribers []func(key string)
}

// NewFileStore creates the data directory if needed and returns a store
// rooted there.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{
		dir:    dir,
		logger: logger.With(slog.String("component", "store.file")),
	}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get returns the stored bytes for key. A missing file is not an error.
func (f *FileStore) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set writes the value atomically (temp file + rename) and notifies
// subscribers after the data is durable.
func (f *FileStore) Set(key string, data []byte) error {
	f.mu.Lock()
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		f.mu.Unlock()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		f.mu.Unlock()
		return fmt.Errorf("commit %s: %w", key, err)
	}
	subs := make([]func(string), len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(key)
	}
	return nil
}

// Subscribe registers a change observer. Observers run synchronously after a
// successful Set, outside the store lock.
func (f *FileStore) Subscribe(fn func(key string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
}
