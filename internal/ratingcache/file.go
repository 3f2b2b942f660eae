package ratingcache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"cinerate/internal/logging"
	"cinerate/internal/services"
)

// FileStore persists records as a single JSON object keyed by cache key. The
// file is re-read on every operation and guarded by an advisory lock so that
// the server and CLI maintenance commands can share it.
type FileStore struct {
	path   string
	lock   *flock.Flock
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileStore returns a FileStore writing to path. The file is created
// lazily on the first Save.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "ratingcache", "open file store", "cache path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrStorage, "ratingcache", "open file store", "create cache directory", err)
	}
	return &FileStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "ratingcache"),
	}, nil
}

func (f *FileStore) Load(_ context.Context, key string) (Record, bool, error) {
	var (
		record Record
		found  bool
	)
	err := f.withLock(false, func() error {
		records, err := f.read()
		if err != nil {
			return err
		}
		record, found = records[key]
		return nil
	})
	return record, found, err
}

func (f *FileStore) Save(_ context.Context, key string, record Record) error {
	return f.withLock(true, func() error {
		records, err := f.read()
		if err != nil {
			return err
		}
		records[key] = record
		return f.write(records)
	})
}

func (f *FileStore) Delete(_ context.Context, keys ...string) (int, error) {
	removed := 0
	err := f.withLock(true, func() error {
		records, err := f.read()
		if err != nil {
			return err
		}
		for _, key := range keys {
			if _, ok := records[key]; ok {
				delete(records, key)
				removed++
			}
		}
		if removed == 0 {
			return nil
		}
		return f.write(records)
	})
	return removed, err
}

func (f *FileStore) All(_ context.Context) (map[string]Record, error) {
	var records map[string]Record
	err := f.withLock(false, func() error {
		var err error
		records, err = f.read()
		return err
	})
	return records, err
}

func (f *FileStore) Close() error {
	return f.lock.Close()
}

func (f *FileStore) withLock(exclusive bool, fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if exclusive {
		err = f.lock.Lock()
	} else {
		err = f.lock.RLock()
	}
	if err != nil {
		return services.Wrap(services.ErrStorage, "ratingcache", "lock cache file", f.lock.Path(), err)
	}
	defer func() {
		if unlockErr := f.lock.Unlock(); unlockErr != nil {
			f.logger.Debug("cache file unlock failed", logging.Error(unlockErr))
		}
	}()
	return fn()
}

// read loads the file; a missing or empty file is an empty cache.
func (f *FileStore) read() (map[string]Record, error) {
	records := make(map[string]Record)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return records, nil
		}
		return nil, services.Wrap(services.ErrStorage, "ratingcache", "read cache file", f.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, services.Wrap(services.ErrStorage, "ratingcache", "parse cache file", f.path, err)
	}
	return records, nil
}

// write replaces the file atomically via a temp file.
func (f *FileStore) write(records map[string]Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrStorage, "ratingcache", "marshal cache", "", err)
	}
	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return services.Wrap(services.ErrStorage, "ratingcache", "write cache file", tmpPath, err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return services.Wrap(services.ErrStorage, "ratingcache", "rename cache file", f.path, err)
	}
	return nil
}
