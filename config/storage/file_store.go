package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FileStore keeps every key in a single JSON object on disk.
// In-process access is serialized by a mutex and cross-process access by
// an flock on a sibling ".lock" file, since the data file itself is replaced
// on every write.
type FileStore struct {
	path    string
	backups *BackupManager
	mu      sync.Mutex
}

// NewFileStore opens (without creating) the store at path
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{
		path:    path,
		backups: NewBackupManager(DefaultBackupRetention),
	}, nil
}

// Path returns the location of the backing file
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.withLock(false, func() error {
		var err error
		data, err = s.readFile()
		return err
	})
	if errors.Is(err, errCorrupted) {
		// restoring writes the file, which needs the exclusive lock
		err = s.withLock(true, func() error {
			var err error
			data, err = s.read()
			return err
		})
	}
	if err != nil {
		return nil, false, err
	}

	res := gjson.GetBytes(data, escapeKey(key))
	if !res.Exists() {
		return nil, false, nil
	}
	return []byte(res.Raw), true, nil
}

func (s *FileStore) Set(key string, raw []byte) error {
	if !json.Valid(raw) {
		return ErrInvalidValue
	}
	return s.update(func(data []byte) ([]byte, error) {
		return sjson.SetRawBytes(data, escapeKey(key), raw)
	})
}

func (s *FileStore) Delete(key string) error {
	return s.update(func(data []byte) ([]byte, error) {
		if !gjson.GetBytes(data, escapeKey(key)).Exists() {
			return data, nil
		}
		return sjson.DeleteBytes(data, escapeKey(key))
	})
}

// update applies fn to the current document under an exclusive lock
func (s *FileStore) update(fn func([]byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withLock(true, func() error {
		data, err := s.read()
		if err != nil {
			return err
		}
		updated, err := fn(data)
		if err != nil {
			return fmt.Errorf("failed to update store: %w", err)
		}
		return AtomicFileUpdate(s.path, updated, s.backups)
	})
}

// read returns the document, "{}" when the file does not exist yet.
// A corrupted file is replaced by its newest backup when one exists.
// Callers must hold the exclusive lock.
func (s *FileStore) read() ([]byte, error) {
	data, err := s.readFile()
	if err == nil || !errors.Is(err, errCorrupted) {
		return data, err
	}
	if rerr := s.backups.RestoreFromLatestBackup(s.path); rerr != nil {
		return nil, err
	}
	return s.readFile()
}

var errCorrupted = errors.New("store file is corrupted")

func (s *FileStore) readFile() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []byte("{}"), nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []byte("{}"), nil
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("%s: %w", s.path, errCorrupted)
	}
	return data, nil
}

func (s *FileStore) withLock(exclusive bool, fn func() error) error {
	f, err := os.OpenFile(s.path+".lock", os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	defer f.Close()

	if err := lockFile(f, exclusive); err != nil {
		return fmt.Errorf("failed to lock store file: %w", err)
	}
	defer unlockFile(f)

	return fn()
}

// escapeKey escapes gjson/sjson path syntax so key is addressed literally
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%', ':':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// AtomicFileUpdate replaces filePath with content via a temp file and rename.
// When bm is non-nil the previous version is backed up first.
func AtomicFileUpdate(filePath string, content []byte, bm *BackupManager) error {
	if bm != nil && FileExists(filePath) {
		if _, err := bm.CreateBackup(filePath); err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(filePath), filepath.Base(filePath)+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temporary file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	tmpFile.Close()

	if err := os.Chmod(tmpFile.Name(), 0600); err != nil {
		return fmt.Errorf("failed to set permissions on temporary file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filePath); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	if bm != nil {
		// update already succeeded
		_ = bm.CleanupOldBackups(filePath)
	}
	return nil
}
