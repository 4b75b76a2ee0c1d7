package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "data", "store.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return map[string]Store{
		"file":   fs,
		"memory": NewMemoryStore(),
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.Get("apiKey"); ok || err != nil {
				t.Fatalf("Get() on empty store = ok %v, err %v", ok, err)
			}

			if err := s.Set("apiKey", []byte(`"test-key"`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if err := s.Set("qt_remote_config", []byte(`{"models":[],"lastUpdated":1,"version":"1.0.0"}`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			raw, ok, err := s.Get("apiKey")
			if err != nil || !ok || string(raw) != `"test-key"` {
				t.Errorf("Get(apiKey) = %s, %v, %v", raw, ok, err)
			}
			raw, ok, _ = s.Get("qt_remote_config")
			if !ok || string(raw) != `{"models":[],"lastUpdated":1,"version":"1.0.0"}` {
				t.Errorf("Get(qt_remote_config) = %s", raw)
			}

			if err := s.Set("apiKey", []byte(`"replaced"`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			raw, _, _ = s.Get("apiKey")
			if string(raw) != `"replaced"` {
				t.Errorf("Get() after overwrite = %s", raw)
			}

			if err := s.Delete("apiKey"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, ok, _ := s.Get("apiKey"); ok {
				t.Errorf("key still present after Delete()")
			}
			if err := s.Delete("never-set"); err != nil {
				t.Errorf("Delete() of missing key error = %v", err)
			}

			if err := s.Set("bad", []byte(`not json`)); !errors.Is(err, ErrInvalidValue) {
				t.Errorf("Set() invalid JSON error = %v, want ErrInvalidValue", err)
			}
		})
	}
}

func TestFileStoreSpecialKeys(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatal(err)
	}
	keys := []string{"a.b", "with*star", "q?", "hash#", "at@", "pipe|x"}
	for i, k := range keys {
		if err := s.Set(k, []byte(fmt.Sprint(i))); err != nil {
			t.Fatalf("Set(%q) error = %v", k, err)
		}
	}
	for i, k := range keys {
		raw, ok, err := s.Get(k)
		if err != nil || !ok || string(raw) != fmt.Sprint(i) {
			t.Errorf("Get(%q) = %s, %v, %v", k, raw, ok, err)
		}
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s1, _ := NewFileStore(path)
	if err := s1.Set("selectedModel", []byte(`"openai/gpt-4o"`)); err != nil {
		t.Fatal(err)
	}

	s2, _ := NewFileStore(path)
	raw, ok, err := s2.Get("selectedModel")
	if err != nil || !ok || string(raw) != `"openai/gpt-4o"` {
		t.Errorf("Get() from second instance = %s, %v, %v", raw, ok, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("store file permissions = %o, want 0600", perm)
	}
}

func TestFileStoreBackupsAreRotated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, _ := NewFileStore(path)
	for i := 0; i < 8; i++ {
		if err := s.Set("n", []byte(fmt.Sprint(i))); err != nil {
			t.Fatal(err)
		}
	}
	backups, err := s.backups.ListBackups(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != DefaultBackupRetention {
		t.Errorf("got %d backups, want %d", len(backups), DefaultBackupRetention)
	}
}

func TestFileStoreRecoversFromCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, _ := NewFileStore(path)
	if err := s.Set("apiKey", []byte(`"one"`)); err != nil {
		t.Fatal(err)
	}
	// second write leaves a backup of the first document
	if err := s.Set("selectedModel", []byte(`"openai/gpt-4o"`)); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(`{"apiKey": "tru`), 0600); err != nil {
		t.Fatal(err)
	}
	corrupted, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	raw, ok, err := s.Get("apiKey")
	if err != nil || !ok || string(raw) != `"one"` {
		t.Errorf("Get() after corruption = %s, %v, %v", raw, ok, err)
	}

	// the restore renames a new file into place instead of rewriting the old one
	restored, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if os.SameFile(corrupted, restored) {
		t.Errorf("restore rewrote the corrupted file in place")
	}
	if leftovers, _ := filepath.Glob(path + ".tmp*"); len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestFileStoreRestoreThenWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, _ := NewFileStore(path)
	_ = s.Set("apiKey", []byte(`"one"`))
	_ = s.Set("apiKey", []byte(`"two"`))

	if err := os.WriteFile(path, []byte(`not json`), 0600); err != nil {
		t.Fatal(err)
	}
	other, _ := NewFileStore(path)
	if _, _, err := other.Get("apiKey"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := s.Set("selectedModel", []byte(`"openai/gpt-4o"`)); err != nil {
		t.Fatalf("Set() after restore error = %v", err)
	}
	if raw, ok, _ := other.Get("selectedModel"); !ok || string(raw) != `"openai/gpt-4o"` {
		t.Errorf("Get(selectedModel) = %s, %v", raw, ok)
	}
}

func TestFileStoreCorruptionWithoutBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte(`[1,2,3]`), 0600); err != nil {
		t.Fatal(err)
	}
	s, _ := NewFileStore(path)
	if _, _, err := s.Get("apiKey"); err == nil {
		t.Errorf("Get() on corrupted store without backup should fail")
	}
}

func TestFileStoreConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, _ := NewFileStore(path)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.Set(fmt.Sprintf("key%d", i), []byte(fmt.Sprint(i))); err != nil {
				t.Errorf("Set() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		if _, ok, _ := s.Get(fmt.Sprintf("key%d", i)); !ok {
			t.Errorf("key%d lost", i)
		}
	}
}

func TestBackupManager(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	if err := os.WriteFile(path, []byte(`{"v":1}`), 0600); err != nil {
		t.Fatal(err)
	}

	bm := NewBackupManager(0)
	if bm.MaxBackups != DefaultBackupRetention {
		t.Errorf("MaxBackups = %d", bm.MaxBackups)
	}

	if _, err := bm.CreateBackup(path); err != nil {
		t.Fatalf("CreateBackup() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"v":2}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := bm.RestoreFromLatestBackup(path); err != nil {
		t.Fatalf("RestoreFromLatestBackup() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"v":1}` {
		t.Errorf("restored content = %s", data)
	}

	if err := bm.RestoreFromLatestBackup(filepath.Join(dir, "missing.json")); err == nil {
		t.Errorf("RestoreFromLatestBackup() without backups should fail")
	}
}
