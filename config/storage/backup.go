package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DefaultBackupRetention is the number of store backups kept on disk
const DefaultBackupRetention = 3

// BackupManager keeps rotating copies of the store file
type BackupManager struct {
	MaxBackups int
	now        func() time.Time
}

// NewBackupManager creates a BackupManager retaining maxBackups copies
func NewBackupManager(maxBackups int) *BackupManager {
	if maxBackups <= 0 {
		maxBackups = DefaultBackupRetention
	}
	return &BackupManager{MaxBackups: maxBackups, now: time.Now}
}

// CreateBackup copies filePath to filePath.backup-<timestamp>-<pid>
func (bm *BackupManager) CreateBackup(filePath string) (string, error) {
	// the fixed-width timestamp keeps lexical order equal to creation order
	stamp := bm.now().UTC().Format("20060102150405.000000000")
	backupPath := fmt.Sprintf("%s.backup-%s-%d", filePath, stamp, os.Getpid())

	if err := copyFile(filePath, backupPath); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}
	return backupPath, nil
}

// ListBackups returns the backups of filePath, oldest first
func (bm *BackupManager) ListBackups(filePath string) ([]string, error) {
	backups, err := filepath.Glob(filePath + ".backup-*")
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	sort.Strings(backups)
	return backups, nil
}

// CleanupOldBackups removes all but the newest MaxBackups backups
func (bm *BackupManager) CleanupOldBackups(filePath string) error {
	backups, err := bm.ListBackups(filePath)
	if err != nil {
		return err
	}
	excess := len(backups) - bm.MaxBackups
	for i := 0; i < excess; i++ {
		if err := os.Remove(backups[i]); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i], err)
		}
	}
	return nil
}

// RestoreFromLatestBackup atomically replaces filePath with its newest backup
func (bm *BackupManager) RestoreFromLatestBackup(filePath string) error {
	backups, err := bm.ListBackups(filePath)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backup files found for %s", filePath)
	}
	latest := backups[len(backups)-1]
	data, err := os.ReadFile(latest)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if err := AtomicFileUpdate(filePath, data, nil); err != nil {
		return fmt.Errorf("failed to restore from backup: %w", err)
	}
	return nil
}

// copyFile copies src to dst with owner-only permissions
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
