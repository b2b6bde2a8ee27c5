package service

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"anime-watchlist/internal/timeutil"
)

const backupPrefix = "watchlist_backup_"

// BackupService snapshots the data directory (watchlist files and the
// activity database) into timestamped directories.
type BackupService struct {
	fs         afero.Fs
	dataDir    string
	backupDir  string
	maxBackups int
}

// NewBackupService creates a new BackupService
func NewBackupService(fs afero.Fs, dataDir, backupDir string) *BackupService {
	return &BackupService{
		fs:         fs,
		dataDir:    dataDir,
		backupDir:  backupDir,
		maxBackups: 4, // Keep last 4 weekly backups
	}
}

// Backup copies every regular file of the data directory into a new
// snapshot directory and returns its path.
func (b *BackupService) Backup() (string, error) {
	timestamp := timeutil.Now().Format("2006-01-02_150405")
	snapshotDir := filepath.Join(b.backupDir, backupPrefix+timestamp)

	if err := b.fs.MkdirAll(snapshotDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	entries, err := afero.ReadDir(b.fs, b.dataDir)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read data directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(b.dataDir, entry.Name())
		dst := filepath.Join(snapshotDir, entry.Name())
		if err := copyFile(b.fs, src, dst); err != nil {
			return "", fmt.Errorf("failed to copy %s: %w", entry.Name(), err)
		}
	}

	if err := b.CleanOldBackups(); err != nil {
		// Log but don't fail - backup was successful
		log.Printf("Warning: failed to clean old backups: %v", err)
	}

	return snapshotDir, nil
}

// CleanOldBackups removes old snapshots, keeping only the most recent ones
func (b *BackupService) CleanOldBackups() error {
	backups, err := b.listBackups()
	if err != nil {
		return err
	}

	if len(backups) > b.maxBackups {
		toDelete := backups[:len(backups)-b.maxBackups]
		for _, backup := range toDelete {
			if err := b.fs.RemoveAll(backup); err != nil {
				return fmt.Errorf("failed to delete old backup %s: %w", backup, err)
			}
		}
	}

	return nil
}

// ListBackups returns snapshot directories, oldest first
func (b *BackupService) ListBackups() ([]string, error) {
	return b.listBackups()
}

func (b *BackupService) listBackups() ([]string, error) {
	exists, err := afero.DirExists(b.fs, b.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup directory: %w", err)
	}
	if !exists {
		return []string{}, nil
	}

	entries, err := afero.ReadDir(b.fs, b.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []string{}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), backupPrefix) {
			backups = append(backups, filepath.Join(b.backupDir, entry.Name()))
		}
	}

	// Names embed the timestamp, so lexical order is chronological
	sort.Strings(backups)

	return backups, nil
}

func copyFile(fs afero.Fs, src, dst string) error {
	sourceFile, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := fs.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
