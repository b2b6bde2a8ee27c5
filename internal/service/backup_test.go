package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anime-watchlist/internal/timeutil"
)

func TestBackupCopiesDataFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "data/anime_list_1.json", []byte("[]"), 0644))
	require.NoError(t, afero.WriteFile(fs, "data/activity.db", []byte("sqlite"), 0644))
	require.NoError(t, fs.MkdirAll("data/nested", 0755))

	timeutil.SetNowFunc(func() time.Time { return time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC) })
	t.Cleanup(func() { timeutil.SetNowFunc(nil) })

	svc := NewBackupService(fs, "data", "backups")
	path, err := svc.Backup()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("backups", "watchlist_backup_2024-03-10_030000"), path)

	content, err := afero.ReadFile(fs, filepath.Join(path, "anime_list_1.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(content))

	exists, err := afero.Exists(fs, filepath.Join(path, "activity.db"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.Exists(fs, filepath.Join(path, "nested"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBackupWithoutDataDir(t *testing.T) {
	svc := NewBackupService(afero.NewMemMapFs(), "data", "backups")

	path, err := svc.Backup()
	require.NoError(t, err)

	backups, err := svc.ListBackups()
	require.NoError(t, err)
	assert.Equal(t, []string{path}, backups)
}

func TestBackupKeepsLatestFour(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "data/anime_list_1.json", []byte("[]"), 0644))
	svc := NewBackupService(fs, "data", "backups")

	start := time.Date(2024, 1, 7, 3, 0, 0, 0, time.UTC)
	t.Cleanup(func() { timeutil.SetNowFunc(nil) })

	var paths []string
	for week := 0; week < 6; week++ {
		now := start.AddDate(0, 0, 7*week)
		timeutil.SetNowFunc(func() time.Time { return now })
		path, err := svc.Backup()
		require.NoError(t, err)
		paths = append(paths, path)
	}

	backups, err := svc.ListBackups()
	require.NoError(t, err)
	assert.Equal(t, paths[2:], backups)
}

func TestListBackupsWithoutBackupDir(t *testing.T) {
	backups, err := NewBackupService(afero.NewMemMapFs(), "data", "backups").ListBackups()
	require.NoError(t, err)
	assert.Empty(t, backups)
}
