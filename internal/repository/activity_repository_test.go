package repository

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anime-watchlist/internal/models"
)

func newTestActivityRepo(t *testing.T) *ActivityRepository {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "activity.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.InitSchema())
	return NewActivityRepository(db)
}

func TestActivityRepositoryCreateAndRecent(t *testing.T) {
	repo := newTestActivityRepo(t)

	for i := 0; i < 5; i++ {
		action := &models.Action{
			Actor:   models.Actor{ID: int64(i % 2), Name: "user"},
			Name:    fmt.Sprintf("Action %d", i),
			Details: "details",
		}
		require.NoError(t, repo.Create(action))
		assert.NotZero(t, action.ID)
		assert.False(t, action.CreatedAt.IsZero())
	}

	recent, err := repo.Recent(3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "Action 2", recent[0].Name)
	assert.Equal(t, "Action 4", recent[2].Name)

	mine, err := repo.RecentByActor(1, 10)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Action 1", mine[0].Name)
	assert.Equal(t, "Action 3", mine[1].Name)
}

func TestActivityRepositoryKeepsErrors(t *testing.T) {
	repo := newTestActivityRepo(t)

	require.NoError(t, repo.Create(&models.Action{
		Actor: models.Actor{ID: 9, Name: "mallory"},
		Name:  "Add Anime Failed",
		Error: "disk full",
	}))

	recent, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.True(t, recent[0].Failed())
	assert.Equal(t, "disk full", recent[0].Error)
	assert.Equal(t, models.Actor{ID: 9, Name: "mallory"}, recent[0].Actor)
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "activity.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.InitSchema())
	require.NoError(t, db.InitSchema())
}
