package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anime-watchlist/internal/models"
)

type recordingForwarder struct {
	sent []models.Action
	err  error
}

func (f *recordingForwarder) SendAction(action models.Action) error {
	f.sent = append(f.sent, action)
	return f.err
}

func TestRecordStoresAndForwards(t *testing.T) {
	store := &memoryActionStore{}
	forwarder := &recordingForwarder{}
	logger := NewActivityLogger(store, forwarder)

	logger.Record(alice, "Add Anime", "Title: Naruto", nil)
	logger.Record(alice, "Add Anime Failed", "", errors.New("disk full"))

	require.Len(t, store.actions, 2)
	assert.Equal(t, "Title: Naruto", store.actions[0].Details)
	assert.False(t, store.actions[0].Failed())
	assert.Equal(t, "disk full", store.actions[1].Error)
	assert.False(t, store.actions[1].CreatedAt.IsZero())

	require.Len(t, forwarder.sent, 2)
	assert.Equal(t, "Add Anime Failed", forwarder.sent[1].Name)
}

func TestRecordSwallowsSinkFailures(t *testing.T) {
	store := &memoryActionStore{err: errors.New("database locked")}
	forwarder := &recordingForwarder{err: errors.New("telegram down")}
	logger := NewActivityLogger(store, forwarder)

	assert.NotPanics(t, func() {
		logger.Record(alice, "List Anime", "", nil)
	})
	assert.Len(t, forwarder.sent, 1)
}

func TestNilActivityLoggerIsUsable(t *testing.T) {
	var logger *ActivityLogger

	assert.NotPanics(t, func() {
		logger.Record(alice, "List Anime", "", nil)
	})
	actions, err := logger.Recent(5)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestRecentClampsLimit(t *testing.T) {
	store := &memoryActionStore{}
	logger := NewActivityLogger(store, nil)
	for i := 0; i < 15; i++ {
		logger.Record(alice, "List Anime", "", nil)
	}

	actions, err := logger.Recent(0)
	require.NoError(t, err)
	assert.Len(t, actions, DefaultLogLines)

	actions, err = logger.Recent(3)
	require.NoError(t, err)
	assert.Len(t, actions, 3)

	assert.Equal(t, MaxLogLines, ClampLogLines(100000))
	assert.Equal(t, DefaultLogLines, ClampLogLines(-2))
}

func TestFormatLogLine(t *testing.T) {
	assert.Equal(t,
		"User: alice (ID: 1) - Action: Add Anime - Details: Title: Naruto",
		FormatLogLine(models.Action{Actor: alice, Name: "Add Anime", Details: "Title: Naruto"}))
	assert.Equal(t,
		"User: alice (ID: 1) - Action: List Anime",
		FormatLogLine(models.Action{Actor: alice, Name: "List Anime"}))
	assert.Equal(t,
		"ERROR - User: (ID: 5) - Action: Add Anime Failed - Error: boom",
		FormatLogLine(models.Action{Actor: models.Actor{ID: 5}, Name: "Add Anime Failed", Error: "boom"}))
}
