package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryInputBuild(t *testing.T) {
	entry, err := EntryInput{
		Title:         "  Cowboy Bebop ",
		Status:        "watching",
		Preference:    "HIGH",
		TotalEpisodes: 26,
		Genre:         "Sci-Fi",
		SourceLink:    "https://myanimelist.net/anime/1",
	}.Build()
	require.NoError(t, err)

	assert.Equal(t, "Cowboy Bebop", entry.Title)
	assert.Equal(t, StatusWatching, entry.Status)
	assert.Equal(t, PreferenceHigh, entry.Preference)
	assert.Equal(t, "Sci-Fi", entry.Genre)
	assert.Equal(t, 26, entry.TotalEpisodes)
	require.NotNil(t, entry.SourceLink)
	assert.Equal(t, "https://myanimelist.net/anime/1", *entry.SourceLink)
}

func TestEntryInputBuildAcceptsToWatch(t *testing.T) {
	entry, err := EntryInput{Title: "Monster", Status: "to watch", Preference: "low", TotalEpisodes: 74}.Build()
	require.NoError(t, err)

	assert.Equal(t, StatusToWatch, entry.Status)
	assert.Equal(t, DefaultGenre, entry.Genre)
	assert.Nil(t, entry.SourceLink)
}

func TestEntryInputBuildRejects(t *testing.T) {
	valid := EntryInput{Title: "Naruto", Status: "Watching", Preference: "High", TotalEpisodes: 220}

	tests := []struct {
		name    string
		mutate  func(*EntryInput)
		field   string
		message string
	}{
		{"empty title", func(in *EntryInput) { in.Title = "   " }, "title", "Title cannot be empty!"},
		{"unknown status", func(in *EntryInput) { in.Status = "Dropped" }, "status", InvalidStatusMessage()},
		{"unknown preference", func(in *EntryInput) { in.Preference = "Urgent" }, "preference", InvalidPreferenceMessage()},
		{"zero episodes", func(in *EntryInput) { in.TotalEpisodes = 0 }, "total_episodes", "Total episodes must be positive!"},
		{"negative episodes", func(in *EntryInput) { in.TotalEpisodes = -4 }, "total_episodes", "Total episodes must be positive!"},
		{"bad link", func(in *EntryInput) { in.SourceLink = "not a link" }, "source_link", "Source link must be a valid URL!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			_, err := in.Build()
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.field, validationErr.Field)
			assert.Equal(t, tt.message, validationErr.Message)
		})
	}
}

func TestParseStatus(t *testing.T) {
	for input, want := range map[string]Status{
		"completed": StatusCompleted,
		"TO WATCH":  StatusToWatch,
		" Watching": StatusWatching,
	} {
		got, ok := ParseStatus(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got)
	}

	_, ok := ParseStatus("towatch")
	assert.False(t, ok)
}

func TestParsePreference(t *testing.T) {
	got, ok := ParsePreference("medium")
	assert.True(t, ok)
	assert.Equal(t, PreferenceMedium, got)

	_, ok = ParsePreference("")
	assert.False(t, ok)
}

func TestInvalidMessagesListValues(t *testing.T) {
	assert.Equal(t, "Invalid status! Must be one of: Completed, To Watch, Watching", InvalidStatusMessage())
	assert.Equal(t, "Invalid preference! Must be one of: High, Medium, Low", InvalidPreferenceMessage())
}
