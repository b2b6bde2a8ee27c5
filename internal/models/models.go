package models

import (
	"fmt"

	"anime-watchlist/internal/timeutil"
)

// Status represents the watch state of an entry
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusToWatch   Status = "To Watch"
	StatusWatching  Status = "Watching"
)

// Preference represents the priority a user assigned to an entry
type Preference string

const (
	PreferenceHigh   Preference = "High"
	PreferenceMedium Preference = "Medium"
	PreferenceLow    Preference = "Low"
)

// DefaultGenre is used when no genre is given
const DefaultGenre = "Unknown"

// Statuses lists every valid status in display order
var Statuses = []Status{StatusCompleted, StatusToWatch, StatusWatching}

// Preferences lists every valid preference in display order
var Preferences = []Preference{PreferenceHigh, PreferenceMedium, PreferenceLow}

// Entry represents one anime title in a user's watchlist.
// Field order matches the key order of the persisted JSON.
type Entry struct {
	Title           string     `json:"title"`
	Status          Status     `json:"status"`
	Preference      Preference `json:"preference"`
	Genre           string     `json:"genre"`
	EpisodesWatched int        `json:"episodes_watched"`
	TotalEpisodes   int        `json:"total_episodes"`
	StartDate       *string    `json:"start_date"`     // YYYY-MM-DD
	CompletedDate   *string    `json:"completed_date"` // YYYY-MM-DD
	SourceLink      *string    `json:"source_link"`
	Favorite        bool       `json:"favorite"`
}

// NewEntry creates an entry with default genre and no progress.
// No validation is done here; see EntryInput for the checked constructor.
func NewEntry(title string, status Status, preference Preference, totalEpisodes int) Entry {
	return Entry{
		Title:         title,
		Status:        status,
		Preference:    preference,
		Genre:         DefaultGenre,
		TotalEpisodes: totalEpisodes,
	}
}

// UpdateProgress sets the watched episode count, clamped to the total.
// Reaching the total completes the entry.
func (e *Entry) UpdateProgress(episodes int) {
	e.EpisodesWatched = min(episodes, e.TotalEpisodes)
	if e.EpisodesWatched == e.TotalEpisodes {
		e.Status = StatusCompleted
		e.CompletedDate = StringPtr(timeutil.Today())
	}
}

// String renders a one-line summary of the entry
func (e Entry) String() string {
	progress := ""
	if e.Status == StatusWatching {
		progress = fmt.Sprintf(" [%d/%d]", e.EpisodesWatched, e.TotalEpisodes)
	}
	return fmt.Sprintf("%s (%s - %s Priority - %s)%s", e.Title, e.Status, e.Preference, e.Genre, progress)
}

// Clone returns a deep copy of the entry
func (e Entry) Clone() Entry {
	c := e
	c.StartDate = clonePtr(e.StartDate)
	c.CompletedDate = clonePtr(e.CompletedDate)
	c.SourceLink = clonePtr(e.SourceLink)
	return c
}

// StringPtr returns a pointer to a copy of s
func StringPtr(s string) *string {
	return &s
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
