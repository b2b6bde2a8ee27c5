package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"anime-watchlist/internal/models"
	"anime-watchlist/internal/timeutil"
)

var (
	// ErrIndexOutOfRange is returned in strict mode when no entry exists at an index
	ErrIndexOutOfRange = errors.New("watchlist: index out of range")
	// ErrProtectedEntry is returned in strict mode when deleting a favorite
	ErrProtectedEntry = errors.New("watchlist: entry is a favorite")
)

// WatchlistOption configures a Watchlist
type WatchlistOption func(*Watchlist)

// WithStrict makes out-of-range indices and protected deletes return errors
// instead of silently doing nothing.
func WithStrict(strict bool) WatchlistOption {
	return func(w *Watchlist) {
		w.strict = strict
	}
}

// Watchlist is the ordered collection of entries of one user, backed by a
// single JSON file that is rewritten after every mutation.
type Watchlist struct {
	mu      sync.Mutex
	fs      afero.Fs
	path    string
	strict  bool
	entries []models.Entry
}

// NewWatchlist loads the watchlist stored at path. A missing file yields an
// empty watchlist; a malformed one is an error.
func NewWatchlist(fs afero.Fs, path string, opts ...WatchlistOption) (*Watchlist, error) {
	w := &Watchlist{fs: fs, path: path}
	for _, opt := range opts {
		opt(w)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := w.load(); err != nil {
		return nil, err
	}
	return w, nil
}

// Path returns the backing file path
func (w *Watchlist) Path() string {
	return w.path
}

// Len returns the number of entries
func (w *Watchlist) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// List returns a copy of all entries in insertion order
func (w *Watchlist) List() []models.Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filter(func(models.Entry) bool { return true })
}

// Add appends an entry and returns the stored copy. Entries added as
// Watching get today's start date.
func (w *Watchlist) Add(entry models.Entry) (models.Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entry = entry.Clone()
	if entry.Status == models.StatusWatching && entry.StartDate == nil {
		entry.StartDate = models.StringPtr(timeutil.Today())
	}
	w.entries = append(w.entries, entry)
	return entry.Clone(), w.save()
}

// Delete removes the entry at index unless it is a favorite
func (w *Watchlist) Delete(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.inRange(index) {
		return w.outOfRange()
	}
	if w.entries[index].Favorite {
		if w.strict {
			return ErrProtectedEntry
		}
		return nil
	}
	w.entries = append(w.entries[:index], w.entries[index+1:]...)
	return w.save()
}

// UpdateStatus sets the status of the entry at index and stamps the
// matching date. The status is not validated.
func (w *Watchlist) UpdateStatus(index int, status models.Status) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.inRange(index) {
		return w.outOfRange()
	}
	entry := &w.entries[index]
	entry.Status = status
	switch status {
	case models.StatusWatching:
		if entry.StartDate == nil {
			entry.StartDate = models.StringPtr(timeutil.Today())
		}
	case models.StatusCompleted:
		entry.CompletedDate = models.StringPtr(timeutil.Today())
	}
	return w.save()
}

// UpdateProgress sets the watched episodes of the entry at index
func (w *Watchlist) UpdateProgress(index int, episodes int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.inRange(index) {
		return w.outOfRange()
	}
	w.entries[index].UpdateProgress(episodes)
	return w.save()
}

// ToggleFavorite flips the favorite flag of the entry at index
func (w *Watchlist) ToggleFavorite(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.inRange(index) {
		return w.outOfRange()
	}
	w.entries[index].Favorite = !w.entries[index].Favorite
	return w.save()
}

// Search returns entries whose title contains keyword, ignoring case
func (w *Watchlist) Search(keyword string) []models.Entry {
	w.mu.Lock()
	defer w.mu.Unlock()

	keyword = strings.ToLower(keyword)
	return w.filter(func(e models.Entry) bool {
		return strings.Contains(strings.ToLower(e.Title), keyword)
	})
}

// Favorites returns all favorite entries
func (w *Watchlist) Favorites() []models.Entry {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.filter(func(e models.Entry) bool { return e.Favorite })
}

// PickRandom returns a uniformly chosen entry that is not completed.
// It reports false when there is none.
func (w *Watchlist) PickRandom() (models.Entry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pool := w.filter(func(e models.Entry) bool { return e.Status != models.StatusCompleted })
	if len(pool) == 0 {
		return models.Entry{}, false
	}
	return pool[rand.Intn(len(pool))], true
}

// Details returns the entry at index
func (w *Watchlist) Details(index int) (models.Entry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.inRange(index) {
		return models.Entry{}, false
	}
	return w.entries[index].Clone(), true
}

func (w *Watchlist) filter(keep func(models.Entry) bool) []models.Entry {
	result := []models.Entry{}
	for _, e := range w.entries {
		if keep(e) {
			result = append(result, e.Clone())
		}
	}
	return result
}

func (w *Watchlist) inRange(index int) bool {
	return index >= 0 && index < len(w.entries)
}

func (w *Watchlist) outOfRange() error {
	if w.strict {
		return ErrIndexOutOfRange
	}
	return nil
}

// load reads the whole file into memory
func (w *Watchlist) load() error {
	data, err := afero.ReadFile(w.fs, w.path)
	if errors.Is(err, os.ErrNotExist) {
		w.entries = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read watchlist %s: %w", w.path, err)
	}

	var entries []models.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to decode watchlist %s: %w", w.path, err)
	}
	w.entries = entries
	return nil
}

// save overwrites the file with the full entry list
func (w *Watchlist) save() error {
	entries := w.entries
	if entries == nil {
		entries = []models.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode watchlist: %w", err)
	}

	if err := w.fs.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := afero.WriteFile(w.fs, w.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write watchlist %s: %w", w.path, err)
	}
	return nil
}
