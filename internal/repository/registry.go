package repository

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Registry hands out one Watchlist per user, loading each lazily from
// <dataDir>/anime_list_<userID>.json and caching it for the process lifetime.
type Registry struct {
	mu         sync.Mutex
	fs         afero.Fs
	dataDir    string
	strict     bool
	watchlists map[int64]*Watchlist
}

// NewRegistry creates a new Registry
func NewRegistry(fs afero.Fs, dataDir string, strict bool) *Registry {
	return &Registry{
		fs:         fs,
		dataDir:    dataDir,
		strict:     strict,
		watchlists: make(map[int64]*Watchlist),
	}
}

// Resolve returns the watchlist of userID, creating it on first access
func (r *Registry) Resolve(userID int64) (*Watchlist, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.watchlists[userID]; ok {
		return w, nil
	}

	w, err := NewWatchlist(r.fs, r.PathFor(userID), WithStrict(r.strict))
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist for user %d: %w", userID, err)
	}
	r.watchlists[userID] = w
	return w, nil
}

// PathFor returns the file backing the watchlist of userID
func (r *Registry) PathFor(userID int64) string {
	return filepath.Join(r.dataDir, fmt.Sprintf("anime_list_%d.json", userID))
}

// Loaded returns the number of watchlists currently cached
func (r *Registry) Loaded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchlists)
}
