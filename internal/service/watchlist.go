package service

import (
	"errors"
	"fmt"
	"strings"

	"anime-watchlist/internal/models"
	"anime-watchlist/internal/repository"
)

var (
	ErrInvalidIndex      = errors.New("invalid index")
	ErrNegativeEpisodes  = errors.New("episodes cannot be negative")
	ErrFavoriteProtected = errors.New("favorite entries cannot be deleted")
	ErrEmptyKeyword      = errors.New("search keyword is empty")
)

// WatchlistService is the command layer shared by the chat bot and the
// HTTP API. It validates input before touching a store, so the store itself
// never sees an invalid index, and records every action.
type WatchlistService struct {
	registry *repository.Registry
	activity *ActivityLogger
}

// NewWatchlistService creates a new WatchlistService
func NewWatchlistService(registry *repository.Registry, activity *ActivityLogger) *WatchlistService {
	return &WatchlistService{
		registry: registry,
		activity: activity,
	}
}

// AddEntry validates input and appends the new entry to the user's watchlist
func (s *WatchlistService) AddEntry(actor models.Actor, input models.EntryInput) (models.Entry, error) {
	entry, err := input.Build()
	if err != nil {
		s.activity.Record(actor, "Add Anime Failed", err.Error(), nil)
		return models.Entry{}, err
	}

	w, err := s.resolve(actor, "Add Anime Failed")
	if err != nil {
		return models.Entry{}, err
	}

	stored, err := w.Add(entry)
	if err != nil {
		s.activity.Record(actor, "Add Anime Failed", "", err)
		return models.Entry{}, err
	}

	s.activity.Record(actor, "Add Anime", fmt.Sprintf("Title: %s, Status: %s, Episodes: %d",
		stored.Title, stored.Status, stored.TotalEpisodes), nil)
	return stored, nil
}

// List returns the user's entries in insertion order
func (s *WatchlistService) List(actor models.Actor) ([]models.Entry, error) {
	w, err := s.resolve(actor, "List Anime Failed")
	if err != nil {
		return nil, err
	}

	entries := w.List()
	if len(entries) == 0 {
		s.activity.Record(actor, "List Anime", "Empty watchlist", nil)
	} else {
		s.activity.Record(actor, "List Anime", fmt.Sprintf("Listed %d anime", len(entries)), nil)
	}
	return entries, nil
}

// UpdateProgress sets the watched episodes of the entry at index
func (s *WatchlistService) UpdateProgress(actor models.Actor, index, episodes int) (models.Entry, error) {
	w, err := s.resolve(actor, "Update Progress Failed")
	if err != nil {
		return models.Entry{}, err
	}
	if err := s.checkIndex(w, index); err != nil {
		return models.Entry{}, err
	}
	if episodes < 0 {
		return models.Entry{}, ErrNegativeEpisodes
	}

	if err := w.UpdateProgress(index, episodes); err != nil {
		s.activity.Record(actor, "Update Progress Failed", "", err)
		return models.Entry{}, err
	}

	entry, _ := w.Details(index)
	s.activity.Record(actor, "Update Progress", fmt.Sprintf("Title: %s, Progress: %d/%d",
		entry.Title, entry.EpisodesWatched, entry.TotalEpisodes), nil)
	return entry, nil
}

// UpdateStatus changes the status of the entry at index
func (s *WatchlistService) UpdateStatus(actor models.Actor, index int, rawStatus string) (models.Entry, error) {
	status, ok := models.ParseStatus(rawStatus)
	if !ok {
		return models.Entry{}, &models.ValidationError{Field: "status", Message: models.InvalidStatusMessage()}
	}

	w, err := s.resolve(actor, "Update Status Failed")
	if err != nil {
		return models.Entry{}, err
	}
	if err := s.checkIndex(w, index); err != nil {
		return models.Entry{}, err
	}

	if err := w.UpdateStatus(index, status); err != nil {
		s.activity.Record(actor, "Update Status Failed", "", err)
		return models.Entry{}, err
	}

	entry, _ := w.Details(index)
	s.activity.Record(actor, "Update Status", fmt.Sprintf("Title: %s, Status: %s", entry.Title, entry.Status), nil)
	return entry, nil
}

// ToggleFavorite flips the favorite flag of the entry at index
func (s *WatchlistService) ToggleFavorite(actor models.Actor, index int) (models.Entry, error) {
	w, err := s.resolve(actor, "Toggle Favorite Failed")
	if err != nil {
		return models.Entry{}, err
	}
	if err := s.checkIndex(w, index); err != nil {
		return models.Entry{}, err
	}

	if err := w.ToggleFavorite(index); err != nil {
		s.activity.Record(actor, "Toggle Favorite Failed", "", err)
		return models.Entry{}, err
	}

	entry, _ := w.Details(index)
	s.activity.Record(actor, "Toggle Favorite", fmt.Sprintf("Title: %s, Favorite: %t", entry.Title, entry.Favorite), nil)
	return entry, nil
}

// Delete removes the entry at index and returns it. Favorites are refused.
func (s *WatchlistService) Delete(actor models.Actor, index int) (models.Entry, error) {
	w, err := s.resolve(actor, "Delete Anime Failed")
	if err != nil {
		return models.Entry{}, err
	}
	if err := s.checkIndex(w, index); err != nil {
		return models.Entry{}, err
	}

	entry, _ := w.Details(index)
	if entry.Favorite {
		s.activity.Record(actor, "Delete Anime Refused", "Title: "+entry.Title, nil)
		return models.Entry{}, ErrFavoriteProtected
	}

	if err := w.Delete(index); err != nil {
		s.activity.Record(actor, "Delete Anime Failed", "", err)
		return models.Entry{}, err
	}

	s.activity.Record(actor, "Delete Anime", "Title: "+entry.Title, nil)
	return entry, nil
}

// Details returns the entry at index
func (s *WatchlistService) Details(actor models.Actor, index int) (models.Entry, error) {
	w, err := s.resolve(actor, "Anime Details Failed")
	if err != nil {
		return models.Entry{}, err
	}

	entry, ok := w.Details(index)
	if !ok {
		return models.Entry{}, ErrInvalidIndex
	}
	return entry, nil
}

// Search returns the user's entries whose title contains keyword
func (s *WatchlistService) Search(actor models.Actor, keyword string) ([]models.Entry, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	w, err := s.resolve(actor, "Search Anime Failed")
	if err != nil {
		return nil, err
	}

	results := w.Search(keyword)
	s.activity.Record(actor, "Search Anime", fmt.Sprintf("Keyword: %s, Matches: %d", keyword, len(results)), nil)
	return results, nil
}

// Favorites returns the user's favorite entries
func (s *WatchlistService) Favorites(actor models.Actor) ([]models.Entry, error) {
	w, err := s.resolve(actor, "Show Favorites Failed")
	if err != nil {
		return nil, err
	}
	return w.Favorites(), nil
}

// PickRandom suggests a random entry that is not completed yet
func (s *WatchlistService) PickRandom(actor models.Actor) (models.Entry, bool, error) {
	w, err := s.resolve(actor, "Random Anime Failed")
	if err != nil {
		return models.Entry{}, false, err
	}

	entry, ok := w.PickRandom()
	if ok {
		s.activity.Record(actor, "Random Anime", "Suggested: "+entry.Title, nil)
	}
	return entry, ok, nil
}

func (s *WatchlistService) resolve(actor models.Actor, failedAction string) (*repository.Watchlist, error) {
	w, err := s.registry.Resolve(actor.ID)
	if err != nil {
		s.activity.Record(actor, failedAction, "", err)
		return nil, err
	}
	return w, nil
}

func (s *WatchlistService) checkIndex(w *repository.Watchlist, index int) error {
	if index < 0 || index >= w.Len() {
		return ErrInvalidIndex
	}
	return nil
}

// UserMessage returns the text to show the user for err. It reports false
// for internal failures, whose details should not be shown.
func UserMessage(err error) (string, bool) {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message, true
	case errors.Is(err, ErrInvalidIndex), errors.Is(err, repository.ErrIndexOutOfRange):
		return "Invalid index!", true
	case errors.Is(err, ErrNegativeEpisodes):
		return "Episodes cannot be negative!", true
	case errors.Is(err, ErrFavoriteProtected), errors.Is(err, repository.ErrProtectedEntry):
		return "Favorite anime cannot be deleted! Remove it from favorites first.", true
	case errors.Is(err, ErrEmptyKeyword):
		return "Please provide a keyword to search for!", true
	default:
		return "", false
	}
}

// IsNotFound reports whether err means the addressed entry does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvalidIndex) || errors.Is(err, repository.ErrIndexOutOfRange)
}

// IsConflict reports whether err means the entry is protected from the operation
func IsConflict(err error) bool {
	return errors.Is(err, ErrFavoriteProtected) || errors.Is(err, repository.ErrProtectedEntry)
}
