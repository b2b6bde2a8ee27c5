package service

import "anime-watchlist/internal/models"

// ActionStore persists recorded actions.
type ActionStore interface {
	Create(action *models.Action) error
	Recent(limit int) ([]models.Action, error)
}

// ActionForwarder relays recorded actions to an external log channel.
type ActionForwarder interface {
	SendAction(action models.Action) error
}

// Backuper defines capability to snapshot the data directory.
type Backuper interface {
	Backup() (string, error)
}
