package service

import (
	"fmt"
	"log"

	"anime-watchlist/internal/models"
	"anime-watchlist/internal/timeutil"
)

// DefaultLogLines is the number of actions shown when no limit is given
const DefaultLogLines = 10

// MaxLogLines caps how many actions a single query may return
const MaxLogLines = 200

// ActivityLogger records user actions to the log, the activity database
// and, when configured, a log chat. Recording never fails the caller.
type ActivityLogger struct {
	store     ActionStore
	forwarder ActionForwarder
}

// NewActivityLogger creates a new ActivityLogger. store and forwarder may be nil.
func NewActivityLogger(store ActionStore, forwarder ActionForwarder) *ActivityLogger {
	return &ActivityLogger{
		store:     store,
		forwarder: forwarder,
	}
}

// Record logs one action. err, when non-nil, marks the action as failed.
func (l *ActivityLogger) Record(actor models.Actor, name, details string, err error) {
	action := models.Action{
		Actor:     actor,
		Name:      name,
		Details:   details,
		CreatedAt: timeutil.Now(),
	}
	if err != nil {
		action.Error = err.Error()
	}

	log.Println(FormatLogLine(action))

	if l == nil {
		return
	}
	if l.store != nil {
		if err := l.store.Create(&action); err != nil {
			log.Printf("Failed to store action %q: %v", name, err)
		}
	}
	if l.forwarder != nil {
		if err := l.forwarder.SendAction(action); err != nil {
			log.Printf("Failed to send log to log chat: %v", err)
		}
	}
}

// Recent returns up to limit of the latest actions, oldest first
func (l *ActivityLogger) Recent(limit int) ([]models.Action, error) {
	if l == nil || l.store == nil {
		return []models.Action{}, nil
	}
	limit = ClampLogLines(limit)
	actions, err := l.store.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity log: %w", err)
	}
	if actions == nil {
		actions = []models.Action{}
	}
	return actions, nil
}

// ClampLogLines maps a requested line count onto [1, MaxLogLines]
func ClampLogLines(n int) int {
	if n <= 0 {
		return DefaultLogLines
	}
	return min(n, MaxLogLines)
}

// FormatLogLine renders an action as a single log line
func FormatLogLine(action models.Action) string {
	if action.Failed() {
		return fmt.Sprintf("ERROR - User: %s - Action: %s - Error: %s", action.Actor, action.Name, action.Error)
	}
	line := fmt.Sprintf("User: %s - Action: %s", action.Actor, action.Name)
	if action.Details != "" {
		line += " - Details: " + action.Details
	}
	return line
}
