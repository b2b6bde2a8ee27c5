package models

import (
	"fmt"
	"time"
)

// Actor identifies who triggered an action
type Actor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// String renders the actor the way it appears in log lines
func (a Actor) String() string {
	if a.Name == "" {
		return fmt.Sprintf("(ID: %d)", a.ID)
	}
	return fmt.Sprintf("%s (ID: %d)", a.Name, a.ID)
}

// Action is one recorded user action
type Action struct {
	ID        int64     `json:"id"`
	Actor     Actor     `json:"actor"`
	Name      string    `json:"name"`
	Details   string    `json:"details,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Failed reports whether the action recorded an error
func (a Action) Failed() bool {
	return a.Error != ""
}
