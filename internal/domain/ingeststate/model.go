package ingeststate

import (
	"context"
	"time"
)

// Status values of the display-state document.
const (
	StatusIdle     = "idle"
	StatusFetching = "fetching"
	StatusError    = "error"
	StatusDisabled = "disabled"
	StatusStopped  = "stopped"
)

// State is the scheduler display-state document.
type State struct {
	Status    string     `json:"status"`
	Message   string     `json:"message"`
	LastFetch *time.Time `json:"lastFetch,omitempty"`
	RunID     string     `json:"runId,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Repository interface {
	Get(ctx context.Context) (State, bool, error)
	Save(ctx context.Context, state State) error
}
