package httpapi

import (
	"time"

	"github.com/riskibarqy/matchfeed/external/httpfetch"
	"github.com/riskibarqy/matchfeed/internal/domain/ingeststate"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

type displayStateDTO struct {
	Status    string     `json:"status"`
	Message   string     `json:"message"`
	LastFetch *time.Time `json:"lastFetch"`
	RunID     string     `json:"runId,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type ingestionStateDTO struct {
	Display  displayStateDTO    `json:"display"`
	Fetch    usecase.FetchState `json:"fetch"`
	Upstream *httpfetch.Status  `json:"upstream,omitempty"`
}

func displayStateToDTO(s ingeststate.State) displayStateDTO {
	out := displayStateDTO{
		Status:    s.Status,
		Message:   s.Message,
		LastFetch: s.LastFetch,
		RunID:     s.RunID,
	}
	if !s.UpdatedAt.IsZero() {
		updated := s.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}
