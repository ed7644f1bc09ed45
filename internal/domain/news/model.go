package news

import (
	"context"
	"time"
)

const (
	KindArticle   = "article"
	KindHighlight = "highlight"
)

// Item is a news article of a competition or a highlight clip of a match.
type Item struct {
	ID            string    `json:"id"`
	CompetitionID string    `json:"competitionId"`
	MatchID       string    `json:"matchId,omitempty"`
	Kind          string    `json:"kind"`
	Headline      string    `json:"headline"`
	Description   string    `json:"description,omitempty"`
	URL           string    `json:"url,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	PublishedAt   time.Time `json:"publishedAt"`
	Source        string    `json:"source,omitempty"`
}

func (i Item) Key() string {
	return i.Kind + ":" + i.ID
}

type Repository interface {
	UpsertMany(ctx context.Context, items []Item) error
	ListByCompetition(ctx context.Context, competitionID string) ([]Item, error)
	ListByMatch(ctx context.Context, matchID string) ([]Item, error)
}
