package document

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/commentary"
	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
)

// CommentaryRepository stores the ordered feed of a match as one document.
type CommentaryRepository struct {
	store docstore.Store
}

func NewCommentaryRepository(store docstore.Store) *CommentaryRepository {
	return &CommentaryRepository{store: store}
}

func (r *CommentaryRepository) ListByMatch(ctx context.Context, matchID string) ([]commentary.Entry, error) {
	doc, ok, err := r.store.Get(ctx, docstore.CollectionCommentary, matchID)
	if err != nil {
		return nil, fmt.Errorf("get commentary match=%s: %w", matchID, err)
	}
	if !ok {
		return []commentary.Entry{}, nil
	}
	return decode[[]commentary.Entry](doc)
}

func (r *CommentaryRepository) Replace(ctx context.Context, matchID string, entries []commentary.Entry) error {
	if matchID == "" {
		return fmt.Errorf("match id is required")
	}
	if entries == nil {
		entries = []commentary.Entry{}
	}
	body, err := encode(docstore.CollectionCommentary, matchID, entries)
	if err != nil {
		return err
	}
	return r.store.UpsertMany(ctx, []docstore.Document{{
		Collection: docstore.CollectionCommentary,
		Key:        matchID,
		MatchID:    matchID,
		Body:       body,
		UpdatedAt:  time.Now().UTC(),
	}})
}
