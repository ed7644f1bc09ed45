package document

import (
	"context"
	"fmt"

	"github.com/riskibarqy/matchfeed/internal/domain/docstore"
	"github.com/riskibarqy/matchfeed/internal/domain/ingeststate"
)

const stateKey = "ingestion"

type StateRepository struct {
	store docstore.Store
}

func NewStateRepository(store docstore.Store) *StateRepository {
	return &StateRepository{store: store}
}

func (r *StateRepository) Get(ctx context.Context) (ingeststate.State, bool, error) {
	doc, ok, err := r.store.Get(ctx, docstore.CollectionState, stateKey)
	if err != nil || !ok {
		return ingeststate.State{}, ok, err
	}
	state, err := decode[ingeststate.State](doc)
	if err != nil {
		return ingeststate.State{}, false, err
	}
	return state, true, nil
}

func (r *StateRepository) Save(ctx context.Context, state ingeststate.State) error {
	state.UpdatedAt = stamp(state.UpdatedAt)
	body, err := encode(docstore.CollectionState, stateKey, state)
	if err != nil {
		return err
	}
	if err := r.store.UpsertMany(ctx, []docstore.Document{{
		Collection: docstore.CollectionState,
		Key:        stateKey,
		Body:       body,
		UpdatedAt:  state.UpdatedAt,
	}}); err != nil {
		return fmt.Errorf("save ingestion state: %w", err)
	}
	return nil
}
