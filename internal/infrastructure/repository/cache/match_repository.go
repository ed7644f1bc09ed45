package cache

import (
	"context"
	"maps"
	"strconv"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	basecache "github.com/riskibarqy/matchfeed/internal/platform/cache"
)

const (
	matchKeyPrefix       = "match:"
	matchByIDPrefix      = "match:id:"
	matchWindowPrefix    = "match:window:"
	matchCompetitionsKey = "match:competitions"
)

// MatchRepository caches match reads. Any write drops every cached match key
// since an upsert or prune can change both lookups and window lists.
type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, matchByIDPrefix+id, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedMatchByID{value: cloneMatch(item), exists: exists}, nil
	})
	if err != nil {
		return match.Match{}, false, err
	}

	cached, _ := v.(cachedMatchByID)
	return cloneMatch(cached.value), cached.exists, nil
}

func (r *MatchRepository) ListByCompetition(ctx context.Context, competitionID string, from, to time.Time) ([]match.Match, error) {
	key := matchWindowPrefix + competitionID + ":" + strconv.FormatInt(from.Unix(), 10) + ":" + strconv.FormatInt(to.Unix(), 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByCompetition(ctx, competitionID, from, to)
		if err != nil {
			return nil, err
		}
		return cloneMatches(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.Match)
	return cloneMatches(items), nil
}

func (r *MatchRepository) ListCompetitionIDs(ctx context.Context) ([]string, error) {
	v, err := r.cache.GetOrLoad(ctx, matchCompetitionsKey, func(ctx context.Context) (any, error) {
		ids, err := r.next.ListCompetitionIDs(ctx)
		if err != nil {
			return nil, err
		}
		return append([]string(nil), ids...), nil
	})
	if err != nil {
		return nil, err
	}

	ids, _ := v.([]string)
	return append([]string(nil), ids...), nil
}

func (r *MatchRepository) UpsertMany(ctx context.Context, matches []match.Match) error {
	defer r.cache.DeletePrefix(ctx, matchKeyPrefix)
	return r.next.UpsertMany(ctx, matches)
}

func (r *MatchRepository) Prune(ctx context.Context, filter match.PruneFilter) (int, error) {
	defer r.cache.DeletePrefix(ctx, matchKeyPrefix)
	return r.next.Prune(ctx, filter)
}

type cachedMatchByID struct {
	value  match.Match
	exists bool
}

func cloneMatches(items []match.Match) []match.Match {
	out := make([]match.Match, 0, len(items))
	for _, item := range items {
		out = append(out, cloneMatch(item))
	}
	return out
}

func cloneMatch(m match.Match) match.Match {
	if m.Score.Home != nil {
		home := *m.Score.Home
		m.Score.Home = &home
	}
	if m.Score.Away != nil {
		away := *m.Score.Away
		m.Score.Away = &away
	}
	m.Events = append([]match.Event(nil), m.Events...)
	m.ExternalRefs = maps.Clone(m.ExternalRefs)
	return m
}
