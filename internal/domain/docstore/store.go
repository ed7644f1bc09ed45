// Package docstore describes the document sink the pipeline writes to: keyed
// JSON documents grouped in collections, with a handful of indexed fields.
package docstore

import (
	"context"
	"slices"
	"sort"
	"time"
)

// Collections.
const (
	CollectionMatches    = "matches"
	CollectionCommentary = "commentary"
	CollectionLineups    = "lineups"
	CollectionStatistics = "statistics"
	CollectionScoreLog   = "score_log"
	CollectionState      = "scheduler_state"
	CollectionStandings  = "standings"
	CollectionRosters    = "rosters"
	CollectionNews       = "news"
)

// Indexed fields accepted by Distinct.
const (
	FieldCompetitionID = "competition_id"
	FieldMatchID       = "match_id"
)

// Document is one stored record. Body is the JSON encoding of the domain
// value; the other fields are indexed copies used for filtering.
type Document struct {
	Collection    string
	Key           string
	CompetitionID string
	MatchID       string
	Date          *time.Time
	AdminCurated  bool
	Body          []byte
	UpdatedAt     time.Time
}

// Filter selects documents of one collection. Empty fields do not filter.
// DateFrom is inclusive, DateTo exclusive; documents without a date never
// match a date bound.
type Filter struct {
	Collection          string
	Keys                []string
	CompetitionID       string
	MatchID             string
	DateFrom            *time.Time
	DateTo              *time.Time
	ExcludeKeys         []string
	ExcludeAdminCurated bool
}

// Matches evaluates the filter in memory. Drivers without a query engine use
// it directly; the Postgres driver translates the same rules to SQL.
func (f Filter) Matches(doc Document) bool {
	if doc.Collection != f.Collection {
		return false
	}
	if len(f.Keys) > 0 && !slices.Contains(f.Keys, doc.Key) {
		return false
	}
	if f.CompetitionID != "" && doc.CompetitionID != f.CompetitionID {
		return false
	}
	if f.MatchID != "" && doc.MatchID != f.MatchID {
		return false
	}
	if f.DateFrom != nil && (doc.Date == nil || doc.Date.Before(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && (doc.Date == nil || !doc.Date.Before(*f.DateTo)) {
		return false
	}
	if slices.Contains(f.ExcludeKeys, doc.Key) {
		return false
	}
	if f.ExcludeAdminCurated && doc.AdminCurated {
		return false
	}
	return true
}

// FieldValue reads an indexed field by name.
func (d Document) FieldValue(field string) (string, bool) {
	switch field {
	case FieldCompetitionID:
		return d.CompetitionID, true
	case FieldMatchID:
		return d.MatchID, true
	default:
		return "", false
	}
}

// Store is the narrow persistence surface the pipeline needs: lookup by key,
// bulk upsert, distinct-value query and delete-many.
//
// UpsertMany never clears AdminCurated on an existing document.
type Store interface {
	Get(ctx context.Context, collection, key string) (Document, bool, error)
	Find(ctx context.Context, filter Filter) ([]Document, error)
	UpsertMany(ctx context.Context, docs []Document) error
	Distinct(ctx context.Context, filter Filter, field string) ([]string, error)
	DeleteMany(ctx context.Context, filter Filter) (int, error)
}

// Sort orders documents by date then key, undated documents last. Every
// driver returns Find results in this order.
func Sort(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		switch {
		case a.Date == nil && b.Date != nil:
			return false
		case a.Date != nil && b.Date == nil:
			return true
		case a.Date != nil && !a.Date.Equal(*b.Date):
			return a.Date.Before(*b.Date)
		default:
			return a.Key < b.Key
		}
	})
}
