package commentary

import (
	"context"
	"strconv"
	"strings"

	"github.com/riskibarqy/matchfeed/internal/domain/timeline"
	"github.com/riskibarqy/matchfeed/internal/platform/textnorm"
)

// Entry is one line of match commentary as stored.
type Entry struct {
	ID      string `json:"id,omitempty"`
	MatchID string `json:"matchId"`
	Time    string `json:"time"`
	Text    string `json:"text"`
	Source  string `json:"source,omitempty"`
}

// DedupKey is the provider id when present, otherwise folded text plus time.
func (e Entry) DedupKey() string {
	if id := strings.TrimSpace(e.ID); id != "" {
		return "id:" + id
	}
	return "tx:" + textnorm.Key(e.Text) + "|" + strings.TrimSpace(e.Time)
}

// RawEntry is commentary as delivered by a provider, before a time string
// has been chosen among the candidate fields.
type RawEntry struct {
	ID          string
	MatchID     string
	Time        string
	Clock       string
	DisplayTime string
	Minute      *int
	Text        string
	Source      string
	Sequence    int
}

// TimeText returns the first non-empty candidate time field.
func (r RawEntry) TimeText() string {
	for _, candidate := range []string{r.Time, r.Clock, r.DisplayTime} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	if r.Minute != nil && *r.Minute > 0 {
		return strconv.Itoa(*r.Minute) + "'"
	}
	return ""
}

// Order normalizes raw entries and returns them in match order. Entries with
// no usable time keep an empty Time and sort after full time.
func Order(raw []RawEntry) []Entry {
	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		text := textnorm.StripMarkup(r.Text)
		if text == "" {
			continue
		}
		entries = append(entries, Entry{
			ID:      strings.TrimSpace(r.ID),
			MatchID: r.MatchID,
			Time:    r.TimeText(),
			Text:    text,
			Source:  r.Source,
		})
	}
	return Sort(entries)
}

// Sort orders already normalized entries. It is idempotent.
func Sort(entries []Entry) []Entry {
	ordered := timeline.Order(entries, func(e Entry) (string, string) { return e.Time, e.Text })
	for i := range ordered {
		if _, ok := timeline.ParseClock(ordered[i].Time); !ok && !timeline.IsMarkerToken(ordered[i].Time) {
			ordered[i].Time = ""
		}
	}
	return ordered
}

// Repository stores the ordered commentary of a match as one unit.
type Repository interface {
	ListByMatch(ctx context.Context, matchID string) ([]Entry, error)
	Replace(ctx context.Context, matchID string, entries []Entry) error
}
