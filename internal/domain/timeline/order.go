package timeline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/riskibarqy/matchfeed/internal/platform/textnorm"
)

// Phase ranks, in match order.
const (
	RankKickoff             = 0
	RankFirstHalf           = 1
	RankFirstHalfStoppage   = 2
	RankHalfTime            = 3
	RankSecondHalf          = 4
	RankSecondHalfStoppage  = 5
	RankFullTime            = 6
	RankExtraFirstHalf      = 7
	RankExtraFirstStoppage  = 8
	RankExtraSecondHalf     = 9
	RankExtraSecondStoppage = 10
	RankUnknown             = 11
)

// endOfPhase sorts a closing marker after every timed entry of its rank.
const endOfPhase = 1 << 20

// Placement is the sort key of one entry. Index is its position in the input
// and makes the order total.
type Placement struct {
	Rank     int
	Minute   float64
	Stoppage int
	Bias     float64
	Index    int
	// Timed reports that the entry carried a parsable clock or a marker token.
	Timed bool

	// running is set for an MM:SS clock past 90; whether it means stoppage or
	// extra time depends on the rest of the list.
	running bool
}

func (p Placement) Less(o Placement) bool {
	switch {
	case p.Rank != o.Rank:
		return p.Rank < o.Rank
	case p.Minute != o.Minute:
		return p.Minute < o.Minute
	case p.Stoppage != o.Stoppage:
		return p.Stoppage < o.Stoppage
	case p.Bias != o.Bias:
		return p.Bias < o.Bias
	default:
		return p.Index < o.Index
	}
}

type marker struct {
	re     *regexp.Regexp
	rank   int
	minute float64
	bias   float64
}

// Extra-time phrases come first so "first half extra time ends" is not read
// as the regulation half-time marker.
var markers = []marker{
	{re: regexp.MustCompile(`^first half extra time begins`), rank: RankExtraFirstHalf, minute: 91, bias: -1},
	{re: regexp.MustCompile(`^(first half extra time ends|end of first half of extra time)`), rank: RankExtraFirstStoppage, minute: endOfPhase},
	{re: regexp.MustCompile(`^second half extra time begins`), rank: RankExtraSecondHalf, minute: 106, bias: -1},
	{re: regexp.MustCompile(`^(second half extra time ends|end of extra time|after extra time|penalty shootout)`), rank: RankExtraSecondStoppage, minute: endOfPhase},
	{re: regexp.MustCompile(`^lineups (are )?announced`), rank: RankKickoff, bias: -1},
	{re: regexp.MustCompile(`^(kick ?off|first half begins|match (starts|begins)|start of (the )?match)`), rank: RankKickoff},
	{re: regexp.MustCompile(`^(half ?time|first half ends|end of (the )?first half)`), rank: RankHalfTime},
	{re: regexp.MustCompile(`^second half begins`), rank: RankSecondHalf, minute: 46, bias: -0.5},
	{re: regexp.MustCompile(`^(full ?time|match ends|second half ends|end of (the )?match|final whistle)`), rank: RankFullTime},
}

var markerTokens = map[string]marker{
	"ko":  {rank: RankKickoff},
	"ht":  {rank: RankHalfTime},
	"ft":  {rank: RankFullTime},
	"aet": {rank: RankExtraSecondStoppage, minute: endOfPhase},
}

// IsMarkerToken reports clock values such as "HT" or "FT" that stand for a
// phase boundary rather than a minute.
func IsMarkerToken(raw string) bool {
	_, ok := markerTokens[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// Place computes the sort key of an entry from its time string and text.
// Marker text wins over the clock; otherwise the clock's minute range picks
// the phase. Entries with neither land in RankUnknown.
func Place(timeText, text string, index int) Placement {
	clock, parsed := ParseClock(timeText)

	if m, ok := markerTokens[strings.ToLower(strings.TrimSpace(timeText))]; ok {
		return Placement{Rank: m.rank, Minute: m.minute, Bias: m.bias, Index: index, Timed: true}
	}

	normalized := textnorm.CollapseSpaces(textnorm.Fold(textnorm.StripMarkup(text)))
	for _, m := range markers {
		if !m.re.MatchString(normalized) {
			continue
		}
		p := Placement{Rank: m.rank, Minute: m.minute, Bias: m.bias, Index: index, Timed: parsed}
		// "Match ends" after extra time closes the last extra-time phase.
		if m.rank == RankFullTime && parsed && clock.Base > 90 && !(clock.Elapsed && clock.Base < 105) {
			p.Rank, p.Minute = RankExtraSecondStoppage, endOfPhase
		}
		return p
	}

	if !parsed {
		return Placement{Rank: RankUnknown, Index: index}
	}
	return Placement{
		Rank:     rankOf(clock),
		Minute:   float64(clock.Base) + float64(clock.Seconds)/60,
		Stoppage: clock.Stoppage,
		Index:    index,
		Timed:    true,
		running:  clock.Elapsed && clock.Base > 90,
	}
}

// asSecondHalfStoppage re-reads a running clock such as "93:12" as 90'+3.
func (p Placement) asSecondHalfStoppage() Placement {
	base := int(p.Minute)
	if !p.running || base >= 105 {
		return p
	}
	p.Rank = RankSecondHalfStoppage
	p.Bias = p.Minute - float64(base)
	p.Minute = 90
	p.Stoppage = base - 90
	return p
}

func isExtraTime(rank int) bool {
	return rank >= RankExtraFirstHalf && rank <= RankExtraSecondStoppage
}

func rankOf(c Clock) int {
	b, stoppage := c.Base, c.Stoppage > 0
	switch {
	case b <= 45 && !stoppage:
		return RankFirstHalf
	case b <= 45:
		return RankFirstHalfStoppage
	case b < 90 || (b == 90 && !stoppage):
		return RankSecondHalf
	case b == 90:
		return RankSecondHalfStoppage
	case b < 105 || (b == 105 && !stoppage):
		return RankExtraFirstHalf
	case b == 105:
		return RankExtraFirstStoppage
	case b < 120 || (b == 120 && !stoppage):
		return RankExtraSecondHalf
	default:
		return RankExtraSecondStoppage
	}
}

// Order returns a new slice sorted chronologically. at extracts the time
// string and text of an item. The result depends only on the input, and
// ordering an already ordered slice returns it unchanged.
//
// Running clocks past 90 count as second-half stoppage unless some other
// entry places the match in extra time.
func Order[T any](items []T, at func(T) (timeText, text string)) []T {
	placed := make([]Placement, len(items))
	extraTime := false
	for i, item := range items {
		timeText, text := at(item)
		placed[i] = Place(timeText, text, i)
		if isExtraTime(placed[i].Rank) && !placed[i].running {
			extraTime = true
		}
	}
	if !extraTime {
		for i := range placed {
			placed[i] = placed[i].asSecondHalfStoppage()
		}
	}

	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return placed[idx[a]].Less(placed[idx[b]])
	})

	out := make([]T, len(items))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
