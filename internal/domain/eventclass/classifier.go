// Package eventclass maps provider event types and commentary text onto the
// closed set of match.EventKind values.
package eventclass

import (
	"regexp"
	"strings"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/platform/textnorm"
)

// Rule matches when any include pattern matches and no exclude pattern does.
type Rule struct {
	Kind    match.EventKind
	Include []*regexp.Regexp
	Exclude []*regexp.Regexp
}

func (r Rule) Matches(text string) bool {
	included := false
	for _, re := range r.Include {
		if re.MatchString(text) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, re := range r.Exclude {
		if re.MatchString(text) {
			return false
		}
	}
	return true
}

func patterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile(expr))
	}
	return out
}

// Rules are evaluated in order; the first satisfied rule wins. Input is
// folded (lowercase, no diacritics, '-' and '_' as spaces) before matching.
var Rules = []Rule{
	{
		Kind:    match.KindOwnGoal,
		Include: patterns(`\bown goal\b`, `\bowngoal\b`, `^own$`, `^og$`),
	},
	{
		Kind:    match.KindPenalty,
		Include: patterns(`\bpenalty\b`, `^pen$`),
		Exclude: patterns(`\bmiss(ed|es)?\b`, `\bsaved?\b`, `\bconced(ed|es)\b`, `\bwins?\b`, `\bawarded\b`, `\bpenalty (area|box|spot)\b`, `\bshootout\b`, `\bdraws?\b`),
	},
	{
		Kind:    match.KindSecondYellow,
		Include: patterns(`\bsecond yellow\b`, `\b2nd yellow\b`, `\byellow red\b`),
	},
	{
		Kind:    match.KindRedCard,
		Include: patterns(`\bred card\b`, `^red$`, `\bsent off\b`, `\bdismissed\b`),
	},
	{
		Kind:    match.KindYellowCard,
		Include: patterns(`\byellow card\b`, `^yellow$`, `\bbooked\b`, `^booking$`, `\bcaution(ed)?\b`),
		Exclude: patterns(`\bred\b`),
	},
	{
		Kind:    match.KindGoal,
		Include: patterns(`\bgoal\b`, `\bscores?\b`, `\bscored\b`, `^regular$`),
		Exclude: patterns(`\bno goal\b`, `\bdisallowed\b`, `\bruled out\b`, `\bgoal kick\b`, `\bmiss(ed|es)?\b`, `\bgoal line\b`, `\bwide of (the )?goal\b`, `\battempt\b`, `\bsaved\b`, `\bblocked\b`),
	},
	{
		Kind:    match.KindSubstitution,
		Include: patterns(`\bsubstitution\b`, `\bsubstitute[sd]?\b`, `\breplaces\b`, `\bcomes on\b`, `^sub(s)?\b`),
	},
	{
		Kind:    match.KindSave,
		Include: patterns(`\bsaved?\b`, `\bsaves\b`),
	},
	{
		Kind:    match.KindCornerKick,
		Include: patterns(`\bcorner\b`, `\bcorner kick\b`),
		Exclude: patterns(`\b(top|bottom|left|right) (left |right )?corner\b`),
	},
	{
		Kind:    match.KindOffside,
		Include: patterns(`\boffside\b`, `\boff side\b`),
	},
	{
		Kind:    match.KindFoul,
		Include: patterns(`\bfoul(ed|s)?\b`, `\bhandball\b`, `\bpenalty conceded\b`, `\bconcedes? a penalty\b`),
	},
	{
		Kind:    match.KindFreeKick,
		Include: patterns(`\bfree kick\b`, `\bfreekick\b`),
	},
	{
		Kind:    match.KindHalfTime,
		Include: patterns(`\bhalf time\b`, `\bhalftime\b`, `^ht$`, `\bfirst half ends\b`, `\bend of (the )?first half\b`),
	},
	{
		Kind:    match.KindMatchStart,
		Include: patterns(`\bkick off\b`, `\bkickoff\b`, `\bfirst half begins\b`, `\bmatch starts\b`, `\bstart of (the )?match\b`),
	},
	{
		Kind:    match.KindMatchEnd,
		Include: patterns(`\bfull time\b`, `\bfulltime\b`, `^ft$`, `\bmatch ends\b`, `\bend of (the )?match\b`, `\bsecond half ends\b`, `\bfinal whistle\b`),
	},
}

var separators = strings.NewReplacer("-", " ", "_", " ")

// Normalize folds raw provider text into the form rules are written against.
func Normalize(raw string) string {
	return textnorm.CollapseSpaces(separators.Replace(textnorm.Fold(textnorm.StripMarkup(raw))))
}

// Classify returns the kind of the first rule satisfied by raw, or KindOther.
func Classify(raw string) match.EventKind {
	text := Normalize(raw)
	if text == "" {
		return match.KindOther
	}
	for _, rule := range Rules {
		if rule.Matches(text) {
			return rule.Kind
		}
	}
	return match.KindOther
}

// ClassifyAny tries each candidate in turn (typically the provider type, then
// the event text) and returns the first kind that is not KindOther.
func ClassifyAny(candidates ...string) match.EventKind {
	for _, candidate := range candidates {
		if kind := Classify(candidate); kind != match.KindOther {
			return kind
		}
	}
	return match.KindOther
}
