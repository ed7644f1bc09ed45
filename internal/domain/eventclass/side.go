package eventclass

import (
	"strings"
	"unicode/utf8"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/platform/textnorm"
)

const significantWordLen = 4

// AttributeSide guesses which team a piece of text is about. Full team names
// (and their c/k spellings) are tried first, then significant words of each
// name that the other name does not share. When both sides match in the same
// pass the earlier mention wins; an exact tie is unknown.
func AttributeSide(text, home, away string) match.Side {
	haystack := Normalize(text)
	if haystack == "" {
		return match.SideUnknown
	}

	homeName, awayName := Normalize(home), Normalize(away)
	if side, ok := pick(firstMention(haystack, fullNames(homeName)), firstMention(haystack, fullNames(awayName))); ok {
		return side
	}

	homeWords, awayWords := significantWords(homeName), significantWords(awayName)
	shared := intersect(homeWords, awayWords)
	side, _ := pick(
		firstMention(haystack, wordVariants(homeWords, shared)),
		firstMention(haystack, wordVariants(awayWords, shared)),
	)
	return side
}

func pick(homePos, awayPos int) (match.Side, bool) {
	switch {
	case homePos < 0 && awayPos < 0:
		return match.SideUnknown, false
	case awayPos < 0 || (homePos >= 0 && homePos < awayPos):
		return match.SideHome, true
	case homePos < 0 || awayPos < homePos:
		return match.SideAway, true
	default:
		return match.SideUnknown, true
	}
}

func fullNames(name string) []string {
	if name == "" {
		return nil
	}
	return textnorm.Variants(name)
}

func significantWords(name string) []string {
	var out []string
	for _, word := range strings.Fields(name) {
		word = strings.Trim(word, ".,()'\"")
		if utf8.RuneCountInString(word) > significantWordLen {
			out = append(out, word)
		}
	}
	return out
}

func wordVariants(words []string, skip map[string]struct{}) []string {
	var out []string
	for _, word := range words {
		if _, ok := skip[word]; ok {
			continue
		}
		out = append(out, textnorm.Variants(word)...)
	}
	return out
}

func intersect(a, b []string) map[string]struct{} {
	set := make(map[string]struct{}, len(a))
	for _, w := range a {
		set[w] = struct{}{}
	}
	out := make(map[string]struct{})
	for _, w := range b {
		if _, ok := set[w]; ok {
			out[w] = struct{}{}
		}
	}
	return out
}

// firstMention returns the earliest whole-word position of any needle, or -1.
func firstMention(haystack string, needles []string) int {
	best := -1
	for _, needle := range needles {
		if pos := indexWord(haystack, needle); pos >= 0 && (best < 0 || pos < best) {
			best = pos
		}
	}
	return best
}

func indexWord(haystack, needle string) int {
	if needle == "" {
		return -1
	}
	offset := 0
	for {
		i := strings.Index(haystack[offset:], needle)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(needle)
		if boundary(haystack, start-1) && boundary(haystack, end) {
			return start
		}
		offset = start + 1
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c >= 0x80)
}
