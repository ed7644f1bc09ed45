// Package textnorm folds provider text into comparable forms: accents
// removed, case lowered, markup stripped, whitespace collapsed.
package textnorm

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that NFD does not decompose into base + combining mark.
var specialLetters = strings.NewReplacer(
	"ø", "o", "Ø", "o",
	"æ", "ae", "Æ", "ae",
	"œ", "oe", "Œ", "oe",
	"ß", "ss",
	"ł", "l", "Ł", "l",
	"đ", "d", "Đ", "d",
	"ı", "i",
	"þ", "th",
)

// Fold lowercases s and strips diacritics, so "Atlético" and "atletico"
// compare equal.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(specialLetters.Replace(folded))
}

func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripMarkup returns the visible text of an HTML fragment. Plain text passes
// through with whitespace collapsed.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return CollapseSpaces(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CollapseSpaces(s)
	}
	return CollapseSpaces(doc.Text())
}

// Key is the canonical form used for dedup keys: folded, punctuation
// dropped, single spaced.
func Key(s string) string {
	folded := Fold(StripMarkup(s))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return CollapseSpaces(b.String())
}

// Variants returns the folded word plus its c/k spellings ("kobenhavn",
// "cobenhavn"), deduplicated, original first.
func Variants(word string) []string {
	base := Fold(word)
	if base == "" {
		return nil
	}
	out := []string{base}
	for _, v := range []string{
		strings.ReplaceAll(base, "c", "k"),
		strings.ReplaceAll(base, "k", "c"),
	} {
		if !contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
