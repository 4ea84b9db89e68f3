// Package textnorm folds printed text into the comparable form used by every
// lookup table: lowercase, no diacritics, ASCII letters, digits and spaces.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters that do not decompose under NFD
var specialFolds = map[rune]string{
	'ß': "ss",
	'ø': "o",
	'ł': "l",
	'æ': "ae",
	'œ': "oe",
	'đ': "d",
	'ı': "i",
}

func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Unaccent lowercases s and removes diacritics, leaving punctuation alone.
func Unaccent(s string) string {
	s = strings.ToLower(s)
	out, _, err := transform.String(stripMarks(), s)
	if err != nil {
		out = s
	}
	if !strings.ContainsFunc(out, isSpecial) {
		return out
	}
	var b strings.Builder
	for _, r := range out {
		if rep, ok := specialFolds[r]; ok {
			b.WriteString(rep)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isSpecial(r rune) bool {
	_, ok := specialFolds[r]
	return ok
}

// Fold is Unaccent followed by dropping everything outside [a-z0-9 ] and
// collapsing whitespace. Fold(Fold(s)) == Fold(s).
func Fold(s string) string {
	s = Unaccent(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// UnaccentWithOffsets unaccents s rune by rune and returns, for every byte of
// the result, the byte offset of the source rune in s. The offsets slice has
// one extra trailing entry equal to len(s) so a match end can be mapped too.
func UnaccentWithOffsets(s string) (string, []int) {
	var b strings.Builder
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		folded := Unaccent(string(r))
		b.WriteString(folded)
		for range len(folded) {
			offsets = append(offsets, i)
		}
	}
	offsets = append(offsets, len(s))
	return b.String(), offsets
}
