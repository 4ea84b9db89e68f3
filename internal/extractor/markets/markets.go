// Package markets classifies the free text printed between the team pair and
// the odds block into a market type, using the priority-ordered vocabulary.
package markets

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Vodeneev/linesheet/internal/pkg/models"
	"github.com/Vodeneev/linesheet/internal/pkg/reference"
	"github.com/Vodeneev/linesheet/internal/pkg/textnorm"
)

type term struct {
	folded   string
	kind     models.MarketKind
	priority int // position of the vocabulary entry, lower wins
}

// Classifier matches market vocabulary terms. Immutable, safe for concurrent use.
type Classifier struct {
	terms []term
	other int // priority assigned to unclassified markets
}

// Classification is the outcome for one text segment.
type Classification struct {
	Type        models.MarketType
	Priority    int
	Description string // verbatim market text
	// Remainder is the text before the matched term. For segments that follow
	// a team separator it is the rest of the away team name.
	Remainder string
	Matched   bool
}

// NewClassifier compiles the vocabulary. Main-market priority is 0, vocabulary
// entries follow in file order, unclassified text comes last.
func NewClassifier(v reference.Vocabulary) *Classifier {
	c := &Classifier{}
	for i, entry := range v.Markets {
		for _, t := range entry.Terms {
			folded := strings.TrimSpace(textnorm.Unaccent(t))
			if folded == "" {
				continue
			}
			c.terms = append(c.terms, term{folded: folded, kind: entry.Kind, priority: i + 1})
		}
	}
	c.other = len(v.Markets) + 1
	return c
}

// Classify inspects segment, the text between the second team name (or the
// fixture id on market lines) and the odds block. The earliest-starting
// vocabulary match wins; ties go to the higher-priority entry, then the longer
// term. Without a match, exactly three odds make it the main market and
// anything else is "other".
func (c *Classifier) Classify(segment string, oddsCount int) Classification {
	segment = strings.TrimSpace(segment)

	if t, start, ok := c.find(segment); ok {
		desc := strings.TrimSpace(segment[start:])
		return Classification{
			Type:        models.MarketType{Kind: t.kind, Qualifier: qualifier(t.kind, desc)},
			Priority:    t.priority,
			Description: desc,
			Remainder:   strings.TrimSpace(segment[:start]),
			Matched:     true,
		}
	}

	if oddsCount == 3 {
		return Classification{
			Type:      models.MarketType{Kind: models.MarketMain},
			Priority:  0,
			Remainder: segment,
		}
	}
	// the whole segment is team name, there is no market text to keep
	return Classification{
		Type:      models.MarketType{Kind: models.MarketOther},
		Priority:  c.other,
		Remainder: segment,
	}
}

// ClassifyMarketText classifies the text of a market line. There is no team
// name in it, so the whole text is the description.
func (c *Classifier) ClassifyMarketText(text string, oddsCount int) Classification {
	cl := c.Classify(text, oddsCount)
	text = strings.TrimSpace(text)
	cl.Description = text
	cl.Remainder = ""
	if cl.Type.Kind != models.MarketMain {
		cl.Type.Qualifier = qualifier(cl.Type.Kind, text)
	}
	return cl
}

// find returns the winning vocabulary term and its byte offset in segment.
func (c *Classifier) find(segment string) (term, int, bool) {
	folded, offsets := textnorm.UnaccentWithOffsets(segment)

	best, bestPos := term{}, -1
	for _, t := range c.terms {
		pos := indexWord(folded, t.folded)
		if pos < 0 {
			continue
		}
		if bestPos < 0 || pos < bestPos ||
			(pos == bestPos && (t.priority < best.priority ||
				(t.priority == best.priority && len(t.folded) > len(best.folded)))) {
			best, bestPos = t, pos
		}
	}
	if bestPos < 0 {
		return term{}, 0, false
	}
	return best, offsets[bestPos], true
}

// indexWord finds the first occurrence of needle in s that starts and ends on
// a word boundary, so "card" does not fire inside "Cardiff".
func indexWord(s, needle string) int {
	from := 0
	for from <= len(s) {
		i := strings.Index(s[from:], needle)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(needle)
		if boundaryBefore(s, i) && boundaryAfter(s, end) {
			return i
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		from = i + size
	}
	return -1
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// qualifier keeps the distinguishing part of a description ("gólszám 2,5" vs
// "gólszám 3,5") so different lines of one kind do not collapse into one market.
func qualifier(kind models.MarketKind, desc string) string {
	if kind == models.MarketMain {
		return ""
	}
	return textnorm.Fold(desc)
}
