// Package odds reads the trailing block of decimal odds printed at the end of
// fixture and market lines.
package odds

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

// MinTailOdds is the least number of tail tokens that make a line odds-bearing.
const MinTailOdds = 2

// oddsToken matches one printed odd: "2,50", "1.85", "12,500".
var oddsToken = regexp.MustCompile(`^\d{1,2}[,.]\d{2,3}$`)

// Result is the contiguous odds run found at the tail of a line.
type Result struct {
	Values models.OddsTuple
	// Start is the byte offset of the first odds token; text[:Start] is
	// everything printed before the odds. Equals len(text) when no odds were found.
	Start int
}

// OK reports whether the tail carried enough odds to be an odds line.
func (r Result) OK() bool {
	return len(r.Values) >= MinTailOdds
}

type token struct {
	start, end int
}

// Parse scans text from the end and collects the run of odds tokens separated
// by whitespace, returning the values in left-to-right order. Fewer than
// MinTailOdds values is not an error; callers check OK.
func Parse(text string) Result {
	tokens := split(text)

	first := len(tokens)
	for first > 0 && oddsToken.MatchString(text[tokens[first-1].start:tokens[first-1].end]) {
		first--
	}
	if first == len(tokens) {
		return Result{Start: len(text)}
	}

	values := make(models.OddsTuple, 0, len(tokens)-first)
	for _, tok := range tokens[first:] {
		v, err := strconv.ParseFloat(strings.Replace(text[tok.start:tok.end], ",", ".", 1), 64)
		if err != nil {
			// cannot happen for regexp-validated tokens
			return Result{Start: len(text)}
		}
		values = append(values, v)
	}
	return Result{Values: values, Start: tokens[first].start}
}

// split returns whitespace-separated tokens with their byte offsets.
func split(text string) []token {
	var tokens []token
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, token{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{start, len(text)})
	}
	return tokens
}
