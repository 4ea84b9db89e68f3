// Package lines tags raw lines of the betting program by their shape.
package lines

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Vodeneev/linesheet/internal/extractor/odds"
	"github.com/Vodeneev/linesheet/internal/pkg/enums"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
	"github.com/Vodeneev/linesheet/internal/pkg/textnorm"
)

// Kind is the tag assigned to a line.
type Kind int

const (
	Noise Kind = iota
	PageMarker
	DateHeader
	LeagueHeader
	FixtureLine
	MarketLine
)

func (k Kind) String() string {
	switch k {
	case PageMarker:
		return "page_marker"
	case DateHeader:
		return "date_header"
	case LeagueHeader:
		return "league_header"
	case FixtureLine:
		return "fixture_line"
	case MarketLine:
		return "market_line"
	default:
		return "noise"
	}
}

// Reasons a line ends up as Noise.
const (
	ReasonEmpty             = "empty"
	ReasonUnrecognized      = "unrecognized"
	ReasonOddsCountMismatch = "odds_count_mismatch"
	ReasonInvalidDate       = "invalid_date"
	ReasonUnknownDayToken   = "unknown_day_token"
	ReasonInvalidTime       = "invalid_time"
)

// Classified is a tagged line with the groups captured for its kind.
type Classified struct {
	Kind Kind
	Line models.RawLine

	Page   int         // PageMarker
	Date   models.Date // DateHeader
	League string      // LeagueHeader

	DayToken  string // printed token, FixtureLine/MarketLine
	Time      string // HH:MM
	FixtureID string
	HomeText  string // FixtureLine only
	// Segment is everything between the team separator and the odds on a
	// FixtureLine (away team plus any market text), or the market text on a
	// MarketLine.
	Segment string
	Odds    models.OddsTuple

	Reason string // Noise only
}

var (
	pageMarkerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^=+\s*page\s+(\d+)\s*=+$`),
		regexp.MustCompile(`(?i)^-{2,}\s*page\s+(\d+)\s*-{2,}$`),
		regexp.MustCompile(`(?i)^\[\s*page\s+(\d+)\s*\]$`),
	}
	// "2025. augusztus 5." with an optional weekday name after it
	dateHeaderPattern = regexp.MustCompile(`^(\d{4})\.\s*(\p{L}+)\s+(\d{1,2})\.?(?:\s*,?\s*\p{L}+)?$`)
	// optional day token, time, optional fixture id, body
	timedPattern = regexp.MustCompile(`^(?:(\p{L}{1,4})\.?\s+)?(\d{1,2}):(\d{2})(?:\s+(\d{3,6}))?(?:\s+(.*))?$`)
	// fixture id, market text
	idPattern = regexp.MustCompile(`^(\d{3,6})(?:\s+(.*))?$`)
)

// TeamSeparator splits home and away team on a fixture line.
const TeamSeparator = " - "

// Classifier applies the line rules in fixed priority order. Immutable.
type Classifier struct {
	leaguePrefixes []string // folded
	numberedTeams  map[string]bool
}

// NewClassifier builds a classifier recognizing league headers that start
// with one of the given sport prefixes. Numbers in numberedTeams are kept as
// part of the home team instead of being read as a fixture id.
func NewClassifier(leaguePrefixes, numberedTeams []string) *Classifier {
	c := &Classifier{numberedTeams: make(map[string]bool)}
	for _, p := range leaguePrefixes {
		if f := textnorm.Unaccent(strings.TrimSpace(p)); f != "" {
			c.leaguePrefixes = append(c.leaguePrefixes, f)
		}
	}
	for _, n := range numberedTeams {
		if n = strings.TrimSpace(n); n != "" {
			c.numberedTeams[n] = true
		}
	}
	return c
}

// Classify tags one line. Rules, first match wins: page marker, date header,
// league header, fixture line, market line; anything else is Noise.
func (c *Classifier) Classify(line models.RawLine) Classified {
	if _, _, rest, ok := StripTag(line.Text); ok {
		line.Text = rest
	}
	text := strings.TrimSpace(line.Text)
	out := Classified{Line: line}
	if text == "" {
		return noise(out, ReasonEmpty)
	}

	if page, ok := matchPageMarker(text); ok {
		out.Kind = PageMarker
		out.Page = page
		return out
	}

	if m := dateHeaderPattern.FindStringSubmatch(text); m != nil {
		d, ok := parseHeaderDate(m[1], m[2], m[3])
		if !ok {
			return noise(out, ReasonInvalidDate)
		}
		out.Kind = DateHeader
		out.Date = d
		return out
	}

	tail := odds.Parse(text)

	if !tail.OK() {
		if league, ok := c.matchLeague(text); ok {
			out.Kind = LeagueHeader
			out.League = league
			return out
		}
	}

	head := strings.TrimSpace(text[:tail.Start])

	if m := timedPattern.FindStringSubmatch(head); m != nil {
		if m[1] != "" {
			if _, ok := enums.ParseDayToken(m[1]); !ok {
				return noise(out, ReasonUnknownDayToken)
			}
		}
		clock, ok := formatClock(m[2], m[3])
		if !ok {
			return noise(out, ReasonInvalidTime)
		}
		if !tail.OK() {
			return noise(out, ReasonOddsCountMismatch)
		}
		out.DayToken = m[1]
		out.Time = clock
		out.FixtureID = m[4]
		out.Odds = tail.Values

		body := strings.TrimSpace(m[5])
		if c.numberedTeams[out.FixtureID] && strings.Contains(body, TeamSeparator) {
			body = out.FixtureID + " " + body
			out.FixtureID = ""
		}
		if home, segment, ok := splitTeams(body); ok {
			out.Kind = FixtureLine
			out.HomeText = home
			out.Segment = segment
			return out
		}
		// day/time repeated without a fresh team pair
		out.Kind = MarketLine
		out.Segment = body
		return out
	}

	if m := idPattern.FindStringSubmatch(head); m != nil {
		if !tail.OK() {
			return noise(out, ReasonOddsCountMismatch)
		}
		out.Kind = MarketLine
		out.FixtureID = m[1]
		out.Segment = strings.TrimSpace(m[2])
		out.Odds = tail.Values
		return out
	}

	return noise(out, ReasonUnrecognized)
}

func noise(c Classified, reason string) Classified {
	c.Kind = Noise
	c.Reason = reason
	return c
}

func matchPageMarker(text string) (int, bool) {
	for _, p := range pageMarkerPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}

func parseHeaderDate(year, month, day string) (models.Date, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return models.Date{}, false
	}
	mon, ok := enums.ParseMonth(month)
	if !ok {
		return models.Date{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 {
		return models.Date{}, false
	}
	date := models.NewDate(y, mon, d)
	// NewDate normalizes "február 30." into March; reject that
	if date.Month != mon || date.Day != d {
		return models.Date{}, false
	}
	return date, true
}

func formatClock(hh, mm string) (string, bool) {
	h, err := strconv.Atoi(hh)
	if err != nil || h > 23 {
		return "", false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%s", h, mm), true
}

// splitTeams splits a fixture body on the first team separator.
func splitTeams(body string) (home, rest string, ok bool) {
	i := strings.Index(body, TeamSeparator)
	if i < 0 {
		return "", "", false
	}
	home = strings.TrimSpace(body[:i])
	rest = strings.TrimSpace(body[i+len(TeamSeparator):])
	if home == "" || rest == "" {
		return "", "", false
	}
	return home, rest, true
}

// matchLeague recognizes "<sport prefix>, <league>" style headers.
func (c *Classifier) matchLeague(text string) (string, bool) {
	folded, offsets := textnorm.UnaccentWithOffsets(text)
	for _, p := range c.leaguePrefixes {
		if !strings.HasPrefix(folded, p) {
			continue
		}
		rest := text[offsets[len(p)]:]
		trimmed := strings.TrimLeft(rest, " ")
		for _, sep := range []string{",", ":", "-"} {
			if strings.HasPrefix(trimmed, sep) {
				league := strings.TrimSpace(trimmed[len(sep):])
				if league == "" {
					return "", false
				}
				return league, true
			}
		}
	}
	return "", false
}
