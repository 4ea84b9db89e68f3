package models

import (
	"strconv"
	"strings"
)

// MarketKind is the classified type of a betting market.
type MarketKind string

const (
	MarketMain           MarketKind = "main" // 1 / X / 2
	MarketDoubleChance   MarketKind = "double_chance"
	MarketHandicap       MarketKind = "handicap"
	MarketGoalsOverUnder MarketKind = "goals_over_under"
	MarketBothTeamsScore MarketKind = "both_teams_score"
	MarketCorners        MarketKind = "corners"
	MarketCards          MarketKind = "cards"
	MarketHalfTime       MarketKind = "half_time"
	MarketDrawNoBet      MarketKind = "draw_no_bet"
	MarketOther          MarketKind = "other"
)

var knownMarketKinds = map[MarketKind]struct{}{
	MarketMain:           {},
	MarketDoubleChance:   {},
	MarketHandicap:       {},
	MarketGoalsOverUnder: {},
	MarketBothTeamsScore: {},
	MarketCorners:        {},
	MarketCards:          {},
	MarketHalfTime:       {},
	MarketDrawNoBet:      {},
	MarketOther:          {},
}

// ParseMarketKind maps a vocabulary kind name to a MarketKind.
func ParseMarketKind(s string) (MarketKind, bool) {
	k := MarketKind(strings.ToLower(strings.TrimSpace(s)))
	_, ok := knownMarketKinds[k]
	return k, ok
}

// GetMarketName returns a human-readable name for a market kind
func GetMarketName(kind MarketKind) string {
	switch kind {
	case MarketMain:
		return "Match Result"
	case MarketDoubleChance:
		return "Double Chance"
	case MarketHandicap:
		return "Handicap"
	case MarketGoalsOverUnder:
		return "Goals Over/Under"
	case MarketBothTeamsScore:
		return "Both Teams To Score"
	case MarketCorners:
		return "Corners"
	case MarketCards:
		return "Cards"
	case MarketHalfTime:
		return "Half Time"
	case MarketDrawNoBet:
		return "Draw No Bet"
	default:
		return "Other"
	}
}

// MarketType is the tagged classification result. Qualifier is the folded
// description text; for MarketOther it is the only thing telling two
// unclassified markets apart.
type MarketType struct {
	Kind      MarketKind
	Qualifier string
}

// Key identifies "the same market" across documents.
func (t MarketType) Key() string {
	if t.Kind == MarketMain || t.Qualifier == "" {
		return string(t.Kind)
	}
	return string(t.Kind) + "|" + t.Qualifier
}

func (t MarketType) String() string {
	return string(t.Kind)
}

// OddsTuple holds the odds of one market in printed (left-to-right) order.
type OddsTuple []float64

// Key is a canonical rendering used for exact-duplicate detection.
func (o OddsTuple) Key() string {
	parts := make([]string, len(o))
	for i, v := range o {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ";")
}

// Equal reports whether both tuples hold the same values in the same order.
func (o OddsTuple) Equal(other OddsTuple) bool {
	return o.Key() == other.Key()
}

// Triple maps the tuple onto home/draw/away slots: three values fill all
// slots, two values are home and away with no draw. Other lengths yield nils.
func (o OddsTuple) Triple() (home, draw, away *float64) {
	switch len(o) {
	case 3:
		return ptr(o[0]), ptr(o[1]), ptr(o[2])
	case 2:
		return ptr(o[0]), nil, ptr(o[1])
	default:
		return nil, nil, nil
	}
}

func ptr(v float64) *float64 {
	return &v
}

// Market is one priced betting proposition attached to a fixture.
type Market struct {
	FixtureSignature string
	Type             MarketType
	Description      string // verbatim text, never discarded
	Odds             OddsTuple
	Priority         int // vocabulary position, lower wins
	SourceDocument   string
	SourceRank       int // recency of the source document, higher is later
	RawLine          string
}

// DedupKey is the (type, odds) identity of a market.
func (m Market) DedupKey() string {
	return m.Type.Key() + "#" + m.Odds.Key()
}
