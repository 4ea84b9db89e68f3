// Package merge folds the fixtures and markets of one or more documents into
// a single set of merged fixtures keyed by signature.
package merge

import (
	"log/slog"

	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

// Record is one fixture or market line of a document, in document order.
// Market records carry the fixture they were attributed to.
type Record struct {
	Fixture     models.Fixture
	Market      models.Market
	FixtureLine bool
}

// Document is the extraction output of one source document.
type Document struct {
	Name    string
	Rank    int // higher is more recent
	Records []Record
}

// Conflict is the audit record of a later document overriding the odds of a
// market type an earlier document already priced.
type Conflict struct {
	Signature        string
	MarketType       string
	PreviousOdds     models.OddsTuple
	CurrentOdds      models.OddsTuple
	PreviousDocument string
	CurrentDocument  string
}

// Stats counts what the merger absorbed instead of appending.
type Stats struct {
	Fixtures            int
	Duplicates          int // exact (type, odds) repeats
	DuplicateSignatures int // fixture lines for an already known signature
	Replaced            int // older markets superseded by a later document
	Promoted            int
}

// Merger holds the signature index of one merge run. Not safe for concurrent
// use: feed documents from one goroutine, oldest first.
type Merger struct {
	index     map[string]*models.MergedFixture
	order     []string
	conflicts []Conflict
	stats     Stats
}

func NewMerger() *Merger {
	return &Merger{index: make(map[string]*models.MergedFixture)}
}

// AddDocument merges every record of doc in document order.
func (m *Merger) AddDocument(doc Document) {
	for _, rec := range doc.Records {
		m.add(rec)
	}
}

func (m *Merger) add(rec Record) {
	sig := rec.Market.FixtureSignature
	merged, ok := m.index[sig]
	if !ok {
		f := rec.Fixture
		m.index[sig] = &models.MergedFixture{
			Signature:    sig,
			League:       f.League,
			Date:         f.Date,
			Time:         f.Time,
			HomeTeam:     f.HomeTeamNorm,
			AwayTeam:     f.AwayTeamNorm,
			MainMarket:   rec.Market,
			TotalMarkets: 1,
		}
		m.order = append(m.order, sig)
		m.stats.Fixtures++
		return
	}

	if rec.FixtureLine {
		m.stats.DuplicateSignatures++
	}
	m.addMarket(merged, rec.Market)
	merged.TotalMarkets = 1 + len(merged.AdditionalMarkets)
}

func (m *Merger) addMarket(f *models.MergedFixture, mk models.Market) {
	key := mk.DedupKey()
	if isDuplicate(f, key) {
		m.stats.Duplicates++
		m.dropOlder(f, mk, key)
		return
	}

	if m.replaceOlder(f, mk) {
		return
	}

	if mk.Type.Kind == models.MarketMain && f.MainMarket.Type.Kind != models.MarketMain {
		f.AdditionalMarkets = append(f.AdditionalMarkets, f.MainMarket)
		f.MainMarket = mk
		m.stats.Promoted++
		return
	}

	f.AdditionalMarkets = append(f.AdditionalMarkets, mk)
}

func isDuplicate(f *models.MergedFixture, key string) bool {
	if f.MainMarket.DedupKey() == key {
		return true
	}
	for _, existing := range f.AdditionalMarkets {
		if existing.DedupKey() == key {
			return true
		}
	}
	return false
}

// supersedes reports whether mk, from a later or equally ranked document,
// takes the place of existing.
func supersedes(mk, existing models.Market) bool {
	return existing.Type.Key() == mk.Type.Key() &&
		existing.SourceDocument != mk.SourceDocument &&
		existing.SourceRank <= mk.SourceRank
}

// replaceOlder puts mk in place of the first market it supersedes and drops
// every other superseded market, recording a conflict for each.
func (m *Merger) replaceOlder(f *models.MergedFixture, mk models.Market) bool {
	placed := false
	if supersedes(mk, f.MainMarket) {
		m.conflict(f.Signature, f.MainMarket, mk)
		m.stats.Replaced++
		f.MainMarket = mk
		placed = true
	}

	kept := f.AdditionalMarkets[:0]
	for _, existing := range f.AdditionalMarkets {
		if !supersedes(mk, existing) {
			kept = append(kept, existing)
			continue
		}
		m.conflict(f.Signature, existing, mk)
		m.stats.Replaced++
		if !placed {
			kept = append(kept, mk)
			placed = true
		}
	}
	f.AdditionalMarkets = kept
	return placed
}

// dropOlder removes the additional markets mk supersedes whose odds differ
// from it. The entry equal to mk stays where it is.
func (m *Merger) dropOlder(f *models.MergedFixture, mk models.Market, key string) {
	kept := f.AdditionalMarkets[:0]
	for _, existing := range f.AdditionalMarkets {
		if existing.DedupKey() != key && supersedes(mk, existing) {
			m.conflict(f.Signature, existing, mk)
			m.stats.Replaced++
			continue
		}
		kept = append(kept, existing)
	}
	f.AdditionalMarkets = kept
}

func (m *Merger) conflict(signature string, previous, current models.Market) {
	c := Conflict{
		Signature:        signature,
		MarketType:       current.Type.Key(),
		PreviousOdds:     previous.Odds,
		CurrentOdds:      current.Odds,
		PreviousDocument: previous.SourceDocument,
		CurrentDocument:  current.SourceDocument,
	}
	m.conflicts = append(m.conflicts, c)
	slog.Warn("Market odds conflict, later document wins",
		"signature", signature,
		"market_type", c.MarketType,
		"previous_odds", previous.Odds.Key(),
		"current_odds", current.Odds.Key(),
		"previous_document", previous.SourceDocument,
		"current_document", current.SourceDocument)
}

// Fixtures returns the merged fixtures in first-seen order.
func (m *Merger) Fixtures() []models.MergedFixture {
	out := make([]models.MergedFixture, 0, len(m.order))
	for _, sig := range m.order {
		f := *m.index[sig]
		f.AdditionalMarkets = append([]models.Market(nil), f.AdditionalMarkets...)
		out = append(out, f)
	}
	return out
}

// Conflicts returns the odds conflicts in the order they were resolved.
func (m *Merger) Conflicts() []Conflict {
	return append([]Conflict(nil), m.conflicts...)
}

func (m *Merger) Stats() Stats {
	return m.stats
}
