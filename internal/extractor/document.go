// Package extractor drives the line pipeline over whole documents: a fold over
// the lines of one document produces fixtures and markets, Run extracts many
// documents in parallel and merges them sequentially by recency.
package extractor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Vodeneev/linesheet/internal/extractor/dates"
	"github.com/Vodeneev/linesheet/internal/extractor/lines"
	"github.com/Vodeneev/linesheet/internal/extractor/markets"
	"github.com/Vodeneev/linesheet/internal/extractor/merge"
	"github.com/Vodeneev/linesheet/internal/extractor/teams"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
	"github.com/Vodeneev/linesheet/internal/pkg/reference"
)

// ErrEmptyExtraction is returned when a whole document yields no fixture.
// Upstream tooling uses it to flag a broken source document.
var ErrEmptyExtraction = errors.New("document yielded no fixtures")

// Noise reasons assigned by the document pass on top of the line classifier's.
const (
	ReasonMissingAwayTeam = "missing_away_team"
	ReasonOrphanMarket    = "orphan_market"
)

// SourceDocument is one text dump ready for extraction.
type SourceDocument struct {
	Name  string
	Rank  int // recency, higher is later
	Lines []models.RawLine
}

// Stats counts what happened to the lines of one document.
type Stats struct {
	Lines        int
	Fixtures     int
	Markets      int
	Noise        int
	NoiseReasons map[string]int
	Deferred     int // lines held back by a day token without a date anchor
	Dropped      int // deferred lines never anchored
	Regressions  int // day tokens pushed forward a week
}

func (s *Stats) noise(reason string) {
	s.Noise++
	if s.NoiseReasons == nil {
		s.NoiseReasons = make(map[string]int)
	}
	s.NoiseReasons[reason]++
}

// Document is the extraction result for one source document.
type Document struct {
	Name     string
	Rank     int
	Fixtures []models.Fixture
	Records  []merge.Record
	Stats    Stats
}

// MergeInput returns the records in the shape the merger consumes.
func (d *Document) MergeInput() merge.Document {
	return merge.Document{Name: d.Name, Rank: d.Rank, Records: d.Records}
}

// Extractor holds the immutable pipeline stages. Safe for concurrent use.
type Extractor struct {
	lines   *lines.Classifier
	markets *markets.Classifier
	teams   *teams.Normalizer
}

// New builds an extractor from the reference tables.
func New(ref *reference.Data) *Extractor {
	return &Extractor{
		lines:   lines.NewClassifier(ref.Vocabulary.LeaguePrefixes, ref.Vocabulary.NumberedTeams),
		markets: markets.NewClassifier(ref.Vocabulary),
		teams:   teams.NewNormalizer(ref.Corrections),
	}
}

// Normalizer exposes the team normalizer used for signatures.
func (e *Extractor) Normalizer() *teams.Normalizer {
	return e.teams
}

// ExtractDocument folds the lines of src into fixtures and attributed
// markets. The returned document is valid even when the error is
// ErrEmptyExtraction.
func (e *Extractor) ExtractDocument(src SourceDocument) (*Document, error) {
	p := &pass{
		e:     e,
		doc:   &Document{Name: src.Name, Rank: src.Rank},
		state: models.ParserState{CurrentPage: -1},

		lastOnPage: -1,
	}
	for _, line := range src.Lines {
		p.doc.Stats.Lines++
		p.step(e.lines.Classify(line))
	}
	p.finish()

	if len(p.doc.Fixtures) == 0 {
		return p.doc, fmt.Errorf("%w: %s", ErrEmptyExtraction, src.Name)
	}
	return p.doc, nil
}

// pass is the fold state of one document. The parser state itself is a value
// replaced on every transition; the attribution maps are document bookkeeping.
type pass struct {
	e     *Extractor
	doc   *Document
	state models.ParserState

	deferring bool
	deferred  []lines.Classified

	pageFixtures map[string]int // fixture id -> index into doc.Fixtures, current page
	lastOnPage   int            // -1 when the page has no fixture yet
	docFixtures  map[string]int // fixture id -> latest index, whole document
}

func (p *pass) step(c lines.Classified) {
	if c.Kind == lines.DateHeader {
		p.header(c)
		return
	}
	if p.deferring {
		p.deferred = append(p.deferred, c)
		if c.Kind == lines.FixtureLine || c.Kind == lines.MarketLine {
			p.doc.Stats.Deferred++
		}
		return
	}
	p.apply(c)
}

func (p *pass) apply(c lines.Classified) {
	if c.Kind == lines.PageMarker {
		p.enterPage(c.Page)
		return
	}
	if c.Line.Page != p.state.CurrentPage {
		p.enterPage(c.Line.Page)
	}

	switch c.Kind {
	case lines.LeagueHeader:
		p.state = p.state.WithLeague(c.League)
	case lines.FixtureLine:
		if p.resolveDay(c) {
			p.fixture(c)
		}
	case lines.MarketLine:
		if p.resolveDay(c) {
			p.market(c)
		}
	default:
		p.doc.Stats.noise(c.Reason)
	}
}

func (p *pass) enterPage(page int) {
	if page == p.state.CurrentPage {
		return
	}
	p.state = p.state.WithPage(page)
	p.pageFixtures = make(map[string]int)
	p.lastOnPage = -1
}

// header anchors the date and replays lines deferred since the first
// unanchored day token. Replayed lines resolve relative to the header; lines
// after the header start from the header date again.
func (p *pass) header(c lines.Classified) {
	anchored := dates.ApplyHeader(p.state, c.Date)
	p.state = anchored

	queue := p.deferred
	p.deferred = nil
	p.deferring = false
	if len(queue) == 0 {
		return
	}
	slog.Debug("Replaying deferred lines",
		"document", p.doc.Name, "lines", len(queue), "date", c.Date.String())
	for _, q := range queue {
		p.apply(q)
	}
	p.state.CurrentDate = anchored.CurrentDate
	p.state.CurrentDayToken = anchored.CurrentDayToken
}

// resolveDay advances the parser state for a printed day token. It reports
// false when the line was deferred or rejected.
func (p *pass) resolveDay(c lines.Classified) bool {
	if c.DayToken == "" {
		return true
	}
	res, err := dates.Resolve(p.state, c.DayToken)
	switch {
	case errors.Is(err, dates.ErrAmbiguousDayToken):
		p.deferring = true
		p.deferred = append(p.deferred, c)
		p.doc.Stats.Deferred++
		return false
	case err != nil:
		p.doc.Stats.noise(lines.ReasonUnknownDayToken)
		return false
	}
	if res.Regression {
		p.doc.Stats.Regressions++
		slog.Warn("Day token would move date backwards, advanced a week",
			"document", p.doc.Name,
			"page", c.Line.Page,
			"line", c.Line.LineIndex,
			"token", c.DayToken,
			"rejected", res.Rejected.String(),
			"date", res.Date.String())
	}
	p.state = res.State
	return true
}

func (p *pass) currentDate() *models.Date {
	if p.state.CurrentDate == nil {
		return nil
	}
	d := *p.state.CurrentDate
	return &d
}

func (p *pass) fixture(c lines.Classified) {
	cl := p.e.markets.Classify(c.Segment, len(c.Odds))
	if cl.Remainder == "" {
		p.doc.Stats.noise(ReasonMissingAwayTeam)
		return
	}

	date := p.currentDate()
	f := models.Fixture{
		League:       p.state.CurrentLeague,
		Date:         date,
		Time:         c.Time,
		HomeTeamRaw:  c.HomeText,
		AwayTeamRaw:  cl.Remainder,
		HomeTeamNorm: p.e.teams.Normalize(c.HomeText),
		AwayTeamNorm: p.e.teams.Normalize(cl.Remainder),
		RawLine:      c.Line.Text,
		Page:         c.Line.Page,
		FixtureID:    c.FixtureID,
		Source:       p.doc.Name,
	}
	f.Signature = merge.Signature(p.e.teams, date, f.Time, f.League, f.HomeTeamRaw, f.AwayTeamRaw)
	f.MainMarket = p.newMarket(f.Signature, cl, c)

	idx := len(p.doc.Fixtures)
	p.doc.Fixtures = append(p.doc.Fixtures, f)
	p.doc.Records = append(p.doc.Records, merge.Record{Fixture: f, Market: f.MainMarket, FixtureLine: true})
	p.doc.Stats.Fixtures++

	p.lastOnPage = idx
	if f.FixtureID != "" {
		p.pageFixtures[f.FixtureID] = idx
		if p.docFixtures == nil {
			p.docFixtures = make(map[string]int)
		}
		p.docFixtures[f.FixtureID] = idx
	}
}

func (p *pass) market(c lines.Classified) {
	idx, ok := p.owner(c.FixtureID)
	if !ok {
		p.doc.Stats.noise(ReasonOrphanMarket)
		slog.Debug("Market line without fixture",
			"document", p.doc.Name, "page", c.Line.Page, "line", c.Line.LineIndex, "text", c.Line.Text)
		return
	}
	f := p.doc.Fixtures[idx]
	cl := p.e.markets.ClassifyMarketText(c.Segment, len(c.Odds))
	m := p.newMarket(f.Signature, cl, c)
	p.doc.Records = append(p.doc.Records, merge.Record{Fixture: f, Market: m})
	p.doc.Stats.Markets++
}

// owner attributes a market line: fixture id on the current page, then the
// same id anywhere earlier in the document, then the last fixture on the page.
func (p *pass) owner(id string) (int, bool) {
	if id != "" {
		if idx, ok := p.pageFixtures[id]; ok {
			return idx, true
		}
		if idx, ok := p.docFixtures[id]; ok {
			return idx, true
		}
	}
	if p.lastOnPage >= 0 {
		return p.lastOnPage, true
	}
	return 0, false
}

func (p *pass) newMarket(signature string, cl markets.Classification, c lines.Classified) models.Market {
	return models.Market{
		FixtureSignature: signature,
		Type:             cl.Type,
		Description:      cl.Description,
		Odds:             c.Odds,
		Priority:         cl.Priority,
		SourceDocument:   p.doc.Name,
		SourceRank:       p.doc.Rank,
		RawLine:          c.Line.Text,
	}
}

// finish settles lines still waiting for a date anchor. Lines with a day token
// are dropped, together with market lines that belong to a dropped fixture.
// Everything else is applied undated.
func (p *pass) finish() {
	if !p.deferring {
		return
	}
	queue := p.deferred
	p.deferred = nil
	p.deferring = false

	dropped := 0
	ownerDropped := false
	for _, c := range queue {
		switch {
		case (c.Kind == lines.FixtureLine || c.Kind == lines.MarketLine) && c.DayToken != "":
			dropped++
			if c.Kind == lines.FixtureLine {
				ownerDropped = true
			}
		case c.Kind == lines.MarketLine && ownerDropped && !p.knownFixture(c.FixtureID):
			dropped++
		default:
			if c.Kind == lines.FixtureLine {
				ownerDropped = false
			}
			p.apply(c)
		}
	}
	p.doc.Stats.Dropped += dropped
	if dropped > 0 {
		slog.Warn("Dropping lines with day tokens but no date header",
			"document", p.doc.Name, "lines", dropped)
	}
}

func (p *pass) knownFixture(id string) bool {
	if id == "" {
		return false
	}
	_, ok := p.docFixtures[id]
	return ok
}
