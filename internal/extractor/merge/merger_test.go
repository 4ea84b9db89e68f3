package merge

import (
	"testing"

	"github.com/Vodeneev/linesheet/internal/extractor/teams"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

var testDate = models.NewDate(2025, 8, 5)

func testFixture(doc string) models.Fixture {
	d := testDate
	n := teams.NewNormalizer(nil)
	return models.Fixture{
		League:       "Spanyol La Liga",
		Date:         &d,
		Time:         "20:00",
		HomeTeamRaw:  "Real Madrid",
		AwayTeamRaw:  "Barcelona",
		HomeTeamNorm: "real madrid",
		AwayTeamNorm: "barcelona",
		Signature:    Signature(n, &d, "20:00", "Spanyol La Liga", "Real Madrid", "Barcelona"),
		Source:       doc,
	}
}

func market(f models.Fixture, kind models.MarketKind, qualifier string, rank int, odds ...float64) models.Market {
	return models.Market{
		FixtureSignature: f.Signature,
		Type:             models.MarketType{Kind: kind, Qualifier: qualifier},
		Odds:             odds,
		SourceDocument:   f.Source,
		SourceRank:       rank,
	}
}

func fixtureRecord(f models.Fixture, m models.Market) Record {
	f.MainMarket = m
	return Record{Fixture: f, Market: m, FixtureLine: true}
}

func marketRecord(f models.Fixture, m models.Market) Record {
	return Record{Fixture: f, Market: m}
}

func TestSignatureIgnoresRawSpelling(t *testing.T) {
	n := teams.NewNormalizer(map[string]string{"Rea1 Madrid": "Real Madrid"})
	d := testDate
	a := Signature(n, &d, "20:00", "Spanyol La Liga", "Real Madrid", "Barcelona")
	b := Signature(n, &d, "20:00", "SPANYOL  LA LIGA", "Rea1 Madrid", "Barcelóna")
	if a != b {
		t.Errorf("signatures differ:\n%s\n%s", a, b)
	}
	if want := "2025-08-05|20:00|spanyol la liga|real madrid|barcelona"; a != want {
		t.Errorf("Signature = %q, want %q", a, want)
	}
	if u := Signature(n, nil, "20:00", "x", "a", "b"); u != "undated|20:00|x|a|b" {
		t.Errorf("undated signature = %q", u)
	}
}

func TestMergeCompleteness(t *testing.T) {
	f1 := testFixture("d1")
	d1 := Document{Name: "d1", Rank: 1, Records: []Record{
		fixtureRecord(f1, market(f1, models.MarketMain, "", 1, 2.5, 3.2, 2.8)),
		marketRecord(f1, market(f1, models.MarketDoubleChance, "ketesely", 1, 1.5, 2.8)),
		marketRecord(f1, market(f1, models.MarketGoalsOverUnder, "golszam 2 5", 1, 1.9, 1.85)),
		marketRecord(f1, market(f1, models.MarketBothTeamsScore, "mindket csapat szerez golt", 1, 1.7, 2.0)),
		marketRecord(f1, market(f1, models.MarketHandicap, "hendikep 1", 1, 3.1, 3.4, 2.0)),
	}}
	f2 := testFixture("d2")
	d2 := Document{Name: "d2", Rank: 2, Records: []Record{
		fixtureRecord(f2, market(f2, models.MarketMain, "", 2, 2.5, 3.2, 2.8)),
		marketRecord(f2, market(f2, models.MarketCorners, "szoglet 9 5", 2, 1.8, 1.9)),
	}}

	m := NewMerger()
	m.AddDocument(d1)
	m.AddDocument(d2)

	got := m.Fixtures()
	if len(got) != 1 {
		t.Fatalf("got %d fixtures, want 1", len(got))
	}
	if got[0].TotalMarkets < 5 {
		t.Errorf("TotalMarkets = %d, later smaller document dropped markets", got[0].TotalMarkets)
	}
	if got[0].TotalMarkets != 6 {
		t.Errorf("TotalMarkets = %d, want 6", got[0].TotalMarkets)
	}
	if st := m.Stats(); st.Duplicates != 1 || st.DuplicateSignatures != 1 {
		t.Errorf("stats = %+v", st)
	}
	if len(m.Conflicts()) != 0 {
		t.Errorf("unexpected conflicts: %+v", m.Conflicts())
	}
}

func TestMergeLaterDocumentWins(t *testing.T) {
	f1 := testFixture("d1")
	f2 := testFixture("d2")

	m := NewMerger()
	m.AddDocument(Document{Name: "d1", Rank: 1, Records: []Record{
		fixtureRecord(f1, market(f1, models.MarketMain, "", 1, 2.5, 3.2, 2.8)),
		marketRecord(f1, market(f1, models.MarketDoubleChance, "ketesely", 1, 1.5, 2.8)),
	}})
	m.AddDocument(Document{Name: "d2", Rank: 2, Records: []Record{
		fixtureRecord(f2, market(f2, models.MarketMain, "", 2, 2.4, 3.3, 2.9)),
		marketRecord(f2, market(f2, models.MarketDoubleChance, "ketesely", 2, 1.45, 2.9)),
	}})

	got := m.Fixtures()[0]
	if !got.MainMarket.Odds.Equal(models.OddsTuple{2.4, 3.3, 2.9}) {
		t.Errorf("main odds = %v, want later document's", got.MainMarket.Odds)
	}
	if got.TotalMarkets != 2 {
		t.Errorf("TotalMarkets = %d, want 2", got.TotalMarkets)
	}
	if got.AdditionalMarkets[0].SourceDocument != "d2" {
		t.Errorf("double chance source = %q", got.AdditionalMarkets[0].SourceDocument)
	}

	conflicts := m.Conflicts()
	if len(conflicts) != 2 {
		t.Fatalf("got %d conflicts, want 2", len(conflicts))
	}
	c := conflicts[0]
	if c.MarketType != "main" || c.PreviousDocument != "d1" || c.CurrentDocument != "d2" {
		t.Errorf("conflict = %+v", c)
	}
	if !c.PreviousOdds.Equal(models.OddsTuple{2.5, 3.2, 2.8}) {
		t.Errorf("previous odds = %v", c.PreviousOdds)
	}
}

func TestMergeSameDocumentAppends(t *testing.T) {
	f := testFixture("d1")
	m := NewMerger()
	m.AddDocument(Document{Name: "d1", Rank: 1, Records: []Record{
		fixtureRecord(f, market(f, models.MarketMain, "", 1, 2.5, 3.2, 2.8)),
		marketRecord(f, market(f, models.MarketDoubleChance, "ketesely", 1, 1.5, 2.8)),
		marketRecord(f, market(f, models.MarketDoubleChance, "ketesely", 1, 1.6, 2.7)),
	}})
	got := m.Fixtures()[0]
	if got.TotalMarkets != 3 {
		t.Errorf("TotalMarkets = %d, want 3", got.TotalMarkets)
	}
	if len(m.Conflicts()) != 0 {
		t.Errorf("same-document entries produced conflicts")
	}
}

func TestMergeDedupRepeatedMarketLine(t *testing.T) {
	f := testFixture("d1")
	dc := market(f, models.MarketDoubleChance, "ketesely", 1, 1.5, 2.8)
	m := NewMerger()
	m.AddDocument(Document{Name: "d1", Rank: 1, Records: []Record{
		fixtureRecord(f, market(f, models.MarketMain, "", 1, 2.5, 3.2, 2.8)),
		marketRecord(f, dc),
		marketRecord(f, dc),
	}})
	got := m.Fixtures()[0]
	if len(got.AdditionalMarkets) != 1 {
		t.Errorf("additional markets = %d, want 1", len(got.AdditionalMarkets))
	}
	if m.Stats().Duplicates != 1 {
		t.Errorf("duplicates = %d", m.Stats().Duplicates)
	}
}

func TestMergePromotesMainMarket(t *testing.T) {
	f := testFixture("d1")
	m := NewMerger()
	m.AddDocument(Document{Name: "d1", Rank: 1, Records: []Record{
		fixtureRecord(f, market(f, models.MarketDoubleChance, "ketesely", 1, 1.5, 2.8)),
		marketRecord(f, market(f, models.MarketMain, "", 1, 2.5, 3.2, 2.8)),
	}})
	got := m.Fixtures()[0]
	if got.MainMarket.Type.Kind != models.MarketMain {
		t.Errorf("main market kind = %s", got.MainMarket.Type.Kind)
	}
	if len(got.AdditionalMarkets) != 1 || got.AdditionalMarkets[0].Type.Kind != models.MarketDoubleChance {
		t.Errorf("demoted market lost: %+v", got.AdditionalMarkets)
	}
}

func TestFixturesKeepsFirstSeenOrder(t *testing.T) {
	a := testFixture("d1")
	b := testFixture("d1")
	b.AwayTeamNorm = "sevilla"
	b.Signature = Signature(nil, b.Date, b.Time, b.League, "Real Madrid", "Sevilla")

	m := NewMerger()
	m.AddDocument(Document{Name: "d1", Rank: 1, Records: []Record{
		fixtureRecord(b, market(b, models.MarketMain, "", 1, 1.5, 4.0, 6.0)),
		fixtureRecord(a, market(a, models.MarketMain, "", 1, 2.5, 3.2, 2.8)),
	}})
	got := m.Fixtures()
	if len(got) != 2 || got[0].AwayTeam != "sevilla" || got[1].AwayTeam != "barcelona" {
		t.Errorf("order = %+v", got)
	}
}

func TestMergeLaterDocumentSupersedesRepeatedEntries(t *testing.T) {
	f1 := testFixture("d1")
	f2 := testFixture("d2")

	m := NewMerger()
	m.AddDocument(Document{Name: "d1", Rank: 1, Records: []Record{
		fixtureRecord(f1, market(f1, models.MarketMain, "", 1, 2.5, 3.2, 2.8)),
		marketRecord(f1, market(f1, models.MarketDoubleChance, "ketesely", 1, 1.5, 2.8)),
		marketRecord(f1, market(f1, models.MarketDoubleChance, "ketesely", 1, 1.6, 2.7)),
	}})
	m.AddDocument(Document{Name: "d2", Rank: 2, Records: []Record{
		marketRecord(f2, market(f2, models.MarketDoubleChance, "ketesely", 2, 1.55, 2.75)),
	}})

	got := m.Fixtures()[0]
	if len(got.AdditionalMarkets) != 1 {
		t.Fatalf("additional markets = %+v, want only the later double chance", got.AdditionalMarkets)
	}
	dc := got.AdditionalMarkets[0]
	if dc.SourceDocument != "d2" || !dc.Odds.Equal(models.OddsTuple{1.55, 2.75}) {
		t.Errorf("double chance = %v from %q, want [1.55 2.75] from d2", dc.Odds, dc.SourceDocument)
	}
	if got.TotalMarkets != 2 {
		t.Errorf("TotalMarkets = %d, want 2", got.TotalMarkets)
	}
	if n := len(m.Conflicts()); n != 2 {
		t.Errorf("got %d conflicts, want 2", n)
	}
	if m.Stats().Replaced != 2 {
		t.Errorf("replaced = %d, want 2", m.Stats().Replaced)
	}
}

func TestMergeRepeatedValueDropsOtherStaleEntries(t *testing.T) {
	f1 := testFixture("d1")
	f2 := testFixture("d2")

	m := NewMerger()
	m.AddDocument(Document{Name: "d1", Rank: 1, Records: []Record{
		fixtureRecord(f1, market(f1, models.MarketMain, "", 1, 2.5, 3.2, 2.8)),
		marketRecord(f1, market(f1, models.MarketDoubleChance, "ketesely", 1, 1.5, 2.8)),
		marketRecord(f1, market(f1, models.MarketDoubleChance, "ketesely", 1, 1.6, 2.7)),
	}})
	m.AddDocument(Document{Name: "d2", Rank: 2, Records: []Record{
		marketRecord(f2, market(f2, models.MarketDoubleChance, "ketesely", 2, 1.6, 2.7)),
	}})

	got := m.Fixtures()[0]
	if len(got.AdditionalMarkets) != 1 || !got.AdditionalMarkets[0].Odds.Equal(models.OddsTuple{1.6, 2.7}) {
		t.Errorf("additional markets = %+v, want only [1.6 2.7]", got.AdditionalMarkets)
	}
	st := m.Stats()
	if st.Duplicates != 1 || st.Replaced != 1 {
		t.Errorf("stats = %+v", st)
	}
	if n := len(m.Conflicts()); n != 1 {
		t.Errorf("got %d conflicts, want 1", n)
	}
}
