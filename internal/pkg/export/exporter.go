package export

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Vodeneev/linesheet/internal/extractor/merge"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

// FlatExport is the flat extraction file: one entry per parsed fixture line.
type FlatExport struct {
	Matches []FlatMatch `json:"matches"`
}

// FlatMatch is one fixture line as printed, with its main odds.
type FlatMatch struct {
	League   string   `json:"league"`
	Date     *string  `json:"date"`
	Time     string   `json:"time"`
	HomeTeam string   `json:"home_team"`
	AwayTeam string   `json:"away_team"`
	HomeOdds *float64 `json:"home_odds"`
	DrawOdds *float64 `json:"draw_odds"`
	AwayOdds *float64 `json:"away_odds"`
	RawLine  string   `json:"raw_line"`
}

// DayExport is the day bundle file.
type DayExport struct {
	FileInfo FileInfo     `json:"file_info"`
	Games    []GameExport `json:"games"`
}

type FileInfo struct {
	Date         string   `json:"date"`
	TotalGames   int      `json:"total_games"`
	TotalMarkets int      `json:"total_markets"`
	Leagues      []string `json:"leagues"`
}

// GameExport is one merged fixture inside a day bundle.
type GameExport struct {
	League            string             `json:"league"`
	Date              *string            `json:"date"`
	Time              string             `json:"time"`
	HomeTeam          string             `json:"home_team"`
	AwayTeam          string             `json:"away_team"`
	MainMarket        MainMarketExport   `json:"main_market"`
	AdditionalMarkets []AdditionalMarket `json:"additional_markets"`
	TotalMarkets      int                `json:"total_markets"`
}

type MainMarketExport struct {
	HomeOdds   *float64 `json:"home_odds"`
	DrawOdds   *float64 `json:"draw_odds"`
	AwayOdds   *float64 `json:"away_odds"`
	MarketType string   `json:"market_type"`
}

type AdditionalMarket struct {
	MarketType  string     `json:"market_type"`
	Description string     `json:"description"`
	Odds        OddsExport `json:"odds"`
}

// OddsExport keeps every printed value next to the home/draw/away view.
type OddsExport struct {
	HomeOdds *float64  `json:"home_odds"`
	DrawOdds *float64  `json:"draw_odds"`
	AwayOdds *float64  `json:"away_odds"`
	Values   []float64 `json:"values"`
}

// ConflictsExport is the audit file of later documents overriding odds.
type ConflictsExport struct {
	Timestamp string           `json:"timestamp"`
	Conflicts []ConflictExport `json:"conflicts"`
}

type ConflictExport struct {
	Signature        string    `json:"signature"`
	MarketType       string    `json:"market_type"`
	PreviousOdds     []float64 `json:"previous_odds"`
	CurrentOdds      []float64 `json:"current_odds"`
	PreviousDocument string    `json:"previous_document"`
	CurrentDocument  string    `json:"current_document"`
}

// Exporter converts pipeline results into the published JSON shapes.
type Exporter struct {
	now func() time.Time
}

// NewExporter creates a new exporter
func NewExporter() *Exporter {
	return &Exporter{now: time.Now}
}

// ExportFlat converts parsed fixtures to the flat extraction shape.
// Team names stay as printed.
func (e *Exporter) ExportFlat(fixtures []models.Fixture) *FlatExport {
	out := &FlatExport{Matches: make([]FlatMatch, 0, len(fixtures))}
	for _, f := range fixtures {
		home, draw, away := f.MainMarket.Odds.Triple()
		out.Matches = append(out.Matches, FlatMatch{
			League:   f.League,
			Date:     dateString(f.Date),
			Time:     f.Time,
			HomeTeam: f.HomeTeamRaw,
			AwayTeam: f.AwayTeamRaw,
			HomeOdds: home,
			DrawOdds: draw,
			AwayOdds: away,
			RawLine:  f.RawLine,
		})
	}
	return out
}

// ExportDay converts one day bundle.
func (e *Exporter) ExportDay(b models.DayBundle) *DayExport {
	leagues := b.Totals.Leagues
	if leagues == nil {
		leagues = []string{}
	}
	out := &DayExport{
		FileInfo: FileInfo{
			Date:         b.DateKey,
			TotalGames:   b.Totals.Games,
			TotalMarkets: b.Totals.Markets,
			Leagues:      leagues,
		},
		Games: make([]GameExport, 0, len(b.Games)),
	}
	for _, g := range b.Games {
		out.Games = append(out.Games, e.convertGame(g))
	}
	return out
}

func (e *Exporter) convertGame(g models.MergedFixture) GameExport {
	home, draw, away := g.MainMarket.Odds.Triple()
	additional := make([]AdditionalMarket, 0, len(g.AdditionalMarkets))
	for _, m := range g.AdditionalMarkets {
		additional = append(additional, convertMarket(m))
	}
	return GameExport{
		League:   g.League,
		Date:     dateString(g.Date),
		Time:     g.Time,
		HomeTeam: g.HomeTeam,
		AwayTeam: g.AwayTeam,
		MainMarket: MainMarketExport{
			HomeOdds:   home,
			DrawOdds:   draw,
			AwayOdds:   away,
			MarketType: string(g.MainMarket.Type.Kind),
		},
		AdditionalMarkets: additional,
		TotalMarkets:      g.TotalMarkets,
	}
}

func convertMarket(m models.Market) AdditionalMarket {
	home, draw, away := m.Odds.Triple()
	values := append([]float64{}, m.Odds...)
	return AdditionalMarket{
		MarketType:  string(m.Type.Kind),
		Description: m.Description,
		Odds: OddsExport{
			HomeOdds: home,
			DrawOdds: draw,
			AwayOdds: away,
			Values:   values,
		},
	}
}

// ExportConflicts converts the merge audit trail.
func (e *Exporter) ExportConflicts(conflicts []merge.Conflict) *ConflictsExport {
	out := &ConflictsExport{
		Timestamp: e.now().UTC().Format(time.RFC3339),
		Conflicts: make([]ConflictExport, 0, len(conflicts)),
	}
	for _, c := range conflicts {
		out.Conflicts = append(out.Conflicts, ConflictExport{
			Signature:        c.Signature,
			MarketType:       c.MarketType,
			PreviousOdds:     append([]float64{}, c.PreviousOdds...),
			CurrentOdds:      append([]float64{}, c.CurrentOdds...),
			PreviousDocument: c.PreviousDocument,
			CurrentDocument:  c.CurrentDocument,
		})
	}
	return out
}

// ExportToJSON marshals any export shape the way every output file is written.
func (e *Exporter) ExportToJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// PrintSummary logs a summary of the day bundles.
func (e *Exporter) PrintSummary(bundles []models.DayBundle) {
	games, markets := 0, 0
	kinds := make(map[models.MarketKind]int)
	for _, b := range bundles {
		games += b.Totals.Games
		markets += b.Totals.Markets
		for _, g := range b.Games {
			kinds[g.MainMarket.Type.Kind]++
			for _, m := range g.AdditionalMarkets {
				kinds[m.Type.Kind]++
			}
		}
	}
	slog.Info("Export summary", "bundles", len(bundles), "games", games, "markets", markets)
	for kind, count := range kinds {
		slog.Info("Market type", "type", models.GetMarketName(kind), "count", count)
	}
}

func dateString(d *models.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
