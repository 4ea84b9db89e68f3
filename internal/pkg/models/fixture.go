package models

// UndatedKey is the bundle key for fixtures that no DateHeader preceded.
const UndatedKey = "undated"

// Fixture is one parsed FixtureLine.
type Fixture struct {
	League       string
	Date         *Date // nil when undated
	Time         string
	HomeTeamRaw  string
	AwayTeamRaw  string
	HomeTeamNorm string
	AwayTeamNorm string
	MainMarket   Market
	RawLine      string
	Page         int
	FixtureID    string
	Signature    string
	Source       string
}

// MergedFixture is a fixture with every market collected for its signature.
type MergedFixture struct {
	Signature         string
	League            string
	Date              *Date
	Time              string
	HomeTeam          string
	AwayTeam          string
	MainMarket        Market
	AdditionalMarkets []Market
	TotalMarkets      int
}

// DateKey returns the ISO date or UndatedKey.
func (m *MergedFixture) DateKey() string {
	return DateKey(m.Date)
}

// DateKey renders a nullable date as bundle key.
func DateKey(d *Date) string {
	if d == nil {
		return UndatedKey
	}
	return d.String()
}

// BundleTotals summarizes one day bundle.
type BundleTotals struct {
	Games   int
	Markets int
	Leagues []string
}

// DayBundle groups merged fixtures played on one date.
type DayBundle struct {
	DateKey string
	Games   []MergedFixture
	Totals  BundleTotals
}
