package validation

import (
	"fmt"
	"regexp"

	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

// Printed odds outside this range are OCR damage, not prices.
const (
	MinOdd = 1.01
	MaxOdd = 99.999
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Validator checks merged fixtures for values the extraction should never
// produce. Findings are reported, the fixture itself is kept.
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateFixture validates one merged fixture and its markets.
func (v *Validator) ValidateFixture(f *models.MergedFixture) error {
	if f == nil {
		return fmt.Errorf("fixture cannot be nil")
	}
	if f.Signature == "" {
		return fmt.Errorf("signature cannot be empty")
	}
	if f.HomeTeam == "" {
		return fmt.Errorf("home team cannot be empty")
	}
	if f.AwayTeam == "" {
		return fmt.Errorf("away team cannot be empty")
	}
	if f.HomeTeam == f.AwayTeam {
		return fmt.Errorf("home and away team are the same: %s", f.HomeTeam)
	}
	if f.Time != "" && !clockPattern.MatchString(f.Time) {
		return fmt.Errorf("invalid kick-off time: %s", f.Time)
	}
	if f.TotalMarkets != 1+len(f.AdditionalMarkets) {
		return fmt.Errorf("total markets %d does not match %d additional markets", f.TotalMarkets, len(f.AdditionalMarkets))
	}

	if err := v.ValidateMarket(&f.MainMarket); err != nil {
		return fmt.Errorf("main market: %w", err)
	}
	seen := map[string]struct{}{f.MainMarket.DedupKey(): {}}
	for i := range f.AdditionalMarkets {
		m := &f.AdditionalMarkets[i]
		if err := v.ValidateMarket(m); err != nil {
			return fmt.Errorf("market %d: %w", i, err)
		}
		key := m.DedupKey()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("market %d duplicates %s", i, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// ValidateMarket validates market data
func (v *Validator) ValidateMarket(m *models.Market) error {
	if m == nil {
		return fmt.Errorf("market cannot be nil")
	}
	if _, ok := models.ParseMarketKind(string(m.Type.Kind)); !ok {
		return fmt.Errorf("unknown market kind: %q", m.Type.Kind)
	}
	if len(m.Odds) < 2 {
		return fmt.Errorf("market needs at least 2 odds, got %d", len(m.Odds))
	}
	if m.Type.Kind == models.MarketMain && len(m.Odds) != 3 {
		return fmt.Errorf("main market needs 3 odds, got %d", len(m.Odds))
	}
	for _, odd := range m.Odds {
		if !v.isValidOdd(odd) {
			return fmt.Errorf("odds out of range: %v", odd)
		}
	}
	return nil
}

func (v *Validator) isValidOdd(odd float64) bool {
	return odd >= MinOdd && odd <= MaxOdd
}
