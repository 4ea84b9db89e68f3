// Package daysplit partitions merged fixtures into one bundle per calendar date.
package daysplit

import (
	"sort"

	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

// Split groups fixtures by date. Undated fixtures go to the "undated" bundle.
// Bundles are ordered by date with "undated" last; games keep their input order.
func Split(fixtures []models.MergedFixture) []models.DayBundle {
	byKey := make(map[string]*models.DayBundle)
	var keys []string
	leagues := make(map[string]map[string]struct{})

	for _, f := range fixtures {
		key := f.DateKey()
		b, ok := byKey[key]
		if !ok {
			b = &models.DayBundle{DateKey: key}
			byKey[key] = b
			keys = append(keys, key)
			leagues[key] = make(map[string]struct{})
		}
		b.Games = append(b.Games, f)
		b.Totals.Games++
		b.Totals.Markets += 1 + len(f.AdditionalMarkets)
		if f.League != "" {
			leagues[key][f.League] = struct{}{}
		}
	}

	// ISO keys sort chronologically as strings
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == models.UndatedKey || keys[j] == models.UndatedKey {
			return keys[j] == models.UndatedKey && keys[i] != models.UndatedKey
		}
		return keys[i] < keys[j]
	})

	out := make([]models.DayBundle, 0, len(keys))
	for _, key := range keys {
		b := byKey[key]
		b.Totals.Leagues = make([]string, 0, len(leagues[key]))
		for l := range leagues[key] {
			b.Totals.Leagues = append(b.Totals.Leagues, l)
		}
		sort.Strings(b.Totals.Leagues)
		out = append(out, *b)
	}
	return out
}
