package models

import (
	"strings"
)

// MatchKey builds the fixture signature from already normalized parts.
// Format: date|time|league|home|away, with "undated" standing in for a missing date.
func MatchKey(date *Date, clock, league, home, away string) string {
	return strings.Join([]string{
		DateKey(date),
		normalizeKeyPart(clock),
		normalizeKeyPart(league),
		normalizeKeyPart(home),
		normalizeKeyPart(away),
	}, "|")
}

func normalizeKeyPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	// "|" is the separator, keep it out of the parts.
	s = strings.ReplaceAll(s, "|", " ")
	return strings.Join(strings.Fields(s), " ")
}
