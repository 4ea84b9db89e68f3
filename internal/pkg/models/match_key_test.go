package models

import (
	"testing"
	"time"
)

func TestMatchKey(t *testing.T) {
	d := NewDate(2025, time.August, 5)

	tests := []struct {
		name   string
		date   *Date
		clock  string
		league string
		home   string
		away   string
		want   string
	}{
		{"dated", &d, "20:00", "spanyol la liga", "real madrid", "barcelona", "2025-08-05|20:00|spanyol la liga|real madrid|barcelona"},
		{"undated", nil, "18:30", "", "ajax", "psv", "undated|18:30||ajax|psv"},
		{"separator stripped", &d, "20:00", "a|b", "real  madrid ", "barcelona", "2025-08-05|20:00|a b|real madrid|barcelona"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchKey(tt.date, tt.clock, tt.league, tt.home, tt.away)
			if got != tt.want {
				t.Errorf("MatchKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchKey_SameFixtureDifferentSpacing(t *testing.T) {
	d := NewDate(2025, time.August, 9)

	k1 := MatchKey(&d, "15:30", "angol premier league", "arsenal", "chelsea")
	k2 := MatchKey(&d, " 15:30", "Angol  Premier League", "Arsenal", " chelsea")
	if k1 != k2 {
		t.Errorf("keys should match:\n  %s\n  %s", k1, k2)
	}
}
