package odds

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   []float64
		ok     bool
		before string
	}{
		{"main market", "K 20:00 65110 Real Madrid - Barcelona 2,50 3,20 2,80", []float64{2.5, 3.2, 2.8}, true, "K 20:00 65110 Real Madrid - Barcelona "},
		{"two values", "65110 Kétesély 1,50 2,80", []float64{1.5, 2.8}, true, "65110 Kétesély "},
		{"dot decimals", "Arsenal - Chelsea 1.85 3.40", []float64{1.85, 3.4}, true, "Arsenal - Chelsea "},
		{"three decimals", "X 12,500 1,050", []float64{12.5, 1.05}, true, "X "},
		{"single value", "K 20:00 Real Madrid - Barcelona 2,50", []float64{2.5}, false, "K 20:00 Real Madrid - Barcelona "},
		{"no odds", "Labdarúgás, Spanyol La Liga", nil, false, "Labdarúgás, Spanyol La Liga"},
		{"trailing spaces", "Gólszám 2,5 1,90 1,85   ", []float64{1.9, 1.85}, true, "Gólszám 2,5 "},
		{"run broken by text", "1,50 over 1,80 1,95", []float64{1.8, 1.95}, true, "1,50 over "},
		{"time is not odds", "20:00 21:30", nil, false, "20:00 21:30"},
		{"only odds", "2,10 3,30", []float64{2.1, 3.3}, true, ""},
		{"empty", "", nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if got.OK() != tt.ok {
				t.Errorf("OK() = %v, want %v", got.OK(), tt.ok)
			}
			if len(got.Values) != len(tt.want) {
				t.Fatalf("values = %v, want %v", got.Values, tt.want)
			}
			for i := range tt.want {
				if got.Values[i] != tt.want[i] {
					t.Errorf("values[%d] = %v, want %v", i, got.Values[i], tt.want[i])
				}
			}
			if tt.text[:got.Start] != tt.before {
				t.Errorf("text before odds = %q, want %q", tt.text[:got.Start], tt.before)
			}
		})
	}
}
