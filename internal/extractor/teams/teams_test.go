package teams

import (
	"testing"

	"github.com/Vodeneev/linesheet/internal/pkg/reference"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(map[string]string{
		"rea1 madrid":    "Real Madrid",
		"Barcelana":      "Barcelona",
		"Ferencváros":    "Ferencvárosi TC",
		"fradi":          "Ferencvaros", // chain: fradi -> ferencvaros -> ferencvarosi tc
		"colorado rapid": "Colorado Rapids",
	})

	tests := []struct {
		in   string
		want string
	}{
		{"Real Madrid", "real madrid"},
		{"REA1 MADRID", "real madrid"},
		{"  Barcelana ", "barcelona"},
		{"Ferencváros", "ferencvarosi tc"},
		{"Fradi", "ferencvarosi tc"},
		{"Colorado Rapid", "colorado rapids"},
		{"Győri ETO F.C.", "gyori eto fc"},
		{"Újpest-FC", "ujpestfc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	data, err := reference.Defaults()
	if err != nil {
		t.Fatalf("reference.Defaults: %v", err)
	}
	n := NewNormalizer(data.Corrections)

	inputs := []string{
		"Real Madrid", "rea1 madrid", "Barcelana", "FERENCVÁROS", "Fradi", "Man Utd",
		"Bayern München", "Inter", "PSG", "Colorado Rapid", "Győri ETO", "Brøndby IF",
		"  multiple   spaces  ", "Olympique de Marseille", "1. FC Köln", "???",
	}
	for k, v := range data.Corrections {
		inputs = append(inputs, k, v)
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		if twice := n.Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCyclicCorrectionsDropped(t *testing.T) {
	n := NewNormalizer(map[string]string{
		"alpha": "beta",
		"beta":  "alpha",
		"gamma": "delta",
	})
	if n.Len() != 1 {
		t.Errorf("Len() = %d, want 1", n.Len())
	}
	if got := n.Normalize("Alpha"); got != "alpha" {
		t.Errorf("cyclic entry should be ignored, got %q", got)
	}
	if got := n.Normalize(n.Normalize("Beta")); got != n.Normalize("Beta") {
		t.Errorf("not idempotent: %q", got)
	}
}

func TestNilNormalizerFoldsOnly(t *testing.T) {
	var n *Normalizer
	if got := n.Normalize("Újpest FC"); got != "ujpest fc" {
		t.Errorf("Normalize = %q", got)
	}
}
