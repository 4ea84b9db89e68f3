package textnorm

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Real Madrid", "real madrid"},
		{"  Győri   ETO FC ", "gyori eto fc"},
		{"Újpest-FC", "ujpestfc"},
		{"Fehérvár F.C.", "fehervar fc"},
		{"Bayern München", "bayern munchen"},
		{"Brøndby IF", "brondby if"},
		{"Śląsk Wrocław", "slask wroclaw"},
		{"Kétesély", "ketesely"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFoldIdempotent(t *testing.T) {
	inputs := []string{"Győri ETO", "Ferencvárosi TC", "Çaykur Rizespor", "1. FC Köln", "Ünnep  -  Ő"}
	for _, in := range inputs {
		once := Fold(in)
		if twice := Fold(once); twice != once {
			t.Errorf("Fold not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestUnaccentWithOffsets(t *testing.T) {
	src := "Győr Kétesély"
	folded, offsets := UnaccentWithOffsets(src)
	if folded != "gyor ketesely" {
		t.Fatalf("folded = %q", folded)
	}
	if len(offsets) != len(folded)+1 {
		t.Fatalf("offsets has %d entries, want %d", len(offsets), len(folded)+1)
	}
	i := len("gyor ")
	if got := src[offsets[i]:]; got != "Kétesély" {
		t.Errorf("offset of folded index %d maps to %q", i, got)
	}
	if offsets[len(folded)] != len(src) {
		t.Errorf("sentinel offset = %d, want %d", offsets[len(folded)], len(src))
	}
}
