package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Vodeneev/linesheet/internal/pkg/config"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

func TestDefaults(t *testing.T) {
	data, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults: %v", err)
	}
	if len(data.Corrections) == 0 {
		t.Error("embedded corrections are empty")
	}
	if len(data.Vocabulary.LeaguePrefixes) == 0 {
		t.Error("embedded league prefixes are empty")
	}
	if len(data.Vocabulary.NumberedTeams) == 0 {
		t.Error("embedded numbered teams are empty")
	}

	kinds := map[models.MarketKind]bool{}
	for _, e := range data.Vocabulary.Markets {
		kinds[e.Kind] = true
	}
	for _, k := range []models.MarketKind{models.MarketDoubleChance, models.MarketHandicap, models.MarketGoalsOverUnder, models.MarketBothTeamsScore} {
		if !kinds[k] {
			t.Errorf("vocabulary lacks %s", k)
		}
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := Parse([]byte("corrections: {}"), []byte("markets:\n  - kind: darts\n    terms: [\"180\"]\n"))
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestParseRejectsEmptyTerms(t *testing.T) {
	_, err := Parse([]byte(""), []byte("markets:\n  - kind: corners\n    terms: [\"  \"]\n"))
	if err == nil {
		t.Fatal("expected error for entry without terms")
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	corr := filepath.Join(dir, "corr.yaml")
	voc := filepath.Join(dir, "voc.yaml")
	if err := os.WriteFile(corr, []byte("corrections:\n  \"barcelana\": \"Barcelona\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(voc, []byte("markets:\n  - kind: double_chance\n    terms: [\"kétesély\"]\nleague_prefixes: [\"Labdarúgás\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := Load(config.ReferenceConfig{CorrectionsFile: corr, VocabularyFile: voc})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data.Corrections["barcelana"] != "Barcelona" {
		t.Errorf("corrections = %v", data.Corrections)
	}
	if len(data.Vocabulary.Markets) != 1 || data.Vocabulary.Markets[0].Kind != models.MarketDoubleChance {
		t.Errorf("markets = %+v", data.Vocabulary.Markets)
	}

	if _, err := Load(config.ReferenceConfig{CorrectionsFile: filepath.Join(dir, "nope.yaml")}); err == nil {
		t.Error("expected error for missing corrections file")
	}
}
