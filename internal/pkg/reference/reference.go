// Package reference loads the external data tables the extractor depends on:
// the OCR-correction dictionary for team names, the market vocabulary and the
// sport prefixes that mark league headers. Defaults are embedded so the
// extractor runs without any files; config paths override them.
package reference

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Vodeneev/linesheet/internal/pkg/config"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// VocabularyEntry is one market kind with the printed terms that announce it.
type VocabularyEntry struct {
	Kind  models.MarketKind
	Terms []string
}

// Vocabulary is the priority-ordered market vocabulary.
type Vocabulary struct {
	Markets        []VocabularyEntry
	LeaguePrefixes []string
	NumberedTeams  []string // numbers that open a team name, e.g. "1860" in "1860 München"
}

// Data bundles every reference table.
type Data struct {
	Corrections map[string]string // raw keys and values, folding happens in the team normalizer
	Vocabulary  Vocabulary
}

type correctionsFile struct {
	Corrections map[string]string `yaml:"corrections"`
}

type vocabularyFile struct {
	Markets []struct {
		Kind  string   `yaml:"kind"`
		Terms []string `yaml:"terms"`
	} `yaml:"markets"`
	LeaguePrefixes []string `yaml:"league_prefixes"`
	NumberedTeams  []string `yaml:"numbered_teams"`
}

// Load reads the tables named in cfg, falling back to the embedded defaults for empty paths.
func Load(cfg config.ReferenceConfig) (*Data, error) {
	corrections, err := readSource(cfg.CorrectionsFile, "defaults/corrections.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read corrections: %w", err)
	}
	vocabulary, err := readSource(cfg.VocabularyFile, "defaults/vocabulary.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	return Parse(corrections, vocabulary)
}

// Defaults returns the embedded tables.
func Defaults() (*Data, error) {
	return Load(config.ReferenceConfig{})
}

// Parse decodes both YAML documents.
func Parse(correctionsYAML, vocabularyYAML []byte) (*Data, error) {
	var cf correctionsFile
	if err := yaml.Unmarshal(correctionsYAML, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse corrections: %w", err)
	}

	vocabulary, err := parseVocabulary(vocabularyYAML)
	if err != nil {
		return nil, err
	}

	if cf.Corrections == nil {
		cf.Corrections = map[string]string{}
	}
	return &Data{Corrections: cf.Corrections, Vocabulary: vocabulary}, nil
}

func parseVocabulary(data []byte) (Vocabulary, error) {
	var vf vocabularyFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return Vocabulary{}, fmt.Errorf("failed to parse vocabulary: %w", err)
	}

	v := Vocabulary{
		LeaguePrefixes: nonEmpty(vf.LeaguePrefixes),
		NumberedTeams:  nonEmpty(vf.NumberedTeams),
	}
	for i, m := range vf.Markets {
		kind, ok := models.ParseMarketKind(m.Kind)
		if !ok || kind == models.MarketOther {
			return Vocabulary{}, fmt.Errorf("vocabulary entry %d: unknown market kind %q", i, m.Kind)
		}
		terms := nonEmpty(m.Terms)
		if len(terms) == 0 {
			return Vocabulary{}, fmt.Errorf("vocabulary entry %d (%s) has no terms", i, kind)
		}
		v.Markets = append(v.Markets, VocabularyEntry{Kind: kind, Terms: terms})
	}
	return v, nil
}

func readSource(path, embedded string) ([]byte, error) {
	if path == "" {
		return defaultsFS.ReadFile(embedded)
	}
	return os.ReadFile(path)
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
