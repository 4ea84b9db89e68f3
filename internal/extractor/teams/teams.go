// Package teams canonicalizes team names printed in the betting program.
package teams

import (
	"log/slog"
	"sort"

	"github.com/Vodeneev/linesheet/internal/pkg/textnorm"
)

// Normalizer folds team names and applies the OCR-correction dictionary.
// It is immutable after construction and safe for concurrent use.
type Normalizer struct {
	corrections map[string]string
}

// NewNormalizer builds a normalizer from a raw correction table
// (misrecognized name -> canonical name). Keys and values are folded first,
// chains such as a->b, b->c are collapsed to a->c, and entries taking part in a
// cycle are dropped, so Normalize is idempotent whatever the table holds.
func NewNormalizer(raw map[string]string) *Normalizer {
	folded := make(map[string]string, len(raw))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	// deterministic winner when two raw keys fold to the same key
	sort.Strings(keys)
	for _, k := range keys {
		fk, fv := textnorm.Fold(k), textnorm.Fold(raw[k])
		if fk == "" || fv == "" || fk == fv {
			continue
		}
		folded[fk] = fv
	}

	resolved := make(map[string]string, len(folded))
	for k := range folded {
		if v, ok := resolve(folded, k); ok {
			resolved[k] = v
		} else {
			slog.Warn("Dropping cyclic team correction", "key", k)
		}
	}
	return &Normalizer{corrections: resolved}
}

// resolve follows the correction chain starting at k to its fixed point.
func resolve(table map[string]string, k string) (string, bool) {
	seen := map[string]bool{k: true}
	cur := table[k]
	for {
		next, ok := table[cur]
		if !ok {
			return cur, true
		}
		if seen[cur] {
			return "", false
		}
		seen[cur] = true
		cur = next
	}
}

// Normalize returns the canonical form of a printed team name:
// lowercase, no diacritics, only [a-z0-9 ], single spaces, then corrected.
func (n *Normalizer) Normalize(raw string) string {
	s := textnorm.Fold(raw)
	if n == nil {
		return s
	}
	if c, ok := n.corrections[s]; ok {
		return c
	}
	return s
}

// Len returns the number of active corrections.
func (n *Normalizer) Len() int {
	if n == nil {
		return 0
	}
	return len(n.corrections)
}
