package merge

import (
	"github.com/Vodeneev/linesheet/internal/extractor/teams"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
	"github.com/Vodeneev/linesheet/internal/pkg/textnorm"
)

// Signature identifies a real-world fixture: resolved date (or "undated"),
// kick-off time, folded league and both normalized team names. Two lines with
// the same signature describe the same fixture however their raw text differs.
func Signature(n *teams.Normalizer, date *models.Date, clock, league, home, away string) string {
	return models.MatchKey(date, clock, textnorm.Fold(league), n.Normalize(home), n.Normalize(away))
}
