package enums

import (
	"time"

	"github.com/Vodeneev/linesheet/internal/pkg/textnorm"
)

// monthNames is the fixed month-name table used by date headers.
// Keys are folded, so "március" and "marcius" both resolve.
var monthNames = map[string]time.Month{
	"januar":     time.January,
	"februar":    time.February,
	"marcius":    time.March,
	"aprilis":    time.April,
	"majus":      time.May,
	"junius":     time.June,
	"julius":     time.July,
	"augusztus":  time.August,
	"szeptember": time.September,
	"oktober":    time.October,
	"november":   time.November,
	"december":   time.December,

	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
}

// ParseMonth resolves a printed month name.
func ParseMonth(s string) (time.Month, bool) {
	m, ok := monthNames[textnorm.Fold(s)]
	return m, ok
}
