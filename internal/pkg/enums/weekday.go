package enums

import (
	"github.com/Vodeneev/linesheet/internal/pkg/textnorm"
)

// DayToken is the canonical weekday abbreviation printed in front of kick-off times.
type DayToken string

const (
	Monday    DayToken = "H"
	Tuesday   DayToken = "K"
	Wednesday DayToken = "Sze"
	Thursday  DayToken = "Cs"
	Friday    DayToken = "P"
	Saturday  DayToken = "Szo"
	Sunday    DayToken = "V"
)

// DayOrder is the Monday-first week used to anchor day tokens.
var DayOrder = []DayToken{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// dayAliases maps folded spellings (abbreviations and full names) to canonical tokens.
var dayAliases = map[string]DayToken{
	"h": Monday, "he": Monday, "het": Monday, "hetfo": Monday,
	"k": Tuesday, "ke": Tuesday, "kedd": Tuesday,
	"sze": Wednesday, "szerda": Wednesday,
	"cs": Thursday, "csu": Thursday, "csut": Thursday, "csutortok": Thursday,
	"p": Friday, "pe": Friday, "pen": Friday, "pentek": Friday,
	"szo": Saturday, "szom": Saturday, "szombat": Saturday,
	"v": Sunday, "va": Sunday, "vas": Sunday, "vasarnap": Sunday,
}

// ParseDayToken resolves a printed weekday token (any case, with or without accents).
func ParseDayToken(s string) (DayToken, bool) {
	tok, ok := dayAliases[textnorm.Fold(s)]
	return tok, ok
}

// Index returns the Monday-first position of the token, or -1.
func (d DayToken) Index() int {
	for i, tok := range DayOrder {
		if tok == d {
			return i
		}
	}
	return -1
}

// String returns string representation
func (d DayToken) String() string {
	return string(d)
}
