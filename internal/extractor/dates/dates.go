// Package dates resolves weekday tokens printed in front of kick-off times to
// calendar dates. The resolver is a pure function over models.ParserState:
// every call returns the next state instead of mutating the current one.
package dates

import (
	"errors"
	"fmt"

	"github.com/Vodeneev/linesheet/internal/pkg/enums"
	"github.com/Vodeneev/linesheet/internal/pkg/models"
)

var (
	// ErrAmbiguousDayToken is returned when a day token shows up before any
	// date header anchored the document. Callers defer such lines.
	ErrAmbiguousDayToken = errors.New("day token without date anchor")
	// ErrUnknownDayToken is returned for tokens missing from the day table.
	ErrUnknownDayToken = errors.New("unknown day token")
)

// Resolution is the result of resolving one day token.
type Resolution struct {
	State models.ParserState
	Date  models.Date
	// Regression is set when the week-anchored date fell before the current
	// date and was pushed forward by a week.
	Regression bool
	// Rejected is the backward date that Regression replaced.
	Rejected models.Date
}

// ApplyHeader anchors the state on an explicit date header and forgets the
// previous day token.
func ApplyHeader(state models.ParserState, date models.Date) models.ParserState {
	d := date
	state.CurrentDate = &d
	state.CurrentDayToken = ""
	return state
}

// Resolve computes the date for a printed day token. Dates only move forward:
//   - first token after a header: the token's day in the Monday-first week
//     containing the current date, pushed a week ahead if that lies in the past;
//   - a different token: advance (new - old) days, adding 7 when negative;
//   - the same token: the current date.
func Resolve(state models.ParserState, printed string) (Resolution, error) {
	tok, ok := enums.ParseDayToken(printed)
	if !ok {
		return Resolution{State: state}, fmt.Errorf("%w: %q", ErrUnknownDayToken, printed)
	}
	if !state.HasDate() {
		return Resolution{State: state}, fmt.Errorf("%w: %q", ErrAmbiguousDayToken, printed)
	}

	current := *state.CurrentDate
	res := Resolution{}

	switch {
	case state.CurrentDayToken == "":
		weekStart := current.AddDays(-current.Weekday())
		res.Date = weekStart.AddDays(tok.Index())
		if res.Date.Before(current) {
			res.Regression = true
			res.Rejected = res.Date
			res.Date = res.Date.AddDays(7)
		}
	case enums.DayToken(state.CurrentDayToken) == tok:
		res.Date = current
	default:
		delta := tok.Index() - enums.DayToken(state.CurrentDayToken).Index()
		if delta < 0 {
			delta += 7
		}
		res.Date = current.AddDays(delta)
	}

	next := res.Date
	state.CurrentDate = &next
	state.CurrentDayToken = string(tok)
	res.State = state
	return res, nil
}
