package models

// RawLine is one line of the page-tagged text dump produced by the
// document-to-text service.
type RawLine struct {
	Page      int
	LineIndex int
	Text      string
}

// ParserState is the state carried through one document pass.
// It is a value: every transition returns a new state instead of mutating.
type ParserState struct {
	CurrentDate     *Date
	CurrentDayToken string // canonical day token, "" when unset
	CurrentPage     int
	CurrentLeague   string
}

// WithPage returns a copy of the state positioned on page.
func (s ParserState) WithPage(page int) ParserState {
	s.CurrentPage = page
	return s
}

// WithLeague returns a copy of the state with the league header applied.
func (s ParserState) WithLeague(league string) ParserState {
	s.CurrentLeague = league
	return s
}

// HasDate reports whether a DateHeader has anchored the state.
func (s ParserState) HasDate() bool {
	return s.CurrentDate != nil
}
