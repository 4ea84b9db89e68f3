package models

import "time"

// Date is a calendar day without clock or zone. The betting program only ever
// prints local dates, so arithmetic is done in UTC to avoid DST surprises.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes overflowing values the same way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return dateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func dateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return dateOf(d.time().AddDate(0, 0, n))
}

// Weekday returns the Monday-first index of the day: Monday=0 ... Sunday=6.
func (d Date) Weekday() int {
	return (int(d.time().Weekday()) + 6) % 7
}

func (d Date) Before(other Date) bool {
	return d.time().Before(other.time())
}

// String renders the ISO form used as bundle key.
func (d Date) String() string {
	return d.time().Format(time.DateOnly)
}
