package postgres

import "time"

// dayAfter returns midnight of the calendar day following t. Range filters
// use it as an exclusive upper bound so a day-granular end date keeps every
// transfer made during that day, whatever its time of day.
func dayAfter(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
