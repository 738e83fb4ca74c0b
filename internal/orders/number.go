package orders

import (
	"fmt"
	"time"
)

// Number formats an order number: prefix, two-digit year/month/day, then
// the day's sequence zero-padded to four digits. The format is an
// external contract, e.g. FLR2507010001.
func Number(prefix string, t time.Time, seq int) string {
	return fmt.Sprintf("%s%02d%02d%02d%04d", prefix, t.Year()%100, int(t.Month()), t.Day(), seq)
}

// DayBounds returns midnight of t's calendar day and of the next day, in
// t's location. Orders created within [from, to) share a sequence.
func DayBounds(t time.Time) (from, to time.Time) {
	from = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 0, 1)
}
