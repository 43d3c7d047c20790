// Package months generates the ordered calendar-month labels that the
// enrollment ledger spans. Labels are fixed Italian month names joined
// to a year ("Ottobre-2025"); they are display keys, not parsed dates.
package months

import "fmt"

var monthNames = [12]string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

// Generate walks months 1..12 from startYear through
// startYear+yearsAhead inclusive, skipping months before startMonth in
// the first year only. The result is strictly chronological with no
// duplicates and is recomputed on every call.
func Generate(startMonth, startYear, yearsAhead int) []string {
	labels := make([]string, 0, (yearsAhead+1)*12)
	for y := startYear; y <= startYear+yearsAhead; y++ {
		for m := 1; m <= 12; m++ {
			if y == startYear && m < startMonth {
				continue
			}
			labels = append(labels, fmt.Sprintf("%s-%d", monthNames[m-1], y))
		}
	}
	return labels
}

// Label formats a single month label. Month is 1-based; out-of-range
// values panic, matching the slice access.
func Label(month, year int) string {
	return fmt.Sprintf("%s-%d", monthNames[month-1], year)
}
