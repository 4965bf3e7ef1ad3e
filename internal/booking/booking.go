// Package booking holds the price arithmetic for hotel stays. All
// functions are pure; dates in, numbers out.
package booking

import (
	"fmt"
	"time"
)

// Nights returns the number of billable nights between check-in and
// check-out, the ceiling of the day span. Ranges where check-out is on
// or before check-in yield 0, never a negative count; callers treat 0
// as "invalid range", it is not an error here.
func Nights(checkIn, checkOut time.Time) int {
	diff := checkOut.Sub(checkIn)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Total returns the stay price: nights times the nightly rate. The
// guest count never enters the price; rooms are billed per night, not
// per head.
func Total(nights int, pricePerNight int64) int64 {
	if nights <= 0 {
		return 0
	}
	return int64(nights) * pricePerNight
}

// FormatKz renders an amount the way the backend's market displays it,
// e.g. 45000 -> "45 000 Kz". Display only; no currency conversion.
func FormatKz(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%d", amount)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + " " + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s + " Kz"
}
