package subscription

import (
	"errors"
	"time"
)

var ErrInvalidMonths = errors.New("months paid must be greater than zero")

// Extend computes the new expiry date produced by a payment covering the
// given number of calendar months. The extension anchors to whichever is
// later, the current expiry or now: renewing before expiry stacks onto the
// remaining period, while renewing long after expiry starts from today
// instead of back-dating onto a stale expiry.
func Extend(currentExpiry, now time.Time, months int) (time.Time, error) {
	if months <= 0 {
		return time.Time{}, ErrInvalidMonths
	}

	// Anchor on calendar days so a clock-bearing stored expiry cannot
	// shift the new expiry away from midnight.
	anchor := StartOfDay(now)
	if e := StartOfDay(currentExpiry); e.After(anchor) {
		anchor = e
	}
	return AddMonths(anchor, months), nil
}

// AddMonths adds calendar months with month-end clamping: Jan 31 plus one
// month lands on the last day of February. time.AddDate normalizes overflow
// days into the next month instead, so the clamp is done by hand here to
// keep the result deterministic.
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	// Date() normalizes out-of-range months, which resolves the target
	// year/month pair for any sign of months.
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}
