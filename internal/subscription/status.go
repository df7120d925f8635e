package subscription

import (
	"math"
	"time"
)

// Status is the derived lifecycle state of a subscription. It is never
// persisted; callers recompute it from the expiry date on every read.
type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
)

// expiringWindowDays is the day count at or under which a subscription is
// reported as expiring soon.
const expiringWindowDays = 3

// Evaluation is the result of evaluating an expiry date against a point in
// time. Days is the signed day delta: positive means days remaining,
// negative means days since expiry.
type Evaluation struct {
	Status Status
	Days   int
}

// DaysRemaining is Days clamped to the "remaining" reading; zero for
// expired subscriptions.
func (e Evaluation) DaysRemaining() int {
	if e.Days < 0 {
		return 0
	}
	return e.Days
}

// DaysSinceExpiry is the magnitude of the overdue period; zero for
// non-expired subscriptions.
func (e Evaluation) DaysSinceExpiry() int {
	if e.Days < 0 {
		return -e.Days
	}
	return 0
}

// StartOfDay truncates t to midnight in its own location. Expiry dates are
// calendar dates; any clock component a caller carries in is shed before
// day arithmetic so the expired transition happens at the day boundary, not
// at whatever time of day the row was written.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Evaluate derives the lifecycle status from an expiry date and the current
// time. Both inputs are truncated to their calendar day; the delta is
// ceil((expiry-now)/24h) over the truncated values, so a subscription
// expiring today evaluates to zero days and is reported as expiring soon,
// and becomes expired at the next midnight regardless of the clock time
// either value was recorded with.
func Evaluate(expiry, now time.Time) Evaluation {
	days := int(math.Ceil(StartOfDay(expiry).Sub(StartOfDay(now)).Hours() / 24))

	switch {
	case days < 0:
		return Evaluation{Status: StatusExpired, Days: days}
	case days <= expiringWindowDays:
		return Evaluation{Status: StatusExpiringSoon, Days: days}
	default:
		return Evaluation{Status: StatusActive, Days: days}
	}
}

// IsExpired reports whether the expiry date lies strictly in the past by
// calendar-day boundary.
func IsExpired(expiry, now time.Time) bool {
	return Evaluate(expiry, now).Status == StatusExpired
}
