package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEvaluate(t *testing.T) {
	now := date(2025, time.June, 15)

	t.Run("expired five days ago", func(t *testing.T) {
		ev := Evaluate(date(2025, time.June, 10), now)
		assert.Equal(t, StatusExpired, ev.Status)
		assert.Equal(t, 5, ev.DaysSinceExpiry())
		assert.Equal(t, 0, ev.DaysRemaining())
	})

	t.Run("expiring in two days", func(t *testing.T) {
		ev := Evaluate(date(2025, time.June, 17), now)
		assert.Equal(t, StatusExpiringSoon, ev.Status)
		assert.Equal(t, 2, ev.DaysRemaining())
	})

	t.Run("expires today is expiring soon, not expired", func(t *testing.T) {
		ev := Evaluate(date(2025, time.June, 15), now)
		assert.Equal(t, StatusExpiringSoon, ev.Status)
		assert.Equal(t, 0, ev.Days)
	})

	t.Run("expires today with clock time elapsed still not expired", func(t *testing.T) {
		lateNow := time.Date(2025, time.June, 15, 18, 30, 0, 0, time.UTC)
		ev := Evaluate(date(2025, time.June, 15), lateNow)
		assert.Equal(t, StatusExpiringSoon, ev.Status)
		assert.Equal(t, 0, ev.Days)
	})

	t.Run("boundary of the expiring window", func(t *testing.T) {
		ev := Evaluate(date(2025, time.June, 18), now)
		assert.Equal(t, StatusExpiringSoon, ev.Status)
		assert.Equal(t, 3, ev.Days)
	})

	t.Run("just outside the expiring window is active", func(t *testing.T) {
		ev := Evaluate(date(2025, time.June, 19), now)
		assert.Equal(t, StatusActive, ev.Status)
		assert.Equal(t, 4, ev.DaysRemaining())
	})

	t.Run("expired yesterday", func(t *testing.T) {
		ev := Evaluate(date(2025, time.June, 14), now)
		assert.Equal(t, StatusExpired, ev.Status)
		assert.Equal(t, 1, ev.DaysSinceExpiry())
	})

	t.Run("clock-bearing expiry one day past is expired", func(t *testing.T) {
		// Expiry stored mid-afternoon; the morning after its calendar
		// day has fully elapsed it is expired by one day, not still
		// expiring with zero days left.
		expiry := time.Date(2025, time.July, 15, 14, 0, 0, 0, time.UTC)
		at := time.Date(2025, time.July, 16, 9, 0, 0, 0, time.UTC)
		ev := Evaluate(expiry, at)
		assert.Equal(t, StatusExpired, ev.Status)
		assert.Equal(t, 1, ev.DaysSinceExpiry())
	})

	t.Run("clock components do not change the day count", func(t *testing.T) {
		expiry := time.Date(2025, time.June, 17, 23, 45, 0, 0, time.UTC)
		at := time.Date(2025, time.June, 15, 2, 10, 0, 0, time.UTC)
		ev := Evaluate(expiry, at)
		assert.Equal(t, StatusExpiringSoon, ev.Status)
		assert.Equal(t, 2, ev.DaysRemaining())
	})
}

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(time.Date(2025, time.June, 15, 18, 30, 45, 12, time.UTC))
	assert.Equal(t, date(2025, time.June, 15), got)
	assert.Equal(t, got, StartOfDay(got))
}

func TestIsExpired(t *testing.T) {
	now := date(2025, time.June, 15)

	assert.True(t, IsExpired(date(2025, time.June, 14), now))
	assert.False(t, IsExpired(date(2025, time.June, 15), now))
	assert.False(t, IsExpired(date(2025, time.June, 16), now))

	// A clock-bearing expiry flips at the day boundary.
	assert.True(t, IsExpired(time.Date(2025, time.June, 14, 14, 0, 0, 0, time.UTC), now))
	assert.False(t, IsExpired(time.Date(2025, time.June, 15, 6, 0, 0, 0, time.UTC), now))
}
