package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtend(t *testing.T) {
	now := date(2025, time.June, 15)

	t.Run("renewal before expiry anchors to current expiry", func(t *testing.T) {
		expiry := date(2025, time.June, 20)
		got, err := Extend(expiry, now, 1)
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.July, 20), got)
	})

	t.Run("renewal after expiry anchors to now", func(t *testing.T) {
		expiry := date(2025, time.June, 5) // ten days past
		got, err := Extend(expiry, now, 1)
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.July, 15), got)
	})

	t.Run("multiple months", func(t *testing.T) {
		expiry := date(2025, time.June, 20)
		got, err := Extend(expiry, now, 6)
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.December, 20), got)
	})

	t.Run("result independent of now when not yet expired", func(t *testing.T) {
		expiry := date(2025, time.August, 1)
		for _, n := range []time.Time{
			date(2025, time.June, 1),
			date(2025, time.July, 15),
			date(2025, time.August, 1),
		} {
			got, err := Extend(expiry, n, 2)
			require.NoError(t, err)
			assert.Equal(t, date(2025, time.October, 1), got)
		}
	})

	t.Run("clock-bearing inputs anchor at midnight", func(t *testing.T) {
		expiry := time.Date(2025, time.June, 20, 14, 0, 0, 0, time.UTC)
		at := time.Date(2025, time.June, 15, 9, 30, 0, 0, time.UTC)
		got, err := Extend(expiry, at, 1)
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.July, 20), got)
	})

	t.Run("expired anchor sheds the current clock time", func(t *testing.T) {
		expiry := time.Date(2025, time.June, 5, 23, 0, 0, 0, time.UTC)
		at := time.Date(2025, time.June, 15, 16, 45, 0, 0, time.UTC)
		got, err := Extend(expiry, at, 1)
		require.NoError(t, err)
		assert.Equal(t, date(2025, time.July, 15), got)
	})

	t.Run("zero months rejected", func(t *testing.T) {
		_, err := Extend(date(2025, time.June, 20), now, 0)
		assert.ErrorIs(t, err, ErrInvalidMonths)
	})

	t.Run("negative months rejected", func(t *testing.T) {
		_, err := Extend(date(2025, time.June, 20), now, -3)
		assert.ErrorIs(t, err, ErrInvalidMonths)
	})
}

func TestAddMonths(t *testing.T) {
	t.Run("clamps jan 31 to end of february", func(t *testing.T) {
		got := AddMonths(date(2025, time.January, 31), 1)
		assert.Equal(t, date(2025, time.February, 28), got)
	})

	t.Run("clamps to feb 29 on leap years", func(t *testing.T) {
		got := AddMonths(date(2024, time.January, 31), 1)
		assert.Equal(t, date(2024, time.February, 29), got)
	})

	t.Run("clamps 31st into 30 day months", func(t *testing.T) {
		got := AddMonths(date(2025, time.March, 31), 1)
		assert.Equal(t, date(2025, time.April, 30), got)
	})

	t.Run("no clamp needed", func(t *testing.T) {
		got := AddMonths(date(2025, time.April, 15), 1)
		assert.Equal(t, date(2025, time.May, 15), got)
	})

	t.Run("crosses year boundary", func(t *testing.T) {
		got := AddMonths(date(2025, time.November, 30), 3)
		assert.Equal(t, date(2026, time.February, 28), got)
	})

	t.Run("deterministic", func(t *testing.T) {
		a := AddMonths(date(2025, time.January, 31), 1)
		b := AddMonths(date(2025, time.January, 31), 1)
		assert.Equal(t, a, b)
	})
}
