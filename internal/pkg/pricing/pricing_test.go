package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRemainingTrainingDays(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		want int
	}{
		// July 2026: Tuesdays 7,14,21,28 and Thursdays 2,9,16,23,30
		{name: "full month", from: date(2026, time.July, 1), want: 9},
		{name: "mid month", from: date(2026, time.July, 15), want: 5},
		{name: "last training day inclusive", from: date(2026, time.July, 30), want: 1},
		{name: "after last training day", from: date(2026, time.July, 31), want: 0},
		// November 2026: last Thursday is the 26th, month ends Monday the 30th
		{name: "day after last Thursday", from: date(2026, time.November, 27), want: 0},
		// February 2026: Tuesdays 3,10,17,24 and Thursdays 5,12,19,26
		{name: "february full", from: date(2026, time.February, 1), want: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemainingTrainingDays(tt.from))
		})
	}
}

func TestMonthlyProRata(t *testing.T) {
	t.Run("charges full month price when enough days remain", func(t *testing.T) {
		q := MonthlyProRata(date(2026, time.July, 1))
		assert.True(t, q.ShouldCharge)
		assert.Equal(t, FullMonthPrice, q.Price)
		assert.Equal(t, 9, q.RemainingDays)
	})

	t.Run("one remaining day means no charge", func(t *testing.T) {
		q := MonthlyProRata(date(2026, time.July, 30))
		assert.False(t, q.ShouldCharge)
		assert.Equal(t, 0.0, q.Price)
		assert.Equal(t, 1, q.RemainingDays)
		assert.Contains(t, q.Reason, "Slechts 1 trainingsdag")
	})

	t.Run("zero remaining days means no charge", func(t *testing.T) {
		q := MonthlyProRata(date(2026, time.November, 27))
		assert.False(t, q.ShouldCharge)
		assert.Equal(t, 0.0, q.Price)
		assert.Equal(t, 0, q.RemainingDays)
		assert.Contains(t, q.Reason, "Geen trainingsdagen")
	})
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2026-08", MonthKey(date(2026, time.August, 30)))
	assert.Equal(t, "2026-01", MonthKey(date(2026, time.January, 5)))
}

func TestPaidForMonth(t *testing.T) {
	now := date(2026, time.August, 30)
	assert.True(t, PaidForMonth("2026-08", now))
	assert.False(t, PaidForMonth("2026-07", now))
	assert.False(t, PaidForMonth("", now))
}
