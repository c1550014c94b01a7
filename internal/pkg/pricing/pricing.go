package pricing

import (
	"fmt"
	"time"
)

// Membership prices in euros
const (
	PricePerSession    = 8.50
	FullMonthPrice     = 34.00 // 4 weeks * 2 sessions/week * €8.50
	PunchCardPrice     = 67.50 // 10 sessions
	YearlyPrice        = 187.00
	YearlyUpfrontPrice = 168.00 // 10% discount when paid at once
)

// Training days are Tuesday and Thursday
var trainingWeekdays = map[time.Weekday]bool{
	time.Tuesday:  true,
	time.Thursday: true,
}

// Quote represents a pro-rata pricing decision for a monthly membership
type Quote struct {
	Price         float64 `json:"price"`
	RemainingDays int     `json:"remainingDays"`
	ShouldCharge  bool    `json:"shouldCharge"`
	Reason        string  `json:"reason"`
}

// RemainingTrainingDays counts the Tuesdays and Thursdays from the given date
// (inclusive) through the end of that calendar month.
func RemainingTrainingDays(from time.Time) int {
	year, month, day := from.Date()
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, from.Location()).Day()

	count := 0
	for d := day; d <= lastDay; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, from.Location())
		if trainingWeekdays[date.Weekday()] {
			count++
		}
	}
	return count
}

// MonthlyProRata calculates the pro-rata price for a monthly membership.
// With 1 or fewer training days left in the month there is nothing to pay
// until next month; otherwise the full month price is charged.
func MonthlyProRata(signupDate time.Time) Quote {
	remaining := RemainingTrainingDays(signupDate)

	if remaining <= 1 {
		reason := "Geen trainingsdagen meer in deze maand - betaalt volgende maand"
		if remaining == 1 {
			reason = "Slechts 1 trainingsdag resterend in deze maand - betaalt volgende maand"
		}
		return Quote{
			Price:         0,
			RemainingDays: remaining,
			ShouldCharge:  false,
			Reason:        reason,
		}
	}

	return Quote{
		Price:         FullMonthPrice,
		RemainingDays: remaining,
		ShouldCharge:  true,
		Reason:        fmt.Sprintf("%d trainingsdagen resterend - volledige maandprijs: €%.2f", remaining, FullMonthPrice),
	}
}

// MonthKey returns the payment-tracking key for a month, e.g. "2026-08".
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
}

// PaidForMonth reports whether lastPaidMonth covers the month of now.
func PaidForMonth(lastPaidMonth string, now time.Time) bool {
	if lastPaidMonth == "" {
		return false
	}
	return lastPaidMonth == MonthKey(now)
}
