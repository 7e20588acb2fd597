package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

// ExpiringSoonDays is the inclusive window, in days from today, in which a
// batch counts as expiring soon.
const ExpiringSoonDays = 7

const (
	StatusFresh        = "fresh"
	StatusExpiringSoon = "expiring_soon"
	StatusExpired      = "expired"
)

type Expiry struct {
	DaysUntilExpiration *int `json:"daysUntilExpiration"`
	IsExpired           bool `json:"isExpired"`
	ExpiringSoon        bool `json:"expiringSoon"`
}

// Classify compares an optional expiration date with today at calendar-day
// granularity. A batch without a date is always fresh.
func Classify(exp *civil.Date, today civil.Date) Expiry {
	if exp == nil {
		return Expiry{}
	}
	days := exp.DaysSince(today)
	expired := days < 0
	return Expiry{
		DaysUntilExpiration: &days,
		IsExpired:           expired,
		ExpiringSoon:        !expired && days <= ExpiringSoonDays,
	}
}

func (e Expiry) Status() string {
	switch {
	case e.IsExpired:
		return StatusExpired
	case e.ExpiringSoon:
		return StatusExpiringSoon
	default:
		return StatusFresh
	}
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.UTC
	}
	return civil.DateOf(now.In(loc))
}
