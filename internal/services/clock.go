package services

import (
	"time"

	"cloud.google.com/go/civil"

	"homestock/internal/domain"
)

// Clock supplies "now" and the zone that decides which calendar day it is.
type Clock struct {
	NowFunc func() time.Time
	Loc     *time.Location
}

func SystemClock(loc *time.Location) Clock { return Clock{NowFunc: time.Now, Loc: loc} }

// FixedClock always reports t; handy in tests.
func FixedClock(t time.Time) Clock {
	return Clock{NowFunc: func() time.Time { return t }, Loc: t.Location()}
}

func (c Clock) Now() time.Time {
	if c.NowFunc == nil {
		return time.Now()
	}
	return c.NowFunc()
}

func (c Clock) Today() civil.Date { return domain.Today(c.Now(), c.Loc) }
