package domain_test

import (
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestock/internal/domain"
)

func TestClassifyBoundaries(t *testing.T) {
	today := civil.Date{Year: 2026, Month: time.March, Day: 10}

	cases := []struct {
		name    string
		offset  int
		days    int
		expired bool
		soon    bool
		status  string
	}{
		{"yesterday", -1, -1, true, false, domain.StatusExpired},
		{"today", 0, 0, false, true, domain.StatusExpiringSoon},
		{"in a week", 7, 7, false, true, domain.StatusExpiringSoon},
		{"in eight days", 8, 8, false, false, domain.StatusFresh},
		{"long ago", -40, -40, true, false, domain.StatusExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exp := today.AddDays(tc.offset)
			got := domain.Classify(&exp, today)
			require.NotNil(t, got.DaysUntilExpiration)
			assert.Equal(t, tc.days, *got.DaysUntilExpiration)
			assert.Equal(t, tc.expired, got.IsExpired)
			assert.Equal(t, tc.soon, got.ExpiringSoon)
			assert.Equal(t, tc.status, got.Status())
			assert.False(t, got.IsExpired && got.ExpiringSoon)
		})
	}
}

func TestClassifyWithoutDate(t *testing.T) {
	got := domain.Classify(nil, civil.Date{Year: 2026, Month: time.March, Day: 10})
	assert.Nil(t, got.DaysUntilExpiration)
	assert.False(t, got.IsExpired)
	assert.False(t, got.ExpiringSoon)
	assert.Equal(t, domain.StatusFresh, got.Status())
}

func TestTodayUsesLocation(t *testing.T) {
	now := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*60*60)

	assert.Equal(t, civil.Date{Year: 2026, Month: time.March, Day: 10}, domain.Today(now, nil))
	assert.Equal(t, civil.Date{Year: 2026, Month: time.March, Day: 11}, domain.Today(now, tokyo))
}

func TestNeedsToBuy(t *testing.T) {
	assert.True(t, domain.NeedsToBuy(0))
	assert.True(t, domain.NeedsToBuy(1))
	assert.False(t, domain.NeedsToBuy(2))
	assert.False(t, domain.NeedsToBuy(10))
}

func TestErrorCode(t *testing.T) {
	err := domain.InsufficientStock(1, 2)
	assert.Equal(t, domain.CodeInsufficientStock, domain.ErrorCode(err))
	assert.Equal(t, "insufficient stock: available 1, requested 2", err.Error())

	wrapped := fmt.Errorf("load: %w", domain.NotFound("product", 9))
	assert.True(t, domain.IsCode(wrapped, domain.CodeNotFound))
	assert.Equal(t, domain.Code(""), domain.ErrorCode(assert.AnError))
}

func TestPermissionType(t *testing.T) {
	assert.True(t, domain.PermOwner.CanWrite())
	assert.True(t, domain.PermReadWrite.CanWrite())
	assert.False(t, domain.PermRead.CanWrite())
	assert.False(t, domain.PermissionType("admin").Valid())
}
