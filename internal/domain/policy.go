package domain

import "time"

// RestockThreshold is the stock count below which a product needs buying.
const RestockThreshold = 2

// MaxBulkQuantity caps how many units one bulk create may insert.
const MaxBulkQuantity = 1000

func NeedsToBuy(stockCount int) bool { return stockCount < RestockThreshold }

type PermissionType string

const (
	PermOwner     PermissionType = "owner"
	PermRead      PermissionType = "read"
	PermReadWrite PermissionType = "read-write"
)

func (p PermissionType) Valid() bool {
	switch p {
	case PermOwner, PermRead, PermReadWrite:
		return true
	}
	return false
}

func (p PermissionType) CanWrite() bool { return p == PermOwner || p == PermReadWrite }

// InviteTTL is how long an invite link stays redeemable after creation.
const InviteTTL = 7 * 24 * time.Hour
