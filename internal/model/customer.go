package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier is the fixed set of subscription packages.
type Tier string

const (
	TierBasic      Tier = "basic"
	TierStandard   Tier = "standard"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierBasic, TierStandard, TierPremium, TierEnterprise:
		return Tier(s), nil
	default:
		return "", errors.New("unknown subscription tier: " + s)
	}
}

type Customer struct {
	ID               int64           `json:"id"`
	VendorID         uuid.UUID       `json:"vendor_id"`
	Name             string          `json:"name"`
	Phone            string          `json:"phone"` // raw, as entered
	Tier             Tier            `json:"tier"`
	MonthlyFee       decimal.Decimal `json:"monthly_fee"`
	SubscriptionDate time.Time       `json:"subscription_date"`
	ExpiryDate       time.Time       `json:"expiry_date"`
	// IsActive records "has been activated at least once"; the displayed
	// status is always recomputed from ExpiryDate.
	IsActive         bool       `json:"is_active"`
	LastReminderSent *time.Time `json:"last_reminder_sent,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CustomerCreateRequest is the input for registering a customer.
type CustomerCreateRequest struct {
	VendorID   uuid.UUID // required for super_admin, ignored otherwise
	Name       string
	Phone      string
	Tier       string
	MonthlyFee decimal.Decimal
	Notes      string
}

func (p CustomerCreateRequest) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(p.Phone) == "" {
		return errors.New("phone is required")
	}
	if _, err := ParseTier(p.Tier); err != nil {
		return err
	}
	if p.MonthlyFee.IsNegative() {
		return errors.New("monthly_fee cannot be negative")
	}
	return nil
}

// CustomerFilter controls List queries.
type CustomerFilter struct {
	Tier   *Tier
	Search *string // matches name or phone
	Limit  int     // default 50
	Offset int
	Desc   bool // order by created_at
}
