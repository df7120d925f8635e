package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the fixed set of accepted payment channels.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodMobileMoney  PaymentMethod = "mobile_money"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCard         PaymentMethod = "card"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodCash, MethodMobileMoney, MethodBankTransfer, MethodCard:
		return PaymentMethod(s), nil
	default:
		return "", errors.New("unknown payment method: " + s)
	}
}

// Payment is an append-only ledger entry. There is no update path; each
// payment extends its customer's expiry exactly once, inside the same
// transaction that creates it.
type Payment struct {
	ID          int64           `json:"id"`
	VendorID    uuid.UUID       `json:"vendor_id"`
	CustomerID  int64           `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	PaymentDate time.Time       `json:"payment_date"`
	MonthsPaid  int             `json:"months_paid"`
	Notes       string          `json:"notes,omitempty"`
	RecordedBy  string          `json:"recorded_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

type PaymentCreateRequest struct {
	CustomerID int64
	Amount     decimal.Decimal
	Method     string
	Reference  string
	MonthsPaid int
	Notes      string
}

func (p PaymentCreateRequest) Validate() error {
	if p.CustomerID == 0 {
		return errors.New("customer_id is required")
	}
	if !p.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if _, err := ParsePaymentMethod(p.Method); err != nil {
		return err
	}
	if p.MonthsPaid <= 0 {
		return errors.New("months_paid must be greater than zero")
	}
	return nil
}

type PaymentFilter struct {
	CustomerID *int64
	Method     *PaymentMethod
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
	Desc       bool
}
