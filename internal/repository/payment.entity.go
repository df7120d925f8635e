package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ipaynotify/ipaynotify/internal/model"
)

type PaymentEntity struct {
	ID          int64           `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	VendorID    uuid.UUID       `db:"vendor_id"    gorm:"column:vendor_id;type:uuid;not null;index"`
	CustomerID  int64           `db:"customer_id"  gorm:"column:customer_id;not null;index"`
	Amount      decimal.Decimal `db:"amount"       gorm:"column:amount;type:numeric(12,2);not null"`
	Method      string          `db:"method"       gorm:"column:method;not null"`
	Reference   string          `db:"reference"    gorm:"column:reference"`
	PaymentDate time.Time       `db:"payment_date" gorm:"column:payment_date;not null"`
	MonthsPaid  int             `db:"months_paid"  gorm:"column:months_paid;not null"`
	Notes       string          `db:"notes"        gorm:"column:notes"`
	RecordedBy  string          `db:"recorded_by"  gorm:"column:recorded_by;not null"`
	CreatedAt   time.Time       `db:"created_at"   gorm:"column:created_at"`
}

func (PaymentEntity) TableName() string {
	return "payments"
}

func toPaymentEntity(m *model.Payment) *PaymentEntity {
	if m == nil {
		return nil
	}
	return &PaymentEntity{
		ID:          m.ID,
		VendorID:    m.VendorID,
		CustomerID:  m.CustomerID,
		Amount:      m.Amount,
		Method:      string(m.Method),
		Reference:   m.Reference,
		PaymentDate: m.PaymentDate,
		MonthsPaid:  m.MonthsPaid,
		Notes:       m.Notes,
		RecordedBy:  m.RecordedBy,
		CreatedAt:   m.CreatedAt,
	}
}

func toPaymentModel(e *PaymentEntity) *model.Payment {
	if e == nil {
		return nil
	}
	return &model.Payment{
		ID:          e.ID,
		VendorID:    e.VendorID,
		CustomerID:  e.CustomerID,
		Amount:      e.Amount,
		Method:      model.PaymentMethod(e.Method),
		Reference:   e.Reference,
		PaymentDate: e.PaymentDate,
		MonthsPaid:  e.MonthsPaid,
		Notes:       e.Notes,
		RecordedBy:  e.RecordedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func toPaymentModels(entities []*PaymentEntity) []*model.Payment {
	if entities == nil {
		return nil
	}
	models := make([]*model.Payment, len(entities))
	for i, e := range entities {
		models[i] = toPaymentModel(e)
	}
	return models
}
