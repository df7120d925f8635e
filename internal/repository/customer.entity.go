package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ipaynotify/ipaynotify/internal/model"
)

type CustomerEntity struct {
	ID               int64           `db:"id"                 gorm:"primaryKey;autoIncrement;column:id"`
	VendorID         uuid.UUID       `db:"vendor_id"          gorm:"column:vendor_id;type:uuid;not null;index"`
	Name             string          `db:"name"               gorm:"column:name;not null"`
	Phone            string          `db:"phone"              gorm:"column:phone;not null"`
	Tier             string          `db:"tier"               gorm:"column:tier;not null"`
	MonthlyFee       decimal.Decimal `db:"monthly_fee"        gorm:"column:monthly_fee;type:numeric(12,2);not null"`
	SubscriptionDate time.Time       `db:"subscription_date"  gorm:"column:subscription_date;not null"`
	ExpiryDate       time.Time       `db:"expiry_date"        gorm:"column:expiry_date;not null;index"`
	IsActive         bool            `db:"is_active"          gorm:"column:is_active;not null;default:false"`
	LastReminderSent *time.Time      `db:"last_reminder_sent" gorm:"column:last_reminder_sent"`
	Notes            string          `db:"notes"              gorm:"column:notes"`
	CreatedAt        time.Time       `db:"created_at"         gorm:"column:created_at"`
	UpdatedAt        time.Time       `db:"updated_at"         gorm:"column:updated_at"`
}

func (CustomerEntity) TableName() string {
	return "customers"
}

func toCustomerEntity(m *model.Customer) *CustomerEntity {
	if m == nil {
		return nil
	}
	return &CustomerEntity{
		ID:               m.ID,
		VendorID:         m.VendorID,
		Name:             m.Name,
		Phone:            m.Phone,
		Tier:             string(m.Tier),
		MonthlyFee:       m.MonthlyFee,
		SubscriptionDate: m.SubscriptionDate,
		ExpiryDate:       m.ExpiryDate,
		IsActive:         m.IsActive,
		LastReminderSent: m.LastReminderSent,
		Notes:            m.Notes,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toCustomerModel(e *CustomerEntity) *model.Customer {
	if e == nil {
		return nil
	}
	return &model.Customer{
		ID:               e.ID,
		VendorID:         e.VendorID,
		Name:             e.Name,
		Phone:            e.Phone,
		Tier:             model.Tier(e.Tier),
		MonthlyFee:       e.MonthlyFee,
		SubscriptionDate: e.SubscriptionDate,
		ExpiryDate:       e.ExpiryDate,
		IsActive:         e.IsActive,
		LastReminderSent: e.LastReminderSent,
		Notes:            e.Notes,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func toCustomerModels(entities []*CustomerEntity) []*model.Customer {
	if entities == nil {
		return nil
	}
	models := make([]*model.Customer, len(entities))
	for i, e := range entities {
		models[i] = toCustomerModel(e)
	}
	return models
}
