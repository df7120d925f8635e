package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/ipaynotify/ipaynotify/internal/model"
)

type VendorEntity struct {
	ID           uuid.UUID `db:"id"            gorm:"primaryKey;column:id;type:uuid"`
	Name         string    `db:"name"          gorm:"column:name;not null;unique"`
	Slogan       string    `db:"slogan"        gorm:"column:slogan"`
	LogoURL      string    `db:"logo_url"      gorm:"column:logo_url"`
	Website      string    `db:"website"       gorm:"column:website"`
	ContactEmail string    `db:"contact_email" gorm:"column:contact_email"`
	ContactPhone string    `db:"contact_phone" gorm:"column:contact_phone"`
	Address      string    `db:"address"       gorm:"column:address"`
	CreatedAt    time.Time `db:"created_at"    gorm:"column:created_at"`
	UpdatedAt    time.Time `db:"updated_at"    gorm:"column:updated_at"`
}

func (VendorEntity) TableName() string {
	return "vendors"
}

func toVendorEntity(m *model.Vendor) *VendorEntity {
	if m == nil {
		return nil
	}
	return &VendorEntity{
		ID:           m.ID,
		Name:         m.Name,
		Slogan:       m.Slogan,
		LogoURL:      m.LogoURL,
		Website:      m.Website,
		ContactEmail: m.ContactEmail,
		ContactPhone: m.ContactPhone,
		Address:      m.Address,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toVendorModel(e *VendorEntity) *model.Vendor {
	if e == nil {
		return nil
	}
	return &model.Vendor{
		ID:           e.ID,
		Name:         e.Name,
		Slogan:       e.Slogan,
		LogoURL:      e.LogoURL,
		Website:      e.Website,
		ContactEmail: e.ContactEmail,
		ContactPhone: e.ContactPhone,
		Address:      e.Address,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toVendorModels(entities []*VendorEntity) []*model.Vendor {
	if entities == nil {
		return nil
	}
	models := make([]*model.Vendor, len(entities))
	for i, e := range entities {
		models[i] = toVendorModel(e)
	}
	return models
}
