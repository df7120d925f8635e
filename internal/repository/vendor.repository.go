package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/pkg/pg"
)

var (
	ErrVendorNotFound = errors.New("vendor not found")
)

type VendorRepository struct {
	*pg.DB
}

func NewVendorRepository(db *pg.DB) *VendorRepository {
	return &VendorRepository{
		db,
	}
}

func (r *VendorRepository) Create(ctx context.Context, v *model.Vendor) (*model.Vendor, error) {
	entity := toVendorEntity(v)
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toVendorModel(entity), nil
}

func (r *VendorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	var entity VendorEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}

	return toVendorModel(&entity), nil
}

func (r *VendorRepository) List(ctx context.Context) ([]*model.Vendor, error) {
	var entities []*VendorEntity

	err := r.Read(ctx).WithContext(ctx).
		Order("name ASC").
		Find(&entities).
		Error

	if err != nil {
		return nil, err
	}

	return toVendorModels(entities), nil
}

func (r *VendorRepository) Update(ctx context.Context, v *model.Vendor) (*model.Vendor, error) {
	entity := toVendorEntity(v)

	result := r.Write(ctx).WithContext(ctx).
		Model(&VendorEntity{}).
		Where("id = ?", entity.ID).
		Updates(map[string]interface{}{
			"name":          entity.Name,
			"slogan":        entity.Slogan,
			"logo_url":      entity.LogoURL,
			"website":       entity.Website,
			"contact_email": entity.ContactEmail,
			"contact_phone": entity.ContactPhone,
			"address":       entity.Address,
		})

	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrVendorNotFound
	}

	return r.Get(ctx, v.ID)
}

func (r *VendorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.Write(ctx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&VendorEntity{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVendorNotFound
	}
	return nil
}
