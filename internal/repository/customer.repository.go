package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ipaynotify/ipaynotify/internal/model"
	"github.com/ipaynotify/ipaynotify/pkg/pg"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
)

type CustomerRepository struct {
	*pg.DB
}

func NewCustomerRepository(db *pg.DB) *CustomerRepository {
	return &CustomerRepository{
		db,
	}
}

func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	entity := toCustomerEntity(c)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toCustomerModel(entity), nil
}

func (r *CustomerRepository) Get(ctx context.Context, sess *model.Session, id int64) (*model.Customer, error) {
	var entity CustomerEntity

	err := r.Read(ctx).WithContext(ctx).
		Scopes(TenantScope(sess)).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	return toCustomerModel(&entity), nil
}

func (r *CustomerRepository) List(ctx context.Context, sess *model.Session, f model.CustomerFilter) ([]*model.Customer, int64, error) {
	q := r.Read(ctx).WithContext(ctx).
		Model(&CustomerEntity{}).
		Scopes(TenantScope(sess))

	if f.Tier != nil {
		q = q.Where("tier = ?", string(*f.Tier))
	}
	if f.Search != nil && *f.Search != "" {
		pattern := "%" + *f.Search + "%"
		q = q.Where("name LIKE ? OR phone LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*CustomerEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toCustomerModels(entities), total, nil
}

// ListDueForReminder pulls the customers whose expiry date falls before the
// cutoff. The caller evaluates each one precisely; this is only the coarse
// database-side pre-filter.
func (r *CustomerRepository) ListDueForReminder(ctx context.Context, sess *model.Session, cutoff time.Time) ([]*model.Customer, error) {
	var entities []*CustomerEntity

	err := r.Read(ctx).WithContext(ctx).
		Scopes(TenantScope(sess)).
		Where("expiry_date < ?", cutoff).
		Order("expiry_date ASC").
		Find(&entities).
		Error

	if err != nil {
		return nil, err
	}

	return toCustomerModels(entities), nil
}

// UpdateSubscription moves the expiry date and flips the activation flag.
// It runs against the write connection so a surrounding transaction from
// pg.WithinTransaction covers it.
func (r *CustomerRepository) UpdateSubscription(ctx context.Context, id int64, newExpiry time.Time, active bool) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CustomerEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"expiry_date": newExpiry,
			"is_active":   active,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// MarkReminded records when the last reminder went out.
func (r *CustomerRepository) MarkReminded(ctx context.Context, id int64, at time.Time) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CustomerEntity{}).
		Where("id = ?", id).
		Update("last_reminder_sent", at)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, sess *model.Session, id int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Scopes(TenantScope(sess)).
		Where("id = ?", id).
		Delete(&CustomerEntity{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
